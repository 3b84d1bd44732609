package badgerdb

import (
	"context"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/dpetrov/folio/internal/interfaces"
	"github.com/dpetrov/folio/internal/models"
)

// AnalysisStore implements interfaces.AnalysisStore on BadgerHold.
type AnalysisStore struct {
	store *Store
}

// Analyses returns the analysis store view.
func (s *Store) Analyses() interfaces.AnalysisStore {
	return &AnalysisStore{store: s}
}

// Put overwrites the analysis for the ticker. One current record per ticker.
func (a *AnalysisStore) Put(_ context.Context, analysis *models.NewsAnalysis) error {
	if err := a.store.db.Upsert(analysis.Ticker, analysis); err != nil {
		return fmt.Errorf("failed to put analysis for '%s': %w", analysis.Ticker, err)
	}
	return nil
}

func (a *AnalysisStore) Get(_ context.Context, ticker string) (*models.NewsAnalysis, error) {
	var analysis models.NewsAnalysis
	if err := a.store.db.Get(ticker, &analysis); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("analysis for '%s' not found", ticker)
		}
		return nil, fmt.Errorf("failed to get analysis for '%s': %w", ticker, err)
	}
	return &analysis, nil
}

var _ interfaces.AnalysisStore = (*AnalysisStore)(nil)
