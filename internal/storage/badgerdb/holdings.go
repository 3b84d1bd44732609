package badgerdb

import (
	"context"
	"fmt"
	"sort"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"

	"github.com/dpetrov/folio/internal/interfaces"
	"github.com/dpetrov/folio/internal/models"
)

// HoldingStore implements interfaces.HoldingStore on BadgerHold.
type HoldingStore struct {
	store *Store
}

// Holdings returns the holding store view.
func (s *Store) Holdings() interfaces.HoldingStore {
	return &HoldingStore{store: s}
}

// ReplaceSource atomically swaps the full holding set for a source. The
// delete and all inserts run in one Badger transaction, so a failed sync
// leaves the previous snapshot untouched.
func (h *HoldingStore) ReplaceSource(_ context.Context, source string, holdings []*models.Holding) error {
	db := h.store.db
	err := db.Badger().Update(func(tx *badger.Txn) error {
		if err := db.TxDeleteMatching(tx, &models.Holding{}, badgerhold.Where("Source").Eq(source)); err != nil {
			return fmt.Errorf("failed to clear holdings for source '%s': %w", source, err)
		}
		for _, holding := range holdings {
			if err := db.TxUpsert(tx, holding.Ticker, holding); err != nil {
				return fmt.Errorf("failed to insert holding '%s': %w", holding.Ticker, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.store.logger.Info().
		Str("source", source).
		Int("count", len(holdings)).
		Msg("Holdings replaced")
	return nil
}

func (h *HoldingStore) Get(_ context.Context, ticker string) (*models.Holding, error) {
	var holding models.Holding
	if err := h.store.db.Get(ticker, &holding); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("holding '%s' not found", ticker)
		}
		return nil, fmt.Errorf("failed to get holding '%s': %w", ticker, err)
	}
	return &holding, nil
}

// List returns holdings matching the filter plus the total match count
// before pagination. Results are ordered by ticker.
func (h *HoldingStore) List(_ context.Context, filter models.HoldingFilter) ([]*models.Holding, int, error) {
	var all []models.Holding
	if err := h.store.db.Find(&all, nil); err != nil {
		return nil, 0, fmt.Errorf("failed to list holdings: %w", err)
	}

	var matched []*models.Holding
	for i := range all {
		if matchesFilter(&all[i], filter) {
			holding := all[i]
			matched = append(matched, &holding)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Ticker < matched[j].Ticker
	})

	total := len(matched)
	if filter.Skip > 0 {
		if filter.Skip >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Skip:]
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	return matched, total, nil
}

// SetSentiment updates only the sentiment annotation. AsOf is preserved so
// the annotation survives independently of snapshot metadata.
func (h *HoldingStore) SetSentiment(_ context.Context, ticker, sentiment string) error {
	var holding models.Holding
	if err := h.store.db.Get(ticker, &holding); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("holding '%s' not found", ticker)
		}
		return fmt.Errorf("failed to get holding '%s': %w", ticker, err)
	}
	holding.Sentiment = sentiment
	if err := h.store.db.Upsert(ticker, &holding); err != nil {
		return fmt.Errorf("failed to update sentiment for '%s': %w", ticker, err)
	}
	return nil
}

func matchesFilter(holding *models.Holding, filter models.HoldingFilter) bool {
	if filter.Ticker != "" && !strings.Contains(strings.ToLower(holding.Ticker), strings.ToLower(filter.Ticker)) {
		return false
	}
	if filter.AssetType != "" && holding.AssetType != filter.AssetType {
		return false
	}
	if filter.Currency != "" && !strings.EqualFold(holding.Currency, filter.Currency) {
		return false
	}
	return true
}

var _ interfaces.HoldingStore = (*HoldingStore)(nil)
