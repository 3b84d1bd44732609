package interfaces

import (
	"context"

	"github.com/dpetrov/folio/internal/models"
)

// HoldingStore persists portfolio holdings keyed by ticker.
type HoldingStore interface {
	// ReplaceSource atomically deletes every holding for the source and
	// inserts the new set. On error the store is left unchanged.
	ReplaceSource(ctx context.Context, source string, holdings []*models.Holding) error
	Get(ctx context.Context, ticker string) (*models.Holding, error)
	List(ctx context.Context, filter models.HoldingFilter) ([]*models.Holding, int, error)
	// SetSentiment updates the sentiment annotation without touching AsOf.
	SetSentiment(ctx context.Context, ticker, sentiment string) error
}

// AnalysisStore persists news analysis results keyed by ticker.
type AnalysisStore interface {
	Put(ctx context.Context, analysis *models.NewsAnalysis) error
	Get(ctx context.Context, ticker string) (*models.NewsAnalysis, error)
}

// SystemStore is a small KV area for runtime state such as the last sync time.
type SystemStore interface {
	GetKV(ctx context.Context, key string) (string, error)
	SetKV(ctx context.Context, key, value string) error
}

// StorageManager coordinates access to all stores.
type StorageManager interface {
	Holdings() HoldingStore
	Analyses() AnalysisStore
	System() SystemStore
	Close() error
}
