package interfaces

import (
	"context"
	"io"

	"github.com/dpetrov/folio/internal/models"
)

// PortfolioService ingests spreadsheet exports and serves holdings queries.
type PortfolioService interface {
	SyncFromReader(ctx context.Context, r io.Reader, sheetName string) (*models.SyncResult, error)
	SyncFromPath(ctx context.Context, path string) (*models.SyncResult, error)
	SyncFromURL(ctx context.Context, pageURL string) (*models.SyncResult, error)
	Get(ctx context.Context, ticker string) (*models.Holding, error)
	List(ctx context.Context, filter models.HoldingFilter) ([]*models.Holding, int, error)
	Stats(ctx context.Context) (*models.PortfolioStats, error)
}

// AnalysisService produces and serves AI news-sentiment analysis.
type AnalysisService interface {
	Analyze(ctx context.Context, ticker string) (*models.NewsAnalysis, error)
	GetAnalysis(ctx context.Context, ticker string) (*models.NewsAnalysis, error)
	News(ctx context.Context, ticker string) ([]models.NewsArticle, error)
	Recommendations(ctx context.Context) (string, error)
}

// BatchCoordinator runs the analyzer across all holdings as a single
// background job. One job may be active at a time.
type BatchCoordinator interface {
	Start(ctx context.Context) (*models.BatchJob, error)
	Status() *models.BatchJob
}
