// Package interfaces defines contracts between Folio components.
package interfaces

import (
	"context"

	"github.com/dpetrov/folio/internal/models"
)

// CompletionClient generates free text from a prompt. Implementations must
// surface provider rate limiting as clients.ErrRateLimited so callers can
// distinguish it from generic failure.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Close() error
}

// NewsClient fetches recent news articles for a ticker. It may return an
// empty slice; that is not an error.
type NewsClient interface {
	Fetch(ctx context.Context, ticker string, maxItems int) ([]models.NewsArticle, error)
}

// PortfolioFetcher scrapes holdings from a public portfolio page.
type PortfolioFetcher interface {
	FetchHoldings(ctx context.Context, pageURL string) ([]*models.Holding, error)
}
