// Package portfolio ingests spreadsheet exports and serves holdings queries.
package portfolio

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dpetrov/folio/internal/common"
	"github.com/dpetrov/folio/internal/interfaces"
	"github.com/dpetrov/folio/internal/models"
	"github.com/dpetrov/folio/internal/parsers/xlsx"
)

// Service implements the PortfolioService interface.
type Service struct {
	storage interfaces.StorageManager
	fetcher interfaces.PortfolioFetcher
	config  *common.Config
	logger  *common.Logger
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithFetcher sets the public portfolio page fetcher
func WithFetcher(fetcher interfaces.PortfolioFetcher) ServiceOption {
	return func(s *Service) {
		s.fetcher = fetcher
	}
}

// NewService creates a new portfolio service.
func NewService(storage interfaces.StorageManager, config *common.Config, logger *common.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		storage: storage,
		config:  config,
		logger:  logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) locale() xlsx.Locale {
	return xlsx.Locale{
		DecimalSeparator:  s.config.Sync.DecimalSeparator,
		ThousandSeparator: s.config.Sync.ThousandSeparator,
	}
}

// SyncFromReader replaces the holdings snapshot for the configured source
// with the contents of the spreadsheet. The replace is atomic: on any
// failure the previous snapshot remains untouched.
func (s *Service) SyncFromReader(ctx context.Context, r io.Reader, sheetName string) (*models.SyncResult, error) {
	if sheetName == "" {
		sheetName = s.config.Sync.SheetName
	}
	source := s.config.Sync.Source

	header, rows, err := xlsx.ExtractRows(r, sheetName)
	if err != nil {
		return nil, err
	}

	holdings, err := normalizeRows(header, rows, s.locale(), s.logger)
	if err != nil {
		return nil, err
	}

	return s.replaceSnapshot(ctx, source, holdings)
}

// replaceSnapshot installs holdings as the new snapshot for the source,
// carrying sentiment labels over from the previous snapshot by ticker.
func (s *Service) replaceSnapshot(ctx context.Context, source string, holdings []*models.Holding) (*models.SyncResult, error) {
	// Sentiment is a ticker-level annotation that survives a full resync.
	sentiments := s.currentSentiments(ctx)

	asOf := time.Now()
	for _, holding := range holdings {
		holding.Source = source
		holding.AsOf = asOf
		if sentiment, ok := sentiments[holding.Ticker]; ok {
			holding.Sentiment = sentiment
		}
	}

	if err := s.storage.Holdings().ReplaceSource(ctx, source, holdings); err != nil {
		return nil, fmt.Errorf("sync failed: %w", err)
	}

	if err := s.storage.System().SetKV(ctx, models.KVLastSync, asOf.Format(time.RFC3339)); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record last sync time")
	}

	s.logger.Info().
		Str("source", source).
		Int("count", len(holdings)).
		Msg("Sync completed")

	return &models.SyncResult{
		Status: "success",
		Count:  len(holdings),
		AsOf:   asOf,
		Source: source,
	}, nil
}

// SyncFromPath syncs from a spreadsheet on the local filesystem.
func (s *Service) SyncFromPath(ctx context.Context, path string) (*models.SyncResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	return s.SyncFromReader(ctx, f, "")
}

// InvalidURLError indicates a sync URL that is not a public IntelliInvest
// portfolio page.
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("'%s' is not a public IntelliInvest portfolio URL", e.URL)
}

// SyncFromURL syncs from a public IntelliInvest portfolio page. The scraped
// positions replace the "intellinvest_public" snapshot, leaving spreadsheet
// snapshots untouched.
func (s *Service) SyncFromURL(ctx context.Context, pageURL string) (*models.SyncResult, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("public portfolio fetcher not configured")
	}
	if !strings.HasPrefix(pageURL, "http") || !strings.Contains(pageURL, "intelinvest.ru/public-portfolio") {
		return nil, &InvalidURLError{URL: pageURL}
	}

	holdings, err := s.fetcher.FetchHoldings(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("portfolio page fetch failed: %w", err)
	}

	computeShares(holdings)

	return s.replaceSnapshot(ctx, models.SourceIntelliInvestPublic, holdings)
}

// currentSentiments captures ticker -> sentiment from the live snapshot.
func (s *Service) currentSentiments(ctx context.Context) map[string]string {
	existing, _, err := s.storage.Holdings().List(ctx, models.HoldingFilter{})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read existing holdings for sentiment carry-over")
		return nil
	}
	sentiments := make(map[string]string)
	for _, holding := range existing {
		if holding.Sentiment != "" {
			sentiments[holding.Ticker] = holding.Sentiment
		}
	}
	return sentiments
}

// Get returns a single holding by ticker.
func (s *Service) Get(ctx context.Context, ticker string) (*models.Holding, error) {
	return s.storage.Holdings().Get(ctx, ticker)
}

// List returns holdings matching the filter with the total match count.
func (s *Service) List(ctx context.Context, filter models.HoldingFilter) ([]*models.Holding, int, error) {
	return s.storage.Holdings().List(ctx, filter)
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
