// Package analysis produces AI news-sentiment commentary for holdings.
package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dpetrov/folio/internal/common"
	"github.com/dpetrov/folio/internal/interfaces"
	"github.com/dpetrov/folio/internal/models"
)

const noNewsAnalysis = "No recent news available for this holding. " +
	"Sentiment is considered neutral until fresh coverage appears."

// Service implements the AnalysisService interface.
type Service struct {
	storage     interfaces.StorageManager
	news        interfaces.NewsClient
	completion  interfaces.CompletionClient
	maxArticles int
	logger      *common.Logger
}

// NewService creates a new analysis service.
func NewService(storage interfaces.StorageManager, news interfaces.NewsClient, completion interfaces.CompletionClient, config *common.Config, logger *common.Logger) *Service {
	maxArticles := config.Clients.News.MaxArticles
	if maxArticles <= 0 {
		maxArticles = 10
	}
	return &Service{
		storage:     storage,
		news:        news,
		completion:  completion,
		maxArticles: maxArticles,
		logger:      logger,
	}
}

// Analyze fetches recent news for the ticker, asks the completion provider
// for commentary, and persists the result, overwriting any prior analysis.
// External failures persist a failed record and propagate; rate limiting
// stays distinguishable via errors.Is(err, clients.ErrRateLimited).
func (s *Service) Analyze(ctx context.Context, ticker string) (*models.NewsAnalysis, error) {
	holding, err := s.storage.Holdings().Get(ctx, ticker)
	if err != nil {
		return nil, err
	}

	articles, err := s.news.Fetch(ctx, ticker, s.maxArticles)
	if err != nil {
		s.persistFailed(ctx, ticker)
		return nil, fmt.Errorf("news fetch for '%s' failed: %w", ticker, err)
	}

	var text string
	switch {
	case len(articles) == 0:
		// No coverage is a valid outcome, not a failure. The canned
		// commentary avoids burning provider quota on an empty prompt.
		text = noNewsAnalysis
	case s.completion == nil:
		s.persistFailed(ctx, ticker)
		return nil, fmt.Errorf("completion provider not configured")
	default:
		text, err = s.completion.Complete(ctx, buildAnalysisPrompt(holding, articles))
		if err != nil {
			s.persistFailed(ctx, ticker)
			return nil, fmt.Errorf("analysis for '%s' failed: %w", ticker, err)
		}
	}

	record := &models.NewsAnalysis{
		Ticker:       ticker,
		Status:       models.AnalysisStatusCompleted,
		Sentiment:    extractSentiment(text),
		Analysis:     text,
		NewsArticles: articles,
		CreatedAt:    time.Now(),
	}

	if err := s.storage.Analyses().Put(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist analysis for '%s': %w", ticker, err)
	}
	if err := s.storage.Holdings().SetSentiment(ctx, ticker, record.Sentiment); err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to update holding sentiment")
	}

	s.logger.Info().
		Str("ticker", ticker).
		Str("sentiment", record.Sentiment).
		Int("news_count", len(articles)).
		Msg("Analysis completed")

	return record, nil
}

// persistFailed records a failed analysis attempt. Best effort; the original
// error is what the caller sees.
func (s *Service) persistFailed(ctx context.Context, ticker string) {
	record := &models.NewsAnalysis{
		Ticker:    ticker,
		Status:    models.AnalysisStatusFailed,
		CreatedAt: time.Now(),
	}
	if err := s.storage.Analyses().Put(ctx, record); err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to persist failed analysis")
	}
}

// GetAnalysis returns the cached analysis for a ticker.
func (s *Service) GetAnalysis(ctx context.Context, ticker string) (*models.NewsAnalysis, error) {
	return s.storage.Analyses().Get(ctx, ticker)
}

// News returns recent articles for a ticker without running analysis.
func (s *Service) News(ctx context.Context, ticker string) ([]models.NewsArticle, error) {
	return s.news.Fetch(ctx, ticker, s.maxArticles)
}

// Recommendations produces portfolio-level commentary from the current
// holdings and their cached sentiments.
func (s *Service) Recommendations(ctx context.Context) (string, error) {
	holdings, _, err := s.storage.Holdings().List(ctx, models.HoldingFilter{})
	if err != nil {
		return "", err
	}
	if len(holdings) == 0 {
		return "The portfolio is empty. Sync a brokerage export before requesting recommendations.", nil
	}
	if s.completion == nil {
		return "", fmt.Errorf("completion provider not configured")
	}

	text, err := s.completion.Complete(ctx, buildRecommendationsPrompt(holdings))
	if err != nil {
		return "", fmt.Errorf("recommendations failed: %w", err)
	}
	return text, nil
}

// buildAnalysisPrompt embeds the holding's financial context and the
// article list into a single completion request.
func buildAnalysisPrompt(holding *models.Holding, articles []models.NewsArticle) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are a financial analyst. Analyze recent news for %s", holding.Ticker))
	if holding.Name != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", holding.Name))
	}
	sb.WriteString(".\n\nPosition context:\n")
	sb.WriteString(fmt.Sprintf("- Current value: %.2f %s\n", holding.CurrentValue, holding.Currency))
	sb.WriteString(fmt.Sprintf("- P&L: %.2f (%.2f%%)\n", holding.PnlValue, holding.PnlPct))
	sb.WriteString(fmt.Sprintf("- Portfolio share: %.2f%%\n", holding.SharePct))

	sb.WriteString("\nRecent news:\n")
	for i, article := range articles {
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, article.Title))
		if article.Source != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", article.Source))
		}
		sb.WriteString("\n")
		if article.Summary != "" {
			sb.WriteString("   ")
			sb.WriteString(article.Summary)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nSummarize what this news means for the position in 3-5 sentences, ")
	sb.WriteString("then state the overall sentiment as exactly one word: positive, negative, or neutral.")

	return sb.String()
}

// buildRecommendationsPrompt summarizes the whole portfolio for the provider.
func buildRecommendationsPrompt(holdings []*models.Holding) string {
	sorted := make([]*models.Holding, len(holdings))
	copy(sorted, holdings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CurrentValue > sorted[j].CurrentValue
	})

	totalCurrent := 0.0
	totalInvested := 0.0
	for _, h := range sorted {
		totalCurrent += h.CurrentValue
		totalInvested += h.InvestedValue
	}

	var sb strings.Builder
	sb.WriteString("You are a portfolio advisor. Review the portfolio below and give concrete, ")
	sb.WriteString("prioritized recommendations (rebalancing, risks, positions to watch).\n\n")
	sb.WriteString(fmt.Sprintf("Total value: %.2f, invested: %.2f\n\nHoldings:\n", totalCurrent, totalInvested))

	for _, h := range sorted {
		sb.WriteString(fmt.Sprintf("- %s (%s): value %.2f %s, P&L %.2f%%, share %.2f%%",
			h.Ticker, h.AssetType, h.CurrentValue, h.Currency, h.PnlPct, h.SharePct))
		if h.Sentiment != "" {
			sb.WriteString(fmt.Sprintf(", news sentiment: %s", h.Sentiment))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nKeep the answer under 300 words.")
	return sb.String()
}

// Ensure Service implements AnalysisService
var _ interfaces.AnalysisService = (*Service)(nil)
