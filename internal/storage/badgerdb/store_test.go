package badgerdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpetrov/folio/internal/common"
	"github.com/dpetrov/folio/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func holding(ticker, source string, current float64) *models.Holding {
	return &models.Holding{
		Ticker:       ticker,
		AssetType:    models.AssetTypeStock,
		Currency:     "USD",
		CurrentValue: current,
		Source:       source,
		AsOf:         time.Now(),
	}
}

func TestReplaceSourceRemovesStaleTickers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	holdings := store.Holdings()

	first := []*models.Holding{
		holding("AAPL", "intellinvest", 100),
		holding("MSFT", "intellinvest", 200),
	}
	require.NoError(t, holdings.ReplaceSource(ctx, "intellinvest", first))

	second := []*models.Holding{
		holding("AAPL", "intellinvest", 150),
		holding("NVDA", "intellinvest", 300),
	}
	require.NoError(t, holdings.ReplaceSource(ctx, "intellinvest", second))

	all, total, err := holdings.List(ctx, models.HoldingFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	tickers := []string{all[0].Ticker, all[1].Ticker}
	assert.Equal(t, []string{"AAPL", "NVDA"}, tickers)

	_, err = holdings.Get(ctx, "MSFT")
	assert.Error(t, err)

	got, err := holdings.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 150.0, got.CurrentValue)
}

func TestReplaceSourceLeavesOtherSources(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	holdings := store.Holdings()

	require.NoError(t, holdings.ReplaceSource(ctx, "intellinvest", []*models.Holding{holding("AAPL", "intellinvest", 100)}))
	require.NoError(t, holdings.ReplaceSource(ctx, "manual", []*models.Holding{holding("GLD", "manual", 50)}))

	require.NoError(t, holdings.ReplaceSource(ctx, "intellinvest", []*models.Holding{holding("MSFT", "intellinvest", 200)}))

	_, total, err := holdings.List(ctx, models.HoldingFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	got, err := holdings.Get(ctx, "GLD")
	require.NoError(t, err)
	assert.Equal(t, "manual", got.Source)
}

func TestListFilterAndPagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	holdings := store.Holdings()

	set := []*models.Holding{
		holding("AAPL", "intellinvest", 100),
		holding("MSFT", "intellinvest", 200),
		holding("SBER.ME", "intellinvest", 300),
	}
	set[2].Currency = "RUB"
	set[2].AssetType = models.AssetTypeStock
	require.NoError(t, holdings.ReplaceSource(ctx, "intellinvest", set))

	matched, total, err := holdings.List(ctx, models.HoldingFilter{Currency: "rub"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, matched, 1)
	assert.Equal(t, "SBER.ME", matched[0].Ticker)

	matched, total, err = holdings.List(ctx, models.HoldingFilter{Ticker: "sber"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, matched, 1)

	matched, total, err = holdings.List(ctx, models.HoldingFilter{Skip: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, matched, 1)
	assert.Equal(t, "MSFT", matched[0].Ticker)

	matched, total, err = holdings.List(ctx, models.HoldingFilter{Skip: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, matched)
}

func TestSetSentimentPreservesAsOf(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	holdings := store.Holdings()

	h := holding("AAPL", "intellinvest", 100)
	asOf := h.AsOf
	require.NoError(t, holdings.ReplaceSource(ctx, "intellinvest", []*models.Holding{h}))

	require.NoError(t, holdings.SetSentiment(ctx, "AAPL", models.SentimentPositive))

	got, err := holdings.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, models.SentimentPositive, got.Sentiment)
	assert.True(t, got.AsOf.Equal(asOf))

	assert.Error(t, holdings.SetSentiment(ctx, "MISSING", models.SentimentNegative))
}

func TestAnalysisOverwrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	analyses := store.Analyses()

	first := &models.NewsAnalysis{
		Ticker:    "AAPL",
		Status:    models.AnalysisStatusCompleted,
		Sentiment: models.SentimentNeutral,
		Analysis:  "first",
		CreatedAt: time.Now(),
	}
	require.NoError(t, analyses.Put(ctx, first))

	second := &models.NewsAnalysis{
		Ticker:    "AAPL",
		Status:    models.AnalysisStatusCompleted,
		Sentiment: models.SentimentPositive,
		Analysis:  "second",
		CreatedAt: time.Now(),
	}
	require.NoError(t, analyses.Put(ctx, second))

	got, err := analyses.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Analysis)
	assert.Equal(t, models.SentimentPositive, got.Sentiment)

	_, err = analyses.Get(ctx, "MISSING")
	assert.Error(t, err)
}

func TestSystemKV(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	system := store.System()

	_, err := system.GetKV(ctx, models.KVLastSync)
	assert.Error(t, err)

	require.NoError(t, system.SetKV(ctx, models.KVLastSync, "2026-08-30T10:00:00Z"))

	val, err := system.GetKV(ctx, models.KVLastSync)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-30T10:00:00Z", val)
}
