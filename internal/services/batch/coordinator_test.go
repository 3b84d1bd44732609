package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/dpetrov/folio/internal/clients"
	"github.com/dpetrov/folio/internal/common"
	"github.com/dpetrov/folio/internal/models"
)

type mockPortfolio struct {
	holdings []*models.Holding
	listErr  error
}

func (m *mockPortfolio) SyncFromReader(context.Context, io.Reader, string) (*models.SyncResult, error) {
	return nil, errors.New("not implemented")
}

func (m *mockPortfolio) SyncFromPath(context.Context, string) (*models.SyncResult, error) {
	return nil, errors.New("not implemented")
}

func (m *mockPortfolio) SyncFromURL(context.Context, string) (*models.SyncResult, error) {
	return nil, errors.New("not implemented")
}

func (m *mockPortfolio) Get(context.Context, string) (*models.Holding, error) {
	return nil, errors.New("not implemented")
}

func (m *mockPortfolio) List(context.Context, models.HoldingFilter) ([]*models.Holding, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.holdings, len(m.holdings), nil
}

func (m *mockPortfolio) Stats(context.Context) (*models.PortfolioStats, error) {
	return nil, errors.New("not implemented")
}

type mockAnalysis struct {
	mu      sync.Mutex
	analyze func(ticker string) error
	calls   []string
	block   chan struct{}
}

func (m *mockAnalysis) Analyze(_ context.Context, ticker string) (*models.NewsAnalysis, error) {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	m.calls = append(m.calls, ticker)
	m.mu.Unlock()
	if m.analyze != nil {
		if err := m.analyze(ticker); err != nil {
			return nil, err
		}
	}
	return &models.NewsAnalysis{Ticker: ticker, Status: models.AnalysisStatusCompleted}, nil
}

func (m *mockAnalysis) GetAnalysis(context.Context, string) (*models.NewsAnalysis, error) {
	return nil, errors.New("not implemented")
}

func (m *mockAnalysis) News(context.Context, string) ([]models.NewsArticle, error) {
	return nil, nil
}

func (m *mockAnalysis) Recommendations(context.Context) (string, error) {
	return "", nil
}

func (m *mockAnalysis) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func portfolioWith(tickers ...string) *mockPortfolio {
	p := &mockPortfolio{}
	for _, t := range tickers {
		p.holdings = append(p.holdings, &models.Holding{Ticker: t})
	}
	return p
}

func newTestCoordinator(p *mockPortfolio, a *mockAnalysis) *Coordinator {
	return NewCoordinator(p, a, common.NewSilentLogger(), WithTickerTimeout(5*time.Second))
}

func TestStatusBeforeAnyJob(t *testing.T) {
	c := newTestCoordinator(portfolioWith("AAPL"), &mockAnalysis{})
	if job := c.Status(); job != nil {
		t.Errorf("expected no_job (nil) before first start, got %+v", job)
	}
}

func TestBatchCompletesWithPartialFailure(t *testing.T) {
	analysis := &mockAnalysis{
		analyze: func(ticker string) error {
			if ticker == "BAD" {
				return errors.New("analysis blew up")
			}
			return nil
		},
	}
	c := newTestCoordinator(portfolioWith("AAPL", "BAD", "MSFT"), analysis)

	job, err := c.Start(context.Background())
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if job.TotalHoldings != 3 {
		t.Errorf("expected total 3, got %d", job.TotalHoldings)
	}

	c.Wait()

	final := c.Status()
	if final.Status != models.BatchStatusCompleted {
		t.Errorf("expected completed, got %s", final.Status)
	}
	if final.ProcessedHoldings != 3 || final.SuccessfulHoldings != 2 || final.FailedHoldings != 1 {
		t.Errorf("unexpected counters: %+v", final)
	}
	if final.ProgressPct != 100 {
		t.Errorf("expected progress 100, got %v", final.ProgressPct)
	}
	if final.FinishedAt.IsZero() {
		t.Error("finished_at should be set")
	}
	if analysis.callCount() != 3 {
		t.Errorf("every ticker should be attempted, got %d calls", analysis.callCount())
	}
}

func TestStartWhileActiveRejected(t *testing.T) {
	analysis := &mockAnalysis{block: make(chan struct{})}
	c := newTestCoordinator(portfolioWith("AAPL", "MSFT"), analysis)

	if _, err := c.Start(context.Background()); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}

	_, err := c.Start(context.Background())
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}

	close(analysis.block)
	c.Wait()

	// The slot frees up once the job finishes.
	if _, err := c.Start(context.Background()); err != nil {
		t.Errorf("Start after completion should succeed: %v", err)
	}
	c.Wait()
}

func TestRateLimitHaltsRemainder(t *testing.T) {
	analysis := &mockAnalysis{
		analyze: func(ticker string) error {
			if ticker == "SECOND" {
				return fmt.Errorf("gemini: %w", clients.ErrRateLimited)
			}
			return nil
		},
	}
	c := newTestCoordinator(portfolioWith("FIRST", "SECOND", "THIRD", "FOURTH"), analysis)

	if _, err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	c.Wait()

	final := c.Status()
	if final.Status != models.BatchStatusFailed {
		t.Errorf("expected failed, got %s", final.Status)
	}
	if final.SuccessfulHoldings != 1 {
		t.Errorf("expected 1 success before the limit, got %d", final.SuccessfulHoldings)
	}
	if final.FailedHoldings != 3 {
		t.Errorf("remaining tickers should be bulk-failed, got %d", final.FailedHoldings)
	}
	if final.ProcessedHoldings != 4 {
		t.Errorf("processed should cover the full snapshot, got %d", final.ProcessedHoldings)
	}
	if final.Error == "" {
		t.Error("job error should name the rate limit")
	}
	if analysis.callCount() != 2 {
		t.Errorf("no tickers should be attempted after the limit, got %d calls", analysis.callCount())
	}
}

func TestBatchEmptyPortfolio(t *testing.T) {
	c := newTestCoordinator(portfolioWith(), &mockAnalysis{})

	if _, err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	c.Wait()

	final := c.Status()
	if final.Status != models.BatchStatusCompleted {
		t.Errorf("expected completed, got %s", final.Status)
	}
	if final.TotalHoldings != 0 || final.ProgressPct != 0 {
		t.Errorf("unexpected counters for empty batch: %+v", final)
	}
}

func TestPanicMarksJobFailed(t *testing.T) {
	analysis := &mockAnalysis{
		analyze: func(string) error {
			panic("boom")
		},
	}
	c := newTestCoordinator(portfolioWith("AAPL"), analysis)

	if _, err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	c.Wait()

	final := c.Status()
	if final.Status != models.BatchStatusFailed {
		t.Errorf("panicking run loop should fail the job, got %s", final.Status)
	}

	// The slot must not be stuck active.
	if _, err := c.Start(context.Background()); err != nil {
		t.Errorf("Start after panic should succeed: %v", err)
	}
	c.Wait()
}

func TestStartSnapshotFailure(t *testing.T) {
	c := newTestCoordinator(&mockPortfolio{listErr: errors.New("store down")}, &mockAnalysis{})

	if _, err := c.Start(context.Background()); err == nil {
		t.Fatal("expected error when holdings snapshot fails")
	}
	if job := c.Status(); job != nil {
		t.Errorf("failed start must not occupy the slot, got %+v", job)
	}
}
