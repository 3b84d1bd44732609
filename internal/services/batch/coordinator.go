// Package batch runs the news analyzer across all holdings as a single
// background job.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dpetrov/folio/internal/clients"
	"github.com/dpetrov/folio/internal/common"
	"github.com/dpetrov/folio/internal/interfaces"
	"github.com/dpetrov/folio/internal/models"
)

// ErrAlreadyRunning is returned by Start when a job is pending or running.
var ErrAlreadyRunning = errors.New("a batch analysis job is already running")

// DefaultTickerTimeout bounds one per-ticker analysis call.
const DefaultTickerTimeout = 2 * time.Minute

// Coordinator owns the single batch-job slot. Only the run loop mutates
// progress fields; Status readers get a copy and tolerate slightly stale
// counters. The slot is in-memory only and resets on restart.
type Coordinator struct {
	portfolio interfaces.PortfolioService
	analysis  interfaces.AnalysisService
	logger    *common.Logger

	tickerTimeout time.Duration

	mu  sync.Mutex
	job *models.BatchJob
	wg  sync.WaitGroup
}

// CoordinatorOption configures the coordinator.
type CoordinatorOption func(*Coordinator)

// WithTickerTimeout bounds each per-ticker analysis call.
func WithTickerTimeout(timeout time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if timeout > 0 {
			c.tickerTimeout = timeout
		}
	}
}

// NewCoordinator creates a new batch coordinator.
func NewCoordinator(portfolio interfaces.PortfolioService, analysis interfaces.AnalysisService, logger *common.Logger, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		portfolio:     portfolio,
		analysis:      analysis,
		logger:        logger,
		tickerTimeout: DefaultTickerTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start snapshots the current holdings and launches the run loop in the
// background, returning the new job immediately. A second Start while a job
// is pending or running is rejected, not queued.
func (c *Coordinator) Start(ctx context.Context) (*models.BatchJob, error) {
	holdings, _, err := c.portfolio.List(ctx, models.HoldingFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot holdings: %w", err)
	}
	tickers := make([]string, 0, len(holdings))
	for _, h := range holdings {
		tickers = append(tickers, h.Ticker)
	}

	c.mu.Lock()
	if c.job != nil && c.job.IsActive() {
		c.mu.Unlock()
		return nil, ErrAlreadyRunning
	}

	job := &models.BatchJob{
		ID:            uuid.New().String(),
		Status:        models.BatchStatusPending,
		TotalHoldings: len(tickers),
		StartedAt:     time.Now(),
	}
	c.job = job
	c.mu.Unlock()

	c.safeGo(func() { c.run(tickers) })

	c.logger.Info().
		Str("job_id", job.ID).
		Int("total", job.TotalHoldings).
		Msg("Batch analysis started")

	return c.snapshotJob(), nil
}

// Status returns a copy of the current job, or nil when no job has been
// started since process start.
func (c *Coordinator) Status() *models.BatchJob {
	return c.snapshotJob()
}

// Wait blocks until the active run loop finishes. Used in tests and during
// shutdown.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) snapshotJob() *models.BatchJob {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.job == nil {
		return nil
	}
	copied := *c.job
	return &copied
}

// run processes the ticker snapshot sequentially. One ticker per call keeps
// the completion provider within its per-caller rate limit; a rate-limit
// rejection fails the remainder in bulk instead of spinning against it.
func (c *Coordinator) run(tickers []string) {
	c.update(func(job *models.BatchJob) {
		job.Status = models.BatchStatusRunning
	})

	for i, ticker := range tickers {
		err := c.analyzeOne(ticker)

		if err != nil && errors.Is(err, clients.ErrRateLimited) {
			remaining := len(tickers) - i
			c.update(func(job *models.BatchJob) {
				job.FailedHoldings += remaining
				job.ProcessedHoldings = job.TotalHoldings
				job.ProgressPct = job.Progress()
				job.Status = models.BatchStatusFailed
				job.Error = "completion provider rate limit exceeded"
				job.FinishedAt = time.Now()
			})
			c.logger.Warn().
				Str("ticker", ticker).
				Int("remaining", remaining).
				Msg("Batch halted on rate limit")
			return
		}

		c.update(func(job *models.BatchJob) {
			if err != nil {
				job.FailedHoldings++
			} else {
				job.SuccessfulHoldings++
			}
			job.ProcessedHoldings++
			job.ProgressPct = job.Progress()
		})

		if err != nil {
			c.logger.Warn().Err(err).Str("ticker", ticker).Msg("Batch analysis failed for ticker")
		}
	}

	c.update(func(job *models.BatchJob) {
		job.Status = models.BatchStatusCompleted
		job.FinishedAt = time.Now()
	})

	final := c.snapshotJob()
	c.logger.Info().
		Str("job_id", final.ID).
		Int("successful", final.SuccessfulHoldings).
		Int("failed", final.FailedHoldings).
		Msg("Batch analysis completed")
}

// analyzeOne bounds a single analysis call so one stuck ticker cannot stall
// the whole batch.
func (c *Coordinator) analyzeOne(ticker string) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.tickerTimeout)
	defer cancel()
	_, err := c.analysis.Analyze(ctx, ticker)
	return err
}

func (c *Coordinator) update(fn func(*models.BatchJob)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.job != nil {
		fn(c.job)
	}
}

// safeGo launches a goroutine with panic recovery and logging. A panicking
// run loop marks the job failed so the slot does not stay stuck active.
func (c *Coordinator) safeGo(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error().
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic in batch run loop")
				c.update(func(job *models.BatchJob) {
					if job.IsActive() {
						job.Status = models.BatchStatusFailed
						job.Error = fmt.Sprintf("panic: %v", r)
						job.FinishedAt = time.Now()
					}
				})
			}
		}()
		fn()
	}()
}

// Ensure Coordinator implements BatchCoordinator
var _ interfaces.BatchCoordinator = (*Coordinator)(nil)
