package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Mwapsam/ubungo-iq/internal/ingest"
	"github.com/Mwapsam/ubungo-iq/internal/models"
	"github.com/Mwapsam/ubungo-iq/internal/util"
)

// maxConcurrentRuns bounds simultaneous extractions. Two is plenty: the
// browser-rendered sources are memory heavy and every source already rate
// limits its own requests.
const maxConcurrentRuns = 2

// SourceStore lists configured marketplaces and persists their run status.
type SourceStore interface {
	ListSources(ctx context.Context) ([]models.Source, error)
	UpdateSourceStatus(ctx context.Context, src models.Source) error
}

// Runner executes one extraction pass. *ingest.Engine satisfies it.
type Runner interface {
	Run(ctx context.Context, source *models.Source) (*ingest.RunResult, error)
}

// TrendAnalyzer recomputes trending topics after fresh data lands.
// *trends.Aggregator satisfies it.
type TrendAnalyzer interface {
	Analyze(ctx context.Context, website string) (int, error)
}

// Scheduler decides which sources run, retries transient failures, and keeps
// per-source health counters current.
type Scheduler struct {
	sources SourceStore
	runner  Runner
	trends  TrendAnalyzer
	logger  *slog.Logger

	retryAttempts int
	retryDelay    time.Duration
	now           func() time.Time
}

func New(sources SourceStore, runner Runner, trends TrendAnalyzer, retryAttempts int, retryDelay time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &Scheduler{
		sources:       sources,
		runner:        runner,
		trends:        trends,
		logger:        logger,
		retryAttempts: retryAttempts,
		retryDelay:    retryDelay,
		now:           time.Now,
	}
}

// DispatchSummary reports one scheduling pass.
type DispatchSummary struct {
	Considered int `json:"considered"`
	Dispatched int `json:"dispatched"`
	Succeeded  int `json:"succeeded"`
	Failed     int `json:"failed"`
}

// Dispatch runs every source that is due and healthy. With force set, due
// and health gating is skipped for enabled sources, which backs the manual
// trigger endpoint. Individual source failures are recorded on the source,
// not returned: a pass only errors when the source list itself is
// unreadable.
func (s *Scheduler) Dispatch(ctx context.Context, force bool) (*DispatchSummary, error) {
	sources, err := s.sources.ListSources(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	summary := &DispatchSummary{Considered: len(sources)}
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentRuns)

	for i := range sources {
		src := sources[i]
		if force {
			if !src.Enabled {
				continue
			}
		} else if !src.IsDue(now) || !src.IsHealthy() {
			continue
		}

		summary.Dispatched++
		group.Go(func() error {
			ok := s.runSource(groupCtx, &src)
			mu.Lock()
			if ok {
				summary.Succeeded++
			} else {
				summary.Failed++
			}
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return summary, err
	}

	s.logger.Info("dispatch pass complete",
		"considered", summary.Considered,
		"dispatched", summary.Dispatched,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed)
	return summary, nil
}

// runSource executes one source with retries and persists the outcome on the
// source's status fields. LastScraped moves on every attempt cycle, success
// or not, so due-ness reflects the attempt rather than the outcome.
func (s *Scheduler) runSource(ctx context.Context, src *models.Source) bool {
	var result *ingest.RunResult
	err := util.RetryFixed(ctx, s.retryAttempts, s.retryDelay, func(attempt int) error {
		if attempt > 1 {
			s.logger.Info("retrying extraction", "website", src.Website, "attempt", attempt)
		}
		var runErr error
		result, runErr = s.runner.Run(ctx, src)
		return runErr
	})

	now := s.now()
	src.LastScraped = now
	if err != nil {
		src.ConsecutiveFailures++
		s.logger.Error("extraction failed", "website", src.Website, "failures", src.ConsecutiveFailures, "error", err)
	} else {
		src.LastSuccess = now
		src.ConsecutiveFailures = 0
	}
	if updateErr := s.sources.UpdateSourceStatus(ctx, *src); updateErr != nil {
		s.logger.Warn("failed to persist source status", "website", src.Website, "error", updateErr)
	}
	if err != nil {
		return false
	}

	if s.trends != nil && result != nil && result.ItemsFound > 0 {
		if topics, trendErr := s.trends.Analyze(ctx, src.Website); trendErr != nil {
			s.logger.Warn("trend analysis failed", "website", src.Website, "error", trendErr)
		} else {
			s.logger.Info("trend analysis complete", "website", src.Website, "topics", topics)
		}
	}
	return true
}
