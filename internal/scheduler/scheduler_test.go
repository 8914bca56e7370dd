package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Mwapsam/ubungo-iq/internal/ingest"
	"github.com/Mwapsam/ubungo-iq/internal/models"
)

type mockSourceStore struct {
	mu      sync.Mutex
	sources []models.Source
	updated []models.Source
	listErr error
}

func (m *mockSourceStore) ListSources(ctx context.Context) ([]models.Source, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]models.Source(nil), m.sources...), nil
}

func (m *mockSourceStore) UpdateSourceStatus(ctx context.Context, src models.Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, src)
	return nil
}

func (m *mockSourceStore) lastUpdate(website string) *models.Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.updated) - 1; i >= 0; i-- {
		if m.updated[i].Website == website {
			return &m.updated[i]
		}
	}
	return nil
}

type mockRunner struct {
	mu     sync.Mutex
	ran    []string
	errFor map[string]error
	result *ingest.RunResult
}

func (m *mockRunner) Run(ctx context.Context, source *models.Source) (*ingest.RunResult, error) {
	m.mu.Lock()
	m.ran = append(m.ran, source.Website)
	m.mu.Unlock()
	if err := m.errFor[source.Website]; err != nil {
		return nil, err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &ingest.RunResult{Status: models.RunSuccess, ItemsFound: 5, ItemsNew: 5}, nil
}

func (m *mockRunner) runCount(website string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, w := range m.ran {
		if w == website {
			n++
		}
	}
	return n
}

type mockTrendAnalyzer struct {
	mu       sync.Mutex
	analyzed []string
	err      error
}

func (m *mockTrendAnalyzer) Analyze(ctx context.Context, website string) (int, error) {
	m.mu.Lock()
	m.analyzed = append(m.analyzed, website)
	m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return 2, nil
}

func newTestScheduler(store *mockSourceStore, runner *mockRunner, trends TrendAnalyzer) *Scheduler {
	return New(store, runner, trends, 1, 0, nil)
}

func enabledSource(website string, freqHours int, lastScraped time.Time) models.Source {
	return models.Source{
		Name:                 website,
		Website:              website,
		BaseURL:              "https://example.com",
		Enabled:              true,
		ScrapeFrequencyHours: freqHours,
		LastScraped:          lastScraped,
	}
}

func TestDispatch_DueGating(t *testing.T) {
	now := time.Now()
	store := &mockSourceStore{sources: []models.Source{
		// 25 hours since last run at a 24 hour cadence: due.
		enabledSource("alibaba", 24, now.Add(-25*time.Hour)),
		// 25 hours at a 48 hour cadence: not due.
		enabledSource("etsy", 48, now.Add(-25*time.Hour)),
		// Never scraped: due.
		enabledSource("globaltrade", 24, time.Time{}),
	}}
	runner := &mockRunner{}

	summary, err := newTestScheduler(store, runner, nil).Dispatch(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Considered != 3 || summary.Dispatched != 2 {
		t.Errorf("summary = %+v, want 2 of 3 dispatched", summary)
	}
	if runner.runCount("etsy") != 0 {
		t.Error("etsy was not due and must not run")
	}
	if runner.runCount("alibaba") != 1 || runner.runCount("globaltrade") != 1 {
		t.Errorf("ran = %v", runner.ran)
	}
}

func TestDispatch_SkipsUnhealthySources(t *testing.T) {
	broken := enabledSource("alibaba", 24, time.Time{})
	broken.ConsecutiveFailures = 5
	store := &mockSourceStore{sources: []models.Source{broken}}
	runner := &mockRunner{}

	summary, err := newTestScheduler(store, runner, nil).Dispatch(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Dispatched != 0 || len(runner.ran) != 0 {
		t.Errorf("unhealthy source was dispatched: %+v", summary)
	}
}

func TestDispatch_ForceIgnoresDueAndHealth(t *testing.T) {
	fresh := enabledSource("alibaba", 24, time.Now())
	broken := enabledSource("etsy", 24, time.Now())
	broken.ConsecutiveFailures = 9
	disabled := enabledSource("globaltrade", 24, time.Time{})
	disabled.Enabled = false
	store := &mockSourceStore{sources: []models.Source{fresh, broken, disabled}}
	runner := &mockRunner{}

	summary, err := newTestScheduler(store, runner, nil).Dispatch(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Dispatched != 2 {
		t.Errorf("summary = %+v, want both enabled sources forced", summary)
	}
	if runner.runCount("globaltrade") != 0 {
		t.Error("disabled sources must never run, even forced")
	}
}

func TestDispatch_FailureCounter(t *testing.T) {
	src := enabledSource("alibaba", 24, time.Time{})
	src.ConsecutiveFailures = 2
	store := &mockSourceStore{sources: []models.Source{src}}
	runner := &mockRunner{errFor: map[string]error{"alibaba": errors.New("blocked")}}

	summary, err := newTestScheduler(store, runner, nil).Dispatch(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Failed != 1 {
		t.Errorf("summary = %+v", summary)
	}

	updated := store.lastUpdate("alibaba")
	if updated == nil {
		t.Fatal("source status was never persisted")
	}
	if updated.ConsecutiveFailures != 3 {
		t.Errorf("ConsecutiveFailures = %d, want 3", updated.ConsecutiveFailures)
	}
	if updated.LastScraped.IsZero() {
		t.Error("LastScraped must advance on a failed attempt")
	}
	if !updated.LastSuccess.IsZero() {
		t.Error("LastSuccess must not move on failure")
	}
}

func TestDispatch_SuccessResetsFailures(t *testing.T) {
	src := enabledSource("alibaba", 24, time.Time{})
	src.ConsecutiveFailures = 4
	store := &mockSourceStore{sources: []models.Source{src}}
	runner := &mockRunner{}
	trends := &mockTrendAnalyzer{}

	if _, err := newTestScheduler(store, runner, trends).Dispatch(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	updated := store.lastUpdate("alibaba")
	if updated == nil {
		t.Fatal("source status was never persisted")
	}
	if updated.ConsecutiveFailures != 0 {
		t.Errorf("ConsecutiveFailures = %d, want reset to 0", updated.ConsecutiveFailures)
	}
	if updated.LastSuccess.IsZero() {
		t.Error("LastSuccess must be set on success")
	}
	if len(trends.analyzed) != 1 || trends.analyzed[0] != "alibaba" {
		t.Errorf("trend analysis runs after a successful extraction, got %v", trends.analyzed)
	}
}

func TestDispatch_Retries(t *testing.T) {
	src := enabledSource("alibaba", 24, time.Time{})
	store := &mockSourceStore{sources: []models.Source{src}}
	runner := &mockRunner{errFor: map[string]error{"alibaba": errors.New("timeout")}}

	sched := New(store, runner, nil, 3, 0, nil)
	summary, err := sched.Dispatch(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Failed != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if got := runner.runCount("alibaba"); got != 3 {
		t.Errorf("run attempts = %d, want 3", got)
	}
	// Three attempts are one failure cycle, not three.
	if updated := store.lastUpdate("alibaba"); updated.ConsecutiveFailures != 1 {
		t.Errorf("ConsecutiveFailures = %d, want 1", updated.ConsecutiveFailures)
	}
}

func TestDispatch_TrendFailureIsNonFatal(t *testing.T) {
	src := enabledSource("alibaba", 24, time.Time{})
	store := &mockSourceStore{sources: []models.Source{src}}
	runner := &mockRunner{}
	trends := &mockTrendAnalyzer{err: errors.New("topic store down")}

	summary, err := newTestScheduler(store, runner, trends).Dispatch(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Succeeded != 1 {
		t.Errorf("summary = %+v, trend errors must not fail the run", summary)
	}
}

func TestDispatch_NoTrendsWithoutItems(t *testing.T) {
	src := enabledSource("alibaba", 24, time.Time{})
	store := &mockSourceStore{sources: []models.Source{src}}
	runner := &mockRunner{result: &ingest.RunResult{Status: models.RunSuccess, ItemsFound: 0}}
	trends := &mockTrendAnalyzer{}

	if _, err := newTestScheduler(store, runner, trends).Dispatch(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if len(trends.analyzed) != 0 {
		t.Errorf("no items found, trend analysis should be skipped, got %v", trends.analyzed)
	}
}

func TestDispatch_ListError(t *testing.T) {
	store := &mockSourceStore{listErr: errors.New("store down")}
	if _, err := newTestScheduler(store, &mockRunner{}, nil).Dispatch(context.Background(), false); err == nil {
		t.Fatal("expected an error when sources cannot be listed")
	}
}
