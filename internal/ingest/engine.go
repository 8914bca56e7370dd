package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Mwapsam/ubungo-iq/internal/models"
	"github.com/Mwapsam/ubungo-iq/internal/scraper"
)

// Engine runs one extraction pass per source: adapter output is validated,
// upserted by stable identity, and the run is recorded as an extraction log.
type Engine struct {
	store          ItemStore
	logs           LogStore
	registry       *scraper.Registry
	validate       Validator
	maxStoredItems int
}

func New(store ItemStore, logs LogStore, registry *scraper.Registry, validate Validator, maxStoredItems int) *Engine {
	return &Engine{
		store:          store,
		logs:           logs,
		registry:       registry,
		validate:       validate,
		maxStoredItems: maxStoredItems,
	}
}

// RunResult summarizes one extraction run.
type RunResult struct {
	Status       string
	ItemsFound   int
	ItemsNew     int
	ItemsUpdated int
	ItemsFailed  int
	Duration     time.Duration
}

// Run extracts the source's listings and persists them. The extraction log
// is written up front with a started status and finalized whatever happens,
// so an operator can see a run that died mid-flight.
func (e *Engine) Run(ctx context.Context, source *models.Source) (*RunResult, error) {
	startedAt := time.Now()

	runLog := models.ExtractionLog{
		SourceWebsite: source.Website,
		Status:        models.RunStarted,
		StartedAt:     startedAt,
	}
	logID, err := e.logs.CreateExtractionLog(ctx, runLog)
	if err != nil {
		slog.Warn("Failed to create extraction log", "website", source.Website, "error", err)
	}
	runLog.ID = logID

	adapter, err := e.registry.ForWebsite(source.Website)
	if err != nil {
		e.finalizeLog(ctx, &runLog, models.RunFailed, nil, startedAt, err)
		return nil, err
	}

	extracted, err := adapter.Extract(ctx, source)
	if err != nil {
		e.finalizeLog(ctx, &runLog, models.RunFailed, nil, startedAt, err)
		return nil, fmt.Errorf("extraction failed for %s: %w", source.Website, err)
	}

	result := &RunResult{ItemsFound: len(extracted.Items)}
	result.ItemsFailed = len(extracted.Errors)

	var errorMessages []string
	errorMessages = append(errorMessages, extracted.Errors...)

	for i := range extracted.Items {
		item := &extracted.Items[i]
		created, err := e.upsertItem(ctx, source, item)
		if err != nil {
			result.ItemsFailed++
			errorMessages = append(errorMessages, fmt.Sprintf("%s: %v", item.ExternalID, err))
			continue
		}
		if created {
			result.ItemsNew++
		} else {
			result.ItemsUpdated++
		}
	}

	if result.ItemsNew > 0 && e.maxStoredItems > 0 {
		if err := e.store.TrimOldItems(ctx, e.maxStoredItems); err != nil {
			slog.Warn("Failed to trim old items", "error", err)
		}
	}

	result.Status = models.RunSuccess
	if result.ItemsFailed > 0 {
		result.Status = models.RunPartial
	}
	result.Duration = time.Since(startedAt)

	runLog.ItemsFound = result.ItemsFound
	runLog.ItemsNew = result.ItemsNew
	runLog.ItemsUpdated = result.ItemsUpdated
	runLog.ItemsFailed = result.ItemsFailed
	var runErr error
	if len(errorMessages) > 0 {
		runErr = errors.New(strings.Join(errorMessages, "; "))
	}
	e.finalizeLog(ctx, &runLog, result.Status, result, startedAt, runErr)

	slog.Info("Extraction run finished",
		"website", source.Website,
		"status", result.Status,
		"found", result.ItemsFound,
		"new", result.ItemsNew,
		"updated", result.ItemsUpdated,
		"failed", result.ItemsFailed)

	return result, nil
}

func (e *Engine) upsertItem(ctx context.Context, source *models.Source, in *models.NormalizedItem) (created bool, err error) {
	if err := e.validate.ValidateStruct(*in); err != nil {
		return false, err
	}

	now := time.Now()
	docID := models.ItemDocID(source.Website, in.ExternalID)

	existing, err := e.store.GetItem(ctx, docID)
	if err != nil {
		return false, fmt.Errorf("failed to read item %s: %w", docID, err)
	}

	if existing == nil {
		item := newItem(source, in, now)
		createErr := e.store.TryCreateItem(ctx, item)
		if createErr == nil {
			return true, nil
		}
		// Another worker created it between the read and the write.
		if !errors.Is(createErr, models.ErrItemExists) {
			return false, fmt.Errorf("failed to create item %s: %w", docID, createErr)
		}
		existing, err = e.store.GetItem(ctx, docID)
		if err != nil {
			return false, fmt.Errorf("error recovering from create race for %s: %w", docID, err)
		}
		if existing == nil {
			return false, fmt.Errorf("item %s claimed to exist but could not be read", docID)
		}
	}

	applyUpdate(existing, in, now)
	if err := e.store.UpdateItem(ctx, *existing); err != nil {
		return false, fmt.Errorf("failed to update item %s: %w", docID, err)
	}
	return false, nil
}

func (e *Engine) finalizeLog(ctx context.Context, runLog *models.ExtractionLog, status string, result *RunResult, startedAt time.Time, runErr error) {
	if runLog.ID == "" {
		return
	}
	runLog.Status = status
	runLog.CompletedAt = time.Now()
	runLog.DurationSeconds = int(time.Since(startedAt).Seconds())
	if runErr != nil {
		runLog.ErrorMessage = runErr.Error()
	}
	if err := e.logs.UpdateExtractionLog(ctx, *runLog); err != nil {
		slog.Warn("Failed to finalize extraction log", "id", runLog.ID, "error", err)
	}
}
