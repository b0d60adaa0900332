// Package importer implements the chunked, rate-limited, partial-failure
// tolerant ingestion pipeline that pushes staged assets into the
// repository.
package importer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"trx/internal/asset"
	"trx/internal/logging"
	"trx/internal/repo"
)

// Destination routes an import run: the session workbench or the
// permanent asset manager.
type Destination string

const (
	DestWorkbench    Destination = "workbench"
	DestAssetManager Destination = "assetManager"
)

// SourceTag maps a destination to the source label stamped on every
// item in the run, overriding any per-item hint.
func (d Destination) SourceTag() asset.Source {
	if d == DestWorkbench {
		return asset.SourceWorkbench
	}
	return asset.SourceImport
}

// Defaults applied in batch mode.
const (
	DefaultBatchSize = 5
	DefaultRateLimit = 100 * time.Millisecond
)

// Options tunes one import run.
type Options struct {
	BatchMode      bool
	BatchSize      int           // items per repository call; DefaultBatchSize when zero
	RateLimit      time.Duration // pause between batches; DefaultRateLimit when zero
	SkipDuplicates bool
}

// Result summarizes a run. ErrorCount > 0 alongside a non-empty NewIDs
// is a normal, reportable outcome, not a failure.
type Result struct {
	ImportID   string  `json:"import_id"`
	NewIDs     []int64 `json:"new_ids"`
	ErrorCount int     `json:"error_count"`
}

// Sleeper abstracts the inter-batch delay so tests run instantly.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration)
}

// RealSleeper waits on the wall clock, waking early on cancellation.
type RealSleeper struct{}

func (RealSleeper) Sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// Coordinator runs imports against a repository, one batch in flight at
// a time. Sequential processing is the backpressure mechanism: the
// repository never sees more than one batch concurrently, and results
// merge strictly in submission order.
type Coordinator struct {
	repo    repo.Repository
	log     logging.Logger
	sleeper Sleeper
}

// New returns a coordinator using the wall clock for rate limiting.
func New(r repo.Repository, log logging.Logger) *Coordinator {
	return &Coordinator{repo: r, log: log, sleeper: RealSleeper{}}
}

// NewWithSleeper returns a coordinator with an injected Sleeper.
func NewWithSleeper(r repo.Repository, log logging.Logger, s Sleeper) *Coordinator {
	return &Coordinator{repo: r, log: log, sleeper: s}
}

// Run imports items toward dest. Items are sliced into ordered,
// contiguous batches; each batch is one repository call. A batch-level
// failure is caught, logged and counted, and the run proceeds to the
// next batch. Between batches (but not after the last) the run pauses
// for the effective rate limit. Cancelling ctx stops the run between
// batches; already-imported ids stay imported and are returned.
func (c *Coordinator) Run(ctx context.Context, items []repo.ImportItem, dest Destination, opts Options) (Result, error) {
	result := Result{ImportID: uuid.New().String()}
	if len(items) == 0 {
		return result, nil
	}

	batchSize := len(items)
	rateLimit := time.Duration(0)
	if opts.BatchMode {
		batchSize = opts.BatchSize
		if batchSize <= 0 {
			batchSize = DefaultBatchSize
		}
		rateLimit = opts.RateLimit
		if rateLimit <= 0 {
			rateLimit = DefaultRateLimit
		}
	}

	source := dest.SourceTag()
	repoOpts := repo.ImportOptions{
		SkipDuplicates: opts.SkipDuplicates,
		Workbench:      dest == DestWorkbench,
	}

	started := time.Now()
	c.log.Info("import run started",
		"import_id", result.ImportID,
		"items", len(items),
		"batch_size", batchSize,
		"source", source)

	batches := sliceBatches(items, batchSize)
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			c.log.Warn("import run cancelled",
				"import_id", result.ImportID,
				"completed_batches", i)
			c.recordRun(result, source, len(items), started, "cancelled")
			return result, err
		}

		res, err := c.repo.ImportBatch(ctx, batch, source, repoOpts)
		if err != nil {
			// A failed batch never aborts the run; its items are
			// counted as errors and the next batch proceeds.
			c.log.Error("batch failed",
				"import_id", result.ImportID,
				"batch", i+1,
				"size", len(batch),
				"error", err)
			result.ErrorCount += len(batch)
		} else {
			result.NewIDs = append(result.NewIDs, res.IDs...)
			result.ErrorCount += len(res.Errors)
			for _, msg := range res.Errors {
				c.log.Warn("item rejected", "import_id", result.ImportID, "reason", msg)
			}
		}

		if rateLimit > 0 && i < len(batches)-1 {
			c.sleeper.Sleep(ctx, rateLimit)
		}
	}

	status := "completed"
	if result.ErrorCount > 0 {
		status = "completed_with_errors"
	}
	c.recordRun(result, source, len(items), started, status)

	c.log.Info("import run finished",
		"import_id", result.ImportID,
		"imported", len(result.NewIDs),
		"errors", result.ErrorCount)
	return result, nil
}

// recordRun persists the audit record. Failure to record never fails
// the run itself.
func (c *Coordinator) recordRun(result Result, source asset.Source, total int, started time.Time, status string) {
	run := repo.ImportRun{
		ImportID:   result.ImportID,
		Source:     source,
		Total:      total,
		Succeeded:  len(result.NewIDs),
		Failed:     result.ErrorCount,
		Status:     status,
		StartedAt:  started,
		DurationMS: time.Since(started).Milliseconds(),
	}
	if err := c.repo.RecordImportRun(context.Background(), run); err != nil {
		c.log.Warn("recording import run failed", "import_id", result.ImportID, "error", err)
	}
}

// sliceBatches splits items into contiguous, non-overlapping slices of
// size; the final batch may be shorter.
func sliceBatches(items []repo.ImportItem, size int) [][]repo.ImportItem {
	var batches [][]repo.ImportItem
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
