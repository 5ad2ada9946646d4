package runtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/tcmartin/promptflow/pkg/graph"
	"github.com/tcmartin/promptflow/pkg/logging"
	"github.com/tcmartin/promptflow/pkg/plan"
)

// BatchRunner drives the execution engine once per row of an input variable
// table. Rows run with bounded concurrency to respect downstream provider
// rate limits; each worker owns its run's scope and records, so no run
// state is shared. Results land in index-addressed slots so the returned
// order always matches the input row order.
type BatchRunner struct {
	engine  *Engine
	workers int
	logger  logging.Logger
}

// NewBatchRunner creates a batch runner with the given worker count.
// Counts below one fall back to a single worker.
func NewBatchRunner(engine *Engine, workers int, logger logging.Logger) *BatchRunner {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &BatchRunner{engine: engine, workers: workers, logger: logger}
}

// RunBatch executes the graph once per row. Structural problems are
// returned before any row runs; after that, one row's failure or
// cancellation never aborts the remaining rows. Cancellation is checked
// between rows: rows not yet started receive a row-level error.
func (b *BatchRunner) RunBatch(ctx context.Context, g *graph.FlowGraph, rows []map[string]any) (*BatchExecutionResult, error) {
	// Structural pre-flight once, before any row is dispatched. The engine
	// revalidates per run, but a malformed graph should fail the batch
	// up front rather than once per row.
	if report := graph.Validate(g); !report.Valid() {
		return nil, report
	}
	if _, err := plan.Plan(g); err != nil {
		return nil, err
	}

	batchID := uuid.New().String()
	b.logger.Info("batch started",
		logging.F("batch_id", batchID),
		logging.F("flow_id", g.ID),
		logging.F("rows", len(rows)),
		logging.F("workers", b.workers))

	// Pre-sized, index-addressed result slots: workers write only their own
	// row's slot, preserving input order without a lock.
	results := make([]RowResult, len(rows))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := b.engine.Run(ctx, g, rows[i])
				results[i] = RowResult{Row: i, Result: res, Err: err}
			}
		}()
	}

	dispatched := 0
	for i := range rows {
		select {
		case <-ctx.Done():
		case jobs <- i:
			dispatched++
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	// Rows never dispatched carry the cancellation as a row-level error.
	for i := dispatched; i < len(rows); i++ {
		results[i] = RowResult{Row: i, Err: ctx.Err()}
	}

	batch := &BatchExecutionResult{
		BatchID: batchID,
		FlowID:  g.ID,
		Rows:    results,
	}
	for i := range results {
		if results[i].Err == nil && results[i].Result != nil && results[i].Result.Status == RunCompleted {
			batch.Successes++
		} else {
			batch.Failures++
		}
	}

	b.logger.Info("batch finished",
		logging.F("batch_id", batchID),
		logging.F("successes", batch.Successes),
		logging.F("failures", batch.Failures))

	return batch, nil
}
