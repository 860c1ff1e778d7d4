// =======================
// engine/engine.go
// =======================

// Package engine drives batches of generated inputs through a hash strategy,
// buckets the results and renders the distribution.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	metrics "github.com/armon/go-metrics"
	hclog "github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"hashviz/generator"
	"hashviz/hashmod"
	"hashviz/render"
)

const eventBuffer = 64

// Engine runs one computation at a time. Its lifecycle is
// idle -> running -> completed, cancelled or failed; Reset returns a
// finished engine to idle.
type Engine struct {
	logger hclog.Logger
	events *dispatcher

	mu              sync.Mutex
	state           State
	cancel          context.CancelFunc
	cancelRequested bool
	finishing       bool
	done            chan struct{}
	processed       uint64
	results         []hashmod.Result
}

// New returns an idle Engine.
func New(logger hclog.Logger) *Engine {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Engine{
		logger: logger.Named("engine"),
		events: newDispatcher(eventBuffer),
		state:  StateIdle,
	}
}

// Events is the channel every notification is delivered on. It is closed by
// Close.
func (e *Engine) Events() <-chan Event { return e.events.out }

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Processed returns the number of inputs hashed by the current or last run.
func (e *Engine) Processed() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.processed
}

// Results returns the results of the last completed run. Cancelled and
// failed runs leave nothing behind.
func (e *Engine) Results() []hashmod.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]hashmod.Result, len(e.results))
	copy(out, e.results)
	return out
}

// PerformComputations validates cfg and starts a run in the background. It
// only succeeds from the idle state.
func (e *Engine) PerformComputations(ctx context.Context, cfg RunConfiguration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle {
		return fmt.Errorf("cannot perform computations while %s: %w", e.state, ErrInvalidState)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid run configuration: %w", err)
	}

	strategy, err := hashmod.New(cfg.Algorithm, cfg.HashTableLength)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.state = StateRunning
	e.cancel = cancel
	e.cancelRequested = false
	e.finishing = false
	e.done = make(chan struct{})
	e.processed = 0
	e.results = nil
	e.events.reset()

	e.logger.Info("starting computations",
		"algorithm", strategy.Title(), "mechanism", cfg.Mechanism,
		"queue_size", cfg.QueueSize, "table_length", cfg.HashTableLength)

	go e.run(runCtx, cfg, strategy, e.done)
	return nil
}

// CancelComputations asks a running computation to stop. Work already in
// progress drains, partial results are dropped and a single
// EventTasksDidCancel is sent. It does not wait for the run to stop.
func (e *Engine) CancelComputations() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return fmt.Errorf("cannot cancel computations while %s: %w", e.state, ErrInvalidState)
	}
	if e.cancelRequested {
		return fmt.Errorf("cancellation already requested: %w", ErrInvalidState)
	}
	if e.finishing {
		return fmt.Errorf("computations already finishing: %w", ErrInvalidState)
	}

	e.logger.Info("cancelling computations")
	e.cancelRequested = true
	e.cancel()
	return nil
}

// Wait blocks until the current run has sent its final event. It returns
// immediately if no run was started.
func (e *Engine) Wait() {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Reset returns a finished engine to idle.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.state == StateIdle:
		return nil
	case !e.state.Terminal():
		return fmt.Errorf("cannot reset while %s: %w", e.state, ErrInvalidState)
	}

	e.state = StateIdle
	return nil
}

// Close cancels any run and stops event delivery.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.state == StateRunning && e.cancel != nil {
		e.cancelRequested = true
		e.cancel()
	}
	e.mu.Unlock()

	e.Wait()
	e.events.close()
}

func (e *Engine) run(ctx context.Context, cfg RunConfiguration, strategy hashmod.Strategy, done chan struct{}) {
	defer close(done)

	start := time.Now()
	table := NewBucketTable(cfg.HashTableLength)

	err := e.compute(ctx, cfg, strategy, table)

	// Once the outcome is decided the run can no longer be cancelled.
	e.mu.Lock()
	cancelled := e.cancelRequested || ctx.Err() != nil
	e.finishing = true
	e.cancel()
	e.mu.Unlock()

	summary := Summary{
		Stats:     table.Stats(),
		Algorithm: strategy.Title(),
		Mechanism: cfg.Mechanism.String(),
		Elapsed:   time.Since(start),
	}

	var (
		outcome State
		results []hashmod.Result
	)
	switch {
	case cancelled:
		outcome = StateCancelled
		e.logger.Info("computations cancelled", "processed", summary.Inputs)
	case err != nil:
		outcome = StateFailed
		summary.Err = err
		e.logger.Error("computations failed", "processed", summary.Inputs, "error", err)
	default:
		outcome = StateCompleted
		results = table.Results()
		hashImg, bucketImg := render.Render(results, table.Len(), cfg.renderOptions())
		e.events.push(Event{Kind: EventUpdateHashImage, Image: hashImg})
		e.events.push(Event{Kind: EventUpdateBucketImage, Image: bucketImg})
		e.logger.Info("computations completed",
			"processed", summary.Inputs, "distinct", summary.DistinctHashes,
			"elapsed", summary.Elapsed)
	}

	labels := []metrics.Label{
		{Name: "algorithm", Value: cfg.Algorithm.String()},
		{Name: "outcome", Value: outcome.String()},
	}
	metrics.IncrCounterWithLabels([]string{"engine", "runs"}, 1, labels)
	metrics.MeasureSinceWithLabels([]string{"engine", "run_ms"}, start, labels)

	e.mu.Lock()
	e.state = outcome
	e.results = results
	e.mu.Unlock()

	if outcome == StateCancelled {
		e.events.push(Event{Kind: EventTasksDidCancel})
		return
	}
	e.events.push(Event{Kind: EventTasksDidEnd, Summary: summary.String(), Err: summary.Err})
}

// compute feeds the generator through the strategy with cfg.QueueSize
// workers. A single producer pulls inputs so generators need not be safe
// for concurrent use.
func (e *Engine) compute(ctx context.Context, cfg RunConfiguration, strategy hashmod.Strategy, table *BucketTable) error {
	gen, err := generator.New(cfg.generatorConfig())
	if err != nil {
		return err
	}
	defer func() {
		if err := gen.Close(); err != nil {
			e.logger.Warn("failed to close generator", "error", err)
		}
	}()

	inputs := make(chan hashmod.Components, cfg.QueueSize)
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(inputs)
		for {
			if gCtx.Err() != nil {
				return nil
			}

			c, err := gen.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}

			select {
			case inputs <- c:
			case <-gCtx.Done():
				return nil
			}
		}
	})

	for i := 0; i < cfg.QueueSize; i++ {
		logger := e.logger.Named("worker").With("worker_id", i)
		g.Go(func() error {
			logger.Trace("starting worker")
			defer logger.Trace("stopping worker")

			for c := range inputs {
				if gCtx.Err() != nil {
					return nil
				}
				if err := e.process(strategy, table, c); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return g.Wait()
}

func (e *Engine) process(strategy hashmod.Strategy, table *BucketTable, c hashmod.Components) error {
	hash, err := strategy.HashForComponents(c)
	if err != nil {
		return err
	}

	n, err := table.Add(hashmod.Result{
		Hash:   hash,
		Bucket: strategy.BucketIndexForHash(hash),
		Source: c,
	})
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.processed = max(e.processed, n)
	e.mu.Unlock()

	metrics.IncrCounter([]string{"engine", "inputs"}, 1)
	e.events.push(Event{Kind: EventIncrementHashCount, Count: 1})
	e.events.push(Event{Kind: EventNumberOfInputsChanged, Count: n})
	return nil
}
