// Package runqueue bounds how many scheduler searches run at once using a
// fixed-size worker-slot pool. A run is a single long-lived computation the
// caller wants to cancel or wait on directly, not a retryable background
// task: there is no retry, no payload queue depth beyond the worker count,
// and every submission gets its own cancellation handle.
package runqueue

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/schedulengine/internal/domain"
	"github.com/noah-isme/schedulengine/internal/scheduler"
)

// Request is one scheduling run's input.
type Request struct {
	Classes []*domain.Class
	Config  scheduler.Config
}

// RunQueue bounds concurrent scheduler runs to a fixed worker count.
type RunQueue struct {
	slots      chan struct{}
	submitWait time.Duration
	logger     *zap.Logger
	metrics    *scheduler.Metrics
}

// New builds a RunQueue admitting at most workers concurrent runs.
// submitWait bounds how long Submit will wait for a free worker slot before
// giving up with an error; 0 means wait only as long as the caller's ctx
// allows. It never bounds a run once admitted — that is ctx's job.
func New(workers int, submitWait time.Duration, logger *zap.Logger, metrics *scheduler.Metrics) *RunQueue {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunQueue{
		slots:      make(chan struct{}, workers),
		submitWait: submitWait,
		logger:     logger,
		metrics:    metrics,
	}
}

// RunHandle tracks one submitted run.
type RunHandle struct {
	done   chan struct{}
	cancel context.CancelFunc
	once   sync.Once

	result *scheduler.Result
	err    error
}

// Cancel requests the run stop at its next cooperative checkpoint. Safe
// to call more than once and safe to call after the run has finished.
func (h *RunHandle) Cancel() {
	h.once.Do(h.cancel)
}

// Wait blocks until the run finishes or ctx is done, whichever comes
// first. A ctx.Done() here does not cancel the run itself — call Cancel
// for that — it only stops this particular Wait from blocking.
func (h *RunHandle) Wait(ctx context.Context) (*scheduler.Result, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Submit waits for a free worker slot — bounded by q.submitWait, or by ctx
// alone if submitWait is 0 — then starts the run in its own goroutine under
// ctx and returns immediately with a handle. The admission wait and the
// run's lifetime are deliberately distinct: submitWait exists so a caller
// doesn't queue forever behind a full pool, but once a run is admitted it
// must keep running for as long as ctx allows, not just until the (usually
// much shorter) admission deadline passes. Canceling ctx at any point ends
// the run; canceling only an admission deadline derived from it does not.
func (q *RunQueue) Submit(ctx context.Context, req Request) (*RunHandle, error) {
	admitCtx := ctx
	if q.submitWait > 0 {
		var cancelAdmit context.CancelFunc
		admitCtx, cancelAdmit = context.WithTimeout(ctx, q.submitWait)
		defer cancelAdmit()
	}

	select {
	case q.slots <- struct{}{}:
	case <-admitCtx.Done():
		return nil, admitCtx.Err()
	}

	runCtx, cancel := context.WithCancel(ctx)
	handle := &RunHandle{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer func() { <-q.slots }()
		defer close(handle.done)
		defer cancel()

		start := time.Now()
		s := scheduler.New(req.Classes, req.Config, q.logger, q.metrics)
		result, err := s.Generate(runCtx)
		handle.result, handle.err = result, err

		outcome := "ok"
		var invErr error
		switch {
		case err != nil && runCtx.Err() != nil:
			outcome = "canceled"
		case err != nil:
			outcome = "invariant_violation"
			invErr = err
		case result != nil:
			if invErr = scheduler.ValidateInvariants(result.Timetable, req.Classes); invErr != nil {
				outcome = "invariant_violation"
			}
		}
		q.metrics.ObserveRun(outcome, time.Since(start).Seconds())
		if invErr != nil {
			q.logger.Sugar().Errorw("run finished with a broken invariant", "outcome", outcome, "error", invErr, "duration", time.Since(start))
			return
		}
		q.logger.Sugar().Infow("run finished", "outcome", outcome, "duration", time.Since(start))
	}()

	return handle, nil
}
