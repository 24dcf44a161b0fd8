package tasks

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/apikit/internal/metrics"
)

// Results recorded in metrics.TasksProcessed.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultUnknown = "unknown"
)

// Worker drains a Queue with a fixed number of goroutines.
type Worker struct {
	queue       Queue
	registry    *Registry
	concurrency int
}

// NewWorker returns a Worker.  concurrency < 1 means one goroutine.
func NewWorker(q Queue, reg *Registry, concurrency int) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{queue: q, registry: reg, concurrency: concurrency}
}

// Run blocks until ctx is done or the queue's channel closes.  Task failures
// never stop the worker; only a Consume error is returned.
func (w *Worker) Run(ctx context.Context) error {
	msgs, err := w.queue.Consume(ctx)
	if err != nil {
		return err
	}
	zap.L().Info("worker started",
		zap.Int("concurrency", w.concurrency),
		zap.Strings("tasks", w.registry.Names()))

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case m, ok := <-msgs:
					if !ok {
						return nil
					}
					w.handle(ctx, m)
				}
			}
		})
	}
	err = g.Wait()
	zap.L().Info("worker stopped")
	return err
}

// handle runs one message and always acks it.
func (w *Worker) handle(ctx context.Context, m Message) {
	defer func() {
		if err := m.Ack(); err != nil {
			zap.L().Warn("task ack failed", zap.String("task_id", m.ID), zap.Error(err))
		}
	}()

	log := zap.L().With(zap.String("task", m.Name), zap.String("task_id", m.ID))
	t, ok := w.registry.Lookup(m.Name)
	if !ok {
		log.Warn("unknown task")
		metrics.TasksProcessed.WithLabelValues(m.Name, ResultUnknown).Inc()
		return
	}

	start := time.Now()
	if err := run(ctx, t, m.Args); err != nil {
		log.Error("task failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		metrics.TasksProcessed.WithLabelValues(m.Name, ResultError).Inc()
		return
	}
	log.Info("task done", zap.Duration("took", time.Since(start)))
	metrics.TasksProcessed.WithLabelValues(m.Name, ResultOK).Inc()
}

func run(ctx context.Context, t Task, args Args) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return t(ctx, args)
}
