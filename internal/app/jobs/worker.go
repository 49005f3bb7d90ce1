package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler processes one dequeued job and returns the id of the note it
// produced.
type Handler func(ctx context.Context, job *Job) (noteID string, err error)

// Worker drains the queue with a fixed pool of goroutines.
type Worker struct {
	queue   Queue
	handler Handler
	logger  *zap.Logger
	size    int

	wg sync.WaitGroup
}

// NewWorker builds a worker pool. A non-positive size runs a single
// goroutine.
func NewWorker(queue Queue, handler Handler, logger *zap.Logger, size int) *Worker {
	if size <= 0 {
		size = 1
	}
	return &Worker{queue: queue, handler: handler, logger: logger, size: size}
}

// Start launches the pool. It returns immediately; cancel the context and
// call Wait to drain.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.size; i++ {
		w.wg.Add(1)
		go func(slot int) {
			defer w.wg.Done()
			w.run(ctx, slot)
		}(i)
	}
}

// Wait blocks until every goroutine in the pool has exited.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, slot int) {
	logger := w.logger.With(zap.Int("worker", slot))
	logger.Info("worker started")

	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				logger.Info("worker stopping")
				return
			}
			logger.Error("dequeue failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		w.process(ctx, logger, job)
	}
}

func (w *Worker) process(ctx context.Context, logger *zap.Logger, job *Job) {
	logger = logger.With(zap.String("job_id", job.ID))
	logger.Info("processing job",
		zap.String("format", job.Format),
		zap.Int("payload_bytes", len(job.Payload)),
		zap.Duration("queue_latency", time.Since(job.EnqueuedAt)))

	w.setState(ctx, logger, &State{ID: job.ID, Status: StatusProcessing, UpdatedAt: time.Now().UTC()})

	noteID, err := w.handler(ctx, job)
	if err != nil {
		logger.Error("job failed", zap.Error(err))
		w.setState(ctx, logger, &State{
			ID: job.ID, Status: StatusFailed, Error: err.Error(), UpdatedAt: time.Now().UTC(),
		})
		return
	}

	logger.Info("job done", zap.String("note_id", noteID))
	w.setState(ctx, logger, &State{
		ID: job.ID, Status: StatusDone, NoteID: noteID, UpdatedAt: time.Now().UTC(),
	})
}

func (w *Worker) setState(ctx context.Context, logger *zap.Logger, state *State) {
	if err := w.queue.SetState(ctx, state); err != nil {
		logger.Error("failed to record job state", zap.Error(err))
	}
}
