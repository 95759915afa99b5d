package sweepqueue

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/taskstore"
)

// jobSource abstracts Queue.Pop for the worker.
type jobSource interface {
	Pop(ctx context.Context) (Job, error)
}

// Worker drains the sweep queue into the task store. It never retries: a
// failed or conflicting write is logged and dropped, because the sweep is
// idempotent and the next load rebuilds the same transition.
type Worker struct {
	source jobSource
	store  taskstore.Store

	idleDelay  time.Duration
	errorDelay time.Duration
}

func NewWorker(queue *Queue, store taskstore.Store) *Worker {
	return &Worker{
		source:     queue,
		store:      store,
		idleDelay:  500 * time.Millisecond,
		errorDelay: time.Second,
	}
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	log.Printf("sweep worker started")
	for {
		if ctx.Err() != nil {
			log.Printf("sweep worker stopped")
			return
		}
		job, err := w.source.Pop(ctx)
		if errors.Is(err, redis.Nil) {
			w.sleep(ctx, w.idleDelay)
			continue
		}
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("sweep worker: pop: %v", err)
			}
			w.sleep(ctx, w.errorDelay)
			continue
		}
		w.persist(ctx, job)
	}
}

func (w *Worker) persist(ctx context.Context, job Job) {
	_, err := w.store.UpdateTaskStatus(ctx, job.TaskID, job.From, job.Status, nil)
	switch {
	case err == nil:
	case errors.Is(err, taskstore.ErrConflict):
		// The task moved on since the sweep; the local view was already
		// correct or will be re-derived. Nothing to do.
		log.Printf("sweep worker: task %s already past %s", job.TaskID, job.From)
	case errors.Is(err, taskstore.ErrNotFound):
		log.Printf("sweep worker: task %s vanished upstream", job.TaskID)
	default:
		log.Printf("sweep worker: persist task %s -> %s: %v", job.TaskID, job.Status, err)
	}
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
