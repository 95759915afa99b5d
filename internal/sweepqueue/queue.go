package sweepqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/model"
)

const queueKey = "tasks:status_sync"

// Job is one deferred status write. The sweep produces these instead of
// blocking a load on the store; the drain worker replays them.
type Job struct {
	ID       string           `json:"id"`
	TaskID   string           `json:"task_id"`
	From     model.TaskStatus `json:"from"`
	Status   model.TaskStatus `json:"status"`
	QueuedAt time.Time        `json:"queued_at"`
}

// Queue is the redis list carrying sweep persistence jobs.
type Queue struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb}
}

// EnqueueStatusChange pushes a persistence job. Enqueueing never blocks on
// the task store; callers treat a failure here as contained (the next load
// re-derives the status anyway).
func (q *Queue) EnqueueStatusChange(taskID string, from, to model.TaskStatus) error {
	job := Job{
		ID:       uuid.New().String(),
		TaskID:   taskID,
		From:     from,
		Status:   to,
		QueuedAt: time.Now(),
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal sweep job: %w", err)
	}
	if err := q.rdb.LPush(context.Background(), queueKey, data).Err(); err != nil {
		return fmt.Errorf("enqueue sweep job: %w", err)
	}
	return nil
}

// Pop removes and decodes the oldest job. Returns redis.Nil when the queue
// is empty.
func (q *Queue) Pop(ctx context.Context) (Job, error) {
	data, err := q.rdb.RPop(ctx, queueKey).Result()
	if err != nil {
		return Job{}, err
	}
	var job Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return Job{}, fmt.Errorf("decode sweep job: %w", err)
	}
	return job, nil
}

// Len reports the number of pending jobs.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, queueKey).Result()
}
