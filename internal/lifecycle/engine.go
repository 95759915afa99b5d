package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/clinic"
	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/model"
	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/taskstore"
)

var (
	// ErrInvalidTransition means the target status is not reachable from the
	// task's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrPermissionDenied means the actor is not the leader of the task's
	// owning team.
	ErrPermissionDenied = errors.New("actor may not mutate this task")
)

// Guard is the mutation permission check, satisfied by permission.Guard.
type Guard interface {
	CanActorMutate(ctx context.Context, task model.Task, actor model.Actor) bool
}

// ScheduleWriter cancels linked vaccination schedules, satisfied by
// clinic.Client.
type ScheduleWriter interface {
	UpdateVaccinationSchedule(ctx context.Context, id string, patch clinic.SchedulePatch) (model.VaccinationSchedule, error)
}

// SweepQueue accepts fire-and-forget status persistence jobs, satisfied by
// sweepqueue.Queue.
type SweepQueue interface {
	EnqueueStatusChange(taskID string, from, to model.TaskStatus) error
}

// Engine validates and executes status transitions and runs the staleness
// sweep.
type Engine struct {
	store  taskstore.Store
	clinic ScheduleWriter
	guard  Guard
	queue  SweepQueue
	loc    *time.Location
	now    func() time.Time
}

func New(store taskstore.Store, clinicClient ScheduleWriter, guard Guard, queue SweepQueue, loc *time.Location) *Engine {
	return &Engine{
		store:  store,
		clinic: clinicClient,
		guard:  guard,
		queue:  queue,
		loc:    loc,
		now:    time.Now,
	}
}

// Transition moves the task to the target status on behalf of the actor. It
// is synchronous: the transition counts only once the store acknowledges it,
// and the store's optimistic check turns races into taskstore.ErrConflict.
func (e *Engine) Transition(ctx context.Context, taskID string, target model.TaskStatus, actor model.Actor) (model.Task, error) {
	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return model.Task{}, err
	}
	if !model.CanTransition(task.Status, target) {
		return model.Task{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, task.Status, target)
	}
	if !e.guard.CanActorMutate(ctx, task, actor) {
		return model.Task{}, fmt.Errorf("%w: task %s", ErrPermissionDenied, taskID)
	}

	var completion *time.Time
	if target == model.StatusCompleted {
		now := e.now()
		completion = &now
	}
	updated, err := e.store.UpdateTaskStatus(ctx, task.ID, task.Status, target, completion)
	if err != nil {
		return model.Task{}, err
	}
	updated.Team = task.Team

	if cancelsSchedule(target) {
		e.cascadeCancel(ctx, updated)
	}
	return updated, nil
}

// Sweep expires stale SCHEDULED tasks to MISSED in the returned collection
// and hands the same change to the persistence queue without waiting on it.
// The local view and the store may diverge until the next load re-derives
// the status; the sweep is idempotent, so the divergence self-heals.
func (e *Engine) Sweep(tasks []model.Task, today time.Time) []model.Task {
	cutoff := startOfDay(today, e.loc)
	for i := range tasks {
		if tasks[i].Status != model.StatusScheduled {
			continue
		}
		if !startOfDay(tasks[i].AssignedDate, e.loc).Before(cutoff) {
			continue
		}
		tasks[i].Status = model.StatusMissed
		tasks[i].CompletionDate = nil
		if err := e.queue.EnqueueStatusChange(tasks[i].ID, model.StatusScheduled, model.StatusMissed); err != nil {
			log.Printf("sweep: enqueue persist for task %s: %v", tasks[i].ID, err)
		}
		if tasks[i].VaccinationScheduleID != "" {
			// Detached: the load result must not wait on the clinic.
			go e.cascadeCancel(context.Background(), tasks[i])
		}
	}
	return tasks
}

// cascadeCancel is best effort: a failed cancellation is logged and the task
// transition stands.
func (e *Engine) cascadeCancel(ctx context.Context, task model.Task) {
	if task.VaccinationScheduleID == "" {
		return
	}
	_, err := e.clinic.UpdateVaccinationSchedule(ctx, task.VaccinationScheduleID, clinic.SchedulePatch{Status: model.ScheduleCancelled})
	if err != nil {
		log.Printf("cascade: cancel schedule %s for task %s: %v", task.VaccinationScheduleID, task.ID, err)
	}
}

func cancelsSchedule(s model.TaskStatus) bool {
	return s == model.StatusCancelled || s == model.StatusMissed || s == model.StatusSkipped
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
