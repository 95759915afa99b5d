package taskstore

import (
	"context"
	"errors"
	"time"

	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/model"
)

var (
	// ErrNotFound means the referenced task does not exist upstream.
	ErrNotFound = errors.New("task not found")
	// ErrConflict means a status update lost a race: the task is no longer in
	// the status the caller based its transition on.
	ErrConflict = errors.New("task status changed concurrently")
)

// Store is the task store collaborator: query and status mutation over tasks,
// plus the team directory. The schema is owned by the external scheduler;
// this service never creates or deletes rows.
type Store interface {
	GetTask(ctx context.Context, id string) (model.Task, error)
	ListTasksForTeam(ctx context.Context, teamID string, from, to time.Time) ([]model.Task, error)

	// UpdateTaskStatus writes the new status only if the row still holds the
	// expected prior status, so concurrent transitions surface as ErrConflict
	// rather than silent lost updates.
	UpdateTaskStatus(ctx context.Context, id string, expected, next model.TaskStatus, completionDate *time.Time) (model.Task, error)

	ListTeamsForActor(ctx context.Context, actorID string) ([]model.Team, error)
}
