package model

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusScheduled  TaskStatus = "SCHEDULED"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
	StatusCancelled  TaskStatus = "CANCELLED"
	StatusMissed     TaskStatus = "MISSED"
	StatusSkipped    TaskStatus = "SKIPPED"
)

// Valid reports whether s is one of the known lifecycle states.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled, StatusMissed, StatusSkipped:
		return true
	default:
		return false
	}
}

// Terminal reports whether s is a terminal state. No operation accepts a
// transition out of a terminal state.
func (s TaskStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusMissed, StatusSkipped:
		return true
	default:
		return false
	}
}

// CanTransition reports whether an actor may move a task from one status to
// another. MISSED is reachable only through the staleness sweep, never here.
func CanTransition(from, to TaskStatus) bool {
	switch from {
	case StatusScheduled:
		return to == StatusInProgress || to == StatusCompleted || to == StatusCancelled || to == StatusSkipped
	case StatusInProgress:
		return to == StatusCompleted || to == StatusCancelled || to == StatusSkipped
	default:
		return false
	}
}
