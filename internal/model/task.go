package model

import (
	"encoding/json"
	"time"
)

// Task is a unit of recurring work assigned to a team for a specific date and
// time window. Tasks are created by the external scheduler; this service only
// reads them and moves their status through the lifecycle.
type Task struct {
	ID                    string     `json:"id"`
	TeamID                string     `json:"team_id"`
	Title                 string     `json:"title"`
	WorkType              string     `json:"work_type"`
	AssignedDate          time.Time  `json:"assigned_date"`
	StartTime             string     `json:"start_time"` // "HH:MM"
	EndTime               string     `json:"end_time"`
	Status                TaskStatus `json:"status"`
	CompletionDate        *time.Time `json:"completion_date,omitempty"`
	VaccinationScheduleID string     `json:"vaccination_schedule_id,omitempty"`

	// Team is the embedded team reference, populated when the store returns
	// it. May be nil; the permission guard falls back to a directory lookup.
	Team *Team `json:"team,omitempty"`
}

// TeamMember is a staff identity as the team directory exposes it.
type TeamMember struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Team groups the staff that recurring tasks are assigned to. Owned by the
// external staff service; only the leader is relevant to mutation rules.
type Team struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Leader  *TeamMember  `json:"leader,omitempty"`
	Members []TeamMember `json:"members,omitempty"`
}

// Actor identifies who is asking for a mutation. Always passed explicitly,
// never read from ambient session state.
type Actor struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// VaccinationSchedule is a planned clinical action tied to a pet, owned by
// the partner clinic.
type VaccinationSchedule struct {
	ID            string     `json:"id"`
	PetID         string     `json:"pet_id"`
	Status        string     `json:"status"`
	RecordID      string     `json:"record_id,omitempty"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
}

// ScheduleCancelled is the schedule status written by the cascade when a
// linked task is cancelled, missed or skipped.
const ScheduleCancelled = "CANCELLED"

// HealthRecord is a pet health check produced by the clinic. Clinical fields
// are opaque to this service and carried through untouched.
type HealthRecord struct {
	ID        string          `json:"id"`
	PetID     string          `json:"pet_id"`
	CheckDate time.Time       `json:"check_date"`
	Details   json.RawMessage `json:"details,omitempty"`
}

// ScheduleSnapshot is the slice of schedule state attached to a completed
// task during reconciliation. Derived per load, never persisted, and never
// authoritative over the clinic's own records.
type ScheduleSnapshot struct {
	Status        string     `json:"status"`
	RecordID      string     `json:"record_id,omitempty"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
}

// EnrichedTask is a task plus the reconciliation fields for the current run.
type EnrichedTask struct {
	Task
	Schedule       *ScheduleSnapshot `json:"schedule,omitempty"`
	HealthRecordID string            `json:"health_record_id,omitempty"`
	HealthRecord   *HealthRecord     `json:"health_record,omitempty"`
}

// TeamFetchWarning reports a per-team fetch that failed during a load. The
// load still returns whatever the other teams yielded.
type TeamFetchWarning struct {
	TeamID string `json:"team_id"`
	Reason string `json:"reason"`
}
