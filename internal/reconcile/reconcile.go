package reconcile

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/model"
)

// ClinicReader is the read side of the clinic API, satisfied by
// clinic.Client.
type ClinicReader interface {
	GetVaccinationSchedule(ctx context.Context, id string) (model.VaccinationSchedule, error)
	GetHealthRecordsForPet(ctx context.Context, petID string, page int) ([]model.HealthRecord, error)
}

// Engine links completed vaccination tasks to the schedule and health-record
// state the clinic holds for them. Enrichment is recomputed on every load and
// never written back anywhere.
type Engine struct {
	clinic        ClinicReader
	toleranceDays int
	loc           *time.Location
}

func New(clinicClient ClinicReader, toleranceDays int, loc *time.Location) *Engine {
	return &Engine{clinic: clinicClient, toleranceDays: toleranceDays, loc: loc}
}

// Enrich wraps every task and fills the reconciliation fields for the
// eligible ones (COMPLETED with a linked schedule), concurrently. Lookup
// failures fail open: the task comes back without the missing field and the
// siblings are untouched.
func (e *Engine) Enrich(ctx context.Context, tasks []model.Task) []model.EnrichedTask {
	out := make([]model.EnrichedTask, len(tasks))
	var wg sync.WaitGroup
	for i := range tasks {
		out[i] = model.EnrichedTask{Task: tasks[i]}
		if tasks[i].Status != model.StatusCompleted || tasks[i].VaccinationScheduleID == "" {
			continue
		}
		wg.Add(1)
		// Each goroutine writes only its own slot.
		go func(et *model.EnrichedTask) {
			defer wg.Done()
			e.enrichOne(ctx, et)
		}(&out[i])
	}
	wg.Wait()
	return out
}

// enrichOne runs the two-step lookup in order: schedule first, then the
// pet's health records.
func (e *Engine) enrichOne(ctx context.Context, et *model.EnrichedTask) {
	sched, err := e.clinic.GetVaccinationSchedule(ctx, et.VaccinationScheduleID)
	if err != nil {
		log.Printf("reconcile: task %s: schedule %s: %v", et.ID, et.VaccinationScheduleID, err)
		return
	}
	et.Schedule = &model.ScheduleSnapshot{
		Status:        sched.Status,
		RecordID:      sched.RecordID,
		CompletedDate: sched.CompletedDate,
	}
	if sched.PetID == "" {
		return
	}
	records, err := e.clinic.GetHealthRecordsForPet(ctx, sched.PetID, 1)
	if err != nil {
		log.Printf("reconcile: task %s: health records for pet %s: %v", et.ID, sched.PetID, err)
		return
	}
	// First record in provider order within the tolerance window wins.
	for _, rec := range records {
		if daysApart(rec.CheckDate, et.AssignedDate, e.loc) <= e.toleranceDays {
			matched := rec
			et.HealthRecordID = rec.ID
			et.HealthRecord = &matched
			return
		}
	}
}

// daysApart measures whole calendar days between two dates, rounded so DST
// shifts cannot skew the count.
func daysApart(a, b time.Time, loc *time.Location) int {
	d := startOfDay(a, loc).Sub(startOfDay(b, loc)).Hours() / 24
	return int(math.Abs(math.Round(d)))
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
