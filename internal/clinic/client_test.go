package clinic

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetVaccinationSchedule(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vaccination-schedules/vs-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "secret" {
			t.Errorf("missing api key header")
		}
		w.Write([]byte(`{"id":"vs-1","pet_id":"pet-9","status":"PENDING","record_id":"rec-3"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", 5*time.Second)
	sched, err := c.GetVaccinationSchedule(context.Background(), "vs-1")
	if err != nil {
		t.Fatal(err)
	}
	if sched.PetID != "pet-9" || sched.RecordID != "rec-3" {
		t.Fatalf("unexpected schedule: %+v", sched)
	}
}

func TestGetVaccinationScheduleNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	_, err := c.GetVaccinationSchedule(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateVaccinationSchedulePatch(t *testing.T) {
	var gotMethod, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.Write([]byte(`{"id":"vs-1","status":"CANCELLED"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	sched, err := c.UpdateVaccinationSchedule(context.Background(), "vs-1", SchedulePatch{Status: "CANCELLED"})
	if err != nil {
		t.Fatal(err)
	}
	if gotMethod != http.MethodPatch {
		t.Errorf("method = %s, want PATCH", gotMethod)
	}
	if gotBody != `{"status":"CANCELLED"}` {
		t.Errorf("body = %s", gotBody)
	}
	if sched.Status != "CANCELLED" {
		t.Errorf("status = %s", sched.Status)
	}
}

func TestGetHealthRecordsForPet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pets/pet-9/health-records" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("page") != "2" {
			t.Errorf("page = %s, want 2", r.URL.Query().Get("page"))
		}
		w.Write([]byte(`{"items":[{"id":"hr-1","pet_id":"pet-9","check_date":"2026-03-14","details":{"weight_kg":4.2}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	records, err := c.GetHealthRecordsForPet(context.Background(), "pet-9", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	want := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if !records[0].CheckDate.Equal(want) {
		t.Errorf("check date = %s, want %s", records[0].CheckDate, want)
	}
	if len(records[0].Details) == 0 {
		t.Error("details should be carried through")
	}
}

func TestGetHealthRecordsBadDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"id":"hr-1","check_date":"14/03/2026"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	if _, err := c.GetHealthRecordsForPet(context.Background(), "pet-9", 1); err == nil {
		t.Fatal("expected error for malformed check_date")
	}
}
