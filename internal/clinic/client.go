package clinic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/model"
)

// ErrNotFound means the referenced schedule or record does not exist at the
// clinic.
var ErrNotFound = errors.New("clinic record not found")

const dateLayout = "2006-01-02"

// SchedulePatch is a partial update to a vaccination schedule. Zero fields
// are omitted from the request body.
type SchedulePatch struct {
	Status string `json:"status,omitempty"`
}

// Client talks to the partner clinic's REST API for vaccination schedules and
// pet health records.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) GetVaccinationSchedule(ctx context.Context, id string) (model.VaccinationSchedule, error) {
	var payload schedulePayload
	err := c.do(ctx, http.MethodGet, "/vaccination-schedules/"+url.PathEscape(id), nil, &payload)
	if err != nil {
		return model.VaccinationSchedule{}, fmt.Errorf("get vaccination schedule %s: %w", id, err)
	}
	return payload.toModel(), nil
}

func (c *Client) UpdateVaccinationSchedule(ctx context.Context, id string, patch SchedulePatch) (model.VaccinationSchedule, error) {
	body, _ := json.Marshal(patch)
	var payload schedulePayload
	err := c.do(ctx, http.MethodPatch, "/vaccination-schedules/"+url.PathEscape(id), body, &payload)
	if err != nil {
		return model.VaccinationSchedule{}, fmt.Errorf("update vaccination schedule %s: %w", id, err)
	}
	return payload.toModel(), nil
}

func (c *Client) GetHealthRecordsForPet(ctx context.Context, petID string, page int) ([]model.HealthRecord, error) {
	path := "/pets/" + url.PathEscape(petID) + "/health-records?page=" + strconv.Itoa(page)
	var payload struct {
		Items []recordPayload `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, fmt.Errorf("get health records for pet %s: %w", petID, err)
	}
	records := make([]model.HealthRecord, 0, len(payload.Items))
	for _, item := range payload.Items {
		rec, err := item.toModel()
		if err != nil {
			return nil, fmt.Errorf("get health records for pet %s: %w", petID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	data, _ := io.ReadAll(res.Body)
	if res.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if res.StatusCode >= 300 {
		return fmt.Errorf("clinic api status=%d body=%s", res.StatusCode, string(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode clinic response: %w", err)
	}
	return nil
}

type schedulePayload struct {
	ID            string     `json:"id"`
	PetID         string     `json:"pet_id"`
	Status        string     `json:"status"`
	RecordID      string     `json:"record_id"`
	CompletedDate *time.Time `json:"completed_date"`
}

func (p schedulePayload) toModel() model.VaccinationSchedule {
	return model.VaccinationSchedule{
		ID:            p.ID,
		PetID:         p.PetID,
		Status:        p.Status,
		RecordID:      p.RecordID,
		CompletedDate: p.CompletedDate,
	}
}

type recordPayload struct {
	ID        string          `json:"id"`
	PetID     string          `json:"pet_id"`
	CheckDate string          `json:"check_date"` // YYYY-MM-DD
	Details   json.RawMessage `json:"details"`
}

func (p recordPayload) toModel() (model.HealthRecord, error) {
	checked, err := time.Parse(dateLayout, p.CheckDate)
	if err != nil {
		return model.HealthRecord{}, fmt.Errorf("parse check_date %q: %w", p.CheckDate, err)
	}
	return model.HealthRecord{
		ID:        p.ID,
		PetID:     p.PetID,
		CheckDate: checked,
		Details:   p.Details,
	}, nil
}
