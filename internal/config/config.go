package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Runtime holds every tunable the service reads at startup. Values come from
// the environment, with an optional .env file for local runs.
type Runtime struct {
	HTTPAddr      string
	DatabaseURL   string
	RedisAddr     string
	ClinicBaseURL string
	ClinicAPIKey  string
	ClinicTimeout time.Duration

	// RecordMatchTolerance is the maximum distance, in calendar days, between
	// a task's assigned date and a health record's check date for the record
	// to be linked during reconciliation. The 1-day default absorbs clock and
	// timezone skew between this service and the clinic.
	RecordMatchTolerance int

	// Location is the timezone the cafe schedules in. Week and month windows
	// and the staleness cutoff are computed in this zone.
	Location *time.Location
}

func LoadRuntime() (Runtime, error) {
	_ = godotenv.Load()

	cfg := Runtime{
		HTTPAddr:             getenvDefault("HTTP_ADDR", ":8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisAddr:            getenvDefault("REDIS_ADDR", "localhost:6379"),
		ClinicBaseURL:        os.Getenv("CLINIC_BASE_URL"),
		ClinicAPIKey:         os.Getenv("CLINIC_API_KEY"),
		ClinicTimeout:        time.Duration(readIntEnv("CLINIC_TIMEOUT_SEC", 15)) * time.Second,
		RecordMatchTolerance: readIntEnv("RECORD_MATCH_TOLERANCE_DAYS", 1),
		Location:             time.Local,
	}
	if cfg.DatabaseURL == "" {
		return Runtime{}, errors.New("DATABASE_URL must be set")
	}
	if cfg.ClinicBaseURL == "" {
		return Runtime{}, errors.New("CLINIC_BASE_URL must be set")
	}
	if cfg.RecordMatchTolerance < 0 {
		return Runtime{}, errors.New("RECORD_MATCH_TOLERANCE_DAYS must not be negative")
	}
	if tz := os.Getenv("SCHEDULE_TZ"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return Runtime{}, fmt.Errorf("load SCHEDULE_TZ: %w", err)
		}
		cfg.Location = loc
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func readIntEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
