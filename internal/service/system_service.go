package service

import (
	"database/sql"
	"time"

	"github.com/gfranca/b3-ledger-backend/internal/database"
)

// SystemService provides health and runtime information.
type SystemService struct {
	db        *sql.DB
	startedAt time.Time
}

// NewSystemService creates a new SystemService.
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{db: db, startedAt: time.Now().UTC()}
}

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

// CheckHealth verifies database connectivity and reports uptime.
func (s *SystemService) CheckHealth() HealthStatus {
	status := HealthStatus{
		Status:   "ok",
		Database: "ok",
		Uptime:   time.Since(s.startedAt).Round(time.Second).String(),
	}

	if err := database.HealthCheck(s.db); err != nil {
		status.Status = "degraded"
		status.Database = err.Error()
	}

	return status
}
