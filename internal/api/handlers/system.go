package handlers

import (
	"net/http"

	"github.com/gfranca/b3-ledger-backend/internal/api/response"
	"github.com/gfranca/b3-ledger-backend/internal/jobs"
	"github.com/gfranca/b3-ledger-backend/internal/service"
)

// SystemHandler handles HTTP requests for system endpoints.
type SystemHandler struct {
	systemService *service.SystemService
	runner        *jobs.Runner
}

// NewSystemHandler creates a new SystemHandler with the provided dependencies.
func NewSystemHandler(systemService *service.SystemService, runner *jobs.Runner) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
		runner:        runner,
	}
}

// Health handles GET requests for the health check.
//
// Endpoint: GET /api/system/health
// Response: 200 OK with HealthStatus, 503 when the database is unreachable
func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	status := h.systemService.CheckHealth()

	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}

	response.RespondJSON(w, code, status)
}

// Jobs handles GET requests for background job statuses.
//
// Endpoint: GET /api/system/jobs
// Response: 200 OK with array of job Status
func (h *SystemHandler) Jobs(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.runner.Statuses())
}
