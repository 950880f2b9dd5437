package handlers

import (
	"net/http"

	"github.com/gfranca/b3-ledger-backend/internal/api/middleware"
	"github.com/gfranca/b3-ledger-backend/internal/api/response"
	"github.com/gfranca/b3-ledger-backend/internal/apperrors"
	"github.com/gfranca/b3-ledger-backend/internal/service"
)

// PortfolioHandler handles HTTP requests for portfolio endpoints.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
	positionService  *service.PositionService
	realizedService  *service.RealizedPnLService
}

// NewPortfolioHandler creates a new PortfolioHandler with the provided service dependencies.
func NewPortfolioHandler(
	portfolioService *service.PortfolioService,
	positionService *service.PositionService,
	realizedService *service.RealizedPnLService,
) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
		positionService:  positionService,
		realizedService:  realizedService,
	}
}

// Summary handles GET requests for the full portfolio summary: positions
// with prices and returns, plus realized and dividend aggregates. Also
// schedules a background dividend sync.
//
// Endpoint: GET /api/portfolio/summary
// Response: 200 OK with PortfolioSummary
// Error: 500 Internal Server Error if the summary cannot be built
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.portfolioService.Summary(r.Context(), middleware.TenantID(r.Context()))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGetSummary.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// Positions handles GET requests for the open positions without price
// enrichment. Cheaper than the summary: no feed calls.
//
// Endpoint: GET /api/portfolio/positions
// Response: 200 OK with array of Position
// Error: 500 Internal Server Error if the replay fails
func (h *PortfolioHandler) Positions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.positionService.OpenPositions(middleware.TenantID(r.Context()))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGetSummary.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, positions)
}

// Realized handles GET requests for the FIFO-matched realized totals.
//
// Endpoint: GET /api/portfolio/realized
// Response: 200 OK with RealizedSummary
// Error: 500 Internal Server Error if the replay fails
func (h *PortfolioHandler) Realized(w http.ResponseWriter, r *http.Request) {
	summary, err := h.realizedService.Summary(middleware.TenantID(r.Context()))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGetSummary.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}
