package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gfranca/b3-ledger-backend/internal/api/middleware"
	"github.com/gfranca/b3-ledger-backend/internal/api/request"
	"github.com/gfranca/b3-ledger-backend/internal/api/response"
	"github.com/gfranca/b3-ledger-backend/internal/apperrors"
	"github.com/gfranca/b3-ledger-backend/internal/importer"
	"github.com/gfranca/b3-ledger-backend/internal/service"
	"github.com/gfranca/b3-ledger-backend/internal/validation"
)

// DividendHandler handles HTTP requests for dividend ledger endpoints.
type DividendHandler struct {
	dividendService *service.DividendService
}

// NewDividendHandler creates a new DividendHandler with the provided service dependency.
func NewDividendHandler(dividendService *service.DividendService) *DividendHandler {
	return &DividendHandler{
		dividendService: dividendService,
	}
}

// List handles GET requests to retrieve recent dividend records.
//
// Endpoint: GET /api/dividend?limit=N
// Response: 200 OK with array of DividendRecord, newest payment first
// Error: 500 Internal Server Error if retrieval fails
func (h *DividendHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := h.dividendService.ListRecent(middleware.TenantID(r.Context()), limit)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDividends.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, records)
}

// ListByTicker handles GET requests for one ticker's dividend history.
//
// Endpoint: GET /api/dividend/ticker/{ticker}
// Response: 200 OK with {ticker, records, total}
// Error: 500 Internal Server Error if retrieval fails
func (h *DividendHandler) ListByTicker(w http.ResponseWriter, r *http.Request) {
	ticker := importer.NormalizeTicker(chi.URLParam(r, "ticker"))
	if err := validation.ValidateTicker(ticker); err != nil {
		respondValidation(w, err)
		return
	}

	records, total, err := h.dividendService.ListByTicker(middleware.TenantID(r.Context()), ticker)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDividends.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  ticker,
		"records": records,
		"total":   total,
	})
}

// Totals handles GET requests for received dividend sums per ticker.
//
// Endpoint: GET /api/dividend/totals
// Response: 200 OK with {byTicker, total}
// Error: 500 Internal Server Error if retrieval fails
func (h *DividendHandler) Totals(w http.ResponseWriter, r *http.Request) {
	byTicker, total, err := h.dividendService.Totals(middleware.TenantID(r.Context()))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDividends.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"byTicker": byTicker,
		"total":    total,
	})
}

// Sync handles POST requests to synchronize the dividend ledger with the
// external feed. Per-ticker failures are reported in the result, not as an
// HTTP error.
//
// Endpoint: POST /api/dividend/sync
// Request Body: SyncDividendsRequest (optional; empty body syncs all open positions)
// Response: 200 OK with SyncResult
// Error: 500 Internal Server Error when the sync cannot run at all
func (h *DividendHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req request.SyncDividendsRequest
	if r.ContentLength > 0 {
		parsed, err := parseJSON[request.SyncDividendsRequest](r)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
		req = parsed
	}

	for i, ticker := range req.Tickers {
		req.Tickers[i] = importer.NormalizeTicker(ticker)
	}

	result, err := h.dividendService.Sync(r.Context(), middleware.TenantID(r.Context()), req.Tickers, req.Force)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToSyncDividends.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Clean handles POST requests to reconcile the dividend ledger against the
// trade ledger, removing records the eligibility rule no longer admits.
//
// Endpoint: POST /api/dividend/clean
// Response: 200 OK with CleanResult
// Error: 500 Internal Server Error if the pass fails
func (h *DividendHandler) Clean(w http.ResponseWriter, r *http.Request) {
	result, err := h.dividendService.CleanInvalid(r.Context(), middleware.TenantID(r.Context()))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCleanDividends.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// ImportCSV handles POST requests to import manually-kept dividend rows.
//
// Endpoint: POST /api/dividend/import/csv (body: text/csv)
// Response: 200 OK with ImportReport
// Error: 400 Bad Request if the CSV header cannot be read
// Error: 500 Internal Server Error if the insert fails
func (h *DividendHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	rows, rejected, err := importer.ReadDividendCSV(r.Body)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid CSV", err.Error())
		return
	}

	report, err := h.dividendService.Import(r.Context(), middleware.TenantID(r.Context()), rows)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDividends.Error(), err.Error())
		return
	}
	report.Rejected = append(rejected, report.Rejected...)

	response.RespondJSON(w, http.StatusOK, report)
}

// Reset handles DELETE requests to wipe the tenant's dividend ledger.
//
// Endpoint: DELETE /api/dividend
// Response: 204 No Content
// Error: 500 Internal Server Error if the wipe fails
func (h *DividendHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.dividendService.Reset(r.Context(), middleware.TenantID(r.Context())); err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToReset.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
