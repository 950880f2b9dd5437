package handlers

import (
	"net/http"
	"strconv"

	"github.com/gfranca/b3-ledger-backend/internal/api/middleware"
	"github.com/gfranca/b3-ledger-backend/internal/api/request"
	"github.com/gfranca/b3-ledger-backend/internal/api/response"
	"github.com/gfranca/b3-ledger-backend/internal/apperrors"
	"github.com/gfranca/b3-ledger-backend/internal/importer"
	"github.com/gfranca/b3-ledger-backend/internal/service"
	"github.com/gfranca/b3-ledger-backend/internal/validation"
)

// TradeHandler handles HTTP requests for trade ledger endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the tradeService.
type TradeHandler struct {
	tradeService *service.TradeService
}

// NewTradeHandler creates a new TradeHandler with the provided service dependency.
func NewTradeHandler(tradeService *service.TradeService) *TradeHandler {
	return &TradeHandler{
		tradeService: tradeService,
	}
}

// Import handles POST requests to append a batch of trades.
// Rows that fail canonicalization come back in the report with their line
// number and reason; the batch is never silently repaired.
//
// Endpoint: POST /api/trade/import
// Request Body: ImportTradesRequest
// Response: 200 OK with ImportReport
// Error: 400 Bad Request if the body is invalid or empty
// Error: 500 Internal Server Error if the insert fails
func (h *TradeHandler) Import(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ImportTradesRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if len(req.Trades) == 0 {
		response.RespondError(w, http.StatusBadRequest, "no trades provided", nil)
		return
	}

	report, err := h.tradeService.Append(r.Context(), middleware.TenantID(r.Context()), req.Trades)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToImportTrades.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// ImportCSV handles POST requests to append trades from a CSV body.
//
// Endpoint: POST /api/trade/import/csv (body: text/csv)
// Response: 200 OK with ImportReport
// Error: 400 Bad Request if the CSV header cannot be read
// Error: 500 Internal Server Error if the insert fails
func (h *TradeHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	rows, rejected, err := importer.ReadTradeCSV(r.Body)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid CSV", err.Error())
		return
	}

	report, err := h.tradeService.Append(r.Context(), middleware.TenantID(r.Context()), rows)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToImportTrades.Error(), err.Error())
		return
	}
	report.Rejected = append(rejected, report.Rejected...)

	response.RespondJSON(w, http.StatusOK, report)
}

// List handles GET requests to retrieve recent trades.
//
// Endpoint: GET /api/trade?limit=N
// Response: 200 OK with array of Trade, newest first
// Error: 500 Internal Server Error if retrieval fails
func (h *TradeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	trades, err := h.tradeService.ListRecent(middleware.TenantID(r.Context()), limit)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTrades.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, trades)
}

// QuantityAsOf handles GET requests for the historical share count of a
// ticker at a date.
//
// Endpoint: GET /api/trade/quantity?ticker=PETR4&date=2025-03-10
// Response: 200 OK with {ticker, date, quantity}
// Error: 400 Bad Request if ticker or date is missing or malformed
func (h *TradeHandler) QuantityAsOf(w http.ResponseWriter, r *http.Request) {
	ticker := importer.NormalizeTicker(r.URL.Query().Get("ticker"))
	if err := validation.ValidateTicker(ticker); err != nil {
		respondValidation(w, err)
		return
	}

	date, err := validation.ValidateDate(r.URL.Query().Get("date"))
	if err != nil {
		respondValidation(w, err)
		return
	}

	quantity, err := h.tradeService.QuantityAsOf(middleware.TenantID(r.Context()), ticker, date)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTrades.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":   ticker,
		"date":     date.Format("2006-01-02"),
		"quantity": quantity,
	})
}

// Reset handles DELETE requests to wipe the tenant's trade ledger.
//
// Endpoint: DELETE /api/trade
// Response: 204 No Content
// Error: 500 Internal Server Error if the wipe fails
func (h *TradeHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.tradeService.Reset(r.Context(), middleware.TenantID(r.Context())); err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToReset.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

func respondValidation(w http.ResponseWriter, err error) {
	if verr, ok := err.(*validation.Error); ok {
		response.RespondValidationError(w, verr)
		return
	}
	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
}
