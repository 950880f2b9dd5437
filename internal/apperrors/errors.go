package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
var (
	// ErrTradeNotFound indicates that a trade with the given ID does not exist.
	ErrTradeNotFound = errors.New("trade not found")

	// ErrDividendNotFound indicates that a dividend record with the given ID does not exist.
	ErrDividendNotFound = errors.New("dividend not found")

	// ErrTickerNotFound indicates a ticker lookup returned no results.
	ErrTickerNotFound = errors.New("ticker not found")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrInvalidTenantID indicates that the tenant identifier is missing or
	// not a valid UUID.
	ErrInvalidTenantID = errors.New("invalid tenant ID")

	// ErrInvalidTicker indicates that a ticker parameter is missing or empty.
	ErrInvalidTicker = errors.New("ticker is required")

	// ErrInvalidDate indicates a date parameter is missing or unparseable.
	ErrInvalidDate = errors.New("invalid date")

	// ErrNoRowsAccepted indicates an import batch where every row was rejected.
	ErrNoRowsAccepted = errors.New("no rows accepted")

	// ErrUnauthorized indicates a missing or invalid API key.
	ErrUnauthorized = errors.New("unauthorized")
)

// External collaborator errors. These degrade gracefully: affected fields
// are reported as unavailable and the rest of the computation proceeds.
var (
	// ErrPriceUnavailable indicates the price oracle could not produce a
	// last-traded price for a ticker.
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrDividendFeedUnavailable indicates the external dividend feed failed.
	ErrDividendFeedUnavailable = errors.New("dividend feed unavailable")
)

// Operation failure errors represent storage-level failures. These are the
// only fatal ones: they surface to the caller as 500s.
var (
	ErrFailedToRetrieveTrades    = errors.New("failed to retrieve trades")
	ErrFailedToImportTrades      = errors.New("failed to import trades")
	ErrFailedToRetrieveDividends = errors.New("failed to retrieve dividends")
	ErrFailedToSyncDividends     = errors.New("failed to sync dividends")
	ErrFailedToCleanDividends    = errors.New("failed to clean dividends")
	ErrFailedToGetSummary        = errors.New("failed to get portfolio summary")
	ErrFailedToReset             = errors.New("failed to reset ledger")
)
