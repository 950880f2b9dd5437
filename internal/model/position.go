package model

import "time"

// Position is a derived open position for one ticker. It is never
// persisted: every read replays the full trade ledger, so a historical
// edit is always reflected without an invalidation path.
//
// AvgCost is meaningful only while NetQuantity > 0; when a position is
// sold down to zero both AvgCost and FirstBuyDate reset, so a re-entry
// starts a fresh cost basis.
type Position struct {
	Ticker       string     `json:"ticker"`
	NetQuantity  float64    `json:"netQuantity"`
	AvgCost      float64    `json:"avgCost"`
	FeesTotal    float64    `json:"feesTotal"`
	FirstBuyDate *time.Time `json:"firstBuyDate,omitempty"`
}

// RealizedSummary aggregates FIFO-matched sales across all tickers of a
// tenant.
type RealizedSummary struct {
	TotalRealizedPnL     float64 `json:"totalRealizedPnl"`
	TotalCostMatched     float64 `json:"totalCostMatched"`
	TotalProceedsMatched float64 `json:"totalProceedsMatched"`
}
