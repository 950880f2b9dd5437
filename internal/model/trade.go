package model

import "time"

// Trade sides. Only these two values are ever stored; the importer maps
// localized synonyms (C/COMPRA, V/VENDA) onto them before insert.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Trade represents one buy or sell event in a tenant's ledger.
// Trades are append-only: they are never mutated or individually deleted,
// only wiped per tenant. Seq is assigned by the database at insert time and
// breaks ordering ties between same-day trades of the same ticker.
type Trade struct {
	Seq       int64     `json:"seq"`
	ID        string    `json:"id"`
	TenantID  string    `json:"-"`
	Ticker    string    `json:"ticker"`
	Side      string    `json:"side"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	Fees      float64   `json:"fees"`
	TradeDate time.Time `json:"tradeDate"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// NormalizedTrade is a canonicalized import row, ready for insert.
// Produced by the importer after date/side/ticker normalization.
type NormalizedTrade struct {
	Ticker    string  `json:"ticker"`
	Side      string  `json:"side"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	Fees      float64 `json:"fees"`
	TradeDate string  `json:"tradeDate"` // YYYY-MM-DD
}

// RejectedRow describes an import row that failed canonicalization.
// Rows are rejected rather than silently defaulted: an unparseable date or
// an unrecognized side never becomes a guessed trade.
type RejectedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportReport summarizes one append batch: how many rows were inserted
// and which were rejected, with the per-row reason.
type ImportReport struct {
	Inserted int           `json:"inserted"`
	Rejected []RejectedRow `json:"rejected,omitempty"`
}
