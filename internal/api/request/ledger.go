// Package request defines the JSON request bodies accepted by the API.
package request

import "github.com/gfranca/b3-ledger-backend/internal/importer"

// ImportTradesRequest is the body of POST /api/trade/import: raw trade rows
// exactly as exported, canonicalization happens server-side.
type ImportTradesRequest struct {
	Trades []importer.TradeRow `json:"trades"`
}

// SyncDividendsRequest is the body of POST /api/dividend/sync. An empty
// ticker list syncs every open position; force skips the freshness window.
type SyncDividendsRequest struct {
	Tickers []string `json:"tickers,omitempty"`
	Force   bool     `json:"force,omitempty"`
}
