package model

import "time"

// PositionSummary is one row of the portfolio summary surface: the open
// position enriched with last-traded price and derived returns. Price
// fields are nil when the price oracle failed for the ticker; the
// aggregate totals then exclude only this position's value.
type PositionSummary struct {
	Ticker            string     `json:"ticker"`
	Quantity          float64    `json:"quantity"`
	AvgCost           float64    `json:"avgCost"`
	LastPrice         *float64   `json:"lastPrice"`
	PriceAvailable    bool       `json:"priceAvailable"`
	PositionValue     *float64   `json:"positionValue"`
	SimpleReturn      *float64   `json:"simpleReturn"`
	AnnualizedReturn  *float64   `json:"annualizedReturn"`
	FirstBuyDate      *time.Time `json:"firstBuyDate,omitempty"`
	DividendsReceived float64    `json:"dividendsReceived"`
}

// PortfolioSummary is the aggregate view over all open positions plus
// realized sales and received dividends.
type PortfolioSummary struct {
	Positions       []PositionSummary `json:"positions"`
	TotalInvested   float64           `json:"totalInvested"`
	TotalValue      float64           `json:"totalValue"`
	UnrealizedPnL   float64           `json:"unrealizedPnl"`
	RealizedPnL     float64           `json:"realizedPnl"`
	TotalDividends  float64           `json:"totalDividends"`
	TotalPnL        float64           `json:"totalPnl"`
	CostOfSales     float64           `json:"costOfSales"`
	ProceedsOfSales float64           `json:"proceedsOfSales"`
	OpenReturn      float64           `json:"openReturn"`
	RealizedReturn  float64           `json:"realizedReturn"`
	TotalReturn     float64           `json:"totalReturn"`
}
