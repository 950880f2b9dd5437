package brapi

// quoteResponse is the raw brapi.dev quote API response shape. Only the
// fields the ledger consumes are mapped.
type quoteResponse struct {
	Results []quoteResult `json:"results"`
	Error   *string       `json:"error,omitempty"`
	Message string        `json:"message,omitempty"`
}

type quoteResult struct {
	Symbol             string         `json:"symbol"`
	RegularMarketPrice float64        `json:"regularMarketPrice"`
	RegularMarketTime  string         `json:"regularMarketTime"`
	Currency           string         `json:"currency"`
	LongName           string         `json:"longName"`
	DividendsData      *dividendsData `json:"dividendsData,omitempty"`
}

type dividendsData struct {
	CashDividends  []rawDividend `json:"cashDividends"`
	StockDividends []rawDividend `json:"stockDividends"`
}

// rawDividend is one dividend entry as brapi reports it: paymentDate and
// lastDatePrior are ISO timestamps, rate is the amount per share, label is
// the free-text type ("DIVIDENDO", "JCP", "RENDIMENTO", ...).
type rawDividend struct {
	PaymentDate   string  `json:"paymentDate"`
	LastDatePrior string  `json:"lastDatePrior"`
	Rate          float64 `json:"rate"`
	Label         string  `json:"label"`
}
