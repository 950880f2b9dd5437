package model

import "time"

// Dividend types. Keyword labels from the external feed are mapped onto
// these by the brapi client (JCP/JSCP -> JCP, RENDIMENTO -> INCOME,
// anything else -> DIVIDEND).
const (
	DividendTypeDividend = "DIVIDEND"
	DividendTypeJCP      = "JCP"
	DividendTypeIncome   = "INCOME"
)

// DividendRecord is a persisted dividend receipt. Uniqueness is enforced
// on (tenant, ticker, payment date, amount per share), so re-running a
// sync with an unchanged feed inserts nothing.
type DividendRecord struct {
	ID               string    `json:"id"`
	TenantID         string    `json:"-"`
	Ticker           string    `json:"ticker"`
	PaymentDate      time.Time `json:"paymentDate"`
	ExDate           time.Time `json:"exDate"`
	AmountPerShare   float64   `json:"amountPerShare"`
	QuantityEligible float64   `json:"quantityEligible"`
	TotalAmount      float64   `json:"totalAmount"`
	Type             string    `json:"type"`
	Source           string    `json:"source"`
	FetchedAt        time.Time `json:"fetchedAt,omitempty"`
	CreatedAt        time.Time `json:"createdAt,omitempty"`
}

// ReferenceDate is the date that decides eligibility: the ex-dividend date
// when the feed supplied one, otherwise the payment date as a degraded
// fallback.
func (d DividendRecord) ReferenceDate() time.Time {
	if !d.ExDate.IsZero() {
		return d.ExDate
	}
	return d.PaymentDate
}

// SyncResult reports one dividend synchronization run. Cached counts
// tickers skipped because a recent successful fetch exists; Imported and
// SkippedDuplicates only cover eligible events (ineligible events are not
// inserted and not counted).
type SyncResult struct {
	TickersProcessed  int      `json:"tickersProcessed"`
	Found             int      `json:"found"`
	Imported          int      `json:"imported"`
	SkippedDuplicates int      `json:"skippedDuplicates"`
	Cached            int      `json:"cached"`
	Errors            []string `json:"errors,omitempty"`
}

// CleanResult reports one reconciliation pass over the dividend ledger.
type CleanResult struct {
	TickersChecked  int            `json:"tickersChecked"`
	RecordsChecked  int            `json:"recordsChecked"`
	RecordsRemoved  int            `json:"recordsRemoved"`
	RemovedByTicker map[string]int `json:"removedByTicker,omitempty"`
}
