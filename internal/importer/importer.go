// Package importer is the import adapter: it turns raw spreadsheet/CSV
// rows into canonicalized trade and dividend rows. Every row either
// normalizes cleanly or comes back as a rejection with a reason; dates
// and sides are never silently defaulted.
package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gfranca/b3-ledger-backend/internal/model"
)

// dateFormats are the accepted textual date representations, tried in
// order. All normalize to YYYY-MM-DD.
var dateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// sideSynonyms maps localized two-letter and full-word side values onto
// the canonical BUY/SELL.
var sideSynonyms = map[string]string{
	"BUY":    model.SideBuy,
	"SELL":   model.SideSell,
	"C":      model.SideBuy,
	"COMPRA": model.SideBuy,
	"V":      model.SideSell,
	"VENDA":  model.SideSell,
}

// TradeRow is one raw trade import row as handed over by the adapter's
// caller (CSV column values or JSON fields, all still text).
type TradeRow struct {
	Date     string `json:"date"`
	Ticker   string `json:"ticker"`
	Side     string `json:"side"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Fees     string `json:"fees"`
}

// NormalizeTrade canonicalizes a single raw row. The returned error
// carries the rejection reason; callers collect these into the import
// report instead of aborting the batch.
func NormalizeTrade(row TradeRow) (model.NormalizedTrade, error) {
	date, err := NormalizeDate(row.Date)
	if err != nil {
		return model.NormalizedTrade{}, err
	}

	ticker := strings.ToUpper(strings.TrimSpace(row.Ticker))
	if ticker == "" {
		return model.NormalizedTrade{}, fmt.Errorf("missing ticker")
	}

	side, ok := sideSynonyms[strings.ToUpper(strings.TrimSpace(row.Side))]
	if !ok {
		return model.NormalizedTrade{}, fmt.Errorf("unrecognized side %q", row.Side)
	}

	quantity, err := parseAmount(row.Quantity, 0)
	if err != nil {
		return model.NormalizedTrade{}, fmt.Errorf("invalid quantity: %w", err)
	}
	if quantity <= 0 {
		return model.NormalizedTrade{}, fmt.Errorf("quantity must be positive")
	}

	price, err := parseAmount(row.Price, 0)
	if err != nil {
		return model.NormalizedTrade{}, fmt.Errorf("invalid price: %w", err)
	}
	if price < 0 {
		return model.NormalizedTrade{}, fmt.Errorf("price cannot be negative")
	}

	fees, err := parseAmount(row.Fees, 0)
	if err != nil {
		return model.NormalizedTrade{}, fmt.Errorf("invalid fees: %w", err)
	}
	if fees < 0 {
		return model.NormalizedTrade{}, fmt.Errorf("fees cannot be negative")
	}

	return model.NormalizedTrade{
		Ticker:    ticker,
		Side:      side,
		Quantity:  quantity,
		Price:     price,
		Fees:      fees,
		TradeDate: date,
	}, nil
}

// NormalizeDividend canonicalizes a manually-kept dividend row into a
// persistable record. The row carries its own eligible share count; the
// total is derived as quantity * amount per share.
func NormalizeDividend(row DividendRow) (model.DividendRecord, error) {
	date, err := NormalizeDate(row.PaymentDate)
	if err != nil {
		return model.DividendRecord{}, err
	}
	paymentDate, _ := time.Parse("2006-01-02", date)

	ticker := NormalizeTicker(row.Ticker)
	if ticker == "" {
		return model.DividendRecord{}, fmt.Errorf("missing ticker")
	}

	amount, err := parseAmount(row.AmountPerShare, 0)
	if err != nil {
		return model.DividendRecord{}, fmt.Errorf("invalid amount per share: %w", err)
	}
	if amount <= 0 {
		return model.DividendRecord{}, fmt.Errorf("amount per share must be positive")
	}

	quantity, err := parseAmount(row.Quantity, 0)
	if err != nil {
		return model.DividendRecord{}, fmt.Errorf("invalid quantity: %w", err)
	}
	if quantity <= 0 {
		return model.DividendRecord{}, fmt.Errorf("quantity must be positive")
	}

	return model.DividendRecord{
		Ticker:           ticker,
		PaymentDate:      paymentDate,
		AmountPerShare:   amount,
		QuantityEligible: quantity,
		TotalAmount:      quantity * amount,
		Type:             MapDividendType(row.Type),
	}, nil
}

// NormalizeDate parses any accepted date format and normalizes it to the
// calendar-date representation (YYYY-MM-DD, time component dropped).
func NormalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("missing date")
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}

	return "", fmt.Errorf("unparseable date %q", raw)
}

// NormalizeTicker upper-cases and trims a ticker, stripping the Yahoo-style
// .SA suffix some sources append to B3 symbols.
func NormalizeTicker(raw string) string {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	ticker = strings.TrimSuffix(ticker, ".SA")
	return ticker
}

// parseAmount converts a numeric cell value, tolerating the decimal comma
// common in pt-BR exports. An empty cell takes the default.
func parseAmount(raw string, def float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	raw = strings.ReplaceAll(raw, ",", ".")
	return strconv.ParseFloat(raw, 64)
}
