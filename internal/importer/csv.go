package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gfranca/b3-ledger-backend/internal/model"
)

// ReadTradeCSV decodes a trade CSV (headers matched case-insensitively:
// date/trade_date, ticker, side, quantity, price, fees) into raw rows.
// Decode errors on individual records become rejected rows, keyed by the
// 1-based data line number.
func ReadTradeCSV(r io.Reader) ([]TradeRow, []model.RejectedRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := headerIndex(header)

	var tradeRows []TradeRow
	var rejected []model.RejectedRow

	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rejected = append(rejected, model.RejectedRow{Line: line, Reason: err.Error()})
			continue
		}

		get := func(keys ...string) string {
			for _, key := range keys {
				if idx, ok := cols[key]; ok && idx < len(record) {
					return record[idx]
				}
			}
			return ""
		}

		tradeRows = append(tradeRows, TradeRow{
			Date:     get("date", "trade_date"),
			Ticker:   get("ticker"),
			Side:     get("side"),
			Quantity: get("quantity"),
			Price:    get("price"),
			Fees:     get("fees"),
		})
	}

	return tradeRows, rejected, nil
}

// DividendRow is one raw dividend import row (manually-kept spreadsheet,
// pt-BR headers as exported by brokers).
type DividendRow struct {
	PaymentDate    string
	Ticker         string
	AmountPerShare string
	Quantity       string
	Type           string
}

// ReadDividendCSV decodes a dividend CSV. Accepted headers:
// data_pagamento/data/date, ticker, valor_por_acao/valor,
// quantidade_acoes/quantidade/qty, tipo.
func ReadDividendCSV(r io.Reader) ([]DividendRow, []model.RejectedRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := headerIndex(header)

	var dividendRows []DividendRow
	var rejected []model.RejectedRow

	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rejected = append(rejected, model.RejectedRow{Line: line, Reason: err.Error()})
			continue
		}

		get := func(keys ...string) string {
			for _, key := range keys {
				if idx, ok := cols[key]; ok && idx < len(record) {
					return record[idx]
				}
			}
			return ""
		}

		dividendRows = append(dividendRows, DividendRow{
			PaymentDate:    get("data_pagamento", "data", "date"),
			Ticker:         get("ticker"),
			AmountPerShare: get("valor_por_acao", "valor"),
			Quantity:       get("quantidade_acoes", "quantidade", "qty"),
			Type:           get("tipo"),
		})
	}

	return dividendRows, rejected, nil
}

// MapDividendType maps a raw type cell onto the canonical dividend types.
// Unknown values default to DIVIDEND, matching the feed's label mapping.
func MapDividendType(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "JCP", "JSCP":
		return model.DividendTypeJCP
	case "RENDIMENTO", "INCOME":
		return model.DividendTypeIncome
	default:
		return model.DividendTypeDividend
	}
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if name != "" {
			cols[name] = i
		}
	}
	return cols
}
