package importer

import (
	"strings"
	"testing"

	"github.com/gfranca/b3-ledger-backend/internal/model"
)

func TestNormalizeTrade(t *testing.T) {
	t.Run("Accepts canonical row", func(t *testing.T) {
		trade, err := NormalizeTrade(TradeRow{
			Date: "2025-01-10", Ticker: "petr4", Side: "buy", Quantity: "100", Price: "30.00", Fees: "4.90",
		})
		if err != nil {
			t.Fatalf("NormalizeTrade failed: %v", err)
		}

		if trade.Ticker != "PETR4" || trade.Side != model.SideBuy {
			t.Errorf("Expected upper-cased PETR4 BUY, got %s %s", trade.Ticker, trade.Side)
		}
		if trade.TradeDate != "2025-01-10" {
			t.Errorf("Expected date 2025-01-10, got %s", trade.TradeDate)
		}
	})

	t.Run("Accepts localized side and decimal comma", func(t *testing.T) {
		trade, err := NormalizeTrade(TradeRow{
			Date: "10/01/2025", Ticker: "VALE3", Side: "V", Quantity: "50", Price: "60,50",
		})
		if err != nil {
			t.Fatalf("NormalizeTrade failed: %v", err)
		}

		if trade.Side != model.SideSell {
			t.Errorf("Expected V to map to SELL, got %s", trade.Side)
		}
		if trade.Price != 60.50 {
			t.Errorf("Expected price 60.50, got %f", trade.Price)
		}
		if trade.TradeDate != "2025-01-10" {
			t.Errorf("Expected dd/mm/yyyy to normalize, got %s", trade.TradeDate)
		}
	})

	t.Run("Empty fees default to zero", func(t *testing.T) {
		trade, err := NormalizeTrade(TradeRow{
			Date: "2025-01-10", Ticker: "PETR4", Side: "COMPRA", Quantity: "10", Price: "30",
		})
		if err != nil {
			t.Fatalf("NormalizeTrade failed: %v", err)
		}
		if trade.Fees != 0 {
			t.Errorf("Expected zero fees, got %f", trade.Fees)
		}
	})

	rejections := []struct {
		name string
		row  TradeRow
	}{
		{"Unparseable date", TradeRow{Date: "soon", Ticker: "PETR4", Side: "BUY", Quantity: "10", Price: "30"}},
		{"Missing date", TradeRow{Ticker: "PETR4", Side: "BUY", Quantity: "10", Price: "30"}},
		{"Missing ticker", TradeRow{Date: "2025-01-10", Side: "BUY", Quantity: "10", Price: "30"}},
		{"Unknown side", TradeRow{Date: "2025-01-10", Ticker: "PETR4", Side: "HOLD", Quantity: "10", Price: "30"}},
		{"Zero quantity", TradeRow{Date: "2025-01-10", Ticker: "PETR4", Side: "BUY", Quantity: "0", Price: "30"}},
		{"Negative price", TradeRow{Date: "2025-01-10", Ticker: "PETR4", Side: "BUY", Quantity: "10", Price: "-1"}},
		{"Negative fees", TradeRow{Date: "2025-01-10", Ticker: "PETR4", Side: "BUY", Quantity: "10", Price: "30", Fees: "-1"}},
	}

	for _, tc := range rejections {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NormalizeTrade(tc.row); err == nil {
				t.Errorf("Expected rejection for %+v", tc.row)
			}
		})
	}
}

func TestNormalizeDividend(t *testing.T) {
	rec, err := NormalizeDividend(DividendRow{
		PaymentDate: "2025-04-01", Ticker: "petr4.sa", AmountPerShare: "1,50", Quantity: "100", Type: "jscp",
	})
	if err != nil {
		t.Fatalf("NormalizeDividend failed: %v", err)
	}

	if rec.Ticker != "PETR4" {
		t.Errorf("Expected .SA suffix stripped, got %s", rec.Ticker)
	}
	if rec.Type != model.DividendTypeJCP {
		t.Errorf("Expected JCP, got %s", rec.Type)
	}
	if rec.TotalAmount != 150 {
		t.Errorf("Expected total 150, got %f", rec.TotalAmount)
	}

	if _, err := NormalizeDividend(DividendRow{PaymentDate: "2025-04-01", Ticker: "PETR4", AmountPerShare: "0", Quantity: "10"}); err == nil {
		t.Error("Expected rejection for zero amount per share")
	}
}

func TestReadTradeCSV(t *testing.T) {
	csv := "\ufeffDate,Ticker,Side,Quantity,Price,Fees\n" +
		"2025-01-10,PETR4,BUY,100,30.00,4.90\n" +
		"2025-02-20,PETR4,SELL,40,34.00,\n"

	rows, rejected, err := ReadTradeCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadTradeCSV failed: %v", err)
	}
	if len(rejected) != 0 {
		t.Fatalf("Expected no rejects, got %+v", rejected)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	// BOM on the first header must not break column mapping.
	if rows[0].Date != "2025-01-10" || rows[0].Ticker != "PETR4" {
		t.Errorf("Unexpected first row: %+v", rows[0])
	}
	if rows[1].Fees != "" {
		t.Errorf("Expected empty fees cell, got %q", rows[1].Fees)
	}
}

func TestReadDividendCSV(t *testing.T) {
	csv := "data_pagamento,ticker,valor_por_acao,quantidade_acoes,tipo\n" +
		"2025-04-01,PETR4,\"1,50\",100,JCP\n"

	rows, rejected, err := ReadDividendCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadDividendCSV failed: %v", err)
	}
	if len(rejected) != 0 || len(rows) != 1 {
		t.Fatalf("Expected 1 clean row, got %d rows and %d rejects", len(rows), len(rejected))
	}

	if rows[0].AmountPerShare != "1,50" || rows[0].Type != "JCP" {
		t.Errorf("Unexpected row: %+v", rows[0])
	}
}
