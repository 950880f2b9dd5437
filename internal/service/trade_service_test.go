package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gfranca/b3-ledger-backend/internal/importer"
	"github.com/gfranca/b3-ledger-backend/internal/model"
	"github.com/gfranca/b3-ledger-backend/internal/repository"
	"github.com/gfranca/b3-ledger-backend/internal/testutil"
)

func TestTradeAppend(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tenantID := uuid.New().String()

	trades := NewTradeService(repository.NewTradeRepository(db), testutil.SilentLogger())

	t.Run("Mixed batch reports rejects with reasons", func(t *testing.T) {
		rows := []importer.TradeRow{
			{Date: "2025-01-10", Ticker: "PETR4", Side: "BUY", Quantity: "100", Price: "30.00"},
			{Date: "not-a-date", Ticker: "PETR4", Side: "BUY", Quantity: "10", Price: "30.00"},
			{Date: "2025-01-11", Ticker: "PETR4", Side: "HOLD", Quantity: "10", Price: "30.00"},
			{Date: "2025-01-12", Ticker: "VALE3", Side: "V", Quantity: "5", Price: "60,50"},
		}

		report, err := trades.Append(context.Background(), tenantID, rows)
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}

		if report.Inserted != 2 {
			t.Errorf("Expected 2 inserted, got %d", report.Inserted)
		}
		if len(report.Rejected) != 2 {
			t.Fatalf("Expected 2 rejected, got %d", len(report.Rejected))
		}
		if report.Rejected[0].Line != 2 || report.Rejected[1].Line != 3 {
			t.Errorf("Expected rejects on lines 2 and 3, got %+v", report.Rejected)
		}

		testutil.AssertRowCount(t, db, "trade", 2)
		testutil.CleanDatabase(t, db)
	})

	t.Run("All rows rejected still succeeds", func(t *testing.T) {
		rows := []importer.TradeRow{
			{Date: "", Ticker: "PETR4", Side: "BUY", Quantity: "10", Price: "30"},
		}

		report, err := trades.Append(context.Background(), tenantID, rows)
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if report.Inserted != 0 || len(report.Rejected) != 1 {
			t.Errorf("Expected 0 inserted and 1 rejected, got %+v", report)
		}

		testutil.CleanDatabase(t, db)
	})
}

func TestQuantityAsOf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tenantID := uuid.New().String()

	trades := NewTradeService(repository.NewTradeRepository(db), testutil.SilentLogger())

	testutil.InsertTrade(t, db, tenantID, "PETR4", model.SideBuy, 100, 30, 0, "2025-01-10")
	testutil.InsertTrade(t, db, tenantID, "PETR4", model.SideSell, 40, 34, 0, "2025-02-20")

	cases := []struct {
		name     string
		date     string
		expected float64
	}{
		{"Before first buy", "2025-01-09", 0},
		{"On buy date is inclusive", "2025-01-10", 100},
		{"Between trades", "2025-02-01", 100},
		{"On sell date is inclusive", "2025-02-20", 60},
		{"After all trades", "2025-03-01", 60},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			date, _ := time.Parse("2006-01-02", tc.date)
			quantity, err := trades.QuantityAsOf(tenantID, "PETR4", date)
			if err != nil {
				t.Fatalf("QuantityAsOf failed: %v", err)
			}
			if !almostEqual(quantity, tc.expected) {
				t.Errorf("Expected quantity %f at %s, got %f", tc.expected, tc.date, quantity)
			}
		})
	}

	t.Run("Over-sell clamps at zero", func(t *testing.T) {
		testutil.InsertTrade(t, db, tenantID, "VALE3", model.SideBuy, 10, 10, 0, "2025-01-10")
		testutil.InsertTrade(t, db, tenantID, "VALE3", model.SideSell, 25, 12, 0, "2025-01-20")
		testutil.InsertTrade(t, db, tenantID, "VALE3", model.SideBuy, 5, 12, 0, "2025-01-25")

		date, _ := time.Parse("2006-01-02", "2025-02-01")
		quantity, err := trades.QuantityAsOf(tenantID, "VALE3", date)
		if err != nil {
			t.Fatalf("QuantityAsOf failed: %v", err)
		}

		// The over-sell floors at zero, so the later buy starts from 0.
		if !almostEqual(quantity, 5) {
			t.Errorf("Expected quantity 5 after clamped over-sell, got %f", quantity)
		}
	})
}

func TestTradeReset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tenantID := uuid.New().String()
	otherTenant := uuid.New().String()

	trades := NewTradeService(repository.NewTradeRepository(db), testutil.SilentLogger())

	testutil.InsertTrade(t, db, tenantID, "PETR4", model.SideBuy, 100, 30, 0, "2025-01-10")
	testutil.InsertTrade(t, db, otherTenant, "PETR4", model.SideBuy, 50, 30, 0, "2025-01-10")

	if err := trades.Reset(context.Background(), tenantID); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	// Only the reset tenant's rows disappear.
	testutil.AssertRowCount(t, db, "trade", 1)
}
