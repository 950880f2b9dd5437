package service

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/gfranca/b3-ledger-backend/internal/model"
	"github.com/gfranca/b3-ledger-backend/internal/repository"
	"github.com/gfranca/b3-ledger-backend/internal/testutil"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestOpenPositions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tenantID := uuid.New().String()

	trades := NewTradeService(repository.NewTradeRepository(db), testutil.SilentLogger())
	positions := NewPositionService(trades)

	t.Run("Weighted average blends buys", func(t *testing.T) {
		testutil.InsertTrade(t, db, tenantID, "VALE3", model.SideBuy, 10, 10, 0, "2025-01-10")
		testutil.InsertTrade(t, db, tenantID, "VALE3", model.SideBuy, 10, 20, 0, "2025-01-20")

		open, err := positions.OpenPositions(tenantID)
		if err != nil {
			t.Fatalf("OpenPositions failed: %v", err)
		}

		if len(open) != 1 {
			t.Fatalf("Expected 1 position, got %d", len(open))
		}
		if !almostEqual(open[0].NetQuantity, 20) {
			t.Errorf("Expected quantity 20, got %f", open[0].NetQuantity)
		}
		if !almostEqual(open[0].AvgCost, 15) {
			t.Errorf("Expected avg cost 15, got %f", open[0].AvgCost)
		}

		testutil.CleanDatabase(t, db)
	})

	t.Run("Sell keeps average cost unchanged", func(t *testing.T) {
		testutil.InsertTrade(t, db, tenantID, "VALE3", model.SideBuy, 10, 10, 0, "2025-01-10")
		testutil.InsertTrade(t, db, tenantID, "VALE3", model.SideBuy, 10, 20, 0, "2025-01-20")
		testutil.InsertTrade(t, db, tenantID, "VALE3", model.SideSell, 5, 30, 0, "2025-02-01")

		open, err := positions.OpenPositions(tenantID)
		if err != nil {
			t.Fatalf("OpenPositions failed: %v", err)
		}

		if !almostEqual(open[0].NetQuantity, 15) {
			t.Errorf("Expected quantity 15, got %f", open[0].NetQuantity)
		}
		if !almostEqual(open[0].AvgCost, 15) {
			t.Errorf("Expected avg cost 15 after sell, got %f", open[0].AvgCost)
		}

		testutil.CleanDatabase(t, db)
	})

	t.Run("Close and reopen resets cost basis", func(t *testing.T) {
		testutil.InsertTrade(t, db, tenantID, "ITUB4", model.SideBuy, 10, 10, 0, "2025-01-10")
		testutil.InsertTrade(t, db, tenantID, "ITUB4", model.SideSell, 10, 12, 0, "2025-01-20")
		testutil.InsertTrade(t, db, tenantID, "ITUB4", model.SideBuy, 5, 50, 0, "2025-02-01")

		open, err := positions.OpenPositions(tenantID)
		if err != nil {
			t.Fatalf("OpenPositions failed: %v", err)
		}

		if len(open) != 1 {
			t.Fatalf("Expected 1 position, got %d", len(open))
		}
		if !almostEqual(open[0].AvgCost, 50) {
			t.Errorf("Expected fresh avg cost 50, got %f", open[0].AvgCost)
		}
		if open[0].FirstBuyDate == nil || open[0].FirstBuyDate.Format("2006-01-02") != "2025-02-01" {
			t.Errorf("Expected first buy date to reset to re-entry date, got %v", open[0].FirstBuyDate)
		}

		testutil.CleanDatabase(t, db)
	})

	t.Run("Closed positions are excluded", func(t *testing.T) {
		testutil.InsertTrade(t, db, tenantID, "BBAS3", model.SideBuy, 10, 10, 0, "2025-01-10")
		testutil.InsertTrade(t, db, tenantID, "BBAS3", model.SideSell, 10, 12, 0, "2025-01-20")

		open, err := positions.OpenPositions(tenantID)
		if err != nil {
			t.Fatalf("OpenPositions failed: %v", err)
		}

		if len(open) != 0 {
			t.Errorf("Expected no open positions, got %d", len(open))
		}

		testutil.CleanDatabase(t, db)
	})

	t.Run("Over-sell clamps at zero", func(t *testing.T) {
		testutil.InsertTrade(t, db, tenantID, "WEGE3", model.SideBuy, 10, 10, 0, "2025-01-10")
		testutil.InsertTrade(t, db, tenantID, "WEGE3", model.SideSell, 25, 12, 0, "2025-01-20")

		open, err := positions.OpenPositions(tenantID)
		if err != nil {
			t.Fatalf("OpenPositions failed: %v", err)
		}

		if len(open) != 0 {
			t.Errorf("Expected over-sold position to clamp closed, got %d open", len(open))
		}

		testutil.CleanDatabase(t, db)
	})

	t.Run("Positions sorted by ticker", func(t *testing.T) {
		testutil.InsertTrade(t, db, tenantID, "VALE3", model.SideBuy, 10, 10, 0, "2025-01-10")
		testutil.InsertTrade(t, db, tenantID, "ABEV3", model.SideBuy, 10, 10, 0, "2025-01-10")

		open, err := positions.OpenPositions(tenantID)
		if err != nil {
			t.Fatalf("OpenPositions failed: %v", err)
		}

		if len(open) != 2 || open[0].Ticker != "ABEV3" || open[1].Ticker != "VALE3" {
			t.Errorf("Expected positions sorted by ticker, got %+v", open)
		}

		testutil.CleanDatabase(t, db)
	})

	t.Run("Tenant isolation", func(t *testing.T) {
		otherTenant := uuid.New().String()
		testutil.InsertTrade(t, db, otherTenant, "VALE3", model.SideBuy, 10, 10, 0, "2025-01-10")

		open, err := positions.OpenPositions(tenantID)
		if err != nil {
			t.Fatalf("OpenPositions failed: %v", err)
		}

		if len(open) != 0 {
			t.Errorf("Expected no positions for other tenant, got %d", len(open))
		}

		testutil.CleanDatabase(t, db)
	})
}
