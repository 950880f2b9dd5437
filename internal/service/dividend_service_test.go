package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gfranca/b3-ledger-backend/internal/brapi"
	"github.com/gfranca/b3-ledger-backend/internal/importer"
	"github.com/gfranca/b3-ledger-backend/internal/model"
	"github.com/gfranca/b3-ledger-backend/internal/repository"
	"github.com/gfranca/b3-ledger-backend/internal/testutil"
)

// fakeFeed serves canned dividend events per ticker and counts fetches.
type fakeFeed struct {
	events  map[string][]brapi.DividendEvent
	prices  map[string]float64
	fetches int
}

func (f *fakeFeed) FetchDividends(_ context.Context, ticker string) ([]brapi.DividendEvent, error) {
	f.fetches++
	return f.events[ticker], nil
}

func (f *fakeFeed) LastPrice(_ context.Context, ticker string) (float64, error) {
	return f.prices[ticker], nil
}

func (f *fakeFeed) Source() string { return "test" }

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestDividendSync(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tenantID := uuid.New().String()

	trades := NewTradeService(repository.NewTradeRepository(db), testutil.SilentLogger())
	positions := NewPositionService(trades)

	t.Run("Eligibility boundary around first buy", func(t *testing.T) {
		feed := &fakeFeed{events: map[string][]brapi.DividendEvent{
			"PETR4": {
				{Ticker: "PETR4", PaymentDate: date("2025-04-01"), ExDate: date("2025-03-09"), AmountPerShare: 1.00, Type: model.DividendTypeDividend},
				{Ticker: "PETR4", PaymentDate: date("2025-04-02"), ExDate: date("2025-03-10"), AmountPerShare: 1.50, Type: model.DividendTypeDividend},
				{Ticker: "PETR4", PaymentDate: date("2025-04-03"), ExDate: date("2025-03-11"), AmountPerShare: 2.00, Type: model.DividendTypeDividend},
			},
		}}
		dividends := NewDividendService(repository.NewDividendRepository(db), trades, positions, feed, 24*time.Hour, 2, testutil.SilentLogger())

		testutil.InsertTrade(t, db, tenantID, "PETR4", model.SideBuy, 100, 30, 0, "2025-03-10")

		result, err := dividends.Sync(context.Background(), tenantID, []string{"PETR4"}, true)
		if err != nil {
			t.Fatalf("Sync failed: %v", err)
		}

		if result.Found != 3 {
			t.Errorf("Expected 3 events found, got %d", result.Found)
		}
		// Only the ex-date strictly after the first buy qualifies.
		if result.Imported != 1 {
			t.Errorf("Expected 1 imported, got %d", result.Imported)
		}

		records, err := dividends.ListRecent(tenantID, 10)
		if err != nil {
			t.Fatalf("ListRecent failed: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("Expected 1 record, got %d", len(records))
		}
		if !almostEqual(records[0].QuantityEligible, 100) {
			t.Errorf("Expected eligible quantity 100, got %f", records[0].QuantityEligible)
		}
		if !almostEqual(records[0].TotalAmount, 200) {
			t.Errorf("Expected total 200, got %f", records[0].TotalAmount)
		}

		testutil.CleanDatabase(t, db)
	})

	t.Run("Second sync with unchanged feed imports nothing", func(t *testing.T) {
		feed := &fakeFeed{events: map[string][]brapi.DividendEvent{
			"VALE3": {
				{Ticker: "VALE3", PaymentDate: date("2025-05-15"), ExDate: date("2025-04-30"), AmountPerShare: 2.50, Type: model.DividendTypeDividend},
			},
		}}
		dividends := NewDividendService(repository.NewDividendRepository(db), trades, positions, feed, 24*time.Hour, 2, testutil.SilentLogger())

		testutil.InsertTrade(t, db, tenantID, "VALE3", model.SideBuy, 40, 60, 0, "2025-01-10")

		first, err := dividends.Sync(context.Background(), tenantID, []string{"VALE3"}, true)
		if err != nil {
			t.Fatalf("First sync failed: %v", err)
		}
		if first.Imported != 1 {
			t.Fatalf("Expected 1 imported on first sync, got %d", first.Imported)
		}

		second, err := dividends.Sync(context.Background(), tenantID, []string{"VALE3"}, true)
		if err != nil {
			t.Fatalf("Second sync failed: %v", err)
		}
		if second.Imported != 0 {
			t.Errorf("Expected 0 imported on second sync, got %d", second.Imported)
		}
		if second.SkippedDuplicates != 1 {
			t.Errorf("Expected 1 duplicate skipped, got %d", second.SkippedDuplicates)
		}

		testutil.AssertRowCount(t, db, "dividend", 1)
		testutil.CleanDatabase(t, db)
	})

	t.Run("Freshness window suppresses refetch", func(t *testing.T) {
		feed := &fakeFeed{events: map[string][]brapi.DividendEvent{
			"ITUB4": {
				{Ticker: "ITUB4", PaymentDate: date("2025-05-15"), ExDate: date("2025-04-30"), AmountPerShare: 0.30, Type: model.DividendTypeDividend},
			},
		}}
		dividends := NewDividendService(repository.NewDividendRepository(db), trades, positions, feed, 24*time.Hour, 2, testutil.SilentLogger())

		testutil.InsertTrade(t, db, tenantID, "ITUB4", model.SideBuy, 50, 25, 0, "2025-01-10")

		if _, err := dividends.Sync(context.Background(), tenantID, []string{"ITUB4"}, false); err != nil {
			t.Fatalf("First sync failed: %v", err)
		}

		result, err := dividends.Sync(context.Background(), tenantID, []string{"ITUB4"}, false)
		if err != nil {
			t.Fatalf("Second sync failed: %v", err)
		}

		if result.Cached != 1 {
			t.Errorf("Expected ticker served from cache, got %+v", result)
		}
		if feed.fetches != 1 {
			t.Errorf("Expected 1 feed fetch, got %d", feed.fetches)
		}

		testutil.CleanDatabase(t, db)
	})

	t.Run("Payment date is the fallback reference", func(t *testing.T) {
		feed := &fakeFeed{events: map[string][]brapi.DividendEvent{
			"BBAS3": {
				// No ex-date reported: payment date decides eligibility.
				{Ticker: "BBAS3", PaymentDate: date("2025-01-05"), AmountPerShare: 1.00, Type: model.DividendTypeDividend},
				{Ticker: "BBAS3", PaymentDate: date("2025-02-05"), AmountPerShare: 1.00, Type: model.DividendTypeDividend},
			},
		}}
		dividends := NewDividendService(repository.NewDividendRepository(db), trades, positions, feed, 24*time.Hour, 2, testutil.SilentLogger())

		testutil.InsertTrade(t, db, tenantID, "BBAS3", model.SideBuy, 10, 20, 0, "2025-01-10")

		result, err := dividends.Sync(context.Background(), tenantID, []string{"BBAS3"}, true)
		if err != nil {
			t.Fatalf("Sync failed: %v", err)
		}

		if result.Imported != 1 {
			t.Errorf("Expected only the later payment to qualify, got %d imported", result.Imported)
		}

		testutil.CleanDatabase(t, db)
	})

	t.Run("Ticker without buys imports nothing", func(t *testing.T) {
		feed := &fakeFeed{events: map[string][]brapi.DividendEvent{
			"WEGE3": {
				{Ticker: "WEGE3", PaymentDate: date("2025-05-15"), ExDate: date("2025-04-30"), AmountPerShare: 0.10, Type: model.DividendTypeDividend},
			},
		}}
		dividends := NewDividendService(repository.NewDividendRepository(db), trades, positions, feed, 24*time.Hour, 2, testutil.SilentLogger())

		result, err := dividends.Sync(context.Background(), tenantID, []string{"WEGE3"}, true)
		if err != nil {
			t.Fatalf("Sync failed: %v", err)
		}

		if result.Found != 1 || result.Imported != 0 {
			t.Errorf("Expected 1 found and 0 imported, got %+v", result)
		}

		testutil.AssertRowCount(t, db, "dividend", 0)
	})
}

func TestDividendClean(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tenantID := uuid.New().String()

	trades := NewTradeService(repository.NewTradeRepository(db), testutil.SilentLogger())
	positions := NewPositionService(trades)
	feed := &fakeFeed{}
	dividends := NewDividendService(repository.NewDividendRepository(db), trades, positions, feed, 24*time.Hour, 2, testutil.SilentLogger())

	t.Run("Removes records on or before first buy", func(t *testing.T) {
		testutil.InsertTrade(t, db, tenantID, "PETR4", model.SideBuy, 100, 30, 0, "2025-03-10")

		testutil.InsertDividend(t, db, tenantID, "PETR4", "2025-04-01", "2025-03-09", 1.00, 100)
		testutil.InsertDividend(t, db, tenantID, "PETR4", "2025-04-02", "2025-03-10", 1.50, 100)
		testutil.InsertDividend(t, db, tenantID, "PETR4", "2025-04-03", "2025-03-11", 2.00, 100)

		result, err := dividends.CleanInvalid(context.Background(), tenantID)
		if err != nil {
			t.Fatalf("CleanInvalid failed: %v", err)
		}

		if result.RecordsChecked != 3 {
			t.Errorf("Expected 3 records checked, got %d", result.RecordsChecked)
		}
		if result.RecordsRemoved != 2 {
			t.Errorf("Expected 2 records removed, got %d", result.RecordsRemoved)
		}
		if result.RemovedByTicker["PETR4"] != 2 {
			t.Errorf("Expected 2 removed for PETR4, got %d", result.RemovedByTicker["PETR4"])
		}

		testutil.AssertRowCount(t, db, "dividend", 1)
		testutil.CleanDatabase(t, db)
	})

	t.Run("Removes everything for tickers without buys", func(t *testing.T) {
		testutil.InsertDividend(t, db, tenantID, "VALE3", "2025-04-01", "2025-03-09", 1.00, 100)
		testutil.InsertDividend(t, db, tenantID, "VALE3", "2025-05-01", "2025-04-09", 1.00, 100)

		result, err := dividends.CleanInvalid(context.Background(), tenantID)
		if err != nil {
			t.Fatalf("CleanInvalid failed: %v", err)
		}

		if result.RecordsRemoved != 2 {
			t.Errorf("Expected 2 records removed, got %d", result.RecordsRemoved)
		}

		testutil.AssertRowCount(t, db, "dividend", 0)
		testutil.CleanDatabase(t, db)
	})

	t.Run("Missing ex date falls back to payment date", func(t *testing.T) {
		testutil.InsertTrade(t, db, tenantID, "ITUB4", model.SideBuy, 50, 25, 0, "2025-03-10")

		testutil.InsertDividend(t, db, tenantID, "ITUB4", "2025-03-01", "", 1.00, 50)
		testutil.InsertDividend(t, db, tenantID, "ITUB4", "2025-04-01", "", 1.50, 50)

		result, err := dividends.CleanInvalid(context.Background(), tenantID)
		if err != nil {
			t.Fatalf("CleanInvalid failed: %v", err)
		}

		if result.RecordsRemoved != 1 {
			t.Errorf("Expected 1 record removed, got %d", result.RecordsRemoved)
		}

		testutil.AssertRowCount(t, db, "dividend", 1)
		testutil.CleanDatabase(t, db)
	})
}

func TestDividendImport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tenantID := uuid.New().String()

	trades := NewTradeService(repository.NewTradeRepository(db), testutil.SilentLogger())
	positions := NewPositionService(trades)
	dividends := NewDividendService(repository.NewDividendRepository(db), trades, positions, &fakeFeed{}, 24*time.Hour, 2, testutil.SilentLogger())

	rows := []importer.DividendRow{
		{PaymentDate: "2025-04-01", Ticker: "PETR4", AmountPerShare: "1,50", Quantity: "100", Type: "JCP"},
		{PaymentDate: "bad-date", Ticker: "PETR4", AmountPerShare: "1.00", Quantity: "100"},
		{PaymentDate: "2025-04-01", Ticker: "PETR4", AmountPerShare: "1.50", Quantity: "100", Type: "JCP"},
	}

	report, err := dividends.Import(context.Background(), tenantID, rows)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if report.Inserted != 1 {
		t.Errorf("Expected 1 inserted, got %d", report.Inserted)
	}
	// Row 2 is unparseable, row 3 duplicates row 1.
	if len(report.Rejected) != 2 {
		t.Errorf("Expected 2 rejected, got %+v", report.Rejected)
	}

	records, total, err := dividends.ListByTicker(tenantID, "PETR4")
	if err != nil {
		t.Fatalf("ListByTicker failed: %v", err)
	}
	if len(records) != 1 || records[0].Type != model.DividendTypeJCP {
		t.Errorf("Expected 1 JCP record, got %+v", records)
	}
	if !almostEqual(total, 150) {
		t.Errorf("Expected total 150, got %f", total)
	}
}
