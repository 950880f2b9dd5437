package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates the ledger tables for testing.
// Schema is synchronized with the embedded migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Trade ledger table
		CREATE TABLE trade (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id VARCHAR(36) NOT NULL UNIQUE,
			tenant_id VARCHAR(36) NOT NULL,
			ticker VARCHAR(12) NOT NULL,
			side VARCHAR(4) NOT NULL CHECK (side IN ('BUY','SELL')),
			quantity FLOAT NOT NULL CHECK (quantity > 0),
			price FLOAT NOT NULL CHECK (price >= 0),
			fees FLOAT NOT NULL DEFAULT 0 CHECK (fees >= 0),
			trade_date DATE NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX ix_trade_tenant_ticker ON trade(tenant_id, ticker);
		CREATE INDEX ix_trade_tenant_date ON trade(tenant_id, trade_date);

		-- Dividend ledger table
		CREATE TABLE dividend (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			tenant_id VARCHAR(36) NOT NULL,
			ticker VARCHAR(12) NOT NULL,
			payment_date DATE NOT NULL,
			ex_date DATE,
			amount_per_share FLOAT NOT NULL,
			quantity_eligible FLOAT NOT NULL,
			total_amount FLOAT NOT NULL,
			type VARCHAR(10) NOT NULL DEFAULT 'DIVIDEND' CHECK (type IN ('DIVIDEND','JCP','INCOME')),
			source VARCHAR(50) NOT NULL DEFAULT 'brapi.dev',
			fetched_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_dividend UNIQUE (tenant_id, ticker, payment_date, amount_per_share)
		);

		CREATE INDEX ix_dividend_tenant_ticker ON dividend(tenant_id, ticker);
		CREATE INDEX ix_dividend_tenant_payment_date ON dividend(tenant_id, payment_date);
		CREATE INDEX ix_dividend_fetched_at ON dividend(fetched_at);
	`

	_, err := db.Exec(schema)
	return err
}

// CleanDatabase truncates all tables.
// Useful for reusing the same database across multiple tests.
func CleanDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	for _, table := range []string{"dividend", "trade"} {
		query := "DELETE FROM " + table
		if _, err := db.Exec(query); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}

// CountRows returns the number of rows in a table.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	query := "SELECT COUNT(*) FROM " + table
	err := db.QueryRow(query).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}

// AssertRowCount asserts that a table has the expected number of rows.
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	actual := CountRows(t, db, table)
	if actual != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, actual)
	}
}
