package testutil

import (
	"database/sql"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SilentLogger returns a logrus logger that discards all output, for
// wiring services under test.
func SilentLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// InsertTrade inserts one trade row directly, bypassing the importer.
// date is YYYY-MM-DD.
func InsertTrade(t *testing.T, db *sql.DB, tenantID, ticker, side string, quantity, price, fees float64, date string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO trade (id, tenant_id, ticker, side, quantity, price, fees, trade_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), tenantID, ticker, side, quantity, price, fees, date)
	if err != nil {
		t.Fatalf("Failed to insert trade fixture: %v", err)
	}
}

// InsertDividend inserts one dividend row directly. exDate may be empty for
// a record without an ex-dividend date; dates are YYYY-MM-DD.
func InsertDividend(t *testing.T, db *sql.DB, tenantID, ticker, paymentDate, exDate string, amountPerShare, quantity float64) {
	t.Helper()

	var ex any
	if exDate != "" {
		ex = exDate
	}

	_, err := db.Exec(`
		INSERT INTO dividend
			(id, tenant_id, ticker, payment_date, ex_date, amount_per_share,
			 quantity_eligible, total_amount, type, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'DIVIDEND', 'test')
	`, uuid.New().String(), tenantID, ticker, paymentDate, ex, amountPerShare,
		quantity, quantity*amountPerShare)
	if err != nil {
		t.Fatalf("Failed to insert dividend fixture: %v", err)
	}
}
