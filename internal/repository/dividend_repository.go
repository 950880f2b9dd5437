package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gfranca/b3-ledger-backend/internal/model"
)

// DividendRepository provides data access methods for the dividend ledger.
// Inserts are idempotent against the (tenant, ticker, payment_date,
// amount_per_share) uniqueness key, so concurrent syncs for the same
// tenant are safe to interleave.
type DividendRepository struct {
	db *sql.DB
}

// NewDividendRepository creates a new DividendRepository with the provided database connection.
func NewDividendRepository(db *sql.DB) *DividendRepository {
	return &DividendRepository{db: db}
}

// InsertIfAbsent inserts a dividend record unless one with the same
// uniqueness key already exists. Returns true when a row was actually
// inserted, false when it was skipped as a duplicate.
func (s *DividendRepository) InsertIfAbsent(ctx context.Context, rec *model.DividendRecord) (bool, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	var exDate any
	if !rec.ExDate.IsZero() {
		exDate = DateString(rec.ExDate)
	}

	var fetchedAt any
	if !rec.FetchedAt.IsZero() {
		fetchedAt = rec.FetchedAt.UTC().Format("2006-01-02 15:04:05")
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO dividend
			(id, tenant_id, ticker, payment_date, ex_date, amount_per_share,
			 quantity_eligible, total_amount, type, source, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.TenantID,
		rec.Ticker,
		DateString(rec.PaymentDate),
		exDate,
		rec.AmountPerShare,
		rec.QuantityEligible,
		rec.TotalAmount,
		rec.Type,
		rec.Source,
		fetchedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert dividend: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}

	return affected > 0, nil
}

// ListRecent retrieves the most recent dividend records for a tenant,
// newest payment first.
func (s *DividendRepository) ListRecent(tenantID string, limit int) ([]model.DividendRecord, error) {
	query := selectDividend + `
		WHERE tenant_id = ?
		ORDER BY payment_date DESC, id DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividend table: %w", err)
	}
	defer rows.Close()

	return scanDividends(rows)
}

// ListByTicker retrieves all dividend records for one ticker of a tenant,
// newest payment first.
func (s *DividendRepository) ListByTicker(tenantID, ticker string) ([]model.DividendRecord, error) {
	query := selectDividend + `
		WHERE tenant_id = ? AND ticker = ?
		ORDER BY payment_date DESC, id DESC
	`

	rows, err := s.db.Query(query, tenantID, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividend table: %w", err)
	}
	defer rows.Close()

	return scanDividends(rows)
}

// TotalsByTicker sums received dividend amounts per ticker plus the grand
// total for the tenant.
func (s *DividendRepository) TotalsByTicker(tenantID string) (map[string]float64, float64, error) {
	rows, err := s.db.Query(`
		SELECT ticker, SUM(total_amount)
		FROM dividend
		WHERE tenant_id = ?
		GROUP BY ticker
		ORDER BY ticker
	`, tenantID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query dividend totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]float64)
	var grandTotal float64

	for rows.Next() {
		var ticker string
		var total float64
		if err := rows.Scan(&ticker, &total); err != nil {
			return nil, 0, fmt.Errorf("failed to scan dividend totals: %w", err)
		}
		totals[ticker] = total
		grandTotal += total
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating dividend totals: %w", err)
	}

	return totals, grandTotal, nil
}

// LastFetchedAt returns the most recent successful fetch time recorded for
// a ticker. The sync job uses this to honor the freshness window.
//
// Returns time.Time{} (zero value) and false if the ticker was never
// fetched.
func (s *DividendRepository) LastFetchedAt(tenantID, ticker string) (time.Time, bool, error) {
	var fetchedStr sql.NullString

	err := s.db.QueryRow(`
		SELECT MAX(fetched_at) FROM dividend WHERE tenant_id = ? AND ticker = ?
	`, tenantID, ticker).Scan(&fetchedStr)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query last fetch time: %w", err)
	}
	if !fetchedStr.Valid {
		return time.Time{}, false, nil
	}

	fetched, err := ParseTime(fetchedStr.String)
	if err != nil {
		return time.Time{}, false, err
	}

	return fetched, true, nil
}

// TickersWithRecords lists the distinct tickers that have at least one
// dividend record for the tenant. Input set for the reconciliation pass.
func (s *DividendRepository) TickersWithRecords(tenantID string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT ticker FROM dividend WHERE tenant_id = ? ORDER BY ticker
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividend tickers: %w", err)
	}
	defer rows.Close()

	tickers := []string{}
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("failed to scan dividend ticker: %w", err)
		}
		tickers = append(tickers, ticker)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividend tickers: %w", err)
	}

	return tickers, nil
}

// TenantIDs lists the distinct tenants holding dividend records. Input set
// for the scheduled reconciliation pass.
func (s *DividendRepository) TenantIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT tenant_id FROM dividend ORDER BY tenant_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividend tenants: %w", err)
	}
	defer rows.Close()

	tenants := []string{}
	for rows.Next() {
		var tenantID string
		if err := rows.Scan(&tenantID); err != nil {
			return nil, fmt.Errorf("failed to scan dividend tenant: %w", err)
		}
		tenants = append(tenants, tenantID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividend tenants: %w", err)
	}

	return tenants, nil
}

// CountByTicker counts dividend records for one ticker of a tenant.
func (s *DividendRepository) CountByTicker(tenantID, ticker string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM dividend WHERE tenant_id = ? AND ticker = ?
	`, tenantID, ticker).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count dividends: %w", err)
	}
	return count, nil
}

// DeleteOnOrBeforeReference removes records whose reference date (ex_date
// when present, otherwise payment_date) is on or before the given date.
// Returns the number of rows removed.
func (s *DividendRepository) DeleteOnOrBeforeReference(ctx context.Context, tenantID, ticker string, date time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM dividend
		WHERE tenant_id = ? AND ticker = ?
		AND COALESCE(ex_date, payment_date) <= ?
	`, tenantID, ticker, DateString(date))
	if err != nil {
		return 0, fmt.Errorf("failed to delete dividends: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read delete result: %w", err)
	}

	return int(affected), nil
}

// DeleteAllForTicker removes every dividend record of a ticker. Used when
// the trade ledger shows no BUY for the ticker at all.
func (s *DividendRepository) DeleteAllForTicker(ctx context.Context, tenantID, ticker string) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM dividend WHERE tenant_id = ? AND ticker = ?
	`, tenantID, ticker)
	if err != nil {
		return 0, fmt.Errorf("failed to delete dividends: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read delete result: %w", err)
	}

	return int(affected), nil
}

// Reset wipes the entire dividend ledger of a tenant.
func (s *DividendRepository) Reset(ctx context.Context, tenantID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM dividend WHERE tenant_id = ?`, tenantID); err != nil {
		return fmt.Errorf("failed to reset dividends: %w", err)
	}
	return nil
}

const selectDividend = `
	SELECT id, tenant_id, ticker, payment_date, ex_date, amount_per_share,
	       quantity_eligible, total_amount, type, source, fetched_at
	FROM dividend
`

func scanDividends(rows *sql.Rows) ([]model.DividendRecord, error) {
	records := []model.DividendRecord{}

	for rows.Next() {
		var paymentStr string
		var exStr, fetchedStr sql.NullString
		var d model.DividendRecord

		err := rows.Scan(
			&d.ID,
			&d.TenantID,
			&d.Ticker,
			&paymentStr,
			&exStr,
			&d.AmountPerShare,
			&d.QuantityEligible,
			&d.TotalAmount,
			&d.Type,
			&d.Source,
			&fetchedStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dividend table results: %w", err)
		}

		d.PaymentDate, err = ParseTime(paymentStr)
		if err != nil || d.PaymentDate.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		// ex_date is nullable
		if exStr.Valid {
			d.ExDate, err = ParseTime(exStr.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse ex_date: %w", err)
			}
		}

		// fetched_at is nullable
		if fetchedStr.Valid {
			d.FetchedAt, err = ParseTime(fetchedStr.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse fetched_at: %w", err)
			}
		}

		records = append(records, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividend table: %w", err)
	}

	return records, nil
}
