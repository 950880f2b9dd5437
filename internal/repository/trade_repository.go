package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gfranca/b3-ledger-backend/internal/model"
)

// TradeRepository provides data access methods for the trade ledger.
// The ledger is append-only: rows are inserted in batches, replayed in
// (ticker, trade_date, seq) order, and removed only by a full per-tenant
// wipe.
type TradeRepository struct {
	db *sql.DB
}

// NewTradeRepository creates a new TradeRepository with the provided database connection.
func NewTradeRepository(db *sql.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// InsertBatch appends canonicalized trades for a tenant inside a single
// transaction. seq values are assigned by the database in insert order,
// which is what makes same-day replay order deterministic.
func (s *TradeRepository) InsertBatch(ctx context.Context, tenantID string, trades []model.NormalizedTrade) (int, error) {
	if len(trades) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trade (id, tenant_id, ticker, side, quantity, price, fees, trade_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare trade insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range trades {
		_, err := stmt.ExecContext(ctx,
			uuid.New().String(),
			tenantID,
			t.Ticker,
			t.Side,
			t.Quantity,
			t.Price,
			t.Fees,
			t.TradeDate,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert trade: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit trade batch: %w", err)
	}

	return len(trades), nil
}

// GetLedger retrieves all trades for a tenant in replay order
// (ticker, trade_date, seq). Position and realized-PnL derivations fold
// over this exact ordering.
func (s *TradeRepository) GetLedger(tenantID string) ([]model.Trade, error) {
	query := `
		SELECT seq, id, tenant_id, ticker, side, quantity, price, fees, trade_date
		FROM trade
		WHERE tenant_id = ?
		ORDER BY ticker ASC, trade_date ASC, seq ASC
	`

	rows, err := s.db.Query(query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade table: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetLedgerForTickerAsOf retrieves the trades of one ticker dated on or
// before the given date, in replay order. This is the input to the
// historical quantity replay; the inclusive boundary means trades executed
// on the reference date itself are counted.
func (s *TradeRepository) GetLedgerForTickerAsOf(tenantID, ticker string, date time.Time) ([]model.Trade, error) {
	query := `
		SELECT seq, id, tenant_id, ticker, side, quantity, price, fees, trade_date
		FROM trade
		WHERE tenant_id = ? AND ticker = ? AND trade_date <= ?
		ORDER BY trade_date ASC, seq ASC
	`

	rows, err := s.db.Query(query, tenantID, ticker, DateString(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query trade table: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// FirstBuyDate finds the date of the earliest BUY trade for a ticker.
// This is the dividend-eligibility anchor.
//
// Returns time.Time{} (zero value) and false if the tenant never bought
// the ticker.
func (s *TradeRepository) FirstBuyDate(tenantID, ticker string) (time.Time, bool, error) {
	var dateStr sql.NullString

	query := `SELECT MIN(trade_date) FROM trade WHERE tenant_id = ? AND ticker = ? AND side = 'BUY'`

	err := s.db.QueryRow(query, tenantID, ticker).Scan(&dateStr)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query first buy date: %w", err)
	}
	if !dateStr.Valid {
		return time.Time{}, false, nil
	}

	date, err := ParseTime(dateStr.String)
	if err != nil {
		return time.Time{}, false, err
	}

	return date, true, nil
}

// ListRecent retrieves the most recent trades for a tenant, newest first.
func (s *TradeRepository) ListRecent(tenantID string, limit int) ([]model.Trade, error) {
	query := `
		SELECT seq, id, tenant_id, ticker, side, quantity, price, fees, trade_date
		FROM trade
		WHERE tenant_id = ?
		ORDER BY trade_date DESC, seq DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade table: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// Reset wipes the entire trade ledger of a tenant. The only supported
// deletion path: individual trades are immutable.
func (s *TradeRepository) Reset(ctx context.Context, tenantID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM trade WHERE tenant_id = ?`, tenantID); err != nil {
		return fmt.Errorf("failed to reset trades: %w", err)
	}
	return nil
}

func scanTrades(rows *sql.Rows) ([]model.Trade, error) {
	trades := []model.Trade{}

	for rows.Next() {
		var dateStr string
		var t model.Trade

		err := rows.Scan(
			&t.Seq,
			&t.ID,
			&t.TenantID,
			&t.Ticker,
			&t.Side,
			&t.Quantity,
			&t.Price,
			&t.Fees,
			&dateStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade table results: %w", err)
		}

		t.TradeDate, err = ParseTime(dateStr)
		if err != nil || t.TradeDate.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade table: %w", err)
	}

	return trades, nil
}
