package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gfranca/b3-ledger-backend/internal/importer"
	"github.com/gfranca/b3-ledger-backend/internal/model"
	"github.com/gfranca/b3-ledger-backend/internal/repository"
)

// TradeService owns the trade ledger: canonicalized appends, recent
// listings, the per-tenant wipe, and the historical share-count replay
// that dividend eligibility is built on.
type TradeService struct {
	tradeRepo *repository.TradeRepository
	logger    *logrus.Logger
}

// NewTradeService creates a new TradeService with the provided repository dependency.
func NewTradeService(tradeRepo *repository.TradeRepository, logger *logrus.Logger) *TradeService {
	return &TradeService{
		tradeRepo: tradeRepo,
		logger:    logger,
	}
}

// Append canonicalizes and appends a batch of raw import rows. Rows that
// fail canonicalization are reported back with their line number and
// reason; accepted rows are inserted in one transaction. A batch where
// every row is rejected still succeeds with Inserted == 0; the report is
// the contract, not an error.
func (s *TradeService) Append(ctx context.Context, tenantID string, rows []importer.TradeRow) (model.ImportReport, error) {
	report := model.ImportReport{}
	accepted := make([]model.NormalizedTrade, 0, len(rows))

	for i, row := range rows {
		trade, err := importer.NormalizeTrade(row)
		if err != nil {
			report.Rejected = append(report.Rejected, model.RejectedRow{
				Line:   i + 1,
				Reason: err.Error(),
			})
			continue
		}
		accepted = append(accepted, trade)
	}

	inserted, err := s.tradeRepo.InsertBatch(ctx, tenantID, accepted)
	if err != nil {
		return model.ImportReport{}, fmt.Errorf("failed to append trades: %w", err)
	}
	report.Inserted = inserted

	if len(report.Rejected) > 0 {
		s.logger.WithFields(logrus.Fields{
			"tenant":   tenantID,
			"inserted": report.Inserted,
			"rejected": len(report.Rejected),
		}).Warn("trade import batch had rejected rows")
	}

	return report, nil
}

// QuantityAsOf replays a ticker's trades dated on or before the given date
// and returns the share count held at that date. BUY adds, SELL subtracts,
// and the running total clamps at zero: an over-sell is floored, not
// rejected. Always a fresh replay over the ticker's trades, so there is
// no incremental state to go stale.
func (s *TradeService) QuantityAsOf(tenantID, ticker string, date time.Time) (float64, error) {
	trades, err := s.tradeRepo.GetLedgerForTickerAsOf(tenantID, ticker, date)
	if err != nil {
		return 0, fmt.Errorf("failed to replay quantity: %w", err)
	}

	quantity := 0.0
	for _, t := range trades {
		switch t.Side {
		case model.SideBuy:
			quantity += t.Quantity
		case model.SideSell:
			quantity -= t.Quantity
			if quantity < 0 {
				quantity = 0
			}
		}
	}

	return quantity, nil
}

// FirstBuyDate returns the earliest BUY date of a ticker, the anchor for
// dividend eligibility. ok is false if the tenant never bought the ticker.
func (s *TradeService) FirstBuyDate(tenantID, ticker string) (time.Time, bool, error) {
	return s.tradeRepo.FirstBuyDate(tenantID, ticker)
}

// ListRecent retrieves the most recent trades of a tenant, newest first.
func (s *TradeService) ListRecent(tenantID string, limit int) ([]model.Trade, error) {
	if limit <= 0 {
		limit = 200
	}
	return s.tradeRepo.ListRecent(tenantID, limit)
}

// Reset wipes the tenant's trade ledger.
func (s *TradeService) Reset(ctx context.Context, tenantID string) error {
	s.logger.WithField("tenant", tenantID).Info("resetting trade ledger")
	return s.tradeRepo.Reset(ctx, tenantID)
}

// ledger exposes the full replay-ordered ledger to the sibling
// aggregation services.
func (s *TradeService) ledger(tenantID string) ([]model.Trade, error) {
	return s.tradeRepo.GetLedger(tenantID)
}
