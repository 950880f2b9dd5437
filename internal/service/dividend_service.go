package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gfranca/b3-ledger-backend/internal/brapi"
	"github.com/gfranca/b3-ledger-backend/internal/importer"
	"github.com/gfranca/b3-ledger-backend/internal/model"
	"github.com/gfranca/b3-ledger-backend/internal/repository"
)

// DividendService keeps the dividend ledger in sync with the external feed
// and with the trade ledger. Synchronization filters feed events through
// the eligibility rule before persisting; the reconciliation pass removes
// records the rule would no longer admit after trades were edited.
type DividendService struct {
	dividendRepo *repository.DividendRepository
	trades       *TradeService
	positions    *PositionService
	feed         brapi.Feed
	freshness    time.Duration
	workers      int
	logger       *logrus.Logger
}

// NewDividendService creates a new DividendService. freshness is the window
// within which a ticker's previous successful fetch suppresses a new one;
// workers bounds per-ticker fetch concurrency during a sync run.
func NewDividendService(
	dividendRepo *repository.DividendRepository,
	trades *TradeService,
	positions *PositionService,
	feed brapi.Feed,
	freshness time.Duration,
	workers int,
	logger *logrus.Logger,
) *DividendService {
	if workers <= 0 {
		workers = 1
	}
	return &DividendService{
		dividendRepo: dividendRepo,
		trades:       trades,
		positions:    positions,
		feed:         feed,
		freshness:    freshness,
		workers:      workers,
		logger:       logger,
	}
}

// Sync fetches dividend events for the given tickers (or all open-position
// tickers when none are given) and persists the eligible ones. force skips
// the freshness check. Per-ticker failures are collected into the result;
// the run itself fails only when the input set cannot be determined.
//
// Eligibility: the reference date (ex-date, falling back to payment date)
// must be strictly after the ticker's first BUY, and the replayed share
// count at the reference date must be positive. The idempotent insert makes
// a repeat sync with an unchanged feed a no-op.
func (s *DividendService) Sync(ctx context.Context, tenantID string, tickers []string, force bool) (model.SyncResult, error) {
	if len(tickers) == 0 {
		open, err := s.positions.OpenPositions(tenantID)
		if err != nil {
			return model.SyncResult{}, fmt.Errorf("failed to determine sync tickers: %w", err)
		}
		for _, pos := range open {
			tickers = append(tickers, pos.Ticker)
		}
	}

	var (
		mu     sync.Mutex
		result model.SyncResult
	)
	result.TickersProcessed = len(tickers)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)

	for _, ticker := range tickers {
		group.Go(func() error {
			found, imported, skipped, cached, err := s.syncTicker(groupCtx, tenantID, ticker, force)

			mu.Lock()
			defer mu.Unlock()
			result.Found += found
			result.Imported += imported
			result.SkippedDuplicates += skipped
			if cached {
				result.Cached++
			}
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", ticker, err))
			}
			return nil
		})
	}

	// Worker errors land in result.Errors; Wait only reflects context
	// cancellation here.
	if err := group.Wait(); err != nil {
		return result, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant":   tenantID,
		"tickers":  result.TickersProcessed,
		"found":    result.Found,
		"imported": result.Imported,
		"cached":   result.Cached,
		"errors":   len(result.Errors),
	}).Info("dividend sync finished")

	return result, nil
}

func (s *DividendService) syncTicker(ctx context.Context, tenantID, ticker string, force bool) (found, imported, skipped int, cached bool, err error) {
	if !force {
		lastFetched, ok, err := s.dividendRepo.LastFetchedAt(tenantID, ticker)
		if err != nil {
			return 0, 0, 0, false, err
		}
		if ok && time.Since(lastFetched) < s.freshness {
			return 0, 0, 0, true, nil
		}
	}

	events, err := s.feed.FetchDividends(ctx, ticker)
	if err != nil {
		return 0, 0, 0, false, err
	}
	found = len(events)

	firstBuy, hasBuy, err := s.trades.FirstBuyDate(tenantID, ticker)
	if err != nil {
		return found, 0, 0, false, err
	}
	if !hasBuy {
		// No BUY on record means nothing can be eligible.
		return found, 0, 0, false, nil
	}

	now := time.Now().UTC()

	for _, event := range events {
		reference := event.PaymentDate
		if !event.ExDate.IsZero() {
			reference = event.ExDate
		}
		if !reference.After(firstBuy) {
			continue
		}

		quantity, err := s.trades.QuantityAsOf(tenantID, ticker, reference)
		if err != nil {
			return found, imported, skipped, false, err
		}
		if quantity <= 0 {
			continue
		}

		rec := model.DividendRecord{
			TenantID:         tenantID,
			Ticker:           event.Ticker,
			PaymentDate:      event.PaymentDate,
			ExDate:           event.ExDate,
			AmountPerShare:   event.AmountPerShare,
			QuantityEligible: quantity,
			TotalAmount:      quantity * event.AmountPerShare,
			Type:             event.Type,
			Source:           s.feed.Source(),
			FetchedAt:        now,
		}

		inserted, err := s.dividendRepo.InsertIfAbsent(ctx, &rec)
		if err != nil {
			return found, imported, skipped, false, err
		}
		if inserted {
			imported++
		} else {
			skipped++
		}
	}

	return found, imported, skipped, false, nil
}

// CleanInvalid reconciles the dividend ledger against the trade ledger.
// For every ticker holding dividend records, records whose reference date
// is on or before the ticker's first BUY are removed; tickers with no BUY
// at all lose every record. Run after trade edits or ledger resets.
func (s *DividendService) CleanInvalid(ctx context.Context, tenantID string) (model.CleanResult, error) {
	tickers, err := s.dividendRepo.TickersWithRecords(tenantID)
	if err != nil {
		return model.CleanResult{}, fmt.Errorf("failed to clean dividends: %w", err)
	}

	result := model.CleanResult{
		TickersChecked:  len(tickers),
		RemovedByTicker: make(map[string]int),
	}

	for _, ticker := range tickers {
		count, err := s.dividendRepo.CountByTicker(tenantID, ticker)
		if err != nil {
			return result, fmt.Errorf("failed to clean dividends: %w", err)
		}
		result.RecordsChecked += count

		firstBuy, hasBuy, err := s.trades.FirstBuyDate(tenantID, ticker)
		if err != nil {
			return result, fmt.Errorf("failed to clean dividends: %w", err)
		}

		var removed int
		if !hasBuy {
			removed, err = s.dividendRepo.DeleteAllForTicker(ctx, tenantID, ticker)
		} else {
			removed, err = s.dividendRepo.DeleteOnOrBeforeReference(ctx, tenantID, ticker, firstBuy)
		}
		if err != nil {
			return result, fmt.Errorf("failed to clean dividends: %w", err)
		}

		if removed > 0 {
			result.RemovedByTicker[ticker] = removed
			result.RecordsRemoved += removed
		}
	}

	if result.RecordsRemoved > 0 {
		s.logger.WithFields(logrus.Fields{
			"tenant":  tenantID,
			"removed": result.RecordsRemoved,
		}).Info("dividend reconciliation removed records")
	}

	return result, nil
}

// CleanAllTenants runs the reconciliation pass for every tenant holding
// dividend records. Entry point of the scheduled nightly job.
func (s *DividendService) CleanAllTenants(ctx context.Context) error {
	tenants, err := s.dividendRepo.TenantIDs()
	if err != nil {
		return fmt.Errorf("failed to clean dividends: %w", err)
	}

	for _, tenantID := range tenants {
		if _, err := s.CleanInvalid(ctx, tenantID); err != nil {
			return err
		}
	}

	return nil
}

// Import persists manually-kept dividend rows (broker spreadsheet exports).
// Rows carry their own eligible quantity; they are not re-filtered against
// the trade ledger, but the idempotent insert still applies.
func (s *DividendService) Import(ctx context.Context, tenantID string, rows []importer.DividendRow) (model.ImportReport, error) {
	report := model.ImportReport{}

	for i, row := range rows {
		rec, err := importer.NormalizeDividend(row)
		if err != nil {
			report.Rejected = append(report.Rejected, model.RejectedRow{Line: i + 1, Reason: err.Error()})
			continue
		}

		rec.TenantID = tenantID
		rec.Source = "manual"

		inserted, err := s.dividendRepo.InsertIfAbsent(ctx, &rec)
		if err != nil {
			return model.ImportReport{}, fmt.Errorf("failed to import dividends: %w", err)
		}
		if inserted {
			report.Inserted++
		} else {
			report.Rejected = append(report.Rejected, model.RejectedRow{Line: i + 1, Reason: "duplicate record"})
		}
	}

	return report, nil
}

// ListRecent retrieves the most recent dividend records of a tenant.
func (s *DividendService) ListRecent(tenantID string, limit int) ([]model.DividendRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	return s.dividendRepo.ListRecent(tenantID, limit)
}

// ListByTicker retrieves all dividend records of one ticker plus their sum.
func (s *DividendService) ListByTicker(tenantID, ticker string) ([]model.DividendRecord, float64, error) {
	records, err := s.dividendRepo.ListByTicker(tenantID, ticker)
	if err != nil {
		return nil, 0, err
	}

	var total float64
	for _, rec := range records {
		total += rec.TotalAmount
	}
	return records, total, nil
}

// Totals sums received dividends per ticker plus the grand total.
func (s *DividendService) Totals(tenantID string) (map[string]float64, float64, error) {
	return s.dividendRepo.TotalsByTicker(tenantID)
}

// Reset wipes the tenant's dividend ledger.
func (s *DividendService) Reset(ctx context.Context, tenantID string) error {
	s.logger.WithField("tenant", tenantID).Info("resetting dividend ledger")
	return s.dividendRepo.Reset(ctx, tenantID)
}
