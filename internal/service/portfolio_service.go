package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gfranca/b3-ledger-backend/internal/brapi"
	"github.com/gfranca/b3-ledger-backend/internal/jobs"
	"github.com/gfranca/b3-ledger-backend/internal/model"
)

// PortfolioService assembles the portfolio summary surface: open positions
// enriched with last-traded prices, realized sales, and received dividends.
// Reading the summary also schedules a background dividend sync so the
// ledger converges without a blocking fetch on the read path.
type PortfolioService struct {
	positions *PositionService
	realized  *RealizedPnLService
	dividends *DividendService
	feed      brapi.Feed
	runner    *jobs.Runner
	logger    *logrus.Logger
}

// NewPortfolioService creates a new PortfolioService.
func NewPortfolioService(
	positions *PositionService,
	realized *RealizedPnLService,
	dividends *DividendService,
	feed brapi.Feed,
	runner *jobs.Runner,
	logger *logrus.Logger,
) *PortfolioService {
	return &PortfolioService{
		positions: positions,
		realized:  realized,
		dividends: dividends,
		feed:      feed,
		runner:    runner,
		logger:    logger,
	}
}

// Summary builds the aggregate portfolio view. A price-oracle failure for
// one ticker degrades that row (nil price fields) without failing the
// summary; the aggregate value then excludes only that position.
func (s *PortfolioService) Summary(ctx context.Context, tenantID string) (model.PortfolioSummary, error) {
	openPositions, err := s.positions.OpenPositions(tenantID)
	if err != nil {
		return model.PortfolioSummary{}, fmt.Errorf("failed to build summary: %w", err)
	}

	realized, err := s.realized.Summary(tenantID)
	if err != nil {
		return model.PortfolioSummary{}, fmt.Errorf("failed to build summary: %w", err)
	}

	dividendTotals, totalDividends, err := s.dividends.Totals(tenantID)
	if err != nil {
		return model.PortfolioSummary{}, fmt.Errorf("failed to build summary: %w", err)
	}

	summary := model.PortfolioSummary{
		Positions:       make([]model.PositionSummary, 0, len(openPositions)),
		RealizedPnL:     realized.TotalRealizedPnL,
		CostOfSales:     realized.TotalCostMatched,
		ProceedsOfSales: realized.TotalProceedsMatched,
		TotalDividends:  totalDividends,
	}

	for _, pos := range openPositions {
		row := model.PositionSummary{
			Ticker:            pos.Ticker,
			Quantity:          pos.NetQuantity,
			AvgCost:           pos.AvgCost,
			FirstBuyDate:      pos.FirstBuyDate,
			DividendsReceived: dividendTotals[pos.Ticker],
		}

		invested := pos.NetQuantity * pos.AvgCost
		summary.TotalInvested += invested

		price, err := s.feed.LastPrice(ctx, pos.Ticker)
		if err != nil {
			s.logger.WithField("ticker", pos.Ticker).WithError(err).Warn("price unavailable")
			summary.Positions = append(summary.Positions, row)
			continue
		}

		value := pos.NetQuantity * price
		row.LastPrice = &price
		row.PriceAvailable = true
		row.PositionValue = &value

		if pos.AvgCost > 0 {
			simple := (price - pos.AvgCost) / pos.AvgCost
			row.SimpleReturn = &simple

			if pos.FirstBuyDate != nil {
				if days := time.Since(*pos.FirstBuyDate).Hours() / 24; days >= 1 {
					annualized := math.Pow(1+simple, 365/days) - 1
					row.AnnualizedReturn = &annualized
				}
			}
		}

		summary.TotalValue += value
		summary.UnrealizedPnL += value - invested
		summary.Positions = append(summary.Positions, row)
	}

	summary.TotalPnL = summary.UnrealizedPnL + summary.TotalDividends + summary.RealizedPnL

	if summary.TotalInvested > 0 {
		summary.OpenReturn = summary.UnrealizedPnL / summary.TotalInvested
	}
	if summary.CostOfSales > 0 {
		summary.RealizedReturn = summary.RealizedPnL / summary.CostOfSales
	}
	if base := summary.TotalInvested + summary.CostOfSales; base > 0 {
		summary.TotalReturn = summary.TotalPnL / base
	}

	s.scheduleSync(tenantID)

	return summary, nil
}

// scheduleSync queues a non-forced dividend sync for the tenant. The sync's
// own freshness window keeps repeated summary reads from hammering the feed.
func (s *PortfolioService) scheduleSync(tenantID string) {
	s.runner.Submit("dividend-sync:"+tenantID, func(ctx context.Context) error {
		_, err := s.dividends.Sync(ctx, tenantID, nil, false)
		return err
	})
}
