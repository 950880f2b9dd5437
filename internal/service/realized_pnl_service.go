package service

import (
	"fmt"

	"github.com/gfranca/b3-ledger-backend/internal/model"
)

// RealizedPnLService computes realized profit and loss by matching sells
// against buy lots in FIFO order, replayed from the full trade ledger.
type RealizedPnLService struct {
	trades *TradeService
}

// NewRealizedPnLService creates a new RealizedPnLService on top of the trade ledger.
func NewRealizedPnLService(trades *TradeService) *RealizedPnLService {
	return &RealizedPnLService{trades: trades}
}

// lot is one open buy lot awaiting FIFO matching.
type lot struct {
	quantity float64
	price    float64
}

// Summary folds the ledger into FIFO-matched realized totals across all
// tickers. Each BUY opens a lot; each SELL consumes the oldest open lots
// first, realizing (sell price - lot price) * matched quantity. A sell
// exceeding the open lots matches only what exists; the excess realizes
// nothing, consistent with the clamp in the position fold.
func (s *RealizedPnLService) Summary(tenantID string) (model.RealizedSummary, error) {
	trades, err := s.trades.ledger(tenantID)
	if err != nil {
		return model.RealizedSummary{}, fmt.Errorf("failed to compute realized pnl: %w", err)
	}

	lots := make(map[string][]lot)
	var summary model.RealizedSummary

	for _, t := range trades {
		switch t.Side {
		case model.SideBuy:
			lots[t.Ticker] = append(lots[t.Ticker], lot{quantity: t.Quantity, price: t.Price})
		case model.SideSell:
			open := lots[t.Ticker]
			remaining := t.Quantity

			for remaining > qtyEpsilon && len(open) > 0 {
				matched := open[0].quantity
				if matched > remaining {
					matched = remaining
				}

				summary.TotalCostMatched += matched * open[0].price
				summary.TotalProceedsMatched += matched * t.Price
				summary.TotalRealizedPnL += matched * (t.Price - open[0].price)

				open[0].quantity -= matched
				remaining -= matched
				if open[0].quantity <= qtyEpsilon {
					open = open[1:]
				}
			}

			lots[t.Ticker] = open
		}
	}

	return summary, nil
}
