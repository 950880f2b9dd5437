package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/gfranca/b3-ledger-backend/internal/model"
)

// qtyEpsilon absorbs float residue when a position is sold down to zero.
const qtyEpsilon = 1e-9

// PositionService derives open positions by replaying the trade ledger.
// Nothing here is persisted: every call folds the full ledger in replay
// order, so edits to historical trades are reflected immediately.
type PositionService struct {
	trades *TradeService
}

// NewPositionService creates a new PositionService on top of the trade ledger.
func NewPositionService(trades *TradeService) *PositionService {
	return &PositionService{trades: trades}
}

// positionState is the running fold state for one ticker.
type positionState struct {
	quantity     float64
	avgCost      float64
	feesTotal    float64
	firstBuyDate time.Time
}

// OpenPositions folds the ledger into weighted-average-cost positions and
// returns the ones still open, sorted by ticker.
//
// A BUY blends into the average at (qty*avg + q*p) / (qty + q). A SELL
// reduces quantity at unchanged average cost, clamped at zero. When a
// position closes, its average cost and first-buy date reset so a later
// re-entry starts a fresh basis.
func (s *PositionService) OpenPositions(tenantID string) ([]model.Position, error) {
	trades, err := s.trades.ledger(tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive positions: %w", err)
	}

	states := make(map[string]*positionState)

	for _, t := range trades {
		st, ok := states[t.Ticker]
		if !ok {
			st = &positionState{}
			states[t.Ticker] = st
		}

		st.feesTotal += t.Fees

		switch t.Side {
		case model.SideBuy:
			newQty := st.quantity + t.Quantity
			st.avgCost = (st.quantity*st.avgCost + t.Quantity*t.Price) / newQty
			st.quantity = newQty
			if st.firstBuyDate.IsZero() {
				st.firstBuyDate = t.TradeDate
			}
		case model.SideSell:
			st.quantity -= t.Quantity
			if st.quantity <= qtyEpsilon {
				st.quantity = 0
				st.avgCost = 0
				st.firstBuyDate = time.Time{}
			}
		}
	}

	positions := make([]model.Position, 0, len(states))
	for ticker, st := range states {
		if st.quantity <= qtyEpsilon {
			continue
		}

		pos := model.Position{
			Ticker:      ticker,
			NetQuantity: st.quantity,
			AvgCost:     st.avgCost,
			FeesTotal:   st.feesTotal,
		}
		if !st.firstBuyDate.IsZero() {
			firstBuy := st.firstBuyDate
			pos.FirstBuyDate = &firstBuy
		}
		positions = append(positions, pos)
	}

	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Ticker < positions[j].Ticker
	})

	return positions, nil
}
