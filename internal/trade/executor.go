package trade

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/llenroc/surgebot/internal/metrics"
)

// OrderExecutor places budget-sized market orders against the exchange.
// Callers serialize placements through the cycle's processing guard; no two
// placements ever run concurrently for the same cycle.
type OrderExecutor struct {
	exchange Exchange
	display  Display
	tracker  *metrics.Tracker
}

// NewOrderExecutor creates an OrderExecutor.
func NewOrderExecutor(exchange Exchange, display Display, tracker *metrics.Tracker) *OrderExecutor {
	return &OrderExecutor{
		exchange: exchange,
		display:  display,
		tracker:  tracker,
	}
}

// PlaceOrder sizes a quantity from the net budget at the given price and
// submits a market order for the pair. Submission failures propagate to the
// caller; there is no retry.
func (e *OrderExecutor) PlaceOrder(ctx context.Context, side Side, pair string, price, netBudget float64) (Order, error) {
	quantity := ComputeQuantity(netBudget, price)
	if quantity <= 0 {
		return Order{}, fmt.Errorf("%w: budget %.8f at price %.8f", ErrZeroQuantity, netBudget, price)
	}

	// Truncation can zero out a quantity the step math still allowed.
	submitQty := SubmissionQuantity(quantity)
	if submitQty <= 0 {
		return Order{}, fmt.Errorf("%w: quantity %.3f is below submission precision", ErrZeroQuantity, quantity)
	}

	slog.Info("placing_order",
		"side", side,
		"pair", pair,
		"price", price,
		"quantity", submitQty,
	)

	order, err := e.exchange.PlaceMarketOrder(ctx, pair, side, submitQty)
	if err != nil {
		return Order{}, fmt.Errorf("place %s order for %s: %w", side, pair, err)
	}

	// The exchange may not report a fill price for market orders; fall back
	// to the price observed at placement.
	if order.Price == 0 {
		order.Price = price
	}
	if order.PlacedAt.IsZero() {
		order.PlacedAt = time.Now()
	}

	e.display.OrderPlaced(order)
	e.tracker.RecordOrder(order.Symbol, string(order.Side), order.Quantity, order.Price)

	slog.Info("order_placed",
		"side", order.Side,
		"pair", order.Symbol,
		"order_id", order.ID,
		"price", order.Price,
		"quantity", order.Quantity,
	)

	return order, nil
}
