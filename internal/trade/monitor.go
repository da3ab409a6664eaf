package trade

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/llenroc/surgebot/internal/metrics"
)

// TickMonitor subscribes to the live price stream for the held pair and
// evaluates the profit exit condition on every tick. Ticks that arrive while
// a placement or evaluation is in progress are dropped, not queued.
type TickMonitor struct {
	exchange Exchange
	executor *OrderExecutor
	display  Display
	tracker  *metrics.Tracker

	model      *PriceModel
	pair       string
	netBudget  float64
	takeProfit float64

	// processing is the cycle's placement guard, shared with the controller.
	processing *atomic.Bool

	onExit func(order Order, err error)

	ctx         context.Context
	unsubscribe func()
	unsubOnce   sync.Once
	stopped     atomic.Bool
}

// NewTickMonitor creates a TickMonitor for one holding phase.
func NewTickMonitor(exchange Exchange, executor *OrderExecutor, display Display, tracker *metrics.Tracker,
	model *PriceModel, pair string, netBudget, takeProfit float64,
	processing *atomic.Bool, onExit func(order Order, err error)) *TickMonitor {

	return &TickMonitor{
		exchange:   exchange,
		executor:   executor,
		display:    display,
		tracker:    tracker,
		model:      model,
		pair:       pair,
		netBudget:  netBudget,
		takeProfit: takeProfit,
		processing: processing,
		onExit:     onExit,
	}
}

// Start subscribes to the price stream. Ticks are delivered to OnTick until
// the exit condition fires or Stop is called.
func (m *TickMonitor) Start(ctx context.Context) error {
	m.ctx = ctx

	unsubscribe, err := m.exchange.SubscribeTicker(m.pair, m.OnTick)
	if err != nil {
		return fmt.Errorf("subscribe ticker for %s: %w", m.pair, err)
	}
	m.unsubscribe = unsubscribe
	m.tracker.SetStreamStatus("connected")

	slog.Info("tick_monitor_started", "pair", m.pair, "take_profit_pct", m.takeProfit)
	return nil
}

// Stop cancels the stream subscription. Safe to call more than once.
func (m *TickMonitor) Stop() {
	m.stopped.Store(true)
	m.unsubOnce.Do(func() {
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		m.tracker.SetStreamStatus("disconnected")
	})
}

// OnTick evaluates one stream tick. The processing guard claims exclusivity
// for the whole evaluation, including a SELL placement, and is released on
// every exit path.
func (m *TickMonitor) OnTick(price float64) {
	// A tick can still be in flight when the subscription is cancelled; the
	// closed cycle's model must not be touched.
	if m.stopped.Load() {
		return
	}

	if price <= 0 {
		// Never feed a non-positive price into the rate-of-change math.
		slog.Warn("invalid_tick_ignored", "pair", m.pair, "price", price)
		return
	}

	if !m.processing.CompareAndSwap(false, true) {
		return
	}
	defer m.processing.Store(false)

	m.model.Swap(price)
	m.model.TrackMovement()

	rate := RateOfChange(m.model.BuyPrice, m.model.CurrentPrice)

	m.display.RateUpdate(rate, m.model.Movement.Rising, m.model.Movement.Falling)
	m.tracker.RecordTick(m.model.CurrentPrice, rate, m.model.Movement.Rising, m.model.Movement.Falling)

	if rate < m.takeProfit {
		return
	}

	// Threshold crossed: cancel the stream first, then place the SELL.
	m.Stop()

	slog.Info("take_profit_reached",
		"pair", m.pair,
		"buy_price", m.model.BuyPrice,
		"current_price", m.model.CurrentPrice,
		"rate_of_change", rate,
	)

	order, err := m.executor.PlaceOrder(m.ctx, SideSell, m.pair, price, m.netBudget)
	m.onExit(order, err)
}
