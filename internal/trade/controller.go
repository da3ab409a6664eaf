package trade

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/llenroc/surgebot/internal/config"
	"github.com/llenroc/surgebot/internal/metrics"
)

// Controller orchestrates one trade cycle at a time:
// detection → buy → monitor → sell → closed. A new external trigger is
// required to start another cycle; triggering while a cycle is detecting or
// holding is rejected.
type Controller struct {
	cfg      *config.Config
	exchange Exchange
	accounts AccountProvider
	display  Display
	tracker  *metrics.Tracker
	executor *OrderExecutor

	// processing serializes order placements for the cycle. Shared with the
	// active TickMonitor.
	processing atomic.Bool

	mu          sync.Mutex
	state       State
	operational bool
	freeBudget  float64
	netBudget   float64
	coin        string
	pair        string
	model       *PriceModel
	watcher     *PriceWatcher
	monitor     *TickMonitor
	buyOrder    Order
	sellOrder   Order
}

// NewController creates a Controller. Init must be called before the first
// detection.
func NewController(cfg *config.Config, exchange Exchange, accounts AccountProvider, display Display, tracker *metrics.Tracker) *Controller {
	return &Controller{
		cfg:      cfg,
		exchange: exchange,
		accounts: accounts,
		display:  display,
		tracker:  tracker,
		executor: NewOrderExecutor(exchange, display, tracker),
		state:    StateIdle,
	}
}

// Init performs the one-time startup fetch of account balances and exchange
// metadata and computes the cycle budget. On failure the controller is marked
// non-operational and refuses detections instead of silently trading with a
// zero budget.
func (c *Controller) Init(ctx context.Context) error {
	balances, err := c.accounts.AccountBalances(ctx)
	if err != nil {
		c.setOperational(false)
		return fmt.Errorf("fetch account balances: %w", err)
	}

	if err := c.accounts.ExchangeInfo(ctx); err != nil {
		c.setOperational(false)
		return fmt.Errorf("fetch exchange info: %w", err)
	}

	free := balances[c.cfg.BaseCurrency]
	net := ComputeNetBudget(free, c.cfg.PlacementPercentage, c.cfg.Fee)

	c.mu.Lock()
	c.freeBudget = free
	c.netBudget = net
	c.operational = true
	c.mu.Unlock()
	c.tracker.SetOperational(true)

	slog.Info("controller_initialized",
		"base_currency", c.cfg.BaseCurrency,
		"free_budget", free,
		"net_budget", net,
	)

	return nil
}

// CoinDetected is the single inbound trigger: it starts one trade cycle for
// the given coin. Returns ErrNotOperational if startup data is missing and
// ErrCycleActive if a cycle is already detecting or holding.
func (c *Controller) CoinDetected(ctx context.Context, coin string) error {
	c.mu.Lock()
	if !c.operational {
		c.mu.Unlock()
		return ErrNotOperational
	}
	if c.state != StateIdle && c.state != StateClosed {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: state %s", ErrCycleActive, state)
	}

	c.state = StateDetecting
	c.coin = coin
	c.pair = coin + c.cfg.BaseCurrency
	c.model = NewPriceModel()
	c.buyOrder = Order{}
	c.sellOrder = Order{}
	c.watcher = NewPriceWatcher(c.exchange, c.display, c.tracker, c.cfg.PollInterval, c.cfg.MaxPollAttempts)

	pair := c.pair
	model := c.model
	watcher := c.watcher
	c.mu.Unlock()

	c.display.Reset()
	c.display.CoinDetected(coin)
	c.tracker.CycleStarted(coin, pair)
	c.tracker.SetState(string(StateDetecting))

	slog.Info("coin_detected", "coin", coin, "pair", pair)

	watcher.Start(ctx, pair, model, func(price float64) {
		c.onPriceFound(ctx, price)
	}, func() {
		c.abortCycle(fmt.Errorf("price detection exhausted for %s after %d attempts", pair, c.cfg.MaxPollAttempts))
	})

	return nil
}

// onPriceFound places the BUY under the processing guard, then starts the
// tick monitor for the holding phase.
func (c *Controller) onPriceFound(ctx context.Context, price float64) {
	if !c.processing.CompareAndSwap(false, true) {
		return
	}

	c.mu.Lock()
	pair := c.pair
	netBudget := c.netBudget
	c.mu.Unlock()

	order, err := c.executor.PlaceOrder(ctx, SideBuy, pair, price, netBudget)
	c.processing.Store(false)
	if err != nil {
		c.abortCycle(err)
		return
	}

	c.mu.Lock()
	c.buyOrder = order
	c.state = StateHolding
	monitor := NewTickMonitor(c.exchange, c.executor, c.display, c.tracker,
		c.model, pair, netBudget, c.cfg.TakeProfitPercentage,
		&c.processing, c.onMonitorExit)
	c.monitor = monitor
	c.mu.Unlock()

	c.tracker.SetState(string(StateHolding))

	if err := monitor.Start(ctx); err != nil {
		c.abortCycle(err)
	}
}

// onMonitorExit finishes the cycle once the monitor has unsubscribed and
// placed (or failed to place) the SELL.
func (c *Controller) onMonitorExit(order Order, err error) {
	if err != nil {
		c.abortCycle(err)
		return
	}

	c.mu.Lock()
	c.sellOrder = order
	c.state = StateClosed
	c.mu.Unlock()

	c.tracker.SetState(string(StateClosed))
	c.tracker.CycleClosed()

	slog.Info("cycle_closed", "pair", order.Symbol, "sell_order_id", order.ID)
}

// abortCycle surfaces an order placement failure, releases every guard, and
// returns the controller to idle. No automatic retry.
func (c *Controller) abortCycle(err error) {
	slog.Error("cycle_aborted", "error", err)

	c.mu.Lock()
	watcher := c.watcher
	monitor := c.monitor
	c.watcher = nil
	c.monitor = nil
	c.state = StateIdle
	c.mu.Unlock()

	if watcher != nil {
		watcher.Stop()
	}
	if monitor != nil {
		monitor.Stop()
	}
	c.processing.Store(false)

	c.tracker.SetState(string(StateIdle))
	c.tracker.CycleFailed()
}

// State returns the current cycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Operational reports whether the startup fetch succeeded.
func (c *Controller) Operational() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.operational
}

// Stop tears down any active watcher or monitor. Used on shutdown.
func (c *Controller) Stop() {
	c.mu.Lock()
	watcher := c.watcher
	monitor := c.monitor
	c.mu.Unlock()

	if watcher != nil {
		watcher.Stop()
		watcher.Wait()
	}
	if monitor != nil {
		monitor.Stop()
	}
}

func (c *Controller) setOperational(ok bool) {
	c.mu.Lock()
	c.operational = ok
	c.mu.Unlock()
	c.tracker.SetOperational(ok)
}
