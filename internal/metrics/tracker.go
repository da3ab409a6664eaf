// Package metrics provides real-time metrics tracking for the system.
package metrics

import (
	"sync"
	"time"
)

// OrderRecord is a display-friendly record of a placed order.
type OrderRecord struct {
	Symbol   string
	Side     string
	Quantity float64
	Price    float64
	PlacedAt time.Time
}

// Snapshot is a point-in-time view of the current trade cycle and system health.
type Snapshot struct {
	Operational bool

	State      string
	Coin       string
	Pair       string
	PriceFound bool

	BuyPrice     float64
	CurrentPrice float64
	RateOfChange float64
	Rising       uint64
	Falling      uint64

	Orders []OrderRecord

	PollsTotal int64
	TicksTotal int64

	CyclesStarted int64
	CyclesClosed  int64
	CyclesFailed  int64

	StreamStatus string
	Uptime       time.Duration
	LastTick     time.Time
}

// Tracker provides thread-safe tracking of cycle state for the UI and status API.
type Tracker struct {
	mu          sync.RWMutex
	operational bool

	state      string
	coin       string
	pair       string
	priceFound bool

	buyPrice     float64
	currentPrice float64
	rateOfChange float64
	rising       uint64
	falling      uint64

	orders []OrderRecord

	pollsTotal int64
	ticksTotal int64

	cyclesStarted int64
	cyclesClosed  int64
	cyclesFailed  int64

	streamStatus string
	startTime    time.Time
	lastTick     time.Time
}

// NewTracker creates a new Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		state:        "idle",
		streamStatus: "disconnected",
		startTime:    time.Now(),
	}
}

// SetOperational marks whether the controller is able to trade.
func (t *Tracker) SetOperational(ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.operational = ok
}

// SetStreamStatus sets the price stream connection status.
func (t *Tracker) SetStreamStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.streamStatus = status
}

// CycleStarted resets per-cycle state for a new detection.
func (t *Tracker) CycleStarted(coin, pair string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.coin = coin
	t.pair = pair
	t.priceFound = false
	t.buyPrice = 0
	t.currentPrice = 0
	t.rateOfChange = 0
	t.rising = 0
	t.falling = 0
	t.orders = nil
	t.cyclesStarted++

	incCycle("started")
}

// SetState records the cycle state transition.
func (t *Tracker) SetState(state string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state

	setCycleState(state)
}

// PriceDetected records the first observed price for the cycle.
func (t *Tracker) PriceDetected(price float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.priceFound = true
	t.buyPrice = price
	t.currentPrice = price
}

// RecordPoll counts one detection poll.
func (t *Tracker) RecordPoll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pollsTotal++

	incPoll()
}

// RecordTick records one processed stream tick.
func (t *Tracker) RecordTick(current, rate float64, rising, falling uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ticksTotal++
	t.currentPrice = current
	t.rateOfChange = rate
	t.rising = rising
	t.falling = falling
	t.lastTick = time.Now()

	incTick()
	setRateOfChange(rate)
}

// RecordOrder appends a placed order to the cycle's order list.
func (t *Tracker) RecordOrder(symbol, side string, quantity, price float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.orders = append(t.orders, OrderRecord{
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
		Price:    price,
		PlacedAt: time.Now(),
	})

	incOrder(side)
}

// CycleClosed counts a cycle that exited through the take-profit sell.
func (t *Tracker) CycleClosed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cyclesClosed++

	incCycle("closed")
}

// CycleFailed counts a cycle aborted by an order placement failure.
func (t *Tracker) CycleFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cyclesFailed++

	incCycle("failed")
}

// Snapshot returns a point-in-time snapshot of the tracker.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	// Copy the order list so callers cannot race with appends
	orders := make([]OrderRecord, len(t.orders))
	copy(orders, t.orders)

	return Snapshot{
		Operational:   t.operational,
		State:         t.state,
		Coin:          t.coin,
		Pair:          t.pair,
		PriceFound:    t.priceFound,
		BuyPrice:      t.buyPrice,
		CurrentPrice:  t.currentPrice,
		RateOfChange:  t.rateOfChange,
		Rising:        t.rising,
		Falling:       t.falling,
		Orders:        orders,
		PollsTotal:    t.pollsTotal,
		TicksTotal:    t.ticksTotal,
		CyclesStarted: t.cyclesStarted,
		CyclesClosed:  t.cyclesClosed,
		CyclesFailed:  t.cyclesFailed,
		StreamStatus:  t.streamStatus,
		Uptime:        time.Since(t.startTime),
		LastTick:      t.lastTick,
	}
}
