// Package trade implements the trade cycle state machine: price detection,
// budget-sized market order placement, and the tick-driven profit exit loop.
package trade

import (
	"context"
	"errors"
	"time"
)

// Side is the side of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderTypeMarket is the only order type this bot submits.
const OrderTypeMarket = "MARKET"

// Order is a normalized view of a placed market order. Immutable once created;
// one BUY and at most one SELL exist per cycle.
type Order struct {
	ID            string
	ClientOrderID string
	Symbol        string
	Side          Side
	Type          string
	Quantity      float64
	Price         float64 // price at placement time
	PlacedAt      time.Time
}

// State is the lifecycle phase of a trade cycle.
type State string

const (
	StateIdle      State = "idle"
	StateDetecting State = "detecting"
	StateHolding   State = "holding"
	StateClosed    State = "closed"
)

var (
	// ErrCycleActive is returned when a detection arrives while a cycle is
	// already detecting or holding.
	ErrCycleActive = errors.New("trade cycle already active")

	// ErrZeroQuantity is returned when the budget cannot buy a single
	// quantity step at the given price.
	ErrZeroQuantity = errors.New("budget yields zero quantity")

	// ErrNotOperational is returned when the startup account fetch failed
	// and the controller refuses to trade.
	ErrNotOperational = errors.New("controller is not operational")
)

// Exchange is the trading surface the cycle needs from an exchange client.
type Exchange interface {
	// Prices returns the current price for every traded pair.
	Prices(ctx context.Context) (map[string]float64, error)

	// PlaceMarketOrder submits a market order and returns the resulting order.
	PlaceMarketOrder(ctx context.Context, symbol string, side Side, quantity float64) (Order, error)

	// SubscribeTicker starts a live price stream for the pair, delivering the
	// current close price to onTick. The returned function cancels the stream.
	SubscribeTicker(symbol string, onTick func(price float64)) (func(), error)
}

// AccountProvider supplies the one-time startup account and exchange metadata.
type AccountProvider interface {
	AccountBalances(ctx context.Context) (map[string]float64, error)
	ExchangeInfo(ctx context.Context) error
}

// Display is a purely observational sink for state snapshots. It never feeds
// back into the cycle logic.
type Display interface {
	Reset()
	CoinDetected(coin string)
	MarketValue(price float64, found bool)
	OrderPlaced(o Order)
	RateUpdate(rate float64, rising, falling uint64)
}

// NopDisplay is a Display that drops everything. Used in headless mode.
type NopDisplay struct{}

func (NopDisplay) Reset()                                       {}
func (NopDisplay) CoinDetected(string)                          {}
func (NopDisplay) MarketValue(float64, bool)                    {}
func (NopDisplay) OrderPlaced(Order)                            {}
func (NopDisplay) RateUpdate(rate float64, rising, falling uint64) {}
