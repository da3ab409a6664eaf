package trade

import (
	"context"
	"fmt"
	"sync"
)

// fakeExchange implements Exchange and AccountProvider for tests.
type fakeExchange struct {
	mu sync.Mutex

	prices    map[string]float64
	pricesErr error

	orders   []Order
	orderErr error

	balances    map[string]float64
	balancesErr error

	onTick       func(price float64)
	subscribeErr error
	unsubCalls   int
}

func newFakeExchange() *fakeExchange {
	return &fakeExchange{
		prices:   make(map[string]float64),
		balances: map[string]float64{"USDT": 1000},
	}
}

func (f *fakeExchange) Prices(ctx context.Context) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pricesErr != nil {
		return nil, f.pricesErr
	}

	out := make(map[string]float64, len(f.prices))
	for k, v := range f.prices {
		out[k] = v
	}
	return out, nil
}

func (f *fakeExchange) PlaceMarketOrder(ctx context.Context, symbol string, side Side, quantity float64) (Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.orderErr != nil {
		return Order{}, f.orderErr
	}

	order := Order{
		ID:       fmt.Sprintf("order-%d", len(f.orders)+1),
		Symbol:   symbol,
		Side:     side,
		Type:     OrderTypeMarket,
		Quantity: quantity,
	}
	f.orders = append(f.orders, order)
	return order, nil
}

func (f *fakeExchange) SubscribeTicker(symbol string, onTick func(price float64)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}

	f.onTick = onTick
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unsubCalls++
	}, nil
}

func (f *fakeExchange) AccountBalances(ctx context.Context) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.balancesErr != nil {
		return nil, f.balancesErr
	}

	out := make(map[string]float64, len(f.balances))
	for k, v := range f.balances {
		out[k] = v
	}
	return out, nil
}

func (f *fakeExchange) ExchangeInfo(ctx context.Context) error {
	return nil
}

func (f *fakeExchange) setPrice(pair string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[pair] = price
}

// tick delivers a price through the captured stream callback.
func (f *fakeExchange) tick(price float64) {
	f.mu.Lock()
	onTick := f.onTick
	f.mu.Unlock()

	if onTick != nil {
		onTick(price)
	}
}

func (f *fakeExchange) subscribed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.onTick != nil
}

func (f *fakeExchange) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

func (f *fakeExchange) lastOrder() Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders[len(f.orders)-1]
}

func (f *fakeExchange) unsubscribeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unsubCalls
}

// fakeDisplay implements Display and counts calls.
type fakeDisplay struct {
	mu           sync.Mutex
	resets       int
	coins        []string
	marketValues int
	orders       []Order
	rateUpdates  int
}

func (d *fakeDisplay) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resets++
}

func (d *fakeDisplay) CoinDetected(coin string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.coins = append(d.coins, coin)
}

func (d *fakeDisplay) MarketValue(price float64, found bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.marketValues++
}

func (d *fakeDisplay) OrderPlaced(o Order) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.orders = append(d.orders, o)
}

func (d *fakeDisplay) RateUpdate(rate float64, rising, falling uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rateUpdates++
}
