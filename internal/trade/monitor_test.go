package trade

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/llenroc/surgebot/internal/metrics"
)

func newTestMonitor(t *testing.T, fake *fakeExchange, takeProfit float64) (*TickMonitor, *PriceModel, *atomic.Bool, *[]Order) {
	t.Helper()

	model := NewPriceModel()
	model.InitializePrice(100)

	tracker := metrics.NewTracker()
	executor := NewOrderExecutor(fake, &fakeDisplay{}, tracker)

	var processing atomic.Bool
	var exits []Order

	m := NewTickMonitor(fake, executor, &fakeDisplay{}, tracker,
		model, "XYZUSDT", 1000.0, takeProfit,
		&processing, func(order Order, err error) {
			require.NoError(t, err)
			exits = append(exits, order)
		})

	require.NoError(t, m.Start(context.Background()))
	return m, model, &processing, &exits
}

func TestMonitorExitOnThreshold(t *testing.T) {
	fake := newFakeExchange()
	m, model, _, exits := newTestMonitor(t, fake, 5.0)

	// Below threshold: rate (106-100)/106 would pass, (104-100)/104 does not.
	m.OnTick(104)
	require.Zero(t, fake.orderCount(), "no SELL below the threshold")
	require.Zero(t, fake.unsubscribeCount(), "no unsubscribe below the threshold")
	require.Equal(t, 104.0, model.CurrentPrice)

	// Threshold crossed: exactly one SELL and one unsubscribe.
	m.OnTick(106)
	require.Equal(t, 1, fake.orderCount())
	require.Equal(t, SideSell, fake.lastOrder().Side)
	require.Equal(t, 1, fake.unsubscribeCount())
	require.Len(t, *exits, 1)

	// Ticks after the exit are dropped.
	m.OnTick(110)
	require.Equal(t, 1, fake.orderCount())
	require.Equal(t, 1, fake.unsubscribeCount())
	require.Equal(t, 106.0, model.CurrentPrice, "the closed cycle's model must not change")
}

func TestMonitorSellQuantity(t *testing.T) {
	fake := newFakeExchange()
	m, _, _, _ := newTestMonitor(t, fake, 5.0)

	m.OnTick(106)
	// ComputeQuantity(1000, 106) = 9.433, truncated to 9.43 for submission.
	require.Equal(t, 9.43, fake.lastOrder().Quantity)
}

func TestMonitorGuardDropsTicks(t *testing.T) {
	fake := newFakeExchange()
	m, model, processing, _ := newTestMonitor(t, fake, 5.0)

	// While a placement is in progress, ticks produce no state mutation and
	// no additional order.
	processing.Store(true)
	m.OnTick(150)

	require.Equal(t, 100.0, model.CurrentPrice)
	require.Zero(t, model.Movement.Rising)
	require.Zero(t, fake.orderCount())

	// Guard released: evaluation resumes.
	processing.Store(false)
	m.OnTick(101)
	require.Equal(t, 101.0, model.CurrentPrice)
	require.Equal(t, uint64(1), model.Movement.Rising)
}

func TestMonitorGuardReleasedAfterEvaluation(t *testing.T) {
	fake := newFakeExchange()
	m, _, processing, _ := newTestMonitor(t, fake, 5.0)

	m.OnTick(101)
	require.False(t, processing.Load(), "guard must be released after a non-exit tick")

	m.OnTick(106)
	require.False(t, processing.Load(), "guard must be released after the exit tick")
}

func TestMonitorIgnoresInvalidTick(t *testing.T) {
	fake := newFakeExchange()
	m, model, _, _ := newTestMonitor(t, fake, 5.0)

	m.OnTick(0)
	m.OnTick(-3)

	require.Equal(t, 100.0, model.CurrentPrice, "invalid ticks must not reach the model")
	require.Empty(t, model.History[1:], "invalid ticks must not be recorded")
	require.Zero(t, fake.orderCount())
}

func TestMonitorMovementCountersAreDiagnosticOnly(t *testing.T) {
	fake := newFakeExchange()
	m, model, _, _ := newTestMonitor(t, fake, 5.0)

	// Heavy falling movement must not trigger any exit.
	for _, price := range []float64{99, 98, 97, 96} {
		m.OnTick(price)
	}

	require.Equal(t, uint64(4), model.Movement.Falling)
	require.Zero(t, fake.orderCount())
	require.Zero(t, fake.unsubscribeCount())
}
