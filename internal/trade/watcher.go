package trade

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/llenroc/surgebot/internal/metrics"
)

// PriceWatcher polls the exchange's price map at a fixed interval until a
// price for the pair appears. At most one poll is in flight at a time; an
// interval tick that fires while a poll is outstanding is skipped entirely.
type PriceWatcher struct {
	exchange Exchange
	display  Display
	tracker  *metrics.Tracker

	interval    time.Duration
	maxAttempts int // 0 = poll forever

	detecting atomic.Bool
	attempts  atomic.Int64

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPriceWatcher creates a PriceWatcher. maxAttempts of 0 preserves the
// unbounded retry behavior; a positive value stops the loop after that many
// completed polls without a price.
func NewPriceWatcher(exchange Exchange, display Display, tracker *metrics.Tracker, interval time.Duration, maxAttempts int) *PriceWatcher {
	return &PriceWatcher{
		exchange:    exchange,
		display:     display,
		tracker:     tracker,
		interval:    interval,
		maxAttempts: maxAttempts,
		stopChan:    make(chan struct{}),
	}
}

// Start begins polling for the pair's price. On the first valid price the
// loop is cancelled, the model's reference price is initialized, and onFound
// is invoked exactly once with that price. If the attempt bound is reached
// first, polling stops and onExhausted is invoked exactly once instead; a nil
// onExhausted only stops the loop.
func (w *PriceWatcher) Start(ctx context.Context, pair string, model *PriceModel, onFound func(price float64), onExhausted func()) {
	w.wg.Add(1)
	go w.run(ctx, pair, model, onFound, onExhausted)
}

// Stop cancels the polling loop. Safe to call more than once.
func (w *PriceWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
}

// Wait blocks until the polling loop and any in-flight poll have finished.
func (w *PriceWatcher) Wait() {
	w.wg.Wait()
}

func (w *PriceWatcher) run(ctx context.Context, pair string, model *PriceModel, onFound func(price float64), onExhausted func()) {
	defer w.wg.Done()

	slog.Info("price_detection_started", "pair", pair, "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("price_detection_stopped", "pair", pair, "reason", "context cancelled")
			return
		case <-w.stopChan:
			slog.Debug("price_detection_stopped", "pair", pair, "reason", "stop signal")
			return
		case <-ticker.C:
			// Skip the tick entirely while a poll is still outstanding.
			if !w.detecting.CompareAndSwap(false, true) {
				continue
			}
			// A completing poll may have stopped the watcher; the guard was
			// only released after that, so this check cannot miss it.
			select {
			case <-w.stopChan:
				w.detecting.Store(false)
				return
			default:
			}
			w.wg.Add(1)
			go w.poll(ctx, pair, model, onFound, onExhausted)
		}
	}
}

// poll fetches the price map once. The detecting guard is released on every
// exit path.
func (w *PriceWatcher) poll(ctx context.Context, pair string, model *PriceModel, onFound func(price float64), onExhausted func()) {
	defer w.wg.Done()
	defer w.detecting.Store(false)

	w.tracker.RecordPoll()

	prices, err := w.exchange.Prices(ctx)
	if err != nil {
		slog.Debug("price_poll_failed", "pair", pair, "error", err)
		w.countAttempt(pair, onExhausted)
		return
	}

	price, ok := prices[pair]
	if !ok || price <= 0 {
		// Transient, expected: the pair is not listed yet.
		w.display.MarketValue(0, false)
		w.countAttempt(pair, onExhausted)
		return
	}

	// Found. Cancel further ticks before handing off the price.
	w.Stop()

	w.display.MarketValue(price, true)
	model.InitializePrice(price)
	w.tracker.PriceDetected(price)

	slog.Info("price_detected", "pair", pair, "price", price)

	onFound(price)
}

// countAttempt stops the loop and reports exhaustion once the attempt bound
// is reached. Polls are serialized by the detecting guard, so the bound is
// crossed by exactly one poll and onExhausted fires at most once.
func (w *PriceWatcher) countAttempt(pair string, onExhausted func()) {
	if w.maxAttempts <= 0 {
		return
	}
	if n := w.attempts.Add(1); n >= int64(w.maxAttempts) {
		slog.Warn("price_detection_exhausted", "pair", pair, "attempts", n)
		w.Stop()
		if onExhausted != nil {
			onExhausted()
		}
	}
}
