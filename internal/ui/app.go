// Package ui provides the terminal dashboard. It is a purely observational
// sink: it renders state snapshots and never feeds back into the trade logic.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/llenroc/surgebot/internal/metrics"
	"github.com/llenroc/surgebot/internal/trade"
)

// App is the main TUI application. It implements trade.Display.
type App struct {
	app    *tview.Application
	layout *tview.Flex

	// Views
	cyclePanel  *CyclePanel
	changePanel *ChangePanel
	ordersPanel *OrdersPanel
	statsPanel  *StatsPanel

	tracker *metrics.Tracker
	refresh time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(tracker *metrics.Tracker, refresh time.Duration) *App {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		app:     tview.NewApplication(),
		tracker: tracker,
		refresh: refresh,
		ctx:     ctx,
		cancel:  cancel,
	}

	a.cyclePanel = NewCyclePanel()
	a.changePanel = NewChangePanel()
	a.ordersPanel = NewOrdersPanel()
	a.statsPanel = NewStatsPanel()

	a.setupLayout()
	a.setupKeyboard()

	return a
}

// setupLayout builds the 3-row layout.
func (a *App) setupLayout() {
	topRow := tview.NewFlex().
		AddItem(a.cyclePanel.Widget(), 0, 1, false).
		AddItem(a.changePanel.Widget(), 0, 1, false)

	a.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(topRow, 0, 2, false).
		AddItem(a.ordersPanel.Widget(), 0, 3, false).
		AddItem(a.statsPanel.Widget(), 0, 2, false)

	a.app.SetRoot(a.layout, true)
}

// setupKeyboard configures keyboard shortcuts.
func (a *App) setupKeyboard() {
	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			a.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q', 'Q':
				a.Stop()
				return nil
			}
		}
		return event
	})
}

// Run starts the TUI application (blocking).
func (a *App) Run() error {
	go a.updateLoop()

	if err := a.app.Run(); err != nil {
		return fmt.Errorf("app run failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the application.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

// updateLoop periodically refreshes the stats panel with tracker data.
func (a *App) updateLoop() {
	ticker := time.NewTicker(a.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			snapshot := a.tracker.Snapshot()

			a.app.QueueUpdateDraw(func() {
				a.statsPanel.Update(snapshot)
				a.cyclePanel.SetState(snapshot.State)
			})
		}
	}
}

// --- trade.Display ---

// Reset clears the dashboard for a new detection.
func (a *App) Reset() {
	a.app.QueueUpdateDraw(func() {
		a.cyclePanel.Reset()
		a.changePanel.Reset()
		a.ordersPanel.Reset()
	})
}

// CoinDetected shows the detected coin.
func (a *App) CoinDetected(coin string) {
	a.app.QueueUpdateDraw(func() {
		a.cyclePanel.SetCoin(coin)
	})
}

// MarketValue shows the polled market value, or "None" while absent.
func (a *App) MarketValue(price float64, found bool) {
	a.app.QueueUpdateDraw(func() {
		a.cyclePanel.SetMarketValue(price, found)
	})
}

// OrderPlaced appends an order line.
func (a *App) OrderPlaced(o trade.Order) {
	a.app.QueueUpdateDraw(func() {
		a.ordersPanel.AddOrder(o)
	})
}

// RateUpdate shows the current rate of change and movement counters.
func (a *App) RateUpdate(rate float64, rising, falling uint64) {
	a.app.QueueUpdateDraw(func() {
		a.changePanel.Update(rate, rising, falling)
	})
}
