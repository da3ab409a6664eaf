package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/llenroc/surgebot/internal/metrics"
)

// StatsPanel displays system health and cycle statistics.
type StatsPanel struct {
	textView *tview.TextView
}

// NewStatsPanel creates a new stats panel.
func NewStatsPanel() *StatsPanel {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)

	textView.SetTitle(" Stats ").SetBorder(true)

	return &StatsPanel{textView: textView}
}

// Widget returns the tview primitive.
func (p *StatsPanel) Widget() tview.Primitive {
	return p.textView
}

// Update refreshes the stats display from a tracker snapshot.
func (p *StatsPanel) Update(snapshot metrics.Snapshot) {
	p.textView.Clear()

	operational := "[green]yes[-]"
	if !snapshot.Operational {
		operational = "[red]NO — startup fetch failed[-]"
	}

	streamColor := "red"
	if snapshot.StreamStatus == "connected" {
		streamColor = "green"
	}

	lastTick := "never"
	if !snapshot.LastTick.IsZero() {
		lastTick = formatTimeAgo(snapshot.LastTick)
	}

	fmt.Fprintf(p.textView, `[yellow]System[-]
Uptime: %s
Operational: %s
Stream: [%s]%s[-]
Last Tick: %s

[yellow]Activity[-]
Polls: %d
Ticks: %d
Cycles: %d started / %d closed / %d failed
`,
		formatDuration(snapshot.Uptime),
		operational,
		streamColor, snapshot.StreamStatus,
		lastTick,
		snapshot.PollsTotal,
		snapshot.TicksTotal,
		snapshot.CyclesStarted,
		snapshot.CyclesClosed,
		snapshot.CyclesFailed,
	)
}

// formatDuration formats a duration in human-readable form.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// formatTimeAgo formats a time as "X ago".
func formatTimeAgo(t time.Time) string {
	elapsed := time.Since(t)

	if elapsed < time.Minute {
		return fmt.Sprintf("%.0fs ago", elapsed.Seconds())
	}
	if elapsed < time.Hour {
		return fmt.Sprintf("%.0fm ago", elapsed.Minutes())
	}
	return fmt.Sprintf("%.0fh ago", elapsed.Hours())
}
