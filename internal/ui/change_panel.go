package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// ChangePanel shows the rate of change against the buy price and the
// up/down movement counters.
type ChangePanel struct {
	textView *tview.TextView
}

// NewChangePanel creates an empty change panel.
func NewChangePanel() *ChangePanel {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)

	textView.SetTitle(" Change ").SetBorder(true)

	p := &ChangePanel{textView: textView}
	p.Reset()
	return p
}

// Widget returns the tview primitive.
func (p *ChangePanel) Widget() tview.Primitive {
	return p.textView
}

// Reset clears the panel for a new cycle.
func (p *ChangePanel) Reset() {
	p.textView.Clear()
	fmt.Fprint(p.textView, "\n[yellow]CHANGE:[-] -\n[yellow]MOVEMENT:[-] -")
}

// Update renders the latest tick evaluation.
func (p *ChangePanel) Update(rate float64, rising, falling uint64) {
	color := "green"
	if rate < 0 {
		color = "red"
	}

	p.textView.Clear()
	fmt.Fprintf(p.textView, `
[yellow]CHANGE:[-] [%s]%.2f%%[-]
[yellow]MOVEMENT:[-] [green]%d UP[-] [red]%d DOWN[-]
`, color, rate, rising, falling)
}
