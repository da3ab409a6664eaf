package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// CyclePanel shows the detected coin, the polled market value, and the cycle
// state.
type CyclePanel struct {
	textView *tview.TextView

	coin        string
	marketValue string
	state       string
}

// NewCyclePanel creates a cycle panel in its pre-detection state.
func NewCyclePanel() *CyclePanel {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)

	textView.SetTitle(" Surgebot ").SetBorder(true)

	p := &CyclePanel{textView: textView}
	p.Reset()
	return p
}

// Widget returns the tview primitive.
func (p *CyclePanel) Widget() tview.Primitive {
	return p.textView
}

// Reset restores the pre-detection display.
func (p *CyclePanel) Reset() {
	p.coin = "[red]None[-]"
	p.marketValue = "[red]None[-]"
	p.state = "idle"
	p.render()
}

// SetCoin shows the detected coin.
func (p *CyclePanel) SetCoin(coin string) {
	p.coin = fmt.Sprintf("[green]%s[-]", coin)
	p.render()
}

// SetMarketValue shows the polled price, or "None" while the pair is absent.
func (p *CyclePanel) SetMarketValue(price float64, found bool) {
	if !found {
		p.marketValue = "[red]None[-]"
	} else {
		p.marketValue = fmt.Sprintf("[green]%.8f[-]", price)
	}
	p.render()
}

// SetState shows the cycle state.
func (p *CyclePanel) SetState(state string) {
	if state != p.state {
		p.state = state
		p.render()
	}
}

func (p *CyclePanel) render() {
	p.textView.Clear()

	fmt.Fprintf(p.textView, `[blue]Surgebot initialized and ready![-]

[yellow]DETECTED:[-] %s
[yellow]MARKET VALUE:[-] %s
[yellow]STATE:[-] %s
`, p.coin, p.marketValue, p.state)
}
