package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/llenroc/surgebot/internal/trade"
)

// OrdersPanel displays the orders placed during the current cycle.
type OrdersPanel struct {
	table  *tview.Table
	orders []trade.Order
}

var orderHeaders = []string{"Time", "Side", "Pair", "Price", "Quantity"}

// NewOrdersPanel creates an empty orders panel.
func NewOrdersPanel() *OrdersPanel {
	table := tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0)

	table.SetTitle(" Orders ").SetBorder(true)

	p := &OrdersPanel{table: table}
	p.renderHeader()
	return p
}

// Widget returns the tview primitive.
func (p *OrdersPanel) Widget() tview.Primitive {
	return p.table
}

// Reset clears the order list for a new cycle.
func (p *OrdersPanel) Reset() {
	p.orders = nil
	p.updateTable()
}

// AddOrder appends a placed order to the panel.
func (p *OrdersPanel) AddOrder(o trade.Order) {
	p.orders = append(p.orders, o)
	p.updateTable()
}

func (p *OrdersPanel) renderHeader() {
	for col, header := range orderHeaders {
		cell := tview.NewTableCell(header).
			SetTextColor(tview.Styles.SecondaryTextColor).
			SetAlign(tview.AlignLeft).
			SetSelectable(false)
		p.table.SetCell(0, col, cell)
	}
}

func (p *OrdersPanel) updateTable() {
	p.table.Clear()
	p.renderHeader()

	for i, o := range p.orders {
		row := i + 1

		side := string(o.Side)
		if o.Side == trade.SideBuy {
			side = "[green]" + side + "[-]"
		} else {
			side = "[red]" + side + "[-]"
		}

		cells := []string{
			o.PlacedAt.Format("15:04:05"),
			side,
			o.Symbol,
			fmt.Sprintf("%.8f", o.Price),
			fmt.Sprintf("%.3f", o.Quantity),
		}

		for col, text := range cells {
			cell := tview.NewTableCell(text).
				SetAlign(tview.AlignLeft)
			p.table.SetCell(row, col, cell)
		}
	}

	p.table.SetTitle(fmt.Sprintf(" Orders (%d) ", len(p.orders)))
}
