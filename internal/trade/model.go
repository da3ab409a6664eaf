package trade

// Movement counts tick-to-tick price direction. The counters are diagnostic
// only; the exit decision never reads them.
type Movement struct {
	Rising  uint64
	Falling uint64
}

// PriceModel holds the price state for one trade cycle. It is owned by the
// controller, reset at each new detection, and only touched by whichever
// handler currently holds the cycle's guard.
type PriceModel struct {
	// History is the ordered sequence of every observed price, append-only.
	History []float64

	// BuyPrice is the reference price, set exactly once per cycle.
	BuyPrice float64

	LastPrice    float64
	CurrentPrice float64

	Movement Movement
}

// NewPriceModel creates an empty model for a fresh cycle.
func NewPriceModel() *PriceModel {
	return &PriceModel{}
}

// InitializePrice records the cycle's reference price. Must be called once,
// before any tick is processed.
func (m *PriceModel) InitializePrice(price float64) {
	m.History = append(m.History, price)
	m.BuyPrice = price
	m.CurrentPrice = price
}

// Swap shifts the two-price window: current becomes last, the new price
// becomes current. Called exactly once per observed tick, in arrival order.
func (m *PriceModel) Swap(newPrice float64) {
	m.LastPrice = m.CurrentPrice
	m.CurrentPrice = newPrice
	m.History = append(m.History, newPrice)
}

// TrackMovement bumps the direction counters from the current window.
// Equal consecutive prices increment neither.
func (m *PriceModel) TrackMovement() {
	switch {
	case m.CurrentPrice > m.LastPrice:
		m.Movement.Rising++
	case m.CurrentPrice < m.LastPrice:
		m.Movement.Falling++
	}
}

// RateOfChange returns the percentage difference between a reference price
// and a later price, relative to the later price. The caller guarantees
// current != 0; exchange prices are always positive.
func RateOfChange(reference, current float64) float64 {
	return (current - reference) / current * 100
}
