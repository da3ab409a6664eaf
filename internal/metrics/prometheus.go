// Prometheus metrics for observability.
//
// Exposes the primary metrics the bot updates during operation:
//   • bot_orders_total{side}        – Count of market orders placed
//   • bot_polls_total               – Count of detection polls issued
//   • bot_ticks_total               – Count of stream ticks processed
//   • bot_rate_of_change            – Current rate of change vs buy price (gauge)
//   • bot_cycle_state{state}        – Cycle state indicator (0/1 per labeled state)
//   • bot_cycles_total{result}      – Cycles by result (started|closed|failed)
//
// These are registered in init() and served by the HTTP handler started in
// main at /metrics (Prometheus text exposition format).

package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	mtxOrders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_total",
			Help: "Market orders placed",
		},
		[]string{"side"}, // BUY|SELL
	)

	mtxPolls = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_polls_total",
			Help: "Price detection polls issued",
		},
	)

	mtxTicks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_ticks_total",
			Help: "Price stream ticks processed",
		},
	)

	mtxRate = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_rate_of_change",
			Help: "Rate of change of the current price versus the buy price, in percent",
		},
	)

	// bot_cycle_state exposes one labeled series per state and flips them
	// between 0/1 to keep dashboards simple.
	mtxCycleState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bot_cycle_state",
			Help: "Cycle state indicator (idle/detecting/holding/closed as separate labeled series)",
		},
		[]string{"state"},
	)

	mtxCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_cycles_total",
			Help: "Trade cycles counted by result (started|closed|failed)",
		},
		[]string{"result"},
	)
)

var cycleStates = []string{"idle", "detecting", "holding", "closed"}

func init() {
	prometheus.MustRegister(mtxOrders, mtxPolls, mtxTicks, mtxRate)
	prometheus.MustRegister(mtxCycleState, mtxCycles)
}

func incOrder(side string) { mtxOrders.WithLabelValues(side).Inc() }
func incPoll()             { mtxPolls.Inc() }
func incTick()             { mtxTicks.Inc() }

func setRateOfChange(v float64) { mtxRate.Set(v) }

func incCycle(result string) { mtxCycles.WithLabelValues(result).Inc() }

func setCycleState(state string) {
	for _, s := range cycleStates {
		v := 0.0
		if s == state {
			v = 1.0
		}
		mtxCycleState.WithLabelValues(s).Set(v)
	}
}
