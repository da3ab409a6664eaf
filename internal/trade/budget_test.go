package trade

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestComputeNetBudget(t *testing.T) {
	require.Equal(t, 299.95, ComputeNetBudget(1000, 0.3, 0.05))
	require.Equal(t, 1000.0, ComputeNetBudget(1000, 1.0, 0))
	require.Equal(t, -0.05, ComputeNetBudget(0, 0.3, 0.05))
}

func TestComputeQuantity(t *testing.T) {
	cases := []struct {
		name      string
		netBudget float64
		price     float64
		want      float64
	}{
		{"simple", 100, 10, 10.0},
		{"fractional", 100, 106, 0.943},
		{"one step", 0.011, 10, 0.001},
		{"below one step", 0.009, 10, 0},
		{"small price", 1.0, 0.001, 1000.0},
		{"exact boundary", 0.03, 10, 0.003},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ComputeQuantity(tc.netBudget, tc.price))
		})
	}
}

func TestComputeQuantityZeroCases(t *testing.T) {
	require.Zero(t, ComputeQuantity(0, 10))
	require.Zero(t, ComputeQuantity(-5, 10))
	require.Zero(t, ComputeQuantity(100, 0))
	require.Zero(t, ComputeQuantity(100, -1))
}

// The returned quantity must satisfy q*price <= netBudget < (q+step)*price.
func TestComputeQuantityBoundaryProperty(t *testing.T) {
	step := decimal.RequireFromString(QuantityStep)

	cases := []struct {
		netBudget float64
		price     float64
	}{
		{100, 10},
		{100, 106},
		{299.95, 10.37},
		{0.011, 10},
		{1.0, 0.001},
		{7.77, 3.33},
		{12345.678, 0.042},
	}

	for _, tc := range cases {
		q := ComputeQuantity(tc.netBudget, tc.price)

		qd := decimal.NewFromFloat(q)
		price := decimal.NewFromFloat(tc.price)
		budget := decimal.NewFromFloat(tc.netBudget)

		require.True(t, qd.Mul(price).LessThanOrEqual(budget),
			"q*price must not exceed the budget for budget=%v price=%v", tc.netBudget, tc.price)
		require.True(t, qd.Add(step).Mul(price).GreaterThan(budget),
			"q must be the largest whole-step quantity for budget=%v price=%v", tc.netBudget, tc.price)
	}
}

func TestSubmissionQuantity(t *testing.T) {
	// Truncation, never rounding up.
	require.Equal(t, 0.94, SubmissionQuantity(0.943))
	require.Equal(t, 0.13, SubmissionQuantity(0.139))
	require.Equal(t, 10.0, SubmissionQuantity(10.0))
}
