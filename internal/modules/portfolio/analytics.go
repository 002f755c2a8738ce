package portfolio

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/stocktrader/internal/domain"
)

// Stats are the analytics page figures
type Stats struct {
	Positions       int
	TotalValue      float64
	TotalCost       float64
	TotalProfitLoss float64
	TotalReturn     float64 // percent of cost
	WeightedReturn  float64 // value-weighted mean of per-holding returns, percent
	ReturnStdDev    float64 // dispersion of per-holding returns, percent
	Concentration   float64 // Herfindahl index of value weights, 0..1
	Largest         *HoldingRow
	LargestShare    float64 // percent of total value
	Best            *HoldingRow
	Worst           *HoldingRow
}

// Analytics computes portfolio statistics. An empty portfolio yields zeros.
func Analytics(holdings []domain.Holding) Stats {
	st := Stats{Positions: len(holdings)}
	if len(holdings) == 0 {
		return st
	}

	rows := HoldingRows(holdings)
	values := make([]float64, len(holdings))
	costs := make([]float64, len(holdings))
	returns := make([]float64, len(holdings))
	for i, h := range holdings {
		values[i] = h.TotalValue
		costs[i] = h.CostBasis()
		returns[i] = rows[i].ProfitLossPercent
		st.TotalProfitLoss += h.ProfitLoss
	}

	st.TotalValue = floats.Sum(values)
	st.TotalCost = floats.Sum(costs)
	if st.TotalCost > 0 {
		st.TotalReturn = st.TotalProfitLoss / st.TotalCost * 100
	}

	if st.TotalValue > 0 {
		weights := make([]float64, len(values))
		copy(weights, values)
		floats.Scale(1/st.TotalValue, weights)

		st.WeightedReturn = stat.Mean(returns, weights)
		st.Concentration = floats.Dot(weights, weights)

		idx := floats.MaxIdx(values)
		st.Largest = &rows[idx]
		st.LargestShare = weights[idx] * 100
	}
	if len(returns) > 1 {
		st.ReturnStdDev = stat.StdDev(returns, nil)
	}

	best, worst := floats.MaxIdx(returns), floats.MinIdx(returns)
	st.Best = &rows[best]
	st.Worst = &rows[worst]
	return st
}
