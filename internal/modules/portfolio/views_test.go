package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stocktrader/internal/domain"
)

func holding(symbol string, qty int, avg, current float64) domain.Holding {
	value := float64(qty) * current
	return domain.Holding{
		Symbol:       symbol,
		Quantity:     qty,
		AveragePrice: avg,
		CurrentPrice: current,
		TotalValue:   value,
		ProfitLoss:   value - float64(qty)*avg,
	}
}

func TestHoldingRows(t *testing.T) {
	rows := HoldingRows([]domain.Holding{
		holding("AAPL", 10, 100, 110),
		holding("TSLA", 4, 250, 200),
		holding("MSFT", 1, 380, 380),
	})
	require.Len(t, rows, 3)

	assert.Equal(t, "AAPL", rows[0].Symbol)
	assert.InDelta(t, 10.0, rows[0].ProfitLossPercent, 1e-9)
	assert.Equal(t, Positive, rows[0].Sign)

	assert.InDelta(t, -20.0, rows[1].ProfitLossPercent, 1e-9)
	assert.Equal(t, Negative, rows[1].Sign)
	assert.Equal(t, "", rows[1].Sign.Prefix())

	assert.Equal(t, Positive, rows[2].Sign, "break-even renders as a gain")
	assert.Equal(t, "+", rows[2].Sign.Prefix())
}

func TestHoldingRows_ZeroCostBasis(t *testing.T) {
	rows := HoldingRows([]domain.Holding{holding("AAPL", 3, 0, 150)})
	assert.Equal(t, 0.0, rows[0].ProfitLossPercent)
}

func TestSummaryCards(t *testing.T) {
	cards := SummaryCards(domain.PortfolioSummary{
		CashBalance:     500,
		PortfolioValue:  1500,
		TotalValue:      2000,
		TotalProfitLoss: -25,
	})
	require.Len(t, cards, 4)
	assert.Equal(t, "Cash Balance", cards[0].Title)
	assert.Equal(t, 2000.0, cards[2].Value)
	assert.Equal(t, Negative, cards[3].Sign)
}

func TestAllocation(t *testing.T) {
	var holdings []domain.Holding
	for _, s := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"} {
		holdings = append(holdings, holding(s, 1, 10, 10))
	}
	holdings[0] = holding("A", 2, 10, 10)

	slices := Allocation(holdings)
	require.Len(t, slices, 9)
	assert.InDelta(t, 20.0, slices[0].Percent, 1e-9)
	assert.Equal(t, "A (20.0%)", slices[0].Label())
	assert.Equal(t, "B (10.0%)", slices[1].Label())
	assert.Equal(t, Palette[0], slices[0].Color)
	assert.Equal(t, Palette[0], slices[8].Color, "colors cycle")

	var sum float64
	for _, s := range slices {
		sum += s.Percent
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestAllocation_ZeroTotal(t *testing.T) {
	slices := Allocation([]domain.Holding{holding("AAPL", 0, 10, 10)})
	require.Len(t, slices, 1)
	assert.Equal(t, 0.0, slices[0].Percent)
	assert.Equal(t, "AAPL (0.0%)", slices[0].Label())

	assert.Empty(t, Allocation(nil))
}

func TestValueSeries_SortedDescending(t *testing.T) {
	in := []domain.Holding{
		holding("AAPL", 1, 100, 150),
		holding("MSFT", 2, 300, 380),
		holding("TSLA", 1, 200, 250),
	}
	bars := ValueSeries(in)
	require.Len(t, bars, 3)
	assert.Equal(t, []string{"MSFT", "TSLA", "AAPL"}, []string{bars[0].Symbol, bars[1].Symbol, bars[2].Symbol})
	assert.Equal(t, "AAPL", in[0].Symbol, "input order untouched")
}

func TestTransactionRows_NewestFirst(t *testing.T) {
	txs := []domain.Transaction{
		{ID: 1, Symbol: "AAPL", TransactionDate: "2024-01-01T10:00:00"},
		{ID: 2, Symbol: "MSFT", TransactionDate: "2024-03-01T10:00:00"},
		{ID: 3, Symbol: "TSLA", TransactionDate: "garbage"},
		{ID: 4, Symbol: "GOOGL", TransactionDate: "2024-03-01T10:00:00"},
	}
	rows := TransactionRows(txs)
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	assert.Equal(t, []int64{4, 2, 1, 3}, ids)
	assert.Equal(t, int64(1), txs[0].ID)
}
