package portfolio

import (
	"fmt"
	"sort"

	"github.com/aristath/stocktrader/internal/domain"
)

// Sign is the display polarity of a money amount. Zero is positive.
type Sign int

const (
	Positive Sign = iota
	Negative
)

// SignOf returns Positive for v ≥ 0
func SignOf(v float64) Sign {
	if v >= 0 {
		return Positive
	}
	return Negative
}

// Prefix is "+" for positive amounts and "" otherwise
func (s Sign) Prefix() string {
	if s == Positive {
		return "+"
	}
	return ""
}

// Palette is the allocation chart's colors, cycled by slice index
var Palette = []string{
	"#3B82F6", "#10B981", "#F59E0B", "#EF4444",
	"#8B5CF6", "#EC4899", "#14B8A6", "#F97316",
}

// HoldingRow is one line of the holdings table
type HoldingRow struct {
	Symbol            string
	Quantity          int
	AveragePrice      float64
	CurrentPrice      float64
	TotalValue        float64
	ProfitLoss        float64
	ProfitLossPercent float64
	Sign              Sign
}

// HoldingRows builds table rows in backend order
func HoldingRows(holdings []domain.Holding) []HoldingRow {
	rows := make([]HoldingRow, 0, len(holdings))
	for _, h := range holdings {
		rows = append(rows, HoldingRow{
			Symbol:            h.Symbol,
			Quantity:          h.Quantity,
			AveragePrice:      h.AveragePrice,
			CurrentPrice:      h.CurrentPrice,
			TotalValue:        h.TotalValue,
			ProfitLoss:        h.ProfitLoss,
			ProfitLossPercent: h.ProfitLossPercent(),
			Sign:              SignOf(h.ProfitLoss),
		})
	}
	return rows
}

// Card is one dashboard summary tile
type Card struct {
	Title string
	Value float64
	Sign  Sign
}

// SummaryCards returns cash, holdings value, total and P/L tiles.
// Totals are displayed as the backend computed them.
func SummaryCards(s domain.PortfolioSummary) []Card {
	return []Card{
		{Title: "Cash Balance", Value: s.CashBalance, Sign: Positive},
		{Title: "Portfolio Value", Value: s.PortfolioValue, Sign: Positive},
		{Title: "Total Value", Value: s.TotalValue, Sign: Positive},
		{Title: "Total P/L", Value: s.TotalProfitLoss, Sign: SignOf(s.TotalProfitLoss)},
	}
}

// Slice is one segment of the allocation chart
type Slice struct {
	Symbol   string
	Value    float64
	Quantity int
	Percent  float64
	Color    string
}

// Label renders "SYM (12.3%)"
func (s Slice) Label() string {
	return fmt.Sprintf("%s (%.1f%%)", s.Symbol, s.Percent)
}

// Allocation returns each holding's share of total value. Percentages are
// zero when the portfolio has no value.
func Allocation(holdings []domain.Holding) []Slice {
	var total float64
	for _, h := range holdings {
		total += h.TotalValue
	}

	slices := make([]Slice, 0, len(holdings))
	for i, h := range holdings {
		var pct float64
		if total > 0 {
			pct = h.TotalValue / total * 100
		}
		slices = append(slices, Slice{
			Symbol:   h.Symbol,
			Value:    h.TotalValue,
			Quantity: h.Quantity,
			Percent:  pct,
			Color:    Palette[i%len(Palette)],
		})
	}
	return slices
}

// Bar is one point of the holdings value chart
type Bar struct {
	Symbol   string
	Value    float64
	Quantity int
	Price    float64
}

// ValueSeries returns holdings by total value, largest first. The input is not modified.
func ValueSeries(holdings []domain.Holding) []Bar {
	bars := make([]Bar, 0, len(holdings))
	for _, h := range holdings {
		bars = append(bars, Bar{Symbol: h.Symbol, Value: h.TotalValue, Quantity: h.Quantity, Price: h.CurrentPrice})
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Value > bars[j].Value })
	return bars
}

// TransactionRows returns history newest first. Unparseable dates sort last.
func TransactionRows(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].Date(), out[j].Date()
		if di.Equal(dj) {
			return out[i].ID > out[j].ID
		}
		return di.After(dj)
	})
	return out
}
