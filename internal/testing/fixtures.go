package testing

import (
	"time"

	"github.com/aristath/stocktrader/internal/domain"
)

// NewUserFixture returns a user with a funded cash balance
func NewUserFixture() domain.User {
	return domain.User{
		ID:       1,
		Username: "trader",
		Email:    "trader@example.com",
		Balance:  10000,
	}
}

// NewHoldingFixture builds a consistent holding at the given prices
func NewHoldingFixture(symbol string, quantity int, avgPrice, currentPrice float64) domain.Holding {
	value := domain.Round2(float64(quantity) * currentPrice)
	return domain.Holding{
		Symbol:       symbol,
		Quantity:     quantity,
		AveragePrice: avgPrice,
		CurrentPrice: currentPrice,
		TotalValue:   value,
		ProfitLoss:   domain.Round2(value - float64(quantity)*avgPrice),
	}
}

// NewHoldingFixtures returns a three-position portfolio with one losing position
func NewHoldingFixtures() []domain.Holding {
	return []domain.Holding{
		NewHoldingFixture("AAPL", 10, 120, 150),
		NewHoldingFixture("MSFT", 3, 400, 380),
		NewHoldingFixture("TSLA", 2, 200, 250),
	}
}

// NewSummaryFixture aggregates holdings the way the backend does
func NewSummaryFixture(cash float64, holdings []domain.Holding) domain.PortfolioSummary {
	var value, pl float64
	for _, h := range holdings {
		value += h.TotalValue
		pl += h.ProfitLoss
	}
	return domain.PortfolioSummary{
		CashBalance:     cash,
		PortfolioValue:  value,
		TotalValue:      cash + value,
		TotalProfitLoss: pl,
		Holdings:        holdings,
	}
}

// NewTransactionFixtures returns history in insertion order, one day apart
func NewTransactionFixtures() []domain.Transaction {
	base := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	mk := func(id int64, symbol string, side domain.TradeSide, qty int, price float64) domain.Transaction {
		return domain.Transaction{
			ID:              id,
			Symbol:          symbol,
			Type:            side,
			Quantity:        qty,
			Price:           price,
			TotalAmount:     float64(qty) * price,
			TransactionDate: base.AddDate(0, 0, int(id)).Format("2006-01-02T15:04:05"),
		}
	}
	return []domain.Transaction{
		mk(1, "AAPL", domain.SideBuy, 10, 120),
		mk(2, "MSFT", domain.SideBuy, 3, 400),
		mk(3, "TSLA", domain.SideBuy, 4, 200),
		mk(4, "TSLA", domain.SideSell, 2, 240),
	}
}

// NewWatchlistFixtures returns a gainer, a loser and an item without a quote
func NewWatchlistFixtures() []domain.WatchlistItem {
	f := func(v float64) *float64 { return &v }
	return []domain.WatchlistItem{
		{ID: 1, Symbol: "AAPL", AddedAt: "2024-01-01T09:00:00", CurrentPrice: f(150), Change: f(1), ChangePercent: f(0.67)},
		{ID: 2, Symbol: "TSLA", AddedAt: "2024-01-02T09:00:00", CurrentPrice: f(240), Change: f(-10), ChangePercent: f(-4)},
		{ID: 3, Symbol: "ZZZZ", AddedAt: "2024-01-03T09:00:00"},
	}
}
