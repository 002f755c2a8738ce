package api

import (
	"context"

	"github.com/aristath/stocktrader/internal/domain"
)

// Portfolio returns current holdings
func (c *Client) Portfolio(ctx context.Context) ([]domain.Holding, error) {
	var h []domain.Holding
	return h, c.get(ctx, "/portfolio", &h)
}

// PortfolioSummary returns cash, holdings value and totals
func (c *Client) PortfolioSummary(ctx context.Context) (domain.PortfolioSummary, error) {
	var s domain.PortfolioSummary
	return s, c.get(ctx, "/portfolio/summary", &s)
}

// Transactions returns the full trade history
func (c *Client) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	var t []domain.Transaction
	return t, c.get(ctx, "/portfolio/transactions", &t)
}

// TransactionsBySymbol returns the trade history for one symbol
func (c *Client) TransactionsBySymbol(ctx context.Context, symbol string) ([]domain.Transaction, error) {
	var t []domain.Transaction
	return t, c.get(ctx, "/portfolio/transactions/"+symbolPath(symbol), &t)
}

// PortfolioValue returns the market value of all holdings
func (c *Client) PortfolioValue(ctx context.Context) (domain.PortfolioValue, error) {
	var v domain.PortfolioValue
	return v, c.get(ctx, "/portfolio/value", &v)
}

// ProfitLoss returns the unrealized P/L across holdings
func (c *Client) ProfitLoss(ctx context.Context) (domain.ProfitLoss, error) {
	var p domain.ProfitLoss
	return p, c.get(ctx, "/portfolio/profit-loss", &p)
}
