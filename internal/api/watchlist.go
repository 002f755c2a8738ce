package api

import (
	"context"

	"github.com/aristath/stocktrader/internal/domain"
)

// Watchlist returns tracked symbols with price annotations where available
func (c *Client) Watchlist(ctx context.Context) ([]domain.WatchlistItem, error) {
	var items []domain.WatchlistItem
	return items, c.get(ctx, "/watchlist", &items)
}

// AddToWatchlist tracks symbol
func (c *Client) AddToWatchlist(ctx context.Context, symbol string) (domain.WatchlistAddResponse, error) {
	var resp domain.WatchlistAddResponse
	req := domain.WatchlistRequest{Symbol: domain.NormalizeSymbol(symbol)}
	return resp, c.post(ctx, "/watchlist", nil, req, &resp)
}

// RemoveFromWatchlist stops tracking symbol
func (c *Client) RemoveFromWatchlist(ctx context.Context, symbol string) (domain.MessageResponse, error) {
	var resp domain.MessageResponse
	return resp, c.delete(ctx, "/watchlist/"+symbolPath(symbol), &resp)
}

// CheckWatchlist reports whether symbol is tracked
func (c *Client) CheckWatchlist(ctx context.Context, symbol string) (domain.WatchlistCheck, error) {
	var resp domain.WatchlistCheck
	return resp, c.get(ctx, "/watchlist/check/"+symbolPath(symbol), &resp)
}

// ClearWatchlist removes every tracked symbol
func (c *Client) ClearWatchlist(ctx context.Context) (domain.MessageResponse, error) {
	var resp domain.MessageResponse
	return resp, c.delete(ctx, "/watchlist", &resp)
}
