package api

import (
	"context"

	"github.com/aristath/stocktrader/internal/domain"
)

// BuyStock places a buy order. The backend prices and validates it.
func (c *Client) BuyStock(ctx context.Context, req domain.TradeRequest) (domain.TradeResponse, error) {
	var resp domain.TradeResponse
	return resp, c.post(ctx, "/trades/buy", nil, req, &resp)
}

// SellStock places a sell order
func (c *Client) SellStock(ctx context.Context, req domain.TradeRequest) (domain.TradeResponse, error) {
	var resp domain.TradeResponse
	return resp, c.post(ctx, "/trades/sell", nil, req, &resp)
}

// PlaceOrder dispatches to BuyStock or SellStock by side
func (c *Client) PlaceOrder(ctx context.Context, side domain.TradeSide, req domain.TradeRequest) (domain.TradeResponse, error) {
	if side == domain.SideSell {
		return c.SellStock(ctx, req)
	}
	return c.BuyStock(ctx, req)
}
