package api

import (
	"context"

	"github.com/aristath/stocktrader/internal/domain"
)

// Quote returns a live quote
func (c *Client) Quote(ctx context.Context, symbol string) (domain.StockQuote, error) {
	var q domain.StockQuote
	return q, c.get(ctx, "/stocks/quote/"+symbolPath(symbol), &q)
}

// Price returns just the current price
func (c *Client) Price(ctx context.Context, symbol string) (domain.PriceResponse, error) {
	var p domain.PriceResponse
	return p, c.get(ctx, "/stocks/price/"+symbolPath(symbol), &p)
}

// ValidateSymbol asks whether the backend can price symbol
func (c *Client) ValidateSymbol(ctx context.Context, symbol string) (domain.SymbolValidation, error) {
	var v domain.SymbolValidation
	return v, c.get(ctx, "/stocks/validate/"+symbolPath(symbol), &v)
}

// Quotes returns quotes keyed by symbol
func (c *Client) Quotes(ctx context.Context, symbols []string) (map[string]domain.StockQuote, error) {
	quotes := make(map[string]domain.StockQuote)
	return quotes, c.post(ctx, "/stocks/quotes", nil, domain.QuotesRequest{Symbols: symbols}, &quotes)
}
