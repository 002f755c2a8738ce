// Package market looks up live quotes. Quotes are never cached.
package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/stocktrader/internal/api"
	"github.com/aristath/stocktrader/internal/domain"
)

// ErrEmptySymbol is returned for blank search input; no call is made
var ErrEmptySymbol = errors.New("symbol is empty")

// PopularSymbols are listed with their live prices on the trading page
var PopularSymbols = []string{"AAPL", "TSLA", "GOOGL", "MSFT", "AMZN", "META", "NVDA"}

// SearchError carries the text to show for a failed lookup
type SearchError struct {
	Symbol  string
	Message string
	Err     error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("quote %s: %s", e.Symbol, e.Message)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// Quote is a quote with its change fields resolved
type Quote struct {
	domain.StockQuote
	Change        float64
	ChangePercent float64
}

// IsPositive reports whether the quote renders as up (change ≥ 0)
func (q Quote) IsPositive() bool {
	return q.Change >= 0
}

// Service wraps quote lookups
type Service struct {
	client domain.MarketClient
	log    zerolog.Logger
}

// NewService creates a market service
func NewService(client domain.MarketClient, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		log:    log.With().Str("service", "market").Logger(),
	}
}

// Search trims and upper-cases input and fetches its quote
func (s *Service) Search(ctx context.Context, input string) (Quote, error) {
	symbol := domain.NormalizeSymbol(input)
	if symbol == "" {
		return Quote{}, ErrEmptySymbol
	}

	q, err := s.client.Quote(ctx, symbol)
	if err != nil {
		s.log.Debug().Err(err).Str("symbol", symbol).Msg("Quote lookup failed")
		return Quote{}, &SearchError{Symbol: symbol, Message: api.ErrorMessage(err, "Stock not found"), Err: err}
	}
	return resolve(q), nil
}

// Validate asks whether the backend can price symbol
func (s *Service) Validate(ctx context.Context, symbol string) (bool, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if symbol == "" {
		return false, ErrEmptySymbol
	}
	v, err := s.client.ValidateSymbol(ctx, symbol)
	if err != nil {
		return false, err
	}
	return v.Valid, nil
}

// Quotes fetches several symbols at once. Unknown symbols are absent from the result.
func (s *Service) Quotes(ctx context.Context, symbols []string) (map[string]Quote, error) {
	normalized := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if sym = domain.NormalizeSymbol(sym); sym != "" {
			normalized = append(normalized, sym)
		}
	}
	if len(normalized) == 0 {
		return map[string]Quote{}, nil
	}

	raw, err := s.client.Quotes(ctx, normalized)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Quote, len(raw))
	for sym, q := range raw {
		out[sym] = resolve(q)
	}
	return out, nil
}

func resolve(q domain.StockQuote) Quote {
	change, pct := q.Derived()
	return Quote{StockQuote: q, Change: change, ChangePercent: pct}
}
