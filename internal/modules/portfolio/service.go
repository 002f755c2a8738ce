// Package portfolio reads holdings, summary and history, and derives the
// table rows, chart series and statistics the portfolio pages render.
package portfolio

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aristath/stocktrader/internal/clientdata"
	"github.com/aristath/stocktrader/internal/domain"
)

// Service fetches portfolio resources through the read-through cache
type Service struct {
	client domain.PortfolioClient
	cache  *clientdata.Cache
	log    zerolog.Logger
}

// NewService creates a portfolio service. cache may be nil.
func NewService(client domain.PortfolioClient, cache *clientdata.Cache, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		cache:  cache,
		log:    log.With().Str("service", "portfolio").Logger(),
	}
}

// Holdings returns current positions
func (s *Service) Holdings(ctx context.Context) ([]domain.Holding, error) {
	h, err := clientdata.Fetch(ctx, s.cache, clientdata.KeyPortfolio, clientdata.TTLPortfolio, s.client.Portfolio)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to fetch portfolio data")
	}
	return h, err
}

// Summary returns the dashboard aggregate
func (s *Service) Summary(ctx context.Context) (domain.PortfolioSummary, error) {
	sum, err := clientdata.Fetch(ctx, s.cache, clientdata.KeySummary, clientdata.TTLSummary, s.client.PortfolioSummary)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to fetch portfolio summary")
	}
	return sum, err
}

// Transactions returns the full trade history
func (s *Service) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	txs, err := clientdata.Fetch(ctx, s.cache, clientdata.KeyTransactions, clientdata.TTLTransactions, s.client.Transactions)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to fetch transactions")
	}
	return txs, err
}

// TransactionsBySymbol returns the history for one symbol, uncached
func (s *Service) TransactionsBySymbol(ctx context.Context, symbol string) ([]domain.Transaction, error) {
	return s.client.TransactionsBySymbol(ctx, domain.NormalizeSymbol(symbol))
}

// Invalidate drops cached portfolio resources so the next read goes to the backend
func (s *Service) Invalidate() {
	if s.cache != nil {
		s.cache.InvalidatePrefix(clientdata.KeyPortfolio)
	}
}
