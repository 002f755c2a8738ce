package domain_test

import (
	"github.com/aristath/stocktrader/internal/api"
	"github.com/aristath/stocktrader/internal/domain"
	"github.com/aristath/stocktrader/internal/session"
	testutil "github.com/aristath/stocktrader/internal/testing"
)

// Compile-time checks that the concrete types satisfy the workflow contracts
var (
	_ domain.TradingClient   = (*api.Client)(nil)
	_ domain.FundsClient     = (*api.Client)(nil)
	_ domain.PortfolioClient = (*api.Client)(nil)
	_ domain.WatchlistClient = (*api.Client)(nil)
	_ domain.MarketClient    = (*api.Client)(nil)
	_ domain.SessionProvider = (*session.Store)(nil)
	_ api.CredentialSource   = (*session.Store)(nil)

	_ domain.SessionProvider = (*testutil.MockSessionProvider)(nil)
	_ domain.PortfolioClient = (*testutil.MockPortfolioClient)(nil)
)
