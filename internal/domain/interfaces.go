package domain

import "context"

// TradingClient places orders against the backend
type TradingClient interface {
	PlaceOrder(ctx context.Context, side TradeSide, req TradeRequest) (TradeResponse, error)
}

// FundsClient moves cash in and out of the account
type FundsClient interface {
	AddFunds(ctx context.Context, amount float64) (AuthResponse, error)
	WithdrawFunds(ctx context.Context, amount float64) (AuthResponse, error)
}

// PortfolioClient reads holdings and history
type PortfolioClient interface {
	Portfolio(ctx context.Context) ([]Holding, error)
	PortfolioSummary(ctx context.Context) (PortfolioSummary, error)
	Transactions(ctx context.Context) ([]Transaction, error)
	TransactionsBySymbol(ctx context.Context, symbol string) ([]Transaction, error)
}

// WatchlistClient manages the tracked symbols
type WatchlistClient interface {
	Watchlist(ctx context.Context) ([]WatchlistItem, error)
	AddToWatchlist(ctx context.Context, symbol string) (WatchlistAddResponse, error)
	RemoveFromWatchlist(ctx context.Context, symbol string) (MessageResponse, error)
	CheckWatchlist(ctx context.Context, symbol string) (WatchlistCheck, error)
	ClearWatchlist(ctx context.Context) (MessageResponse, error)
}

// MarketClient looks up quotes
type MarketClient interface {
	Quote(ctx context.Context, symbol string) (StockQuote, error)
	ValidateSymbol(ctx context.Context, symbol string) (SymbolValidation, error)
	Quotes(ctx context.Context, symbols []string) (map[string]StockQuote, error)
}

// SessionProvider exposes the current session to workflows that need the
// balance or must reconcile it after a mutation
type SessionProvider interface {
	Current() (Session, bool)
	Refresh(ctx context.Context) error
}
