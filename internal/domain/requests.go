package domain

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TradeRequest is the body of POST /trades/buy and /trades/sell
type TradeRequest struct {
	Symbol   string `json:"symbol"`
	Quantity int    `json:"quantity"`
}

// AuthResponse wraps the user returned by register, login and fund transfers
type AuthResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// TradeResponse wraps the transaction created by a buy or sell
type TradeResponse struct {
	Message     string      `json:"message"`
	Transaction Transaction `json:"transaction"`
}

// MessageResponse is returned by endpoints with nothing else to say
type MessageResponse struct {
	Message string `json:"message"`
}

// PriceResponse is returned by GET /stocks/price/:symbol
type PriceResponse struct {
	Symbol       string  `json:"symbol"`
	CurrentPrice float64 `json:"currentPrice"`
}

// SymbolValidation is returned by GET /stocks/validate/:symbol
type SymbolValidation struct {
	Symbol       string   `json:"symbol"`
	Valid        bool     `json:"valid"`
	CurrentPrice *float64 `json:"currentPrice,omitempty"`
}

// QuotesRequest is the body of POST /stocks/quotes
type QuotesRequest struct {
	Symbols []string `json:"symbols"`
}

// WatchlistRequest is the body of POST /watchlist
type WatchlistRequest struct {
	Symbol string `json:"symbol"`
}

// WatchlistAddResponse is returned by POST /watchlist
type WatchlistAddResponse struct {
	Message   string        `json:"message"`
	Watchlist WatchlistItem `json:"watchlist"`
}

// WatchlistCheck is returned by GET /watchlist/check/:symbol
type WatchlistCheck struct {
	Symbol      string `json:"symbol"`
	InWatchlist bool   `json:"inWatchlist"`
}

// PortfolioValue is returned by GET /portfolio/value
type PortfolioValue struct {
	PortfolioValue float64 `json:"portfolioValue"`
}

// ProfitLoss is returned by GET /portfolio/profit-loss
type ProfitLoss struct {
	TotalProfitLoss float64 `json:"totalProfitLoss"`
}
