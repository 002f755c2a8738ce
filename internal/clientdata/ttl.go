package clientdata

import "time"

// TTL constants for cached backend resources.
// Quotes are absent: they are always fetched live.
const (
	TTLPortfolio    = 30 * time.Second
	TTLSummary      = 30 * time.Second
	TTLTransactions = 60 * time.Second
	TTLWatchlist    = 30 * time.Second
)

// Cache keys. Everything under "portfolio" is dropped by a trade or a funds change.
const (
	KeyPortfolio    = "portfolio"
	KeySummary      = "portfolio:summary"
	KeyTransactions = "portfolio:transactions"
	KeyWatchlist    = "watchlist"
)
