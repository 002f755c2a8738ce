// Package domain provides core domain models and types.
package domain

import (
	"math"
	"strings"
	"time"
)

// TradeSide is the direction of an order
type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

// Valid reports whether the side is one the backend accepts
func (s TradeSide) Valid() bool {
	return s == SideBuy || s == SideSell
}

// User is the account profile returned by the backend
type User struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Balance  float64 `json:"balance"`
}

// Session is the locally cached authenticated user.
// Password is kept only to replay Basic-Auth on subsequent calls.
type Session struct {
	UserID      int64     `json:"id" msgpack:"id"`
	Username    string    `json:"username" msgpack:"username"`
	Email       string    `json:"email" msgpack:"email"`
	Balance     float64   `json:"balance" msgpack:"balance"`
	Password    string    `json:"password" msgpack:"password"`
	RefreshedAt time.Time `json:"refreshed_at" msgpack:"refreshed_at"`
}

// NewSession merges a backend profile with the credential used to obtain it
func NewSession(u User, username, password string) Session {
	// The backend echoes the username, but the one we authenticated with wins.
	if username == "" {
		username = u.Username
	}
	return Session{
		UserID:      u.ID,
		Username:    username,
		Email:       u.Email,
		Balance:     u.Balance,
		Password:    password,
		RefreshedAt: time.Now(),
	}
}

// User returns the profile part of the session
func (s Session) User() User {
	return User{ID: s.UserID, Username: s.Username, Email: s.Email, Balance: s.Balance}
}

// StockQuote is a point-in-time price snapshot. Never persisted.
type StockQuote struct {
	Symbol        string   `json:"symbol"`
	CurrentPrice  float64  `json:"currentPrice"`
	HighPrice     float64  `json:"highPrice"`
	LowPrice      float64  `json:"lowPrice"`
	OpenPrice     float64  `json:"openPrice"`
	PreviousClose float64  `json:"previousClose"`
	Timestamp     int64    `json:"timestamp"`
	Change        *float64 `json:"change,omitempty"`
	ChangePercent *float64 `json:"changePercent,omitempty"`
}

// Derived returns the change fields, computing them from the previous close
// when the backend left them out. Both are zero when no previous close is known.
func (q StockQuote) Derived() (change, changePercent float64) {
	if q.Change != nil && q.ChangePercent != nil {
		return *q.Change, *q.ChangePercent
	}
	if q.PreviousClose <= 0 {
		return 0, 0
	}
	change = q.CurrentPrice - q.PreviousClose
	return change, change / q.PreviousClose * 100
}

// Holding is the user's position in one symbol
type Holding struct {
	ID           int64   `json:"id"`
	Symbol       string  `json:"symbol"`
	Quantity     int     `json:"quantity"`
	AveragePrice float64 `json:"averagePrice"`
	CurrentPrice float64 `json:"currentPrice"`
	TotalValue   float64 `json:"totalValue"`
	ProfitLoss   float64 `json:"profitLoss"`
}

// CostBasis is quantity × averagePrice
func (h Holding) CostBasis() float64 {
	return float64(h.Quantity) * h.AveragePrice
}

// ProfitLossPercent is profitLoss relative to the cost basis, 0 for a zero basis
func (h Holding) ProfitLossPercent() float64 {
	basis := h.CostBasis()
	if basis == 0 {
		return 0
	}
	return h.ProfitLoss / basis * 100
}

// Consistent checks totalValue = quantity × currentPrice and
// profitLoss = totalValue − costBasis, both to two decimal places.
func (h Holding) Consistent() bool {
	expectedValue := float64(h.Quantity) * h.CurrentPrice
	if Round2(expectedValue) != Round2(h.TotalValue) {
		return false
	}
	return Round2(h.TotalValue-h.CostBasis()) == Round2(h.ProfitLoss)
}

// PortfolioSummary is the dashboard aggregate; totals are the backend's
type PortfolioSummary struct {
	User            *User     `json:"user,omitempty"`
	CashBalance     float64   `json:"cashBalance"`
	PortfolioValue  float64   `json:"portfolioValue"`
	TotalValue      float64   `json:"totalValue"`
	TotalProfitLoss float64   `json:"totalProfitLoss"`
	Holdings        []Holding `json:"holdings"`
}

// Transaction is one executed order from the append-only history
type Transaction struct {
	ID              int64     `json:"id"`
	Symbol          string    `json:"symbol"`
	Type            TradeSide `json:"type"`
	Quantity        int       `json:"quantity"`
	Price           float64   `json:"price"`
	TotalAmount     float64   `json:"totalAmount"`
	TransactionDate string    `json:"transactionDate"`
}

// Date parses TransactionDate, zero time when unparseable
func (t Transaction) Date() time.Time {
	return ParseTimestamp(t.TransactionDate)
}

// WatchlistItem is a tracked symbol; price fields are nil when the backend
// could not resolve a quote.
type WatchlistItem struct {
	ID            int64    `json:"id"`
	Symbol        string   `json:"symbol"`
	AddedAt       string   `json:"addedAt"`
	CurrentPrice  *float64 `json:"currentPrice"`
	Change        *float64 `json:"change"`
	ChangePercent *float64 `json:"changePercent"`
}

// Added parses AddedAt, zero time when unparseable
func (w WatchlistItem) Added() time.Time {
	return ParseTimestamp(w.AddedAt)
}

// HasQuote reports whether a price is available
func (w WatchlistItem) HasQuote() bool {
	return w.CurrentPrice != nil
}

// ChangeValue returns the change or 0 when unknown
func (w WatchlistItem) ChangeValue() float64 {
	if w.Change == nil {
		return 0
	}
	return *w.Change
}

// NormalizeSymbol trims and upper-cases user input
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Round2 rounds to cents
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// The backend serializes LocalDateTime without a zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the backend's date formats, zero time on failure
func ParseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
