// Package events provides in-process event publication for client state changes.
package events

import "time"

// EventType represents different event types
type EventType string

const (
	SessionChanged   EventType = "SESSION_CHANGED"
	LoggedOut        EventType = "LOGGED_OUT"
	TradeExecuted    EventType = "TRADE_EXECUTED"
	FundsChanged     EventType = "FUNDS_CHANGED"
	WatchlistChanged EventType = "WATCHLIST_CHANGED"
	ErrorOccurred    EventType = "ERROR_OCCURRED"
)

// Event represents a client event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data,omitempty"`
}
