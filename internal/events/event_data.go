package events

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// SessionChangedData contains data for SessionChanged events
type SessionChangedData struct {
	Username string  `json:"username"`
	Balance  float64 `json:"balance"`
	Reason   string  `json:"reason"` // login, register, refresh, bootstrap
}

// EventType returns the event type for SessionChangedData
func (d *SessionChangedData) EventType() EventType {
	return SessionChanged
}

// LoggedOutData contains data for LoggedOut events
type LoggedOutData struct {
	Username string `json:"username"`
}

// EventType returns the event type for LoggedOutData
func (d *LoggedOutData) EventType() EventType {
	return LoggedOut
}

// TradeExecutedData contains data for TradeExecuted events
type TradeExecutedData struct {
	Symbol      string  `json:"symbol"`
	Side        string  `json:"side"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	TotalAmount float64 `json:"total_amount"`
}

// EventType returns the event type for TradeExecutedData
func (d *TradeExecutedData) EventType() EventType {
	return TradeExecuted
}

// FundsChangedData contains data for FundsChanged events
type FundsChangedData struct {
	Direction string  `json:"direction"` // deposit or withdrawal
	Amount    float64 `json:"amount"`
	Balance   float64 `json:"balance"`
}

// EventType returns the event type for FundsChangedData
func (d *FundsChangedData) EventType() EventType {
	return FundsChanged
}

// WatchlistChangedData contains data for WatchlistChanged events
type WatchlistChangedData struct {
	Action string `json:"action"` // add, remove, clear
	Symbol string `json:"symbol,omitempty"`
}

// EventType returns the event type for WatchlistChangedData
func (d *WatchlistChangedData) EventType() EventType {
	return WatchlistChanged
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string `json:"error"`
	Context string `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}
