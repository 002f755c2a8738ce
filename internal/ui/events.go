package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aristath/stocktrader/internal/events"
)

// EventMsg carries a bus event into the program
type EventMsg struct {
	Event events.Event
}

// Forward delivers session and portfolio events to a running program so that
// balance displays re-render app-wide. send is usually (*tea.Program).Send;
// it is called off the publisher's goroutine because Send blocks until the
// program reads it.
func Forward(bus *events.Bus, send func(tea.Msg)) {
	handler := func(e events.Event) {
		go send(EventMsg{Event: e})
	}
	for _, t := range []events.EventType{
		events.SessionChanged,
		events.LoggedOut,
		events.TradeExecuted,
		events.FundsChanged,
		events.WatchlistChanged,
	} {
		bus.Subscribe(t, handler)
	}
}
