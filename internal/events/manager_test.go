package events

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventDataTypes(t *testing.T) {
	tests := []struct {
		data     EventData
		expected EventType
	}{
		{&SessionChangedData{}, SessionChanged},
		{&LoggedOutData{}, LoggedOut},
		{&TradeExecutedData{}, TradeExecuted},
		{&FundsChangedData{}, FundsChanged},
		{&WatchlistChangedData{}, WatchlistChanged},
		{&ErrorEventData{}, ErrorOccurred},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.data.EventType())
	}
}

func TestBus_DeliversToTypedAndWildcardSubscribers(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var order []string
	bus.Subscribe(TradeExecuted, func(e Event) { order = append(order, "trade-1") })
	bus.Subscribe(TradeExecuted, func(e Event) { order = append(order, "trade-2") })
	bus.Subscribe(LoggedOut, func(e Event) { order = append(order, "logout") })
	bus.SubscribeAll(func(e Event) { order = append(order, "all:"+string(e.Type)) })

	bus.Publish(Event{Type: TradeExecuted})

	assert.Equal(t, []string{"trade-1", "trade-2", "all:TRADE_EXECUTED"}, order)
}

func TestBus_PanickingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	delivered := false
	bus.Subscribe(FundsChanged, func(Event) { panic("handler bug") })
	bus.Subscribe(FundsChanged, func(Event) { delivered = true })

	assert.NotPanics(t, func() { bus.Publish(Event{Type: FundsChanged}) })
	assert.True(t, delivered)
}

func TestManager_EmitPublishesAndLogs(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	m := NewManager(NewBus(zerolog.Nop()), log)

	var got Event
	m.Bus().Subscribe(TradeExecuted, func(e Event) { got = e })

	m.Emit("trading", &TradeExecutedData{Symbol: "AAPL", Side: "BUY", Quantity: 5, Price: 20, TotalAmount: 100})

	require.NotNil(t, got.Data)
	assert.Equal(t, TradeExecuted, got.Type)
	assert.Equal(t, "trading", got.Module)
	assert.False(t, got.Timestamp.IsZero())
	data, ok := got.Data.(*TradeExecutedData)
	require.True(t, ok)
	assert.Equal(t, "AAPL", data.Symbol)

	assert.Contains(t, buf.String(), `"event_type":"TRADE_EXECUTED"`)
	assert.Contains(t, buf.String(), `"symbol":"AAPL"`)
}

func TestManager_EmitNilIsNoop(t *testing.T) {
	m := NewManager(NewBus(zerolog.Nop()), zerolog.Nop())
	called := false
	m.Bus().SubscribeAll(func(Event) { called = true })

	m.Emit("x", nil)
	assert.False(t, called)
}

func TestManager_EmitError(t *testing.T) {
	m := NewManager(NewBus(zerolog.Nop()), zerolog.Nop())

	var got *ErrorEventData
	m.Bus().Subscribe(ErrorOccurred, func(e Event) { got = e.Data.(*ErrorEventData) })

	m.EmitError("session", errors.New("refresh failed"), "scheduled refresh")

	require.NotNil(t, got)
	assert.Equal(t, "refresh failed", got.Error)
	assert.Equal(t, "scheduled refresh", got.Context)
}
