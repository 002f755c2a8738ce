package events

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Emitter is what workflows depend on to announce state changes
type Emitter interface {
	Emit(module string, data EventData)
}

// Manager handles event emission and logging
type Manager struct {
	bus *Bus
	log zerolog.Logger
}

// NewManager creates a new event manager
func NewManager(bus *Bus, log zerolog.Logger) *Manager {
	return &Manager{
		bus: bus,
		log: log.With().Str("service", "events").Logger(),
	}
}

// Bus returns the underlying bus for subscribers
func (m *Manager) Bus() *Bus {
	return m.bus
}

// Emit publishes typed data to the bus and logs it
func (m *Manager) Emit(module string, data EventData) {
	if data == nil {
		return
	}

	event := Event{
		Type:      data.EventType(),
		Timestamp: time.Now(),
		Module:    module,
		Data:      data,
	}

	m.bus.Publish(event)

	eventJSON, _ := json.Marshal(event)
	m.log.Info().
		Str("event_type", string(event.Type)).
		Str("module", module).
		RawJSON("event", eventJSON).
		Msg("Event emitted")
}

// EmitError emits an error event
func (m *Manager) EmitError(module string, err error, context string) {
	m.Emit(module, &ErrorEventData{Error: err.Error(), Context: context})
}
