package events

import (
	"time"

	"github.com/rs/zerolog"
)

// Manager stamps and publishes events on a Bus.
type Manager struct {
	bus *Bus
	log zerolog.Logger
	now func() time.Time
}

// NewManager creates a manager publishing on bus.
func NewManager(bus *Bus, log zerolog.Logger) *Manager {
	return &Manager{
		bus: bus,
		log: log.With().Str("component", "event_manager").Logger(),
		now: time.Now,
	}
}

// Bus returns the underlying bus.
func (m *Manager) Bus() *Bus {
	return m.bus
}

// Emit publishes untyped event data.
func (m *Manager) Emit(eventType EventType, module string, data map[string]interface{}) {
	m.EmitTyped(eventType, module, &GenericEventData{Type: eventType, Data: data})
}

// EmitTyped publishes typed event data.
func (m *Manager) EmitTyped(eventType EventType, module string, data EventData) {
	if m == nil || m.bus == nil {
		return
	}
	event := &Event{
		Type:      eventType,
		Module:    module,
		Timestamp: m.now().UTC(),
		Data:      data,
	}
	m.log.Debug().Str("event_type", string(eventType)).Str("module", module).Msg("Emitting event")
	m.bus.Publish(event)
}

// EmitError publishes an ErrorOccurred event.
func (m *Manager) EmitError(module string, err error, context map[string]interface{}) {
	if err == nil {
		return
	}
	m.EmitTyped(ErrorOccurred, module, &ErrorEventData{
		Error:   err.Error(),
		Context: context,
	})
}
