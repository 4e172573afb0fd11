package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to an entity
type EventType string

const (
	EventTypeUpdated   EventType = "updated"
	EventTypeSubmitted EventType = "submitted"
	EventTypeLoggedIn  EventType = "logged_in"
	EventTypeLoggedOut EventType = "logged_out"
	EventTypeRaised    EventType = "raised"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeForm    EntityType = "form"
	EntityTypeSession EntityType = "session"
	EntityTypeNotice  EntityType = "notice"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "form.updated"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "form"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FormUpdated creates a form.updated event
func FormUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeForm, payload)
}

// FormSubmitted creates a form.submitted event
func FormSubmitted(payload interface{}) Event {
	return NewEvent(EventTypeSubmitted, EntityTypeForm, payload)
}

// SessionLoggedIn creates a session.logged_in event
func SessionLoggedIn(payload interface{}) Event {
	return NewEvent(EventTypeLoggedIn, EntityTypeSession, payload)
}

// SessionLoggedOut creates a session.logged_out event
func SessionLoggedOut(payload interface{}) Event {
	return NewEvent(EventTypeLoggedOut, EntityTypeSession, payload)
}

// NoticeRaised creates a notice.raised event
func NoticeRaised(payload interface{}) Event {
	return NewEvent(EventTypeRaised, EntityTypeNotice, payload)
}
