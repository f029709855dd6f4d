package application

import (
	"fmt"

	"github.com/garyjia/application-fsm/internal/domain/fsm"
)

// Event is an externally triggered application event
type Event string

const (
	EventAccept  Event = "ACCEPT"
	EventApprove Event = "APPROVE"
	EventDiscard Event = "DISCARD"
)

var eventTypes = map[Event]fsm.EventType{
	EventAccept:  fsm.EventTypeEvent,
	EventApprove: fsm.EventTypeEvent,
	EventDiscard: fsm.EventTypeEvent,
}

// String returns the canonical name of the event
func (e Event) String() string {
	return string(e)
}

// Type returns the event category
func (e Event) Type() fsm.EventType {
	return eventTypes[e]
}

// IsValid returns true if the event is a known application event
func (e Event) IsValid() bool {
	_, ok := eventTypes[e]
	return ok
}

// ParseEvent converts a canonical name into an event
func ParseEvent(name string) (Event, error) {
	e := Event(name)
	if !e.IsValid() {
		return "", fmt.Errorf("unknown application event %q", name)
	}
	return e, nil
}

// MarshalText implements encoding.TextMarshaler
func (e Event) MarshalText() ([]byte, error) {
	return []byte(e), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (e *Event) UnmarshalText(text []byte) error {
	parsed, err := ParseEvent(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
