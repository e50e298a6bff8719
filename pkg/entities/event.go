package entities

import "fmt"

type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return fmt.Sprintf("ConnectionState(%d)", int(s))
}

type EventKind int

const (
	EventReading EventKind = iota
	EventStatus
	EventConnectionState
)

// Event is the notification handed from the ingestion loop to its consumer.
// Exactly one of Reading, Status or Connected is meaningful, selected by Kind.
type Event struct {
	Kind      EventKind
	Reading   Reading
	Status    StatusEvent
	Connected bool
}

func NewReadingEvent(r Reading) Event {
	return Event{Kind: EventReading, Reading: r}
}

func NewStatusEvent(s StatusEvent) Event {
	return Event{Kind: EventStatus, Status: s}
}

func NewConnectionStateEvent(connected bool) Event {
	return Event{Kind: EventConnectionState, Connected: connected}
}
