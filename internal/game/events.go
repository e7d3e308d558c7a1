// internal/game/events.go
package game

// EventType is an enum-like type for outbound room events.
type EventType string

const (
	// EventWelcome is sent privately once per connection with the session id
	// and the reconnect token for that seat.
	EventWelcome EventType = "welcome"
	// EventState carries a per-player snapshot after every committed mutation.
	EventState EventType = "state"
	// EventNotification is broadcast for room-visible happenings (joins,
	// catches, penalties, resets).
	EventNotification EventType = "notification"
	// EventError is sent privately to the single client whose action failed
	// validation. State is left unchanged.
	EventError EventType = "error"
)

// Event holds data for one outbound message in a consistent format.
type Event struct {
	Type      EventType `json:"type"`
	Text      string    `json:"text,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	Token     string    `json:"token,omitempty"`
	State     *Snapshot `json:"state,omitempty"`
}
