package events

import "github.com/airdevs/console/internal/api"

// EventType identifies the type of event
type EventType string

const (
	// Status bar events. The status slot shows the latest message only;
	// errors land here too (latest error wins).
	StatusMessageEvent EventType = "ui.status"

	// Conversation events published by the photo-analyzer controller.
	// State snapshots cover every queue mutation, including resets.
	ConversationTurnEvent  EventType = "conversation.turn"
	ConversationStateEvent EventType = "conversation.state"

	// Panel events
	PanelSwitchedEvent EventType = "panel.switched"
)

// Event represents an event in the system
type Event struct {
	Type    EventType
	Payload any
}

// Event payload types

type StatusMessagePayload struct {
	Message string
	Type    string // "info", "warning", "error", "success"
}

type ConversationTurnPayload struct {
	Turn api.Turn
}

// ConversationStatePayload is a snapshot of the controller's queue
// state for sidebar display.
type ConversationStatePayload struct {
	Queue      []string
	Executed   []string
	Attempts   int
	Active     bool
	Processing bool
}

type PanelSwitchedPayload struct {
	Name string
}
