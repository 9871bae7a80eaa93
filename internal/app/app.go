package app

import (
	"github.com/airdevs/console/internal/api"
	"github.com/airdevs/console/internal/config"
	"github.com/airdevs/console/internal/conversation"
	"github.com/airdevs/console/internal/tui/events"
)

// App holds the core services shared by the TUI panels.
//
// Each panel owns its own request state (loading flag, last result);
// the app only wires the long-lived pieces together: the backend
// client, the photo-analyzer controller with its scheduler, and the
// event broker that carries their updates into the TUI event loop.
type App struct {
	Config       *config.Config
	API          *api.Client
	Conversation *conversation.Controller
	Scheduler    *conversation.Scheduler

	// Event system
	EventBroker *events.Broker
}

// New creates an app with all services initialized
func New(cfg *config.Config, eventBroker *events.Broker) *App {
	client := api.NewClient(cfg.BackendURL)
	ctrl := conversation.NewController(client)

	a := &App{
		Config:       cfg,
		API:          client,
		Conversation: ctrl,
		Scheduler:    conversation.NewScheduler(ctrl),
		EventBroker:  eventBroker,
	}

	// The controller runs on the scheduler goroutine; its updates reach
	// the TUI through the broker.
	ctrl.OnTurn(func(turn api.Turn) {
		eventBroker.Publish(events.Event{
			Type:    events.ConversationTurnEvent,
			Payload: events.ConversationTurnPayload{Turn: turn},
		})
	})
	ctrl.OnError(func(err error) {
		eventBroker.Publish(events.Event{
			Type:    events.StatusMessageEvent,
			Payload: events.StatusMessagePayload{Message: err.Error(), Type: "error"},
		})
	})
	ctrl.OnChange(func() {
		eventBroker.Publish(events.Event{
			Type:    events.ConversationStateEvent,
			Payload: a.ConversationState(),
		})
	})

	return a
}

// ConversationState snapshots the controller for sidebar display.
func (a *App) ConversationState() events.ConversationStatePayload {
	return events.ConversationStatePayload{
		Queue:      a.Conversation.Queue(),
		Executed:   a.Conversation.Executed(),
		Attempts:   a.Conversation.Attempts(),
		Active:     a.Conversation.Active(),
		Processing: a.Conversation.Processing(),
	}
}

// Shutdown stops background work. The scheduler cancels its pending
// tick so nothing mutates state after teardown.
func (a *App) Shutdown() {
	a.Scheduler.Stop()
}
