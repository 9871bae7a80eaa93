package conversation

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/airdevs/console/internal/api"
	"github.com/airdevs/console/internal/csync"
)

// Distinguished action tokens.
const (
	// ActionAnalyzeAll restarts analysis. It is re-entrant: never
	// deduplicated and never recorded in the executed-set.
	ActionAnalyzeAll = "ANALYZE_ALL"

	// ActionSubmitDescription submits the last turn's analysis text as
	// the final description instead of being sent as a literal command.
	ActionSubmitDescription = "SUBMIT_DESCRIPTION"
)

// MaxDescriptionAttempts bounds how many generated descriptions are
// submitted before the automated loop terminates.
const MaxDescriptionAttempts = 2

// Backend is the subset of the API client the controller dispatches to.
type Backend interface {
	StartConversation(ctx context.Context) (api.Turn, error)
	SendCommand(ctx context.Context, command string) (api.Turn, error)
	SendDescription(ctx context.Context, description string) (api.Turn, error)
	ClearCache(ctx context.Context) error
}

// Controller sequences the photo-analyzer conversation.
//
// It owns the conversation log, the pending action queue, the set of
// already-executed tokens and the description attempt counter. Exactly
// one dispatch is in flight at a time; the processing flag makes Tick a
// no-op while a previous tick is still running.
//
// Used by: Scheduler (calls Tick), the photo panel (Start/Enqueue/
// ClearCache and read-only snapshots).
type Controller struct {
	backend Backend

	log      *csync.Slice[api.Turn]
	executed *csync.Map[string, struct{}]

	// mu guards queue, attempts, active and generation.
	mu       sync.Mutex
	queue    []string
	attempts int
	active   bool

	// generation counts session resets. A tick captures it before
	// dispatching; results carrying a stale generation are discarded so
	// a reset mid-call cannot be undone by the returning dispatch.
	generation uint64

	processing atomic.Bool

	// Callbacks for the UI. Set before Start; not guarded.
	onTurn   func(api.Turn)
	onError  func(error)
	onChange func()
}

// NewController creates a controller that dispatches to backend.
func NewController(backend Backend) *Controller {
	return &Controller{
		backend:  backend,
		log:      csync.NewSlice[api.Turn](),
		executed: csync.NewMap[string, struct{}](),
	}
}

// OnTurn sets the callback invoked after a turn is appended to the log.
func (c *Controller) OnTurn(fn func(api.Turn)) {
	c.onTurn = fn
}

// OnError sets the callback for surfaced errors. Errors are never fatal
// to the session; the latest one wins in the UI's error slot.
func (c *Controller) OnError(fn func(error)) {
	c.onError = fn
}

// OnChange sets the callback invoked whenever queue state changes.
func (c *Controller) OnChange(fn func()) {
	c.onChange = fn
}

// Start begins a new conversation. The previous log, executed-set and
// attempt counter are discarded and the queue is replaced wholesale
// with the first turn's suggested actions.
func (c *Controller) Start(ctx context.Context) error {
	turn, err := c.backend.StartConversation(ctx)
	if err != nil {
		c.reportError(err)
		return err
	}

	c.mu.Lock()
	c.generation++
	c.log.Clear()
	c.executed.Clear()
	c.log.Append(turn)

	initial := c.filterSuggested(turn.SuggestedActions)
	if len(initial) == 0 {
		initial = []string{ActionAnalyzeAll}
	}
	c.queue = initial
	c.attempts = 0
	c.active = true
	c.mu.Unlock()

	c.notifyTurn(turn)
	return nil
}

// Enqueue appends a user-issued command token to the queue tail.
// Empty tokens are ignored; anything else is passed through verbatim.
func (c *Controller) Enqueue(token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}

	c.mu.Lock()
	c.queue = append(c.queue, token)
	c.mu.Unlock()
	c.notifyChange()
}

// ClearCache wipes the backend cache and resets all session state.
// The TUI asks for explicit confirmation before calling this.
func (c *Controller) ClearCache(ctx context.Context) error {
	if err := c.backend.ClearCache(ctx); err != nil {
		c.reportError(err)
		return err
	}

	c.mu.Lock()
	c.generation++
	c.log.Clear()
	c.executed.Clear()
	c.queue = nil
	c.attempts = 0
	c.active = false
	c.mu.Unlock()

	c.notifyChange()
	return nil
}

// Tick processes at most one queued action.
//
// The head is inspected without being removed. Description submission
// and skip-if-executed are handled first; otherwise the head is
// dispatched as a command and the queue is rebuilt from the filtered
// follow-up suggestions. A no-op if the queue is empty or another tick
// is still in flight.
func (c *Controller) Tick(ctx context.Context) {
	if !c.processing.CompareAndSwap(false, true) {
		return
	}
	defer c.processing.Store(false)

	c.mu.Lock()
	if len(c.queue) == 0 {
		c.mu.Unlock()
		return
	}
	next := c.queue[0]
	gen := c.generation
	c.mu.Unlock()

	if next == ActionSubmitDescription {
		c.submitDescription(ctx, gen)
		return
	}

	if next != ActionAnalyzeAll && c.executed.Has(next) {
		c.skipExecutedHead(next, gen)
		return
	}

	c.dispatch(ctx, next, gen)
}

// skipExecutedHead drops an already-executed head without dispatching.
// If everything left in the queue is also executed (and not
// ANALYZE_ALL), the queue collapses to [ANALYZE_ALL] so the session
// keeps moving.
func (c *Controller) skipExecutedHead(head string, gen uint64) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	if len(c.queue) > 0 && c.queue[0] == head {
		c.queue = c.queue[1:]
	}

	exhausted := true
	for _, token := range c.queue {
		if token == ActionAnalyzeAll || !c.executed.Has(token) {
			exhausted = false
			break
		}
	}
	if exhausted {
		c.queue = []string{ActionAnalyzeAll}
	}
	c.mu.Unlock()

	c.notifyChange()
}

// dispatch sends a generic command to the backend and rebuilds the
// queue from the result.
func (c *Controller) dispatch(ctx context.Context, head string, gen uint64) {
	turn, err := c.backend.SendCommand(ctx, head)

	c.mu.Lock()
	if gen != c.generation {
		// The session was reset while the call was in flight; the
		// result belongs to a conversation that no longer exists.
		c.mu.Unlock()
		return
	}

	if err != nil {
		// Only the head is dropped here. Unlike the description path
		// there is no automatic ANALYZE_ALL fallback on command failure.
		if len(c.queue) > 0 && c.queue[0] == head {
			c.queue = c.queue[1:]
		}
		c.mu.Unlock()
		c.reportError(err)
		c.notifyChange()
		return
	}

	c.log.Append(turn)
	if head != ActionAnalyzeAll {
		c.executed.Set(head, struct{}{})
	}

	followups := c.filterSuggested(turn.SuggestedActions)

	rest := c.queue
	if len(rest) > 0 && rest[0] == head {
		rest = rest[1:]
	}
	if len(followups) == 0 {
		// Nothing actionable came back; ANALYZE_ALL keeps the session
		// from stalling while it is active.
		c.queue = []string{ActionAnalyzeAll}
	} else {
		c.queue = append(append([]string{}, rest...), followups...)
	}
	c.mu.Unlock()

	c.notifyTurn(turn)
}

// submitDescription handles the terminal SUBMIT_DESCRIPTION token by
// sending the most recent turn's analysis text.
func (c *Controller) submitDescription(ctx context.Context, gen uint64) {
	last, ok := c.log.Last()
	if !ok || strings.TrimSpace(last.LLMAnalysis) == "" {
		// No analysis to submit. The token stays at the head; a later
		// turn may still produce analysis text.
		return
	}

	turn, err := c.backend.SendDescription(ctx, last.LLMAnalysis)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}

	if err != nil {
		c.queue = []string{ActionAnalyzeAll}
		c.mu.Unlock()
		c.reportError(err)
		c.notifyChange()
		return
	}

	c.log.Append(turn)
	c.attempts++
	if c.attempts < MaxDescriptionAttempts {
		c.queue = []string{ActionAnalyzeAll}
	} else {
		c.queue = nil
		c.active = false
	}
	c.mu.Unlock()

	c.notifyTurn(turn)
}

// filterSuggested keeps tokens that are either ANALYZE_ALL or not yet
// executed. Blank tokens are dropped.
func (c *Controller) filterSuggested(suggested []string) []string {
	filtered := make([]string, 0, len(suggested))
	for _, token := range suggested {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if token == ActionAnalyzeAll || !c.executed.Has(token) {
			filtered = append(filtered, token)
		}
	}
	return filtered
}

// Snapshots for the UI.

// Turns returns a copy of the conversation log.
func (c *Controller) Turns() []api.Turn {
	return c.log.ToSlice()
}

// LastAnalysis returns the most recent turn's analysis text.
func (c *Controller) LastAnalysis() string {
	last, ok := c.log.Last()
	if !ok {
		return ""
	}
	return last.LLMAnalysis
}

// Queue returns a copy of the pending action tokens.
func (c *Controller) Queue() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.queue...)
}

// Executed returns the tokens applied so far.
func (c *Controller) Executed() []string {
	return c.executed.Keys()
}

// Attempts returns the description submission count.
func (c *Controller) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// Active reports whether the session is running (started and not yet
// terminated by the final description or a cache clear).
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Processing reports whether a dispatch is currently in flight.
func (c *Controller) Processing() bool {
	return c.processing.Load()
}

func (c *Controller) notifyTurn(turn api.Turn) {
	if c.onTurn != nil {
		c.onTurn(turn)
	}
	c.notifyChange()
}

func (c *Controller) notifyChange() {
	if c.onChange != nil {
		c.onChange()
	}
}

func (c *Controller) reportError(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}
