package conversation

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/airdevs/console/internal/api"
)

// fakeBackend records calls and answers from canned responses.
type fakeBackend struct {
	mu sync.Mutex

	startTurn api.Turn
	startErr  error

	commandFn     func(command string) (api.Turn, error)
	descriptionFn func(description string) (api.Turn, error)
	clearErr      error

	commands     []string
	descriptions []string
	clearCalls   int
}

func (f *fakeBackend) StartConversation(ctx context.Context) (api.Turn, error) {
	return f.startTurn, f.startErr
}

func (f *fakeBackend) SendCommand(ctx context.Context, command string) (api.Turn, error) {
	f.mu.Lock()
	f.commands = append(f.commands, command)
	fn := f.commandFn
	f.mu.Unlock()

	if fn == nil {
		return api.Turn{Status: api.StatusSuccess, Message: "ok"}, nil
	}
	return fn(command)
}

func (f *fakeBackend) SendDescription(ctx context.Context, description string) (api.Turn, error) {
	f.mu.Lock()
	f.descriptions = append(f.descriptions, description)
	fn := f.descriptionFn
	f.mu.Unlock()

	if fn == nil {
		return api.Turn{Status: api.StatusSuccess, Message: "accepted"}, nil
	}
	return fn(description)
}

func (f *fakeBackend) ClearCache(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
	return f.clearErr
}

func (f *fakeBackend) commandCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.commands)
}

func successTurn(analysis string, suggestions ...string) api.Turn {
	return api.Turn{
		Status:           api.StatusSuccess,
		Message:          "ok",
		LLMAnalysis:      analysis,
		SuggestedActions: suggestions,
	}
}

// newTestController builds a controller with a preset queue and
// executed-set, bypassing Start.
func newTestController(backend *fakeBackend, queue []string, executed ...string) *Controller {
	c := NewController(backend)
	c.queue = append([]string{}, queue...)
	c.active = true
	for _, token := range executed {
		c.executed.Set(token, struct{}{})
	}
	return c
}

func TestTick_SkipsExecutedHead(t *testing.T) {
	tests := []struct {
		name      string
		queue     []string
		executed  []string
		wantQueue []string
	}{
		{
			name:      "head_removed_rest_kept",
			queue:     []string{"REPAIR IMG_1.PNG", "DARKEN IMG_2.PNG"},
			executed:  []string{"REPAIR IMG_1.PNG"},
			wantQueue: []string{"DARKEN IMG_2.PNG"},
		},
		{
			name:      "all_remaining_executed_collapses",
			queue:     []string{"REPAIR IMG_1.PNG", "DARKEN IMG_2.PNG"},
			executed:  []string{"REPAIR IMG_1.PNG", "DARKEN IMG_2.PNG"},
			wantQueue: []string{ActionAnalyzeAll},
		},
		{
			name:      "nothing_remaining_collapses",
			queue:     []string{"REPAIR IMG_1.PNG"},
			executed:  []string{"REPAIR IMG_1.PNG"},
			wantQueue: []string{ActionAnalyzeAll},
		},
		{
			name:      "remaining_analyze_all_survives",
			queue:     []string{"REPAIR IMG_1.PNG", ActionAnalyzeAll},
			executed:  []string{"REPAIR IMG_1.PNG"},
			wantQueue: []string{ActionAnalyzeAll},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			c := newTestController(backend, tt.queue, tt.executed...)

			c.Tick(context.Background())

			if got := c.Queue(); !reflect.DeepEqual(got, tt.wantQueue) {
				t.Errorf("queue = %v, want %v", got, tt.wantQueue)
			}
			if backend.commandCount() != 0 {
				t.Errorf("skip tick dispatched %d commands, want 0", backend.commandCount())
			}
		})
	}
}

func TestTick_DispatchAppendsFollowups(t *testing.T) {
	backend := &fakeBackend{
		commandFn: func(command string) (api.Turn, error) {
			return successTurn("looks dark", "BRIGHTEN IMG_3.PNG", "DARKEN IMG_4.PNG"), nil
		},
	}
	c := newTestController(backend, []string{"REPAIR IMG_1.PNG", "REPAIR IMG_2.PNG"})

	c.Tick(context.Background())

	want := []string{"REPAIR IMG_2.PNG", "BRIGHTEN IMG_3.PNG", "DARKEN IMG_4.PNG"}
	if got := c.Queue(); !reflect.DeepEqual(got, want) {
		t.Errorf("queue = %v, want %v", got, want)
	}
	if !c.executed.Has("REPAIR IMG_1.PNG") {
		t.Error("dispatched command not recorded in executed-set")
	}
	if c.log.Len() != 1 {
		t.Errorf("log has %d turns, want 1", c.log.Len())
	}
}

func TestTick_DispatchFiltersExecutedSuggestions(t *testing.T) {
	backend := &fakeBackend{
		commandFn: func(command string) (api.Turn, error) {
			// The backend re-suggests actions that already ran.
			return successTurn("", "REPAIR IMG_1.PNG", ActionAnalyzeAll), nil
		},
	}
	c := newTestController(backend, []string{"DARKEN IMG_2.PNG"}, "REPAIR IMG_1.PNG")

	c.Tick(context.Background())

	want := []string{ActionAnalyzeAll}
	if got := c.Queue(); !reflect.DeepEqual(got, want) {
		t.Errorf("queue = %v, want %v", got, want)
	}
}

func TestTick_EmptyFollowupsReplenishWithAnalyzeAll(t *testing.T) {
	backend := &fakeBackend{
		commandFn: func(command string) (api.Turn, error) {
			return successTurn(""), nil
		},
	}
	c := newTestController(backend, []string{"REPAIR IMG_1.PNG"})

	c.Tick(context.Background())

	if got := c.Queue(); !reflect.DeepEqual(got, []string{ActionAnalyzeAll}) {
		t.Errorf("queue = %v, want [%s]", got, ActionAnalyzeAll)
	}
}

func TestTick_AnalyzeAllNeverEntersExecutedSet(t *testing.T) {
	backend := &fakeBackend{
		commandFn: func(command string) (api.Turn, error) {
			return successTurn("", ActionAnalyzeAll), nil
		},
	}
	c := newTestController(backend, []string{ActionAnalyzeAll})

	for range 3 {
		c.Tick(context.Background())
	}

	if c.executed.Has(ActionAnalyzeAll) {
		t.Error("ANALYZE_ALL must never be recorded in the executed-set")
	}
	if backend.commandCount() != 3 {
		t.Errorf("ANALYZE_ALL dispatched %d times, want 3", backend.commandCount())
	}
}

func TestTick_DispatchFailureDropsHeadOnly(t *testing.T) {
	var surfaced error
	backend := &fakeBackend{
		commandFn: func(command string) (api.Turn, error) {
			return api.Turn{}, errors.New("boom")
		},
	}
	c := newTestController(backend, []string{"REPAIR IMG_1.PNG", "DARKEN IMG_2.PNG"})
	c.OnError(func(err error) { surfaced = err })

	c.Tick(context.Background())

	// No ANALYZE_ALL fallback on generic dispatch failure.
	want := []string{"DARKEN IMG_2.PNG"}
	if got := c.Queue(); !reflect.DeepEqual(got, want) {
		t.Errorf("queue = %v, want %v", got, want)
	}
	if c.executed.Has("REPAIR IMG_1.PNG") {
		t.Error("failed command must not enter the executed-set")
	}
	if c.log.Len() != 0 {
		t.Error("failed command must not be appended to the log")
	}
	if surfaced == nil {
		t.Error("dispatch failure was not surfaced")
	}
}

func TestTick_SubmitDescription(t *testing.T) {
	tests := []struct {
		name         string
		attempts     int
		fail         bool
		wantAttempts int
		wantQueue    []string
		wantActive   bool
	}{
		{
			name:         "first_attempt_restarts_analysis",
			attempts:     0,
			wantAttempts: 1,
			wantQueue:    []string{ActionAnalyzeAll},
			wantActive:   true,
		},
		{
			name:         "final_attempt_terminates",
			attempts:     1,
			wantAttempts: 2,
			wantQueue:    []string{},
			wantActive:   false,
		},
		{
			name:         "failure_falls_back_to_analyze_all",
			attempts:     0,
			fail:         true,
			wantAttempts: 0,
			wantQueue:    []string{ActionAnalyzeAll},
			wantActive:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			if tt.fail {
				backend.descriptionFn = func(string) (api.Turn, error) {
					return api.Turn{}, errors.New("rejected")
				}
			}

			c := newTestController(backend, []string{ActionSubmitDescription})
			c.attempts = tt.attempts
			c.log.Append(successTurn("desc text"))

			c.Tick(context.Background())

			backend.mu.Lock()
			sent := append([]string{}, backend.descriptions...)
			backend.mu.Unlock()
			if len(sent) != 1 || sent[0] != "desc text" {
				t.Errorf("submitted descriptions = %v, want [desc text]", sent)
			}
			if got := c.Attempts(); got != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", got, tt.wantAttempts)
			}
			if got := c.Queue(); !reflect.DeepEqual(got, tt.wantQueue) {
				t.Errorf("queue = %v, want %v", got, tt.wantQueue)
			}
			if got := c.Active(); got != tt.wantActive {
				t.Errorf("active = %v, want %v", got, tt.wantActive)
			}
		})
	}
}

func TestTick_SubmitDescriptionWithoutAnalysisIsNoop(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestController(backend, []string{ActionSubmitDescription})
	c.log.Append(successTurn("   "))

	c.Tick(context.Background())

	// The slot is kept; a later turn may still produce analysis text.
	if got := c.Queue(); !reflect.DeepEqual(got, []string{ActionSubmitDescription}) {
		t.Errorf("queue = %v, want [%s]", got, ActionSubmitDescription)
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if len(backend.descriptions) != 0 {
		t.Error("no description should be submitted without analysis text")
	}
}

func TestTick_EmptyQueueIsNoop(t *testing.T) {
	backend := &fakeBackend{}
	c := NewController(backend)

	c.Tick(context.Background())

	if backend.commandCount() != 0 {
		t.Error("empty queue must not dispatch")
	}
}

func TestTick_SingleDispatchInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	backend := &fakeBackend{
		commandFn: func(command string) (api.Turn, error) {
			close(started)
			<-release
			return successTurn(""), nil
		},
	}
	c := newTestController(backend, []string{"REPAIR IMG_1.PNG", "DARKEN IMG_2.PNG"})

	done := make(chan struct{})
	go func() {
		c.Tick(context.Background())
		close(done)
	}()

	<-started
	// Second tick while the first is blocked inside the backend call.
	c.Tick(context.Background())
	if n := backend.commandCount(); n != 1 {
		t.Errorf("concurrent tick dispatched, commands = %d, want 1", n)
	}

	close(release)
	<-done
}

func TestClearCache_DiscardsInFlightDispatch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	backend := &fakeBackend{
		commandFn: func(command string) (api.Turn, error) {
			close(started)
			<-release
			return successTurn("stale analysis", "REPAIR IMG_9.PNG"), nil
		},
	}
	c := newTestController(backend, []string{"REPAIR IMG_1.PNG"})

	done := make(chan struct{})
	go func() {
		c.Tick(context.Background())
		close(done)
	}()

	<-started
	// Clear while the dispatch is blocked inside the backend call.
	if err := c.ClearCache(context.Background()); err != nil {
		t.Fatalf("ClearCache() error = %v", err)
	}
	close(release)
	<-done

	if got := c.Queue(); len(got) != 0 {
		t.Errorf("queue repopulated after cache clear: %v", got)
	}
	if got := c.Executed(); len(got) != 0 {
		t.Errorf("executed-set contaminated after cache clear: %v", got)
	}
	if c.log.Len() != 0 {
		t.Errorf("log has %d turns after cache clear, want 0", c.log.Len())
	}
	if c.Active() {
		t.Error("session must stay inactive after cache clear")
	}
}

func TestStart_DiscardsInFlightDispatch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	backend := &fakeBackend{
		startTurn: successTurn("fresh analysis", "BRIGHTEN IMG_3.PNG"),
		commandFn: func(command string) (api.Turn, error) {
			close(started)
			<-release
			return successTurn("stale analysis", "REPAIR IMG_9.PNG"), nil
		},
	}
	c := newTestController(backend, []string{"REPAIR IMG_1.PNG"})

	done := make(chan struct{})
	go func() {
		c.Tick(context.Background())
		close(done)
	}()

	<-started
	// Restart while the old session's dispatch is still in flight.
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	close(release)
	<-done

	if got := c.Queue(); !reflect.DeepEqual(got, []string{"BRIGHTEN IMG_3.PNG"}) {
		t.Errorf("new session queue = %v, want [BRIGHTEN IMG_3.PNG]", got)
	}
	if c.executed.Has("REPAIR IMG_1.PNG") {
		t.Error("executed-set kept a token from the discarded session")
	}
	if c.log.Len() != 1 {
		t.Errorf("log has %d turns, want just the start turn", c.log.Len())
	}
}

func TestStart_ResetsSessionState(t *testing.T) {
	backend := &fakeBackend{
		startTurn: successTurn("first analysis", "REPAIR IMG_1.PNG"),
	}
	c := NewController(backend)
	c.executed.Set("STALE ACTION", struct{}{})
	c.attempts = 2
	c.log.Append(successTurn("stale"))

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if got := c.Queue(); !reflect.DeepEqual(got, []string{"REPAIR IMG_1.PNG"}) {
		t.Errorf("queue = %v, want suggested actions from the start turn", got)
	}
	if c.executed.Len() != 0 {
		t.Error("executed-set not reset on new conversation")
	}
	if c.Attempts() != 0 {
		t.Error("attempt counter not reset on new conversation")
	}
	if c.log.Len() != 1 {
		t.Errorf("log has %d turns, want just the start turn", c.log.Len())
	}
	if !c.Active() {
		t.Error("session should be active after Start")
	}
}

func TestStart_SeedsAnalyzeAllWhenNoSuggestions(t *testing.T) {
	backend := &fakeBackend{startTurn: successTurn("hello")}
	c := NewController(backend)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if got := c.Queue(); !reflect.DeepEqual(got, []string{ActionAnalyzeAll}) {
		t.Errorf("queue = %v, want [%s]", got, ActionAnalyzeAll)
	}
}

func TestStart_ErrorIsSurfaced(t *testing.T) {
	var surfaced error
	backend := &fakeBackend{startErr: errors.New("no backend")}
	c := NewController(backend)
	c.OnError(func(err error) { surfaced = err })

	if err := c.Start(context.Background()); err == nil {
		t.Fatal("Start() should fail when the backend does")
	}
	if surfaced == nil {
		t.Error("start failure was not surfaced")
	}
	if c.Active() {
		t.Error("session must not be active after a failed start")
	}
}

func TestClearCache_ResetsEverything(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestController(backend, []string{"REPAIR IMG_1.PNG"}, "DARKEN IMG_2.PNG")
	c.attempts = 1
	c.log.Append(successTurn("some analysis"))

	if err := c.ClearCache(context.Background()); err != nil {
		t.Fatalf("ClearCache() error = %v", err)
	}

	if backend.clearCalls != 1 {
		t.Errorf("clear-cache calls = %d, want 1", backend.clearCalls)
	}
	if len(c.Queue()) != 0 || c.executed.Len() != 0 || c.Attempts() != 0 || c.log.Len() != 0 {
		t.Error("cache clear must reset log, queue, executed-set and attempts")
	}
	if c.Active() {
		t.Error("session must not be active after cache clear")
	}
}

func TestEnqueue(t *testing.T) {
	c := NewController(&fakeBackend{})

	c.Enqueue("  ")
	c.Enqueue("REPAIR IMG_1.PNG")
	c.Enqueue("DARKEN IMG_2.PNG")

	want := []string{"REPAIR IMG_1.PNG", "DARKEN IMG_2.PNG"}
	if got := c.Queue(); !reflect.DeepEqual(got, want) {
		t.Errorf("queue = %v, want %v", got, want)
	}
}

// Full scenario: an executed head is skipped, then the next command's
// suggestions all filter out, leaving ANALYZE_ALL.
func TestScenario_SkipThenCollapseToAnalyzeAll(t *testing.T) {
	backend := &fakeBackend{
		commandFn: func(command string) (api.Turn, error) {
			return successTurn("", "REPAIR IMG_A.PNG", "DARKEN IMG_B.PNG"), nil
		},
	}
	c := newTestController(backend,
		[]string{"REPAIR IMG_A.PNG", "DARKEN IMG_B.PNG"},
		"REPAIR IMG_A.PNG")

	c.Tick(context.Background())
	if got := c.Queue(); !reflect.DeepEqual(got, []string{"DARKEN IMG_B.PNG"}) {
		t.Fatalf("after skip tick queue = %v, want [DARKEN IMG_B.PNG]", got)
	}

	c.Tick(context.Background())
	if got := c.Queue(); !reflect.DeepEqual(got, []string{ActionAnalyzeAll}) {
		t.Errorf("after dispatch tick queue = %v, want [%s]", got, ActionAnalyzeAll)
	}
}
