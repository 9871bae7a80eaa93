// Package conversation drives the multi-turn photo-analyzer session.
//
// # Overview
//
// The backend answers every conversation call with a turn that may
// suggest follow-up action tokens. Left alone, it will happily suggest
// actions it has already seen, so the client has to sequence the
// conversation itself. This package provides:
//   - An append-only conversation log (source of truth for display and
//     for the last analysis text)
//   - A FIFO action queue fed by backend suggestions and user commands
//   - An executed-set that keeps already-applied tokens from running again
//   - A timer-gated scheduler that dispatches one action per tick
//
// # Architecture
//
//   - Controller: owns the log, queue, executed-set and attempt counter,
//     and implements the per-tick queue mutation rules
//   - Scheduler: re-arms a cancellable delayed task after each completed
//     tick; the clock is injectable so tests never sleep
//
// Two tokens are special. ANALYZE_ALL is the "continue" signal: it is
// never deduplicated and never enters the executed-set. SUBMIT_DESCRIPTION
// is terminal: instead of being sent verbatim it submits the most recent
// turn's analysis text, bounded by MaxDescriptionAttempts.
//
// # Example
//
//	ctrl := conversation.NewController(client)
//	sched := conversation.NewScheduler(ctrl)
//	if err := ctrl.Start(ctx); err != nil {
//		// backend unreachable
//	}
//	sched.Start()
//	defer sched.Stop()
package conversation
