// Package csync provides thread-safe generic collections.
//
// The conversation log and the executed-action set are written by the
// scheduler goroutine and read by the TUI, so both live in these
// mutex-guarded containers instead of bare slices and maps.
//
// Example:
//
//	turns := csync.NewSlice[api.Turn]()
//	turns.Append(turn)
//	if last, ok := turns.Last(); ok {
//		// render last.LLMAnalysis
//	}
package csync
