// Package orchestrator implements the top-level loop described in
// spec.md §4.G: it runs the main Context, spawns and schedules
// subcontexts, mediates the commit/merge/approval cycle with the user,
// and drives every other component (Workspace, Sandbox, Transport,
// Logger, Context, Command Protocol) from one place.
package orchestrator

// State is a Context's position in the per-context state machine
// (applies identically to the main context and every subcontext).
type State string

const (
	StateIdle        State = "idle"
	StateThinking    State = "thinking"
	StateDispatching State = "dispatching"
	StateCommitting  State = "committing"
	StateFailed      State = "failed"
	StateComplete    State = "complete"
	StateIntegrating State = "integrating"
	StateDiscarded   State = "discarded"
)
