// Package tools implements the dynamic tool-dispatch registry described
// in spec.md §9 "Dynamic tool dispatch": a mapping from verb to a
// handler with a declared argument schema, where dispatch is table
// lookup and a schema mismatch is a protocol error fed back to the
// model rather than a Go error.
package tools

import (
	"fmt"

	"github.com/loomctl/loom/internal/protocol"
	"github.com/loomctl/loom/internal/sandbox"
)

// Schema declares the argument names a verb's handler requires.
type Schema struct {
	Required []string
}

// Handler executes one dispatched command and produces its result.
type Handler func(cmd protocol.Command, hc *HandlerContext) protocol.Result

// SubcontextRunner is implemented by the Orchestrator so tool handlers
// can spawn and resume subcontexts without this package importing it.
type SubcontextRunner interface {
	Spawn(kind, name, task string, budgetMicro int64) (SubcontextSummary, error)
	Continue(name, guidance string) (SubcontextSummary, error)
}

// SubcontextSummary is fed back as the tool-result for a spawn/continue
// command (§4.G step 3): "summarise (tool name, tokens, cost, duration,
// diff stats, truncated result)".
type SubcontextSummary struct {
	Name         string
	CostMicro    int64
	DurationMS   int64
	DiffStat     string
	Completed    bool
	Result       string
}

// UserPrompter is implemented by the Orchestrator so the ASK_USER tool
// can block the main loop on a UI prompt (§4.G step 5).
type UserPrompter interface {
	Ask(question string) (string, error)
}

// OutputSink is implemented by the Orchestrator's UI so the OUTPUT tool
// can surface a status line directly to the user.
type OutputSink interface {
	Output(text string)
}

// HandlerContext carries everything a handler needs to act: the
// workspace it may mutate, the sandbox it may run shell fragments in,
// and the orchestrator callbacks for subcontexts, user prompts, and
// status output.
type HandlerContext struct {
	WorkspacePath string
	RepoRoot      string

	Sandbox    *sandbox.Runner
	BaseImage  string
	BuildSteps []string
	HeadLines  int
	TailLines  int

	Subcontexts SubcontextRunner
	User        UserPrompter
	Output      OutputSink
}

// Registry maps verbs to their schema and handler.
type Registry struct {
	schemas  map[string]Schema
	handlers map[string]Handler
}

// NewRegistry builds a registry with every built-in verb bound.
func NewRegistry() *Registry {
	r := &Registry{
		schemas:  make(map[string]Schema),
		handlers: make(map[string]Handler),
	}
	r.register("READ", Schema{Required: []string{"path"}}, handleRead)
	r.register("OVERWRITE", Schema{Required: []string{"path", "content"}}, handleOverwrite)
	r.register("UPDATE", Schema{Required: []string{"path", "search", "replace"}}, handleUpdate)
	r.register("RUN", Schema{Required: []string{"command"}}, handleRun)
	r.register("OUTPUT", Schema{Required: []string{"text"}}, handleOutput)
	r.register("NOTES", Schema{Required: []string{"text"}}, handleNotes)
	r.register("ASK_USER", Schema{Required: []string{"question"}}, handleAskUser)
	r.register("SPAWN_SUBCONTEXT", Schema{Required: []string{"kind", "name", "task"}}, handleSpawn)
	r.register("CONTINUE_SUBCONTEXT", Schema{Required: []string{"name", "guidance"}}, handleContinue)
	r.register("PROPOSE_MERGE", Schema{Required: []string{"message"}}, handleProposeMerge)
	return r
}

func (r *Registry) register(verb string, schema Schema, h Handler) {
	r.schemas[verb] = schema
	r.handlers[verb] = h
}

// IsTerminal reports whether verb signals "I am done, propose these
// changes for merge" (§4.G DISPATCHING → COMPLETE).
func IsTerminal(verb string) bool {
	return verb == "PROPOSE_MERGE"
}

// Dispatch validates cmd against its verb's schema and, if it matches,
// invokes the handler. A schema mismatch or unknown verb is reported as
// an error result rather than a Go error — it is the model's mistake to
// correct on its next turn.
func (r *Registry) Dispatch(cmd protocol.Command, hc *HandlerContext) protocol.Result {
	schema, ok := r.schemas[cmd.Verb]
	if !ok {
		return errorResult(cmd.ID, fmt.Sprintf("unknown verb %q", cmd.Verb))
	}
	for _, name := range schema.Required {
		if _, ok := cmd.Args[name]; !ok {
			return errorResult(cmd.ID, fmt.Sprintf("verb %q missing required argument %q", cmd.Verb, name))
		}
	}
	return r.handlers[cmd.Verb](cmd, hc)
}

func errorResult(id int, message string) protocol.Result {
	return protocol.Result{
		ID:     id,
		Status: protocol.StatusError,
		Fields: map[string]string{"error": message},
	}
}

func successResult(id int, fields map[string]string) protocol.Result {
	return protocol.Result{ID: id, Status: protocol.StatusSuccess, Fields: fields}
}
