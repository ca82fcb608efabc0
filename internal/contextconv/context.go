// Package contextconv implements the Context component (spec.md §4.F):
// one conversational unit with the model — message history, system
// prompt and tool bindings loaded from a prompt descriptor, budget
// accounting, and HEAD-delta injection. Named contextconv (not context)
// to avoid shadowing the standard library's context package.
package contextconv

import (
	"fmt"

	"github.com/loomctl/loom/internal/config"
	"github.com/loomctl/loom/internal/logger"
	"github.com/loomctl/loom/internal/protocol"
	"github.com/loomctl/loom/internal/workspace"
)

// Role tags a Message's place in the conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one role-tagged record in a Context's history.
type Message struct {
	Role    Role
	Content string
}

// Reply is what Transport.Call returns for one request.
type Reply struct {
	Content   string
	CostMicro int64
}

// Transport is the subset of the Transport component a Context needs; the
// real implementation lives in internal/transport and issues the
// streaming chat-completion request (§4.D).
type Transport interface {
	Call(model string, messages []Message, tools []string) (Reply, error)
}

// Context is one conversational thread with the model (§3 Context).
type Context struct {
	Name    string
	Kind    string
	Model   string
	Tools   []string
	History []Message

	BudgetMicro int64
	SpentMicro  int64

	lastHead        string
	guidanceHash    string
	guidanceContent string

	logger *logger.Logger
}

// New creates a Context from a parsed prompt descriptor. model overrides
// the descriptor's default_model when non-empty. budgetMicro of 0 means
// unbudgeted.
func New(name, kind string, desc config.Descriptor, model string, budgetMicro int64, log *logger.Logger) *Context {
	if model == "" {
		model = desc.DefaultModel
	}
	c := &Context{
		Name:        name,
		Kind:        kind,
		Model:       model,
		Tools:       desc.Tools,
		BudgetMicro: budgetMicro,
		logger:      log,
	}
	c.add(RoleSystem, desc.SystemPrompt)
	return c
}

// add appends a message to history and logs it.
func (c *Context) add(role Role, content string) {
	c.History = append(c.History, Message{Role: role, Content: content})
	if c.logger != nil {
		_ = c.logger.Log(c.Name, "message", map[string]any{
			"role":    string(role),
			"content": content,
		})
	}
}

// Add is the public form of the spec's add(role, content) operation,
// for turns originated outside a model call (e.g. the initial user task,
// approval feedback, continuation guidance).
func (c *Context) Add(role Role, content string) {
	c.add(role, content)
}

// AddSubcontextDirectives appends the supplementary system message every
// subcontext receives on creation: its unique name and the convention for
// collision-free scratch file names (§4.F "Supplementary directives").
func (c *Context) AddSubcontextDirectives() {
	c.add(RoleSystem, fmt.Sprintf(
		"You are subcontext %q. When writing scratch files, prefix their "+
			"names with %q- followed by a short topic slug, so siblings "+
			"never collide inside the shared %s directory.",
		c.Name, c.Name, workspace.ScratchDirName,
	))
}

// Exhausted reports whether a budgeted context has spent its allowance.
// An unbudgeted context (BudgetMicro == 0) is never exhausted.
func (c *Context) Exhausted() bool {
	return c.BudgetMicro > 0 && c.SpentMicro >= c.BudgetMicro
}

// Call issues a request through Transport with the current history and
// permitted tool set, asserts the model returned exactly one actionable
// command (it is forced to tool use; any CANCEL commands are applied
// first), appends the assistant turn to history, and debits the
// reported cost from the budget.
func (c *Context) Call(t Transport) (protocol.Command, error) {
	reply, err := t.Call(c.Model, c.History, c.Tools)
	if err != nil {
		return protocol.Command{}, fmt.Errorf("context %s: call failed: %w", c.Name, err)
	}

	c.add(RoleAssistant, reply.Content)
	c.SpentMicro += reply.CostMicro
	if c.logger != nil {
		_ = c.logger.Log(c.Name, "cost", map[string]any{
			"micro": reply.CostMicro,
			"spent": c.SpentMicro,
		})
	}

	parsed := protocol.Parse(reply.Content)
	commands := protocol.ApplyCancellations(parsed.Commands)
	if len(commands) != 1 {
		return protocol.Command{}, fmt.Errorf(
			"context %s: expected exactly one command, got %d", c.Name, len(commands))
	}
	return commands[0], nil
}

// ApplyToolResult appends the formatted result of one command back into
// history as a tool-result record (§4.F apply_tool_result).
func (c *Context) ApplyToolResult(result protocol.Result, mode protocol.Mode, bulky map[string]bool) {
	f := protocol.Formatter{Bulky: bulky}
	text := f.Format([]protocol.Result{result}, mode)
	c.add(RoleTool, text)
}

// RefreshHead injects a system message enumerating every commit that has
// landed on the workspace since the last call on this context, then
// advances the tracked HEAD. A no-op if nothing changed.
func (c *Context) RefreshHead(workspacePath string) error {
	commits, head, err := workspace.HeadDelta(workspacePath, c.lastHead)
	if err != nil {
		return fmt.Errorf("context %s: head delta: %w", c.Name, err)
	}
	c.lastHead = head
	if len(commits) == 0 {
		return nil
	}
	c.add(RoleSystem, formatHeadDelta(commits))
	return nil
}
