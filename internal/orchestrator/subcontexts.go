package orchestrator

import (
	"fmt"
	"time"

	"github.com/loomctl/loom/internal/contextconv"
	"github.com/loomctl/loom/internal/tools"
	"github.com/loomctl/loom/internal/workspace"
)

// defaultSubcontextKind names the prompt descriptor used for any
// SPAWN_SUBCONTEXT kind the deployment has not registered a dedicated
// descriptor for.
const defaultSubcontextKind = "default"

// Spawn implements tools.SubcontextRunner: it creates a fresh Context of
// the given kind, enqueues task as its first user message, and runs it
// to completion or budget exhaustion before returning a summary for the
// caller's tool-result (§4.G step 3).
func (o *Orchestrator) Spawn(kind, name, task string, budgetMicro int64) (tools.SubcontextSummary, error) {
	if _, exists := o.subs[name]; exists {
		return tools.SubcontextSummary{}, fmt.Errorf("subcontext %q already exists", name)
	}
	desc, ok := o.descriptors[kind]
	if !ok {
		desc, ok = o.descriptors[defaultSubcontextKind]
		if !ok {
			return tools.SubcontextSummary{}, fmt.Errorf(
				"no prompt descriptor registered for context kind %q, and no %q fallback either", kind, defaultSubcontextKind)
		}
	}
	if budgetMicro == 0 {
		budgetMicro = o.cfg.Budget.DefaultMicro
	}

	rs := &runState{
		ctx:   contextconv.New(name, kind, desc, o.cfg.Model.Default, budgetMicro, o.log),
		state: StateThinking,
	}
	rs.ctx.AddSubcontextDirectives()
	rs.ctx.Add(contextconv.RoleUser, task)
	o.subs[name] = rs

	baseHead, err := workspace.HeadAt(o.session.WorkspacePath)
	if err != nil {
		return tools.SubcontextSummary{}, fmt.Errorf("resolving current head for %q: %w", name, err)
	}
	return o.runSubcontext(rs, baseHead)
}

// Continue implements tools.SubcontextRunner: it resumes an existing,
// previously suspended subcontext with optional additional guidance
// (§4.G step 4).
func (o *Orchestrator) Continue(name, guidance string) (tools.SubcontextSummary, error) {
	rs, ok := o.subs[name]
	if !ok {
		return tools.SubcontextSummary{}, fmt.Errorf("no subcontext named %q", name)
	}
	baseHead, err := workspace.HeadAt(o.session.WorkspacePath)
	if err != nil {
		return tools.SubcontextSummary{}, fmt.Errorf("resolving current head for %q: %w", name, err)
	}
	if guidance != "" {
		rs.ctx.Add(contextconv.RoleUser, guidance)
	}
	return o.runSubcontext(rs, baseHead)
}

// Ask implements tools.UserPrompter by blocking on the UI (§4.G step 5).
func (o *Orchestrator) Ask(question string) (string, error) {
	return o.ui.Ask(question)
}

// runSubcontext ticks rs to StateComplete, measuring diff stat against
// baseHead (the HEAD before this run began) and wall-clock duration, and
// converts budget exhaustion into a non-error, completed=false summary
// per §4.F Budgets ("exhaustion is a soft signal").
func (o *Orchestrator) runSubcontext(rs *runState, baseHead string) (tools.SubcontextSummary, error) {
	start := time.Now()
	err := o.runContext(rs)
	duration := time.Since(start)

	diffStat, statErr := workspace.DiffStat(o.session.WorkspacePath, baseHead)
	if statErr != nil {
		diffStat = ""
	}

	if err != nil {
		return tools.SubcontextSummary{}, fmt.Errorf("running subcontext %q: %w", rs.ctx.Name, err)
	}

	if rs.exhausted {
		return tools.SubcontextSummary{
			Name:       rs.ctx.Name,
			CostMicro:  rs.ctx.SpentMicro,
			DurationMS: duration.Milliseconds(),
			DiffStat:   diffStat,
			Completed:  false,
			Result:     "budget exceeded",
		}, nil
	}

	return tools.SubcontextSummary{
		Name:       rs.ctx.Name,
		CostMicro:  rs.ctx.SpentMicro,
		DurationMS: duration.Milliseconds(),
		DiffStat:   diffStat,
		Completed:  true,
		Result:     rs.lastCmd.Args["message"],
	}, nil
}
