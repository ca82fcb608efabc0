package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/loomctl/loom/internal/config"
	"github.com/loomctl/loom/internal/contextconv"
	"github.com/loomctl/loom/internal/logger"
	"github.com/loomctl/loom/internal/protocol"
	"github.com/loomctl/loom/internal/sandbox"
	"github.com/loomctl/loom/internal/tools"
	"github.com/loomctl/loom/internal/transport"
	"github.com/loomctl/loom/internal/workspace"
)

// bulkyFields names the tool-result fields replaced by the omission
// sentinel when a result is carried into a long-term memory snapshot
// (§3 Tool-result).
var bulkyFields = map[string]bool{
	"content": true,
	"output":  true,
}

// runState tracks one Context's place in the state machine plus the
// bookkeeping the orchestrator needs between ticks.
type runState struct {
	ctx       *contextconv.Context
	state     State
	lastCmd   protocol.Command
	exhausted bool
}

// Orchestrator ties every component together for one session.
type Orchestrator struct {
	session  *workspace.Session
	repoRoot string
	cfg      *config.Config
	log      *logger.Logger
	client   *transport.Client
	registry *tools.Registry
	sandbox  *sandbox.Runner
	ui       UI

	descriptors map[string]config.Descriptor

	main *runState
	subs map[string]*runState

	// testTransport, when set, overrides client for every Context's
	// calls: the production path always goes through client.WithProgress,
	// but tests substitute a scripted contextconv.Transport that needs no
	// network and no progress callback.
	testTransport contextconv.Transport

	// titleGen fills in a commit message when a PROPOSE_MERGE command
	// omits one; nil degrades to the empty string, same as an
	// unconfigured transport.TitleGenerator.
	titleGen *transport.TitleGenerator
}

// SetTitleGenerator installs an optional cheap-model commit-message
// generator, used as a fallback when a context proposes a merge without
// its own message.
func (o *Orchestrator) SetTitleGenerator(tg *transport.TitleGenerator) {
	o.titleGen = tg
}

// New builds an Orchestrator for one prepared session. descriptors maps
// context kind (e.g. "main", "patch") to its parsed prompt descriptor.
func New(
	session *workspace.Session,
	repoRoot string,
	cfg *config.Config,
	log *logger.Logger,
	client *transport.Client,
	registry *tools.Registry,
	sandboxRunner *sandbox.Runner,
	ui UI,
	descriptors map[string]config.Descriptor,
) *Orchestrator {
	return &Orchestrator{
		session:     session,
		repoRoot:    repoRoot,
		cfg:         cfg,
		log:         log,
		client:      client,
		registry:    registry,
		sandbox:     sandboxRunner,
		ui:          ui,
		descriptors: descriptors,
		subs:        make(map[string]*runState),
	}
}

// Run drives the main context from an initial task through to
// integration, discard, or a deferred exit (§4.G, the main loop).
func (o *Orchestrator) Run(initialTask string) error {
	desc, ok := o.descriptors["main"]
	if !ok {
		return fmt.Errorf("no prompt descriptor registered for context kind %q", "main")
	}
	o.main = &runState{
		ctx:   contextconv.New("main", "main", desc, o.cfg.Model.Default, 0, o.log),
		state: StateThinking,
	}
	o.main.ctx.Add(contextconv.RoleUser, initialTask)

	for {
		if err := o.runContext(o.main); err != nil {
			return err
		}
		if o.main.exhausted {
			return fmt.Errorf("main context exhausted its budget")
		}

		summary := o.approvalSummary(o.main)
		decision, payload := o.ui.Approve(summary)

		switch decision {
		case DecisionApprove:
			ok, diagnostic, err := workspace.Integrate(o.repoRoot, o.session.WorkspacePath, o.session.BranchLabel, payload)
			if err != nil {
				return fmt.Errorf("integrating session: %w", err)
			}
			if !ok {
				o.ui.Output("integration failed, workspace retained: " + diagnostic)
				o.main.ctx.Add(contextconv.RoleSystem,
					"The proposed merge could not be integrated:\n\n"+diagnostic+
						"\n\nThe workspace and its commits are untouched; address the conflict and propose again.")
				o.main.state = StateThinking
				continue
			}
			workspace.Discard(o.repoRoot, o.session.WorkspacePath, o.session.BranchLabel)
			o.main.state = StateDiscarded
			return nil

		case DecisionReject:
			o.main.ctx.Add(contextconv.RoleUser, payload)
			o.main.state = StateThinking

		case DecisionDefer:
			return nil
		}
	}
}

// runContext advances rs, tick by tick, until it reaches StateComplete
// (a terminal command was dispatched) or its budget is exhausted. It
// returns an error only for failures the caller cannot recover from by
// retrying (e.g. a transport call that exhausted its own retries).
func (o *Orchestrator) runContext(rs *runState) error {
	for {
		if rs.ctx.Exhausted() {
			rs.exhausted = true
			rs.state = StateComplete
			return nil
		}

		cmd, err := o.tick(rs)
		if err != nil {
			rs.state = StateFailed
			return err
		}
		rs.state = StateDispatching

		result := o.registry.Dispatch(cmd, o.handlerContext())
		rs.ctx.ApplyToolResult(result, protocol.ModeNormal, bulkyFields)

		if tools.IsTerminal(cmd.Verb) {
			rs.lastCmd = cmd
			rs.state = StateComplete
			return nil
		}

		rs.state = StateCommitting
		if _, err := workspace.Commit(o.session.WorkspacePath, commitMessageFor(cmd)); err != nil {
			rs.state = StateFailed
			return fmt.Errorf("committing after %s: %w", cmd.Verb, err)
		}
		rs.state = StateThinking
	}
}

// tick refreshes HEAD-delta and project-guidance state, then issues one
// model call and returns the single command it returned.
func (o *Orchestrator) tick(rs *runState) (protocol.Command, error) {
	if err := rs.ctx.RefreshHead(o.session.WorkspacePath); err != nil {
		return protocol.Command{}, err
	}
	if guidance, ok := readGuidance(o.session.WorkspacePath); ok {
		if _, err := rs.ctx.RefreshGuidance(guidance); err != nil {
			return protocol.Command{}, err
		}
	}

	if o.testTransport != nil {
		return rs.ctx.Call(o.testTransport)
	}
	client := o.client.WithProgress(rs.ctx.Name, o.ui.Progress)
	return rs.ctx.Call(client)
}

func (o *Orchestrator) handlerContext() *tools.HandlerContext {
	return &tools.HandlerContext{
		WorkspacePath: o.session.WorkspacePath,
		RepoRoot:      o.repoRoot,
		Sandbox:       o.sandbox,
		BaseImage:     o.cfg.Sandbox.BaseImage,
		BuildSteps:    o.cfg.Sandbox.BuildSteps,
		HeadLines:     o.cfg.Sandbox.HeadLines,
		TailLines:     o.cfg.Sandbox.TailLines,
		Subcontexts:   o,
		User:          o,
		Output:        o.ui,
	}
}

func (o *Orchestrator) approvalSummary(rs *runState) ApprovalSummary {
	message := rs.lastCmd.Args["message"]
	if message == "" && o.titleGen != nil {
		diff, err := workspace.DiffStat(o.session.WorkspacePath, "")
		if err == nil {
			message = o.titleGen.Summarize(context.Background(), diff)
		}
	}
	return ApprovalSummary{
		ContextName:   rs.ctx.Name,
		CommitMessage: message,
		CostMicro:     rs.ctx.SpentMicro,
	}
}

// commitMessageFor derives a one-line commit message from a dispatched
// (non-terminal) command, for the per-turn commit Commit records.
func commitMessageFor(cmd protocol.Command) string {
	switch cmd.Verb {
	case "OVERWRITE", "UPDATE":
		return fmt.Sprintf("%s %s", verbPastTense(cmd.Verb), cmd.Args["path"])
	default:
		return fmt.Sprintf("Apply %s", cmd.Verb)
	}
}

func verbPastTense(verb string) string {
	switch verb {
	case "OVERWRITE":
		return "Write"
	case "UPDATE":
		return "Update"
	default:
		return verb
	}
}

// readGuidance reads the project-guidance file at the workspace root; a
// missing file is not an error, just "no guidance yet".
func readGuidance(workspacePath string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(workspacePath, contextconv.ProjectGuidanceFile))
	if err != nil {
		return "", false
	}
	return string(data), true
}
