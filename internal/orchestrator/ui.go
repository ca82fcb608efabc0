package orchestrator

// Decision is the user's response to an approval gate (§4.G step 6).
type Decision int

const (
	DecisionApprove Decision = iota
	DecisionReject
	DecisionDefer
)

// ApprovalSummary is shown to the user before they approve, reject, or
// defer a terminal command.
type ApprovalSummary struct {
	ContextName   string
	CommitMessage string
	CostMicro     int64
}

// UI is the interactive surface the Orchestrator drives. The CLI
// implements it against a terminal; tests implement it against a
// scripted sequence of decisions.
type UI interface {
	// Approve presents summary and returns the user's decision. For
	// DecisionApprove the returned string is the commit message to
	// integrate with; for DecisionReject it is feedback fed back as a
	// new user turn; for DecisionDefer it is ignored.
	Approve(summary ApprovalSummary) (Decision, string)
	// Ask answers the ASK_USER tool.
	Ask(question string) (string, error)
	// Output surfaces a status line to the user (OUTPUT tool, or
	// orchestrator-level notices like a failed integration).
	Output(text string)
	// Progress reports live streaming status (§4.D).
	Progress(status string)
}
