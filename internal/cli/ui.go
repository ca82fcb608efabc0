package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/loomctl/loom/internal/orchestrator"
)

// terminalUI implements orchestrator.UI against the process's stdin/stdout.
type terminalUI struct {
	in *bufio.Reader
}

func newTerminalUI() *terminalUI {
	return &terminalUI{in: bufio.NewReader(os.Stdin)}
}

func (u *terminalUI) Approve(summary orchestrator.ApprovalSummary) (orchestrator.Decision, string) {
	fmt.Printf("\n--- %s proposes to merge ---\n", summary.ContextName)
	fmt.Printf("commit message: %s\n", summary.CommitMessage)
	fmt.Printf("cost so far:    $%.4f\n", float64(summary.CostMicro)/1_000_000)
	fmt.Print("[a]pprove / [r]eject with feedback / [d]efer: ")

	line := u.readLine()
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "a", "approve", "":
		fmt.Printf("commit message [%s]: ", summary.CommitMessage)
		if msg := strings.TrimSpace(u.readLine()); msg != "" {
			return orchestrator.DecisionApprove, msg
		}
		return orchestrator.DecisionApprove, summary.CommitMessage
	case "r", "reject":
		fmt.Print("feedback: ")
		return orchestrator.DecisionReject, u.readLine()
	default:
		return orchestrator.DecisionDefer, ""
	}
}

func (u *terminalUI) Ask(question string) (string, error) {
	fmt.Printf("\n%s\n> ", question)
	return strings.TrimRight(u.readLine(), "\n"), nil
}

func (u *terminalUI) Output(text string) {
	fmt.Println(text)
}

func (u *terminalUI) Progress(status string) {
	if status == "" {
		return
	}
	fmt.Printf("\r%s", status)
}

func (u *terminalUI) readLine() string {
	line, _ := u.in.ReadString('\n')
	return strings.TrimRight(line, "\n")
}
