package tools

import "github.com/loomctl/loom/internal/protocol"

// handleOutput lets the model surface a status line to the user without
// touching the workspace; it always succeeds.
func handleOutput(cmd protocol.Command, hc *HandlerContext) protocol.Result {
	if hc.Output != nil {
		hc.Output.Output(cmd.Args["text"])
	}
	return successResult(cmd.ID, map[string]string{"text": cmd.Args["text"]})
}

func handleProposeMerge(cmd protocol.Command, hc *HandlerContext) protocol.Result {
	return successResult(cmd.ID, map[string]string{"message": cmd.Args["message"]})
}
