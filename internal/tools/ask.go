package tools

import (
	"fmt"

	"github.com/loomctl/loom/internal/protocol"
)

// handleAskUser blocks the main loop on a UI prompt and returns the
// typed answer as the tool result (§4.G step 5).
func handleAskUser(cmd protocol.Command, hc *HandlerContext) protocol.Result {
	if hc.User == nil {
		return errorResult(cmd.ID, "no user prompter is configured")
	}
	answer, err := hc.User.Ask(cmd.Args["question"])
	if err != nil {
		return errorResult(cmd.ID, fmt.Sprintf("asking user: %v", err))
	}
	return successResult(cmd.ID, map[string]string{"answer": answer})
}
