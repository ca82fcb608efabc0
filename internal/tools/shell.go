package tools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/loomctl/loom/internal/protocol"
)

func handleRun(cmd protocol.Command, hc *HandlerContext) protocol.Result {
	if hc.Sandbox == nil {
		return errorResult(cmd.ID, "sandbox runner is not configured")
	}
	result, err := hc.Sandbox.Run(context.Background(), cmd.Args["command"], hc.WorkspacePath, hc.RepoRoot, hc.BaseImage, hc.BuildSteps, hc.HeadLines, hc.TailLines)
	if err != nil {
		return errorResult(cmd.ID, fmt.Sprintf("running command: %v", err))
	}
	return successResult(cmd.ID, map[string]string{
		"output":    result.Output,
		"exit_code": strconv.Itoa(result.ExitCode),
	})
}
