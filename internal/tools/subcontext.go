package tools

import (
	"fmt"
	"strconv"

	"github.com/loomctl/loom/internal/protocol"
)

func handleSpawn(cmd protocol.Command, hc *HandlerContext) protocol.Result {
	if hc.Subcontexts == nil {
		return errorResult(cmd.ID, "no subcontext runner is configured")
	}
	var budget int64
	if raw, ok := cmd.Args["budget_micro"]; ok {
		b, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return errorResult(cmd.ID, fmt.Sprintf("budget_micro must be an integer, got %q", raw))
		}
		budget = b
	}
	summary, err := hc.Subcontexts.Spawn(cmd.Args["kind"], cmd.Args["name"], cmd.Args["task"], budget)
	if err != nil {
		return errorResult(cmd.ID, fmt.Sprintf("spawning subcontext %s: %v", cmd.Args["name"], err))
	}
	return summaryResult(cmd.ID, summary)
}

func handleContinue(cmd protocol.Command, hc *HandlerContext) protocol.Result {
	if hc.Subcontexts == nil {
		return errorResult(cmd.ID, "no subcontext runner is configured")
	}
	summary, err := hc.Subcontexts.Continue(cmd.Args["name"], cmd.Args["guidance"])
	if err != nil {
		return errorResult(cmd.ID, fmt.Sprintf("continuing subcontext %s: %v", cmd.Args["name"], err))
	}
	return summaryResult(cmd.ID, summary)
}

func summaryResult(id int, s SubcontextSummary) protocol.Result {
	return successResult(id, map[string]string{
		"name":         s.Name,
		"completed":    strconv.FormatBool(s.Completed),
		"cost_micro":   strconv.FormatInt(s.CostMicro, 10),
		"duration_ms":  strconv.FormatInt(s.DurationMS, 10),
		"diff_stat":    s.DiffStat,
		"result":       s.Result,
	})
}
