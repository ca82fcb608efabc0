package contextconv

import (
	"fmt"
	"strings"

	"github.com/loomctl/loom/internal/workspace"
)

// formatHeadDelta renders the short hash + subject of each new commit,
// plus its changed paths, as one system message.
func formatHeadDelta(commits []workspace.CommitSummary) string {
	var sb strings.Builder
	sb.WriteString("The workspace advanced while you were not looking:\n\n")
	for _, c := range commits {
		hash := c.Hash
		if len(hash) > 8 {
			hash = hash[:8]
		}
		fmt.Fprintf(&sb, "- %s %s\n", hash, c.Subject)
		for _, p := range c.ChangedPaths {
			fmt.Fprintf(&sb, "    %s\n", p)
		}
	}
	return sb.String()
}
