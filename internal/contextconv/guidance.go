package contextconv

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ProjectGuidanceFile is the workspace-root file whose contents every
// context is kept aware of (§4.F "Supplementary directives" /
// "Project-guidance refresh").
const ProjectGuidanceFile = "LOOM.md"

// RefreshGuidance appends the project-guidance file's contents as a
// system message the first time it is seen, or a unified diff of the
// change on every subsequent call where the content actually changed.
// changed reports whether a message was appended.
func (c *Context) RefreshGuidance(content string) (changed bool, err error) {
	hash := contentHash(content)
	if hash == c.guidanceHash {
		return false, nil
	}

	if c.guidanceHash == "" {
		c.add(RoleSystem, "Project guidance ("+ProjectGuidanceFile+"):\n\n"+content)
	} else {
		c.add(RoleSystem, fmt.Sprintf(
			"Project guidance (%s) changed:\n\n%s", ProjectGuidanceFile, unifiedDiff(c.guidanceContent, content)))
	}
	c.guidanceHash = hash
	c.guidanceContent = content
	return true, nil
}

func contentHash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// unifiedDiff produces a minimal unified-diff rendering of the change
// between old and new content: it finds the common prefix and suffix of
// lines and reports only the differing span, generalising the teacher's
// ad hoc line-diff (lowkaihon's ui/diff.go PrintDiff) into plain text
// instead of a colorized terminal preview.
func unifiedDiff(old, new string) string {
	oldLines := strings.Split(old, "\n")
	newLines := strings.Split(new, "\n")

	start := 0
	for start < len(oldLines) && start < len(newLines) && oldLines[start] == newLines[start] {
		start++
	}

	endOld := len(oldLines) - 1
	endNew := len(newLines) - 1
	for endOld >= start && endNew >= start && oldLines[endOld] == newLines[endNew] {
		endOld--
		endNew--
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", ProjectGuidanceFile, ProjectGuidanceFile)
	fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", start+1, endOld-start+1, start+1, endNew-start+1)
	for i := start; i <= endOld; i++ {
		sb.WriteString("-" + oldLines[i] + "\n")
	}
	for i := start; i <= endNew; i++ {
		sb.WriteString("+" + newLines[i] + "\n")
	}
	return sb.String()
}
