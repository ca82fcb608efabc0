package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/loomctl/loom/internal/protocol"
	"github.com/loomctl/loom/internal/workspace"
)

// notesFile lives in the scratch directory so it never reaches a commit
// but survives across turns within the same workspace.
const notesFile = "notes.md"

// handleNotes appends a timestamped note to the workspace's scratch
// notes file, for context the model wants to preserve for its own later
// turns without committing anything.
func handleNotes(cmd protocol.Command, hc *HandlerContext) protocol.Result {
	path := filepath.Join(hc.WorkspacePath, workspace.ScratchDirName, notesFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errorResult(cmd.ID, fmt.Sprintf("opening notes file: %v", err))
	}
	defer f.Close()

	entry := fmt.Sprintf("## %s\n\n%s\n\n", time.Now().UTC().Format(time.RFC3339), cmd.Args["text"])
	if _, err := f.WriteString(entry); err != nil {
		return errorResult(cmd.ID, fmt.Sprintf("writing notes file: %v", err))
	}
	return successResult(cmd.ID, map[string]string{"text": cmd.Args["text"]})
}
