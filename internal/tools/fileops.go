package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/loomctl/loom/internal/protocol"
)

// resolvePath joins a model-supplied relative path onto the workspace
// root and rejects any path that would escape it.
func resolvePath(workspacePath, rel string) (string, error) {
	clean := filepath.Clean(rel)
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", fmt.Errorf("path %q escapes the workspace", rel)
	}
	return filepath.Join(workspacePath, clean), nil
}

func handleRead(cmd protocol.Command, hc *HandlerContext) protocol.Result {
	path, err := resolvePath(hc.WorkspacePath, cmd.Args["path"])
	if err != nil {
		return errorResult(cmd.ID, err.Error())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errorResult(cmd.ID, fmt.Sprintf("reading %s: %v", cmd.Args["path"], err))
	}
	return successResult(cmd.ID, map[string]string{
		"path":    cmd.Args["path"],
		"content": string(data),
	})
}

func handleOverwrite(cmd protocol.Command, hc *HandlerContext) protocol.Result {
	path, err := resolvePath(hc.WorkspacePath, cmd.Args["path"])
	if err != nil {
		return errorResult(cmd.ID, err.Error())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errorResult(cmd.ID, fmt.Sprintf("creating directories for %s: %v", cmd.Args["path"], err))
	}
	if err := os.WriteFile(path, []byte(cmd.Args["content"]), 0o644); err != nil {
		return errorResult(cmd.ID, fmt.Sprintf("writing %s: %v", cmd.Args["path"], err))
	}
	return successResult(cmd.ID, map[string]string{"path": cmd.Args["path"]})
}

func handleUpdate(cmd protocol.Command, hc *HandlerContext) protocol.Result {
	path, err := resolvePath(hc.WorkspacePath, cmd.Args["path"])
	if err != nil {
		return errorResult(cmd.ID, err.Error())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errorResult(cmd.ID, fmt.Sprintf("reading %s: %v", cmd.Args["path"], err))
	}
	search := cmd.Args["search"]
	count := strings.Count(string(data), search)
	if count != 1 {
		return errorResult(cmd.ID, fmt.Sprintf(
			"search text must match exactly once in %s, found %d", cmd.Args["path"], count))
	}
	updated := strings.Replace(string(data), search, cmd.Args["replace"], 1)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return errorResult(cmd.ID, fmt.Sprintf("writing %s: %v", cmd.Args["path"], err))
	}
	return successResult(cmd.ID, map[string]string{"path": cmd.Args["path"]})
}
