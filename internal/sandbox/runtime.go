// Package sandbox implements the Sandbox Runner (spec.md §4.B): it
// executes shell fragments inside an ephemeral container built from a
// cached, session-independent image, and truncates oversized output.
package sandbox

import (
	"context"
	"fmt"
	"os/exec"
)

// candidateRuntimes are tried in order; rootless podman is preferred over
// docker when both are present.
var candidateRuntimes = []string{"podman", "docker"}

// DetectRuntime returns the path to the first available container
// runtime binary, preferring a rootless option. It is a hard error if
// none is found (§4.B "fails fast if none is available").
func DetectRuntime() (string, error) {
	for _, name := range candidateRuntimes {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no container runtime found (tried %v)", candidateRuntimes)
}

// Runner executes commands inside containers built from a single detected
// runtime binary.
type Runner struct {
	bin string
}

// NewRunner detects a container runtime and returns a Runner bound to it.
func NewRunner() (*Runner, error) {
	bin, err := DetectRuntime()
	if err != nil {
		return nil, err
	}
	return &Runner{bin: bin}, nil
}

// imageExists reports whether tag is already present locally.
func (r *Runner) imageExists(ctx context.Context, tag string) bool {
	cmd := exec.CommandContext(ctx, r.bin, "image", "inspect", tag)
	return cmd.Run() == nil
}

// command builds an *exec.Cmd invoking the detected runtime binary.
func (r *Runner) command(ctx context.Context, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, r.bin, args...)
}
