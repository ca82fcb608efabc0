package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/creack/pty"
)

// Result is what Run reports back to the calling tool handler.
type Result struct {
	Output   string
	ExitCode int
}

// Run executes command inside an ephemeral container built from
// baseImage/buildSteps. The workspace is bind-mounted at its absolute
// path (so paths inside the container match paths the model already
// reasons about), the repository's .git metadata is mounted read-only
// so the worktree's linkage resolves, and the working directory is set
// to the workspace. stdout and stderr are concatenated and, if their
// combined line count exceeds head+tail, the middle is elided.
func (r *Runner) Run(ctx context.Context, command, workspace, repoRoot string, baseImage string, buildSteps []string, head, tail int) (Result, error) {
	tag, err := r.ensureImage(ctx, baseImage, buildSteps)
	if err != nil {
		return Result{}, err
	}

	gitDir := filepath.Join(repoRoot, ".git")
	args := []string{
		"run", "--rm",
		"-v", workspace + ":" + workspace,
		"-v", gitDir + ":" + gitDir + ":ro",
		"-w", workspace,
		tag,
		"sh", "-c", command,
	}
	cmd := r.command(ctx, args...)

	ptmx, pts, err := pty.Open()
	if err != nil {
		return Result{}, fmt.Errorf("opening pty: %w", err)
	}
	defer ptmx.Close()

	cmd.Stdin = nil
	cmd.Stdout = pts
	cmd.Stderr = pts

	if err := cmd.Start(); err != nil {
		pts.Close()
		return Result{}, fmt.Errorf("starting sandboxed command: %w", err)
	}
	pts.Close() // close the slave in the parent; the child inherited it

	var buf strings.Builder
	if _, err := io.Copy(&buf, ptmx); err != nil {
		var pathErr *os.PathError
		if !(errors.As(err, &pathErr) && pathErr.Err == syscall.EIO) {
			return Result{}, fmt.Errorf("reading sandboxed command output: %w", err)
		}
	}

	exitCode := 0
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return Result{}, fmt.Errorf("running sandboxed command: %w", err)
		}
	}

	return Result{Output: truncate(buf.String(), head, tail), ExitCode: exitCode}, nil
}

// truncate elides the middle of output when its line count exceeds
// head+tail, replacing the dropped span with a single notice line.
func truncate(output string, head, tail int) string {
	lines := strings.Split(output, "\n")
	limit := head + tail
	if len(lines) <= limit {
		return output
	}
	dropped := len(lines) - limit
	var sb strings.Builder
	sb.WriteString(strings.Join(lines[:head], "\n"))
	sb.WriteString(fmt.Sprintf("\n... %d lines omitted ...\n", dropped))
	sb.WriteString(strings.Join(lines[len(lines)-tail:], "\n"))
	return sb.String()
}
