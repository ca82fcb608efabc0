package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// StateDirName is the dotted directory, at the repository root, that
// holds every session's workspace and logs (SPEC_FULL.md "State directory
// layout").
const StateDirName = ".loom"

// ScratchDirName is the per-workspace scratch subdirectory excluded from
// every commit (§3 Workspace invariant ii).
const ScratchDirName = ".loom-scratch"

// BranchPrefix names session branches `<BranchPrefix>/<id>`.
const BranchPrefix = "loom"

// Session describes one allocated workspace, as returned by Prepare.
type Session struct {
	ID            int
	WorkspacePath string
	BranchLabel   string

	repoRoot   string
	baseBranch string
}

// Prepare allocates the next session id under repo_root's state
// directory, creates a branch at the current tip, and materialises a
// second working copy (a git worktree) for it with a scratch
// subdirectory. It prunes stale worktrees first.
func Prepare(repoRoot string) (*Session, error) {
	r := newRepo(repoRoot)
	if err := r.pruneWorktrees(); err != nil {
		return nil, fmt.Errorf("pruning stale worktrees: %w", err)
	}

	stateDir := filepath.Join(repoRoot, StateDirName)
	id, err := nextSessionID(stateDir)
	if err != nil {
		return nil, fmt.Errorf("allocating session id: %w", err)
	}

	baseBranch, err := r.currentBranch()
	if err != nil {
		return nil, fmt.Errorf("resolving current branch: %w", err)
	}

	branchLabel := fmt.Sprintf("%s/%d", BranchPrefix, id)
	if err := r.createBranch(branchLabel, "HEAD"); err != nil {
		return nil, fmt.Errorf("creating session branch: %w", err)
	}

	sessionDir := filepath.Join(stateDir, strconv.Itoa(id))
	workspacePath := filepath.Join(sessionDir, "workspace")
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}
	if err := r.createWorktree(workspacePath, branchLabel); err != nil {
		return nil, fmt.Errorf("creating worktree: %w", err)
	}

	scratchPath := filepath.Join(workspacePath, ScratchDirName)
	if err := os.MkdirAll(scratchPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}

	return &Session{
		ID:            id,
		WorkspacePath: workspacePath,
		BranchLabel:   branchLabel,
		repoRoot:      repoRoot,
		baseBranch:    baseBranch,
	}, nil
}

// nextSessionID returns one more than the largest numeric-only directory
// name directly under stateDir, or 1 if stateDir does not yet exist or
// holds no numeric directories.
func nextSessionID(stateDir string) (int, error) {
	entries, err := os.ReadDir(stateDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, err
	}
	max := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		n, err := strconv.Atoi(e.Name())
		if err != nil {
			continue // non-numeric entries (e.g. "history") are not sessions
		}
		if n > max {
			max = n
		}
	}
	return max + 1, nil
}

// excludePathspecs lists the directories every commit must omit.
func excludePathspecs() []string {
	return []string{ScratchDirName, StateDirName}
}

// Commit stages everything in the workspace except the scratch
// subdirectory and any nested state directory, then records a commit. It
// returns false, with no error, if there was nothing to commit.
func Commit(workspacePath, message string) (bool, error) {
	r := newRepo(workspacePath)
	if err := r.stageAll(excludePathspecs()); err != nil {
		return false, fmt.Errorf("staging changes: %w", err)
	}
	changed, err := r.hasChanges()
	if err != nil {
		return false, fmt.Errorf("checking for changes: %w", err)
	}
	if !changed {
		return false, nil
	}
	if err := r.commit(message); err != nil {
		return false, fmt.Errorf("committing: %w", err)
	}
	return true, nil
}

// Integrate performs the squash-rebase-fast-forward described in §4.A:
// it derives a descriptive branch label from message, preserves the full
// workspace history there, squashes the workspace branch down to one
// commit against the merge base with the main branch, rebases onto main,
// and fast-forward merges. On rebase conflict it returns success=false
// with a non-empty diagnostic rather than an error.
func Integrate(repoRoot, workspacePath, branchLabel, message string) (success bool, diagnostic string, err error) {
	ws := newRepo(workspacePath)
	rr := newRepo(repoRoot)

	mainBranch, err := rr.currentBranch()
	if err != nil {
		return false, "", fmt.Errorf("resolving main branch: %w", err)
	}

	head, err := ws.headCommit("HEAD")
	if err != nil {
		return false, "", fmt.Errorf("resolving workspace HEAD: %w", err)
	}

	slug := deriveSlug(message)
	preserved := branchLabel + "-" + slug
	if !ws.branchExists(preserved) {
		if err := ws.createBranch(preserved, head); err != nil {
			return false, "", fmt.Errorf("preserving branch %s: %w", preserved, err)
		}
	}

	base, err := ws.mergeBase(branchLabel, mainBranch)
	if err != nil {
		return false, "", fmt.Errorf("finding merge base: %w", err)
	}

	if err := ws.resetSoft(base); err != nil {
		return false, "", fmt.Errorf("soft-resetting to merge base: %w", err)
	}
	if err := ws.stageAll(excludePathspecs()); err != nil {
		return false, "", fmt.Errorf("staging squashed changes: %w", err)
	}
	augmented := message + fmt.Sprintf("\n\nFull history preserved on %s.\n", preserved)
	if err := ws.commit(augmented); err != nil {
		return false, "", fmt.Errorf("committing squashed change: %w", err)
	}

	if diag, rerr := ws.rebase(mainBranch); rerr != nil {
		// Put the session branch back on its pre-squash commit so the
		// workspace history is left as it was before Integrate.
		if err := ws.resetSoft(head); err != nil {
			return false, "", fmt.Errorf("restoring session branch after failed rebase: %w", err)
		}
		return false, diag, nil
	}

	if err := rr.fastForwardMerge(branchLabel); err != nil {
		return false, err.Error(), nil
	}
	return true, "", nil
}

// HeadAt returns the current HEAD commit hash of a workspace, used to
// mark where a subcontext's diff stat should start accumulating from
// when it is spawned or resumed.
func HeadAt(workspacePath string) (string, error) {
	r := newRepo(workspacePath)
	return r.headCommit("HEAD")
}

// DiffStat summarises the file changes a subcontext accumulated between
// baseHead (its HEAD when spawned or resumed, empty meaning "from the
// start") and its current HEAD, for the spawn/continue summary fed back
// to the parent context (§4.G step 3: "diff stats").
func DiffStat(workspacePath, baseHead string) (string, error) {
	r := newRepo(workspacePath)
	return r.diffStat(baseHead)
}

// Discard removes the worktree and deletes the session branch. Both
// operations are best-effort: a worktree already removed by hand is not
// a failure.
func Discard(repoRoot, workspacePath, branchLabel string) {
	r := newRepo(repoRoot)
	r.removeWorktree(workspacePath)
	r.deleteBranch(branchLabel)
}
