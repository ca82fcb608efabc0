package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/loomctl/loom/internal/protocol"
	"github.com/loomctl/loom/internal/workspace"
)

func newHandlerContext(t *testing.T) *HandlerContext {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, workspace.ScratchDirName), 0o755); err != nil {
		t.Fatal(err)
	}
	return &HandlerContext{WorkspacePath: dir}
}

func TestDispatchUnknownVerbIsProtocolError(t *testing.T) {
	r := NewRegistry()
	hc := newHandlerContext(t)
	res := r.Dispatch(protocol.Command{ID: 1, Verb: "FLY", Args: map[string]string{}}, hc)
	if res.Status != protocol.StatusError {
		t.Fatalf("got %+v", res)
	}
}

func TestDispatchMissingRequiredArgumentIsProtocolError(t *testing.T) {
	r := NewRegistry()
	hc := newHandlerContext(t)
	res := r.Dispatch(protocol.Command{ID: 1, Verb: "OVERWRITE", Args: map[string]string{"path": "a.txt"}}, hc)
	if res.Status != protocol.StatusError {
		t.Fatalf("expected a schema-mismatch error, got %+v", res)
	}
}

func TestOverwriteThenReadRoundTrips(t *testing.T) {
	r := NewRegistry()
	hc := newHandlerContext(t)

	res := r.Dispatch(protocol.Command{ID: 1, Verb: "OVERWRITE", Args: map[string]string{
		"path": "hello.txt", "content": "Hello, World!\n",
	}}, hc)
	if res.Status != protocol.StatusSuccess {
		t.Fatalf("overwrite failed: %+v", res)
	}

	res = r.Dispatch(protocol.Command{ID: 2, Verb: "READ", Args: map[string]string{"path": "hello.txt"}}, hc)
	if res.Status != protocol.StatusSuccess || res.Fields["content"] != "Hello, World!\n" {
		t.Fatalf("got %+v", res)
	}
}

func TestUpdateRequiresExactlyOneMatch(t *testing.T) {
	r := NewRegistry()
	hc := newHandlerContext(t)
	r.Dispatch(protocol.Command{ID: 1, Verb: "OVERWRITE", Args: map[string]string{
		"path": "README.md", "content": "# Test Project\n",
	}}, hc)

	res := r.Dispatch(protocol.Command{ID: 2, Verb: "UPDATE", Args: map[string]string{
		"path": "README.md", "search": "# Test Project\n", "replace": "# Test Project\n\nThis is a test.\n",
	}}, hc)
	if res.Status != protocol.StatusSuccess {
		t.Fatalf("update failed: %+v", res)
	}
	data, err := os.ReadFile(filepath.Join(hc.WorkspacePath, "README.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# Test Project\n\nThis is a test.\n" {
		t.Fatalf("got %q", data)
	}
}

func TestReadRejectsPathEscapingWorkspace(t *testing.T) {
	r := NewRegistry()
	hc := newHandlerContext(t)
	res := r.Dispatch(protocol.Command{ID: 1, Verb: "READ", Args: map[string]string{"path": "../../etc/passwd"}}, hc)
	if res.Status != protocol.StatusError {
		t.Fatalf("expected an error for an escaping path, got %+v", res)
	}
}

func TestProposeMergeIsTerminal(t *testing.T) {
	if !IsTerminal("PROPOSE_MERGE") {
		t.Fatal("PROPOSE_MERGE must be terminal")
	}
	if IsTerminal("OUTPUT") {
		t.Fatal("OUTPUT must not be terminal")
	}
}

type stubSubcontexts struct {
	summary SubcontextSummary
	err     error
}

func (s stubSubcontexts) Spawn(kind, name, task string, budgetMicro int64) (SubcontextSummary, error) {
	return s.summary, s.err
}

func (s stubSubcontexts) Continue(name, guidance string) (SubcontextSummary, error) {
	return s.summary, s.err
}

func TestSpawnSubcontextReturnsSummaryFields(t *testing.T) {
	r := NewRegistry()
	hc := newHandlerContext(t)
	hc.Subcontexts = stubSubcontexts{summary: SubcontextSummary{
		Name: "patch-readme", Completed: false, CostMicro: 1_500_000, Result: "budget exceeded",
	}}
	res := r.Dispatch(protocol.Command{ID: 1, Verb: "SPAWN_SUBCONTEXT", Args: map[string]string{
		"kind": "patch", "name": "patch-readme", "task": "fix the README",
	}}, hc)
	if res.Status != protocol.StatusSuccess {
		t.Fatalf("got %+v", res)
	}
	if res.Fields["completed"] != "false" || res.Fields["result"] != "budget exceeded" {
		t.Fatalf("got %+v", res.Fields)
	}
}
