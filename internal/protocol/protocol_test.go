package protocol

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseBasicCommand(t *testing.T) {
	text := "Here is my plan.\n" +
		Sentinel + " 1 OVERWRITE\n" +
		"path: hello.txt\n" +
		"content: <<<\n" +
		"Hello, World!\n" +
		">>>\n" +
		"\n" +
		"Done.\n"

	res := Parse(text)
	if len(res.Commands) != 1 {
		t.Fatalf("got %d commands, want 1", len(res.Commands))
	}
	cmd := res.Commands[0]
	if cmd.ID != 1 || cmd.Verb != "OVERWRITE" {
		t.Fatalf("got %+v", cmd)
	}
	if cmd.Args["path"] != "hello.txt" {
		t.Fatalf("path = %q", cmd.Args["path"])
	}
	if cmd.Args["content"] != "Hello, World!" {
		t.Fatalf("content = %q", cmd.Args["content"])
	}
}

func TestParseMalformedHeaderDemotesToProse(t *testing.T) {
	text := Sentinel + " not-an-int VERB\nsome text\n"
	res := Parse(text)
	if len(res.Commands) != 0 {
		t.Fatalf("expected no commands, got %v", res.Commands)
	}
	if res.Prose == "" {
		t.Fatalf("expected prose to retain the malformed header line")
	}
}

func TestParseSkipsMalformedArgLine(t *testing.T) {
	text := Sentinel + " 2 READ\n" +
		"this-has-no-colon\n" +
		"path: a.go\n" +
		"\n"
	res := Parse(text)
	if len(res.Commands) != 1 {
		t.Fatalf("got %d commands", len(res.Commands))
	}
	if _, ok := res.Commands[0].Args["this-has-no-colon"]; ok {
		t.Fatalf("malformed line should have been skipped")
	}
	if res.Commands[0].Args["path"] != "a.go" {
		t.Fatalf("path = %q", res.Commands[0].Args["path"])
	}
}

func TestCancelRemovesReferencedCommand(t *testing.T) {
	cmds := []Command{
		{ID: 1, Verb: "OVERWRITE", Args: map[string]string{"path": "a.go"}},
		{ID: 2, Verb: VerbCancel, Args: map[string]string{"id": "1"}},
		{ID: 3, Verb: "OUTPUT", Args: map[string]string{}},
	}
	out := ApplyCancellations(cmds)
	if len(out) != 1 || out[0].ID != 3 {
		t.Fatalf("got %+v", out)
	}
}

func TestRoundTripMultilineWithEmbeddedCloser(t *testing.T) {
	f := Formatter{}
	results := []Result{
		{
			ID:     7,
			Status: StatusSuccess,
			Fields: map[string]string{
				"output": ">>>\nsecond line\n@>>>already-escaped\n",
			},
		},
	}
	text := f.Format(results, ModeNormal)
	parsed := Parse(text)
	if len(parsed.Commands) != 1 {
		t.Fatalf("got %d commands from formatted text: %q", len(parsed.Commands), text)
	}
	got := parsed.Commands[0].Args["output"]
	want := results[0].Fields["output"]
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}
	if parsed.Commands[0].Args["status"] != StatusSuccess {
		t.Fatalf("status = %q", parsed.Commands[0].Args["status"])
	}
}

func TestFormatLongTermOmitsBulkyFields(t *testing.T) {
	f := Formatter{Bulky: map[string]bool{"content": true}}
	results := []Result{
		{ID: 1, Status: StatusSuccess, Fields: map[string]string{"content": "big file body", "path": "a.go"}},
	}
	text := f.Format(results, ModeLongTerm)
	parsed := Parse(text)
	cmd := parsed.Commands[0]
	if cmd.Args["content"] != Omitted {
		t.Fatalf("content = %q, want %q", cmd.Args["content"], Omitted)
	}
	if cmd.Args["path"] != "a.go" {
		t.Fatalf("path should be preserved, got %q", cmd.Args["path"])
	}
}

func TestFormatNormalPreservesAllFields(t *testing.T) {
	f := Formatter{Bulky: map[string]bool{"content": true}}
	results := []Result{
		{ID: 1, Status: StatusSuccess, Fields: map[string]string{"content": "big file body"}},
	}
	text := f.Format(results, ModeNormal)
	parsed := Parse(text)
	if parsed.Commands[0].Args["content"] != "big file body" {
		t.Fatalf("normal mode must not omit bulky fields")
	}
}

func TestCloserOnlySingleLineValueRoundTrips(t *testing.T) {
	f := Formatter{}
	results := []Result{{ID: 1, Status: StatusSuccess, Fields: map[string]string{"body": ">>>"}}}
	text := f.Format(results, ModeNormal)
	got := Parse(text).Commands[0].Args["body"]
	if got != ">>>" {
		t.Fatalf("got %q, want %q", got, ">>>")
	}
}
