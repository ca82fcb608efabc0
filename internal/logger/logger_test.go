package logger

import (
	"testing"
)

func TestLogAndReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	defer l.Close()

	if err := l.Log("ctx-1", "dispatch", map[string]any{
		"command": "OVERWRITE hello.txt",
		"cost":    int64(1500),
	}); err != nil {
		t.Fatal(err)
	}
	if err := l.Log("ctx-1", "commit", map[string]any{
		"message": "first line\nsecond line\n",
	}); err != nil {
		t.Fatal(err)
	}

	records, err := Read(dir, "ctx-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Seq >= records[1].Seq {
		t.Fatalf("sequence must be monotonic: %d, %d", records[0].Seq, records[1].Seq)
	}
	if records[0].Tag != "dispatch" {
		t.Fatalf("tag = %q", records[0].Tag)
	}
	if records[0].Fields["command"] != "OVERWRITE hello.txt" {
		t.Fatalf("command = %v", records[0].Fields["command"])
	}
	if got, want := records[0].Fields["cost"], float64(1500); got != want {
		t.Fatalf("cost = %v (%T), want %v", got, got, want)
	}
	if records[1].Fields["message"] != "first line\nsecond line\n" {
		t.Fatalf("message = %q", records[1].Fields["message"])
	}
}

func TestReadMissingContextReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	records, err := Read(dir, "never-logged")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records, want 0", len(records))
	}
}

func TestSequenceCounterIsSharedAcrossContexts(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	defer l.Close()

	if err := l.Log("ctx-a", "x", map[string]any{"k": "v"}); err != nil {
		t.Fatal(err)
	}
	if err := l.Log("ctx-b", "x", map[string]any{"k": "v"}); err != nil {
		t.Fatal(err)
	}
	if err := l.Log("ctx-a", "x", map[string]any{"k": "v"}); err != nil {
		t.Fatal(err)
	}

	a, err := Read(dir, "ctx-a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Read(dir, "ctx-b")
	if err != nil {
		t.Fatal(err)
	}
	if a[0].Seq != 1 || b[0].Seq != 2 || a[1].Seq != 3 {
		t.Fatalf("sequence not shared: a=%v b=%v", a, b)
	}
}

func TestHeredocDelimiterAvoidsCollisionWithPayload(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	defer l.Close()

	payload := "line one\n" + defaultDelimiter + "\nline three\n"
	if err := l.Log("ctx-1", "note", map[string]any{"body": payload}); err != nil {
		t.Fatal(err)
	}
	records, err := Read(dir, "ctx-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records", len(records))
	}
	if records[0].Fields["body"] != payload {
		t.Fatalf("got %q, want %q", records[0].Fields["body"], payload)
	}
}
