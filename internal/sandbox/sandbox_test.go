package sandbox

import (
	"strings"
	"testing"
)

func TestCacheKeyIsStableAndSensitiveToSteps(t *testing.T) {
	a := cacheKey("golang:1.23", []string{"apt-get update"})
	b := cacheKey("golang:1.23", []string{"apt-get update"})
	if a != b {
		t.Fatalf("cache key not stable: %q vs %q", a, b)
	}
	c := cacheKey("golang:1.23", []string{"apt-get update", "apt-get install -y jq"})
	if a == c {
		t.Fatal("cache key must change when build steps change")
	}
	if len(a) != 32 {
		t.Fatalf("expected 32 hex chars (16 bytes), got %d: %q", len(a), a)
	}
}

func TestImageTagFormat(t *testing.T) {
	tag := imageTag("golang:1.23", nil)
	if !strings.HasPrefix(tag, imageTagPrefix+":") {
		t.Fatalf("got %q", tag)
	}
}

func TestDockerfileRendersBaseAndSteps(t *testing.T) {
	df := dockerfile("golang:1.23", []string{"apt-get update", "go build ./..."})
	want := "FROM golang:1.23\nRUN apt-get update\nRUN go build ./...\n"
	if df != want {
		t.Fatalf("got %q, want %q", df, want)
	}
}

func TestTruncateKeepsOutputUnderLimitVerbatim(t *testing.T) {
	out := "line1\nline2\nline3"
	got := truncate(out, 10, 10)
	if got != out {
		t.Fatalf("got %q", got)
	}
}

func TestTruncateElidesMiddleAndReportsDroppedCount(t *testing.T) {
	lines := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		lines = append(lines, "line")
	}
	out := strings.Join(lines, "\n")
	got := truncate(out, 5, 5)
	if strings.Count(got, "\n") == 0 {
		t.Fatal("expected a multi-line result")
	}
	if !strings.Contains(got, "15 lines omitted") {
		t.Fatalf("expected elision notice mentioning dropped count, got %q", got)
	}
	gotLines := strings.Split(got, "\n")
	if len(gotLines) != 5+1+5 {
		t.Fatalf("got %d lines, want head+notice+tail = 11", len(gotLines))
	}
}
