package transport

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/loomctl/loom/internal/config"
	"github.com/loomctl/loom/internal/contextconv"
)

func sseServer(t *testing.T, chunks []string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, c := range chunks {
			fmt.Fprintf(w, "data: %s\n\n", c)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	t.Setenv("LOOM_TEST_TOKEN", "secret")
	c, err := New(
		config.ModelConfig{BearerEnv: "LOOM_TEST_TOKEN"},
		config.RetryConfig{MaxAttempts: 3, InitialDelay: config.Duration(time.Millisecond), Multiplier: 1},
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	c.baseURL = baseURL
	return c
}

func TestCallAccumulatesStreamedContentAndCost(t *testing.T) {
	srv := sseServer(t, []string{
		`{"choices":[{"delta":{"content":"hello "}}]}`,
		`{"choices":[{"delta":{"content":"world"}}]}`,
		`{"choices":[{"delta":{}}],"usage":{"cost":0.0025}}`,
	}, http.StatusOK)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	reply, err := c.Call("test/model", []contextconv.Message{{Role: contextconv.RoleUser, Content: "hi"}}, []string{"read"})
	if err != nil {
		t.Fatal(err)
	}
	if reply.Content != "hello world" {
		t.Fatalf("content = %q", reply.Content)
	}
	if reply.CostMicro != 2500 {
		t.Fatalf("cost micro = %d, want 2500", reply.CostMicro)
	}
}

func TestCallRetriesOnServerErrorThenFails(t *testing.T) {
	srv := sseServer(t, nil, http.StatusInternalServerError)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Call("test/model", nil, nil)
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
}

func TestCallFailsOnEmptyContent(t *testing.T) {
	srv := sseServer(t, []string{`{"choices":[{"delta":{}}]}`}, http.StatusOK)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Call("test/model", nil, nil)
	if err == nil {
		t.Fatal("expected a protocol error for empty content")
	}
}

func TestNewRequiresBearerEnvVar(t *testing.T) {
	os.Unsetenv("LOOM_MISSING_TOKEN")
	_, err := New(config.ModelConfig{BearerEnv: "LOOM_MISSING_TOKEN"}, config.RetryConfig{MaxAttempts: 1}, nil)
	if err == nil {
		t.Fatal("expected an error when the bearer env var is unset")
	}
}

func TestProgressStatusDescribesCurrentField(t *testing.T) {
	if got := progressStatus("Here is my plan.\n@@LOOM 1 OVERWRITE"); got != "issuing OVERWRITE command" {
		t.Fatalf("got %q", got)
	}
	if got := progressStatus("@@LOOM 1 OVERWRITE\npath: a.go\ncontent: <<<"); got != "writing content" {
		t.Fatalf("got %q", got)
	}
}
