package acceptance

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
)

// modelStub serves a fixed sequence of assistant replies, one per
// chat-completion request, as a single-chunk SSE stream — enough to
// exercise the real Transport wire format without a live model service.
type modelStub struct {
	mu      sync.Mutex
	replies []string
	calls   int
}

func newModelStub(replies []string) *httptest.Server {
	s := &modelStub{replies: replies}
	return httptest.NewServer(http.HandlerFunc(s.handle))
}

func (s *modelStub) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	idx := s.calls
	s.calls++
	s.mu.Unlock()

	if idx >= len(s.replies) {
		http.Error(w, "modelStub: no scripted reply left", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)

	content := s.replies[idx]
	chunk := fmt.Sprintf(
		`{"choices":[{"delta":{"content":%s},"finish_reason":null}],"usage":{"cost":0.0001}}`,
		jsonString(content),
	)
	fmt.Fprintf(w, "data: %s\n\n", chunk)
	fmt.Fprint(w, "data: [DONE]\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func jsonString(s string) string {
	var buf bytes.Buffer
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		default:
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
	return buf.String()
}
