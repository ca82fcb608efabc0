package transport

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/loomctl/loom/internal/protocol"
)

// consumeStream reads Server-Sent-Events-style `data: {...}` chunks
// until `data: [DONE]`, accumulating content fragments and reporting a
// best-effort progress status derived from the partial text received so
// far (§4.D).
func consumeStream(body io.Reader, onProgress ProgressFunc) (string, *usage, error) {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 256*1024), 8*1024*1024)

	var content strings.Builder
	var lastUsage *usage

	for sc.Scan() {
		line := sc.Text()
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return "", nil, fmt.Errorf("parsing stream chunk: %w", err)
		}
		if chunk.Usage != nil {
			lastUsage = chunk.Usage
		}
		if len(chunk.Choices) > 0 {
			if delta := chunk.Choices[0].Delta.Content; delta != "" {
				content.WriteString(delta)
				if onProgress != nil {
					onProgress(progressStatus(content.String()))
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return "", nil, fmt.Errorf("reading stream: %w", err)
	}
	return content.String(), lastUsage, nil
}

// progressStatus does a best-effort scan of the partial response text to
// describe which field the model is currently in the middle of
// producing, for the UI's live status line.
func progressStatus(partial string) string {
	lines := strings.Split(partial, "\n")
	last := lines[len(lines)-1]

	switch {
	case strings.HasPrefix(last, protocol.Sentinel+" "):
		fields := strings.Fields(last)
		if len(fields) >= 3 {
			return fmt.Sprintf("issuing %s command", fields[2])
		}
		return "issuing a command"
	case strings.Contains(last, ": "+protocol.MultilineOpen):
		name := strings.SplitN(last, ":", 2)[0]
		return fmt.Sprintf("writing %s", name)
	case strings.Contains(last, ":"):
		name := strings.SplitN(last, ":", 2)[0]
		return fmt.Sprintf("writing %s", strings.TrimSpace(name))
	default:
		return "composing response"
	}
}
