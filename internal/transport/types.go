// Package transport implements the Transport component (spec.md §4.D):
// it issues streaming chat-completion requests against the configured
// model service, accumulates incremental fragments, converts reported
// cost to integer micro-units, and enforces a per-call retry policy.
package transport

import "github.com/loomctl/loom/internal/contextconv"

// wireMessage is one entry of the request's "messages" array.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// toWireMessages converts a Context's history into the wire format.
func toWireMessages(messages []contextconv.Message) []wireMessage {
	out := make([]wireMessage, len(messages))
	for i, m := range messages {
		out[i] = wireMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}

// streamOptions requests that the final SSE chunk carry usage.
type streamOptions struct {
	IncludeUsage bool `json:"includeUsage"`
}

// usageOption is the top-level "usage" request field (§6).
type usageOption struct {
	Include bool `json:"include"`
}

// chatRequest is the request body posted to the model service (§6).
type chatRequest struct {
	Model         string        `json:"model"`
	Messages      []wireMessage `json:"messages"`
	Tools         []string      `json:"tools,omitempty"`
	ToolChoice    string        `json:"tool_choice"`
	Stream        bool          `json:"stream"`
	StreamOptions streamOptions `json:"streamOptions"`
	Usage         usageOption   `json:"usage"`
}

// usage is the token/cost accounting on the final streamed chunk.
type usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	CostUSD          float64 `json:"cost"`
}

// streamDelta is the incremental content of one SSE chunk's choice.
type streamDelta struct {
	Content string `json:"content"`
}

type streamChoice struct {
	Delta        streamDelta `json:"delta"`
	FinishReason *string     `json:"finish_reason"`
}

// streamChunk is one `data: {...}` SSE payload.
type streamChunk struct {
	Choices []streamChoice `json:"choices"`
	Usage   *usage         `json:"usage"`
}

// microsPerDollar converts the service's reported fractional-dollar cost
// into integer micro-units of cost (§3 Command/Context budgets).
const microsPerDollar = 1_000_000

func toMicros(usd float64) int64 {
	return int64(usd * microsPerDollar)
}
