package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/loomctl/loom/internal/config"
	"github.com/loomctl/loom/internal/contextconv"
	"github.com/loomctl/loom/internal/logger"
)

// defaultBaseURL is OpenRouter's OpenAI-compatible endpoint; the teacher
// pack's OPENROUTER_API_KEY default env var (§6) implies this provider.
const defaultBaseURL = "https://openrouter.ai/api/v1"

// baseURLOverrideEnv points the client at a different OpenAI-compatible
// endpoint — an alternate provider proxy, or a local stub server in
// acceptance tests.
const baseURLOverrideEnv = "LOOM_MODEL_BASE_URL"

// errNoContent marks a completed response that carried no content: a
// protocol error, which Call returns without retrying.
var errNoContent = errors.New("response carried no content: protocol error")

// ProgressFunc receives a human-readable status derived from a
// best-effort scan of the partial response as it streams in (§4.D "to
// show which field the model is in the middle of producing").
type ProgressFunc func(status string)

// Client issues chat-completion requests against the model service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	bearer     string
	retry      config.RetryConfig

	contextID string
	logger    *logger.Logger
	onProgress ProgressFunc
}

// New creates a Client. bearerEnv names the environment variable holding
// the bearer token (§6); its absence is a hard error, checked eagerly so
// configuration mistakes surface at startup rather than at first call.
func New(modelCfg config.ModelConfig, retry config.RetryConfig, log *logger.Logger) (*Client, error) {
	token := os.Getenv(modelCfg.BearerEnv)
	if token == "" {
		return nil, fmt.Errorf("environment variable %s is not set", modelCfg.BearerEnv)
	}
	baseURL := defaultBaseURL
	if override := os.Getenv(baseURLOverrideEnv); override != "" {
		baseURL = override
	}
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		baseURL:    baseURL,
		bearer:     token,
		retry:      retry,
		logger:     log,
	}, nil
}

// WithProgress returns a copy of the client that reports streaming
// progress through fn.
func (c *Client) WithProgress(contextID string, fn ProgressFunc) *Client {
	cp := *c
	cp.contextID = contextID
	cp.onProgress = fn
	return &cp
}

// Call issues one chat-completion request with the given history and
// permitted tool set, retrying transient failures up to
// retry.MaxAttempts times, and returns the assembled reply.
func (c *Client) Call(model string, messages []contextconv.Message, tools []string) (contextconv.Reply, error) {
	req := chatRequest{
		Model:      model,
		Messages:   toWireMessages(messages),
		Tools:      tools,
		ToolChoice: "required",
		Stream:     true,
		StreamOptions: streamOptions{
			IncludeUsage: true,
		},
		Usage: usageOption{Include: true},
	}
	body, err := json.Marshal(req)
	if err != nil {
		return contextconv.Reply{}, fmt.Errorf("marshaling request: %w", err)
	}

	var lastErr error
	delay := c.retry.InitialDelay.Duration()
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		reply, err := c.attempt(body)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if c.logger != nil && c.contextID != "" {
			_ = c.logger.Log(c.contextID, "transport_retry", map[string]any{
				"attempt": attempt,
				"error":   err.Error(),
			})
		}
		if errors.Is(err, errNoContent) {
			return contextconv.Reply{}, err
		}
		if attempt < c.retry.MaxAttempts {
			time.Sleep(delay)
			delay = time.Duration(float64(delay) * c.retry.Multiplier)
		}
	}
	return contextconv.Reply{}, fmt.Errorf("call failed after %d attempts: %w", c.retry.MaxAttempts, lastErr)
}

func (c *Client) attempt(body []byte) (contextconv.Reply, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.httpClient.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return contextconv.Reply{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.bearer)
	httpReq.Header.Set("X-Title", "loom")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return contextconv.Reply{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return contextconv.Reply{}, fmt.Errorf("model service returned HTTP %d", resp.StatusCode)
	}

	content, u, err := consumeStream(resp.Body, c.onProgress)
	if err != nil {
		return contextconv.Reply{}, fmt.Errorf("reading stream: %w", err)
	}
	if content == "" {
		return contextconv.Reply{}, errNoContent
	}

	costMicro := int64(0)
	if u != nil {
		costMicro = toMicros(u.CostUSD)
	}
	if c.logger != nil && c.contextID != "" {
		_ = c.logger.Log(c.contextID, "transport_call", map[string]any{
			"model_cost_micro": costMicro,
		})
	}
	return contextconv.Reply{Content: content, CostMicro: costMicro}, nil
}
