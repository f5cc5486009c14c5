package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/scenedsl/pkg/cache"
	"github.com/matzehuels/scenedsl/pkg/errors"
	"github.com/matzehuels/scenedsl/pkg/observability"
)

// Config configures an AnthropicClient. Zero values take the defaults.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	System      string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	// Backoff governs retries of network errors and 5xx responses.
	Backoff cache.Backoff
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.System == "" {
		c.System = DefaultSystem
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Backoff.Attempts <= 0 {
		onRetry := c.Backoff.OnRetry
		c.Backoff = cache.DefaultBackoff
		c.Backoff.OnRetry = onRetry
	}
	return c
}

// AnthropicClient generates text with the Anthropic Messages API.
type AnthropicClient struct {
	cfg        Config
	endpoint   string
	httpClient *http.Client
}

// NewAnthropicClient creates a client. The API key is required.
func NewAnthropicClient(cfg Config) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "anthropic API key is not set")
	}
	cfg = cfg.withDefaults()
	return &AnthropicClient{
		cfg:        cfg,
		endpoint:   strings.TrimSuffix(cfg.BaseURL, "/") + "/v1/messages",
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Model returns the model name sent with every request.
func (c *AnthropicClient) Model() string {
	return c.cfg.Model
}

// KeyOpts returns the sampling options that identify this client's output
// in a cache.
func (c *AnthropicClient) KeyOpts() cache.CompletionKeyOpts {
	return cache.CompletionKeyOpts{
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Stop:        []string{StopSequence},
	}
}

type messagesRequest struct {
	Model         string    `json:"model"`
	MaxTokens     int       `json:"max_tokens"`
	Temperature   float64   `json:"temperature"`
	System        string    `json:"system,omitempty"`
	StopSequences []string  `json:"stop_sequences,omitempty"`
	Messages      []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends prompt as a single user message and returns the text of
// the reply. Network errors and 5xx responses are retried; 429 responses
// return *errors.RateLimitedError.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	observability.Generate().OnGenerateStart(ctx, c.cfg.Model, len(prompt))

	body, err := json.Marshal(messagesRequest{
		Model:         c.cfg.Model,
		MaxTokens:     c.cfg.MaxTokens,
		Temperature:   c.cfg.Temperature,
		System:        c.cfg.System,
		StopSequences: []string{StopSequence},
		Messages:      []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var text string
	err = c.cfg.Backoff.Do(ctx, func() error {
		var callErr error
		text, callErr = c.call(ctx, body)
		return callErr
	})
	if err != nil && !isCoded(err) {
		err = errors.Wrap(errors.ErrCodeGenerationFailed, err, "generate with %s", c.cfg.Model)
	}
	observability.Generate().OnGenerateComplete(ctx, c.cfg.Model, len(text), time.Since(start), err)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *AnthropicClient) call(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	host, path := hostPath(c.endpoint)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", cache.Retryable(fmt.Errorf("%w: read response: %v", cache.ErrNetwork, err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retry, _ := strconv.Atoi(resp.Header.Get("retry-after"))
		return "", &errors.RateLimitedError{RetryAfter: retry, Message: apiMessage(data)}
	case resp.StatusCode >= 500:
		return "", cache.Retryable(fmt.Errorf("%w: status %d: %s", cache.ErrNetwork, resp.StatusCode, apiMessage(data)))
	case resp.StatusCode != http.StatusOK:
		return "", errors.New(errors.ErrCodeGenerationFailed, "API error (%d): %s", resp.StatusCode, apiMessage(data))
	}

	var out messagesResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", errors.Wrap(errors.ErrCodeGenerationFailed, err, "parse response")
	}
	var b strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}

func apiMessage(data []byte) string {
	var e apiError
	if err := json.Unmarshal(data, &e); err == nil && e.Error.Message != "" {
		return e.Error.Type + " - " + e.Error.Message
	}
	return strings.TrimSpace(string(data))
}

func hostPath(endpoint string) (string, string) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", endpoint
	}
	return u.Host, u.Path
}

func isCoded(err error) bool {
	return errors.GetCode(err) != ""
}

var _ Generator = (*AnthropicClient)(nil)
