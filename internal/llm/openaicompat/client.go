// Package openaicompat implements llm.Client against OpenAI-compatible
// chat-completions endpoints. OpenAI, Deepseek and Zhipu all speak the same
// wire format and differ only in endpoint and model defaults.
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"datalab-backend/internal/llm"
)

const (
	openAIBaseURL   = "https://api.openai.com/v1"
	openAIModel     = "chatgpt-4o-latest"
	deepseekBaseURL = "https://api.deepseek.com/v1"
	deepseekModel   = "deepseek-chat"
	zhipuBaseURL    = "https://open.bigmodel.cn/api/paas/v4"
	zhipuModel      = "glm-4-plus"

	maxAttempts    = 3
	retryBaseDelay = 2 * time.Second
)

var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client talks to one OpenAI-compatible provider.
type Client struct {
	kind       string
	model      string
	baseURL    string
	apiKey     string
	httpClient *http.Client

	// overridable in tests
	baseDelay time.Duration
	wait      func(ctx context.Context, d time.Duration) error
}

// NewOpenAI constructs a client for the OpenAI API. creds.BaseURL overrides
// the default endpoint for OpenAI-compatible proxies.
func NewOpenAI(creds llm.Credentials) (llm.Client, error) {
	return newClient("openai", openAIModel, openAIBaseURL, creds)
}

// NewDeepseek constructs a client for the Deepseek API.
func NewDeepseek(creds llm.Credentials) (llm.Client, error) {
	return newClient("deepseek", deepseekModel, deepseekBaseURL, creds)
}

// NewZhipu constructs a client for the Zhipu GLM API.
func NewZhipu(creds llm.Credentials) (llm.Client, error) {
	return newClient("zhipu", zhipuModel, zhipuBaseURL, creds)
}

// DefaultFactory returns a factory with all built-in provider kinds registered.
func DefaultFactory() llm.Factory {
	factory := llm.Factory{}
	factory.Register("openai", NewOpenAI)
	factory.Register("deepseek", NewDeepseek)
	factory.Register("zhipu", NewZhipu)
	return factory
}

func newClient(kind, model, defaultBaseURL string, creds llm.Credentials) (*Client, error) {
	if strings.TrimSpace(creds.APIKey) == "" {
		return nil, llm.ErrMissingCredentials
	}
	baseURL := strings.TrimRight(strings.TrimSpace(creds.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		kind:    kind,
		model:   model,
		baseURL: baseURL,
		apiKey:  creds.APIKey,
		httpClient: &http.Client{
			Timeout: llm.RequestTimeout * time.Second,
		},
		baseDelay: retryBaseDelay,
		wait:      waitContext,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// ChatCompletion sends the messages and returns the raw reply. Transient
// upstream failures are retried up to maxAttempts total attempts with
// exponentially increasing backoff; a 429 additionally honors the
// server-provided Retry-After delay.
func (c *Client) ChatCompletion(ctx context.Context, messages []llm.Message, taskType string) (string, error) {
	if len(messages) == 0 {
		return "", llm.ErrEmptyMessages
	}

	temp := llm.TemperatureFor(taskType)
	reqMessages := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		reqMessages = append(reqMessages, chatMessage{Role: m.Role, Content: m.Content})
	}
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    reqMessages,
		Temperature: &temp,
		MaxTokens:   llm.MaxOutputTokens,
	})
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		reply, retryAfter, err := c.send(ctx, payload)
		if err == nil {
			return reply, nil
		}
		if !llm.IsTransient(err) {
			return "", err
		}
		lastErr = err
		if attempt == maxAttempts {
			break
		}

		delay := c.baseDelay << (attempt - 1)
		if retryAfter > delay {
			delay = retryAfter
		}
		log.Printf("%s retry attempt=%d delay=%s error=%v", c.kind, attempt, delay, err)
		if err := c.wait(ctx, delay); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%s chat completion failed after %d attempts: %w", c.kind, maxAttempts, lastErr)
}

// ValidateAPIKey issues a minimal single-turn request.
func (c *Client) ValidateAPIKey(ctx context.Context) error {
	_, err := c.ChatCompletion(ctx, []llm.Message{{Role: llm.RoleUser, Content: "ping"}}, llm.TaskChat)
	return err
}

func (c *Client) send(ctx context.Context, payload []byte) (string, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", 0, fmt.Errorf("%s request timeout: %w", c.kind, err)
		}
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, err
	}

	if retryableStatus[resp.StatusCode] {
		return "", parseRetryAfter(resp.Header.Get("Retry-After")), &llm.TransientError{
			Status: resp.StatusCode,
			Err:    apiError(body),
		}
	}
	if resp.StatusCode != http.StatusOK {
		if err := apiError(body); err != nil {
			return "", 0, fmt.Errorf("%s error (http %d): %w", c.kind, resp.StatusCode, err)
		}
		return "", 0, fmt.Errorf("%s error: http %d", c.kind, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", 0, fmt.Errorf("%s response parse: %w", c.kind, err)
	}
	if parsed.Error != nil {
		return "", 0, fmt.Errorf("%s error: %s (%s)", c.kind, parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return "", 0, fmt.Errorf("%s response missing choices", c.kind)
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", 0, llm.ErrEmptyReply
	}
	if parsed.Usage != nil {
		log.Printf("%s response model=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d",
			c.kind, parsed.Model, parsed.Usage.PromptTokens, parsed.Usage.CompletionTokens, parsed.Usage.TotalTokens)
	}
	return content, 0, nil
}

func apiError(body []byte) error {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		return fmt.Errorf("%s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	return nil
}

func parseRetryAfter(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(raw); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func waitContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ llm.Client = (*Client)(nil)
