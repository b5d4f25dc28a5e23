package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"scoutiq/internal/logging"
)

// FallbackText is returned in place of a completion whenever the service
// cannot be reached or is not configured.
const FallbackText = "Strategic analysis temporarily unavailable."

var (
	// ErrUnavailable marks a completion that could not be produced.
	ErrUnavailable = errors.New("text generation unavailable")
	// ErrMalformed marks a completion that did not contain the expected JSON.
	ErrMalformed = errors.New("malformed text generation response")
)

// Request is one completion request. User usually carries structured data
// serialized as JSON.
type Request struct {
	System      string
	User        string
	Temperature *float64
	// JSON asks the service for a JSON object response.
	JSON bool
}

// Config configures an OpenAI-compatible chat completions endpoint.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Client calls the text-generation API behind a circuit breaker, with an
// optional response cache.
type Client struct {
	httpClient     *http.Client
	cfg            Config
	cache          Cache
	circuitBreaker *gobreaker.CircuitBreaker
}

// NewClient builds a client. cache may be nil.
func NewClient(cfg Config, cache Cache) *Client {
	logger := logging.Logger()
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "textgen-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("circuit breaker %s changed from %s to %s", name, from, to)
		},
	})

	return &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		cfg:            cfg,
		cache:          cache,
		circuitBreaker: cb,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Generate returns a completion for req. On any failure it returns
// FallbackText together with an error wrapping ErrUnavailable, so callers may
// use the text directly and only log the error.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if !c.Configured() {
		return FallbackText, fmt.Errorf("%w: no api key configured", ErrUnavailable)
	}

	key := cacheKey(c.cfg.Model, req)
	if c.cache != nil {
		if text, ok, err := c.cache.Get(ctx, key); err != nil {
			logging.Logger().Warnf("textgen cache read failed: %v", err)
		} else if ok {
			return text, nil
		}
	}

	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.complete(ctx, req)
	})
	if err != nil {
		return FallbackText, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	text := result.(string)

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, text, c.cfg.CacheTTL); err != nil {
			logging.Logger().Warnf("textgen cache write failed: %v", err)
		}
	}
	return text, nil
}

// GenerateJSON requests a JSON completion and decodes it into dest. Errors
// wrap ErrUnavailable or ErrMalformed.
func (c *Client) GenerateJSON(ctx context.Context, req Request, dest any) error {
	req.JSON = true
	text, err := c.Generate(ctx, req)
	if err != nil {
		return err
	}
	return DecodeJSON(text, dest)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) complete(ctx context.Context, req Request) (string, error) {
	body := chatRequest{
		Model:       c.cfg.Model,
		Temperature: req.Temperature,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.User})
	if req.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", errors.New("empty completion")
	}
	return out.Choices[0].Message.Content, nil
}
