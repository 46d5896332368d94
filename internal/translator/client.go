// Package translator implements the client for the upstream translation
// provider (the Anthropic messages API), the dialect-specific prompt
// builders and the output sanitizer.
package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/wergeran/wergeran/internal/config"
	"github.com/wergeran/wergeran/internal/lib/retry"
	"github.com/wergeran/wergeran/internal/metrics"
)

const (
	anthropicVersion = "2023-06-01"
	maxTokens        = 1024
	temperature      = 0.1
)

// ErrMalformedResponse is returned when the provider answers 2xx but the
// body carries no content block. It is never retried.
var ErrMalformedResponse = errors.New("malformed provider response")

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

// Client calls the provider with a bounded retry policy. Each attempt is
// capped by the http.Client timeout, so a hung upstream cannot stall a
// request forever.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	policy     retry.Policy
}

// New creates a provider client from configuration.
func New(cfg config.Anthropic) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		policy:     retry.DefaultPolicy,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

// Translate sends one fully-rendered prompt to the provider and returns the
// raw model output. Transient failures (HTTP 500/503/529, connection reset,
// timeout) are retried on a fixed 1s/2s/4s schedule; anything else
// propagates immediately. The returned error is a *retry.AttemptsError
// carrying the total attempt count.
func (c *Client) Translate(ctx context.Context, prompt string) (string, error) {
	const op = "translator.Translate"

	var result string
	err := retry.Do(ctx, c.policy, func() error {
		metrics.UpstreamAttemptsTotal.Inc()
		text, err := c.request(ctx, prompt)
		if err != nil {
			return err
		}
		result = text
		return nil
	}, IsTransient)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func (c *Client) request(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return "", &APIError{StatusCode: resp.StatusCode, Body: buf.String()}
	}

	var parsed messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %s", ErrMalformedResponse, err)
	}
	if len(parsed.Content) == 0 || parsed.Content[0].Text == "" {
		return "", ErrMalformedResponse
	}
	return parsed.Content[0].Text, nil
}

// IsTransient reports whether an upstream error is worth retrying:
// HTTP 500/503/529, timeouts and connection resets.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusInternalServerError, http.StatusServiceUnavailable, 529:
			return true
		}
		return false
	}
	if errors.Is(err, ErrMalformedResponse) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	return false
}

// WithPolicy overrides the retry policy; used by tests to avoid real delays.
func (c *Client) WithPolicy(p retry.Policy) *Client {
	c.policy = p
	return c
}

// WithTimeout overrides the per-attempt timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.httpClient.Timeout = d
	return c
}
