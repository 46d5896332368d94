package translator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wergeran/wergeran/internal/config"
	"github.com/wergeran/wergeran/internal/lib/retry"
)

func fastPolicy() retry.Policy {
	return retry.Policy{
		MaxRetries: 3,
		Delays:     []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond},
	}
}

func newTestClient(baseURL string) *Client {
	return New(config.Anthropic{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "claude-3-sonnet-20240229",
		Timeout: 5 * time.Second,
	}).WithPolicy(fastPolicy())
}

func successBody(text string) []byte {
	body, _ := json.Marshal(map[string]any{
		"content": []map[string]any{{"type": "text", "text": text}},
	})
	return body
}

func TestTranslate_Success(t *testing.T) {
	var gotReq messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write(successBody("سڵاڤ"))
	}))
	defer srv.Close()

	text, err := newTestClient(srv.URL).Translate(context.Background(), "prompt text")
	require.NoError(t, err)
	assert.Equal(t, "سڵاڤ", text)

	assert.Equal(t, "claude-3-sonnet-20240229", gotReq.Model)
	assert.Equal(t, maxTokens, gotReq.MaxTokens)
	assert.InDelta(t, temperature, gotReq.Temperature, 1e-9)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "prompt text", gotReq.Messages[0].Content)
}

func TestTranslate_RetriesOn503ThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(successBody("done"))
	}))
	defer srv.Close()

	text, err := newTestClient(srv.URL).Translate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "done", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestTranslate_NoRetryOn400(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Translate(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var attemptsErr *retry.AttemptsError
	require.ErrorAs(t, err, &attemptsErr)
	assert.Equal(t, 1, attemptsErr.Attempts)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestTranslate_ExhaustsRetriesOn529(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(529)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Translate(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, int32(4), calls.Load())

	var attemptsErr *retry.AttemptsError
	require.ErrorAs(t, err, &attemptsErr)
	assert.Equal(t, 4, attemptsErr.Attempts)
}

func TestTranslate_MalformedResponseNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"content": []}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Translate(context.Background(), "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Equal(t, int32(1), calls.Load())
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&APIError{StatusCode: 500}))
	assert.True(t, IsTransient(&APIError{StatusCode: 503}))
	assert.True(t, IsTransient(&APIError{StatusCode: 529}))
	assert.False(t, IsTransient(&APIError{StatusCode: 400}))
	assert.False(t, IsTransient(&APIError{StatusCode: 429}))
	assert.False(t, IsTransient(ErrMalformedResponse))
}
