package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clauselens/internal/config"
	"clauselens/internal/provider"
	gemini "clauselens/internal/provider/gemini"
)

func newTestClient(serverURL string) *gemini.Client {
	cfg := &config.ProviderConfig{
		APIKey:      "test-gemini-key",
		Model:       "gemini-2.0-flash",
		TimeoutSecs: 30,
	}
	return gemini.NewClientWithEndpoint(cfg, serverURL)
}

func successResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{
						{"text": text},
					},
				},
				"finishReason": "STOP",
			},
		},
	}
}

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-gemini-key", r.Header.Get("x-goog-api-key"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		contents := reqBody["contents"].([]interface{})
		assert.Len(t, contents, 1)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(successResponse(`{"severity_level": 2}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	text, err := c.Complete(context.Background(), "analyze this clause")

	require.NoError(t, err)
	assert.Equal(t, `{"severity_level": 2}`, text)
	assert.Equal(t, "gemini", c.Name())
}

func TestComplete_SafetyBlocked(t *testing.T) {
	resp := successResponse("")
	resp["candidates"].([]map[string]interface{})[0]["finishReason"] = "SAFETY"
	resp["candidates"].([]map[string]interface{})[0]["content"] = map[string]interface{}{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Complete(context.Background(), "prompt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAFETY")
}

func TestComplete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Complete(context.Background(), "prompt")

	require.Error(t, err)
	var rle *provider.RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, "gemini", rle.Provider)
	// No Retry-After header: default kicks in.
	assert.Equal(t, float64(60), rle.RetryAfter.Seconds())
}

func TestComplete_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Complete(context.Background(), "prompt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}
