package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/troubleshooter/internal/domain"
	"github.com/davidbz/troubleshooter/internal/provider/openai"
)

const completionBody = `{
  "id": "chatcmpl-123",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-3.5-turbo",
  "choices": [{
    "index": 0,
    "message": {"role": "assistant", "content": "Access denied due to bucket policy. 1. Check IAM permissions."},
    "finish_reason": "stop"
  }],
  "usage": {"prompt_tokens": 42, "completion_tokens": 12, "total_tokens": 54}
}`

const authErrorBody = `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","param":null,"code":"invalid_api_key"}}`

type recordedRequest struct {
	Path   string
	Auth   string
	Params struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
}

func newTestClient(t *testing.T, baseURL string, maxRetries int) *openai.Client {
	t.Helper()

	client, err := openai.NewClient(openai.Config{
		APIKey:     "sk-test",
		BaseURL:    baseURL,
		Model:      "gpt-3.5-turbo",
		Timeout:    5,
		MaxRetries: maxRetries,
	})
	require.NoError(t, err)

	return client
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	client, err := openai.NewClient(openai.Config{BaseURL: "https://api.openai.com/v1"})

	require.Error(t, err)
	require.Nil(t, client)
	require.Contains(t, err.Error(), "OpenAI API key is required")
}

func TestNewClient_DefaultModel(t *testing.T) {
	client, err := openai.NewClient(openai.Config{APIKey: "sk-test"})

	require.NoError(t, err)
	require.Equal(t, "gpt-3.5-turbo", client.Model())
}

func TestClient_Complete_Success(t *testing.T) {
	var recorded recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorded.Path = r.URL.Path
		recorded.Auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &recorded.Params)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/v1", 0)

	text, err := client.Complete(context.Background(), domain.Prompt("What does 403 mean?"))

	require.NoError(t, err)
	require.Equal(t, "Access denied due to bucket policy. 1. Check IAM permissions.", text)

	require.True(t, strings.HasSuffix(recorded.Path, "/chat/completions"))
	require.Equal(t, "Bearer sk-test", recorded.Auth)
	require.Equal(t, "gpt-3.5-turbo", recorded.Params.Model)
	require.InDelta(t, 0.3, recorded.Params.Temperature, 0.0001)
	require.Len(t, recorded.Params.Messages, 1)
	require.Equal(t, "user", recorded.Params.Messages[0].Role)
	require.Equal(t, "What does 403 mean?", recorded.Params.Messages[0].Content)
}

func TestClient_Complete_UpstreamErrorCarriesBody(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(authErrorBody))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/v1", 2)

	text, err := client.Complete(context.Background(), domain.Prompt("prompt"))

	require.Empty(t, text)
	require.ErrorIs(t, err, domain.ErrUpstream)

	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	require.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	require.Contains(t, upstream.Body, "Incorrect API key provided")

	// Authentication failures are not transient.
	require.Equal(t, int32(1), calls.Load())
}

func TestClient_Complete_BadRequestIsNotRetried(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/v1", 3)

	_, err := client.Complete(context.Background(), domain.Prompt("prompt"))

	require.ErrorIs(t, err, domain.ErrUpstream)
	require.Equal(t, int32(1), calls.Load())
}

func TestClient_Complete_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After-Ms", "10")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		_, _ = w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/v1", 1)

	text, err := client.Complete(context.Background(), domain.Prompt("prompt"))

	require.NoError(t, err)
	require.NotEmpty(t, text)
	require.Equal(t, int32(2), calls.Load())
}

func TestClient_Complete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-empty","object":"chat.completion","model":"gpt-3.5-turbo","choices":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/v1", 0)

	_, err := client.Complete(context.Background(), domain.Prompt("prompt"))

	require.ErrorIs(t, err, domain.ErrMalformedCompletion)
}

func TestClient_Complete_MalformedSuccessPayload(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		contains string
	}{
		{
			name: "choice without message",
			body: `{"id":"chatcmpl-1","choices":[{}]}`,
		},
		{
			name: "message without content",
			body: `{"id":"chatcmpl-2","choices":[{"index":0,"message":{"role":"assistant"}}]}`,
		},
		{
			name: "blank content",
			body: `{"id":"chatcmpl-3","choices":[{"index":0,"message":{"role":"assistant","content":"  "}}]}`,
		},
		{
			name: "refusal with null content",
			body: `{"id":"chatcmpl-4","choices":[{"index":0,"message":{"role":"assistant","content":null,` +
				`"refusal":"I can't help with that."},"finish_reason":"stop"}]}`,
			contains: "I can't help with that.",
		},
		{
			name: "truncated json",
			body: `{"choices": [`,
		},
		{
			name: "wrong field types",
			body: `{"id":"chatcmpl-5","choices":"none"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := newTestClient(t, srv.URL+"/v1", 0)

			text, err := client.Complete(context.Background(), domain.Prompt("prompt"))

			require.Empty(t, text)
			require.ErrorIs(t, err, domain.ErrMalformedCompletion)
			require.NotErrorIs(t, err, domain.ErrTransport)
			require.NotErrorIs(t, err, domain.ErrUpstream)
			if tt.contains != "" {
				require.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestClient_Complete_NonJSONErrorBody(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
	}{
		{name: "plain text from a proxy", status: http.StatusBadRequest, contentType: "text/plain", body: "Bad request from proxy"},
		{name: "html page", status: http.StatusNotFound, contentType: "text/html", body: "<html>not found</html>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := newTestClient(t, srv.URL+"/v1", 0)

			_, err := client.Complete(context.Background(), domain.Prompt("prompt"))

			var upstream *domain.UpstreamError
			require.ErrorAs(t, err, &upstream)
			require.Equal(t, tt.status, upstream.StatusCode)
			require.Equal(t, tt.body, upstream.Body)
		})
	}
}

func TestClient_Complete_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/v1", 0)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, domain.Prompt("prompt"))

	require.ErrorIs(t, err, domain.ErrTimeout)
}

func TestClient_Complete_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := srv.URL + "/v1"
	srv.Close()

	client := newTestClient(t, baseURL, 0)

	_, err := client.Complete(context.Background(), domain.Prompt("prompt"))

	require.ErrorIs(t, err, domain.ErrTransport)
	require.NotErrorIs(t, err, domain.ErrUpstream)
}
