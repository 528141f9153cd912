// internal/provider/direct_test.go
package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testOpts() CallOptions {
	return CallOptions{
		Model:   "parley-core-1",
		Timeout: 5 * time.Second,
	}
}

func TestDirectNotConfigured(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	d := NewDirect("", server.URL, "Live")
	if d.Configured() {
		t.Error("Expected Configured to be false without a key")
	}

	out := d.Ask(context.Background(), "hi", testOpts())
	if out.Status != OutcomeFatal {
		t.Fatalf("Expected fatal outcome, got %v", out.Status)
	}
	if out.Err.Kind != KindAuth {
		t.Errorf("Expected KindAuth, got %v", out.Err.Kind)
	}
	if calls != 0 {
		t.Errorf("Expected no HTTP call without a key, got %d", calls)
	}
}

func TestDirectSuccessShapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "message content",
			body:     `{"message": {"content": "hello there"}}`,
			expected: "hello there",
		},
		{
			name:     "response field",
			body:     `{"response": "from response"}`,
			expected: "from response",
		},
		{
			name:     "text field",
			body:     `{"text": "from text"}`,
			expected: "from text",
		},
		{
			name:     "unrecognized shape",
			body:     `{"weird": true}`,
			expected: PlaceholderText,
		},
		{
			name:     "empty object",
			body:     `{}`,
			expected: PlaceholderText,
		},
		{
			name:     "invalid json",
			body:     `not json at all`,
			expected: PlaceholderText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			d := NewDirect("key", server.URL, "Live")
			out := d.Ask(context.Background(), "hi", testOpts())
			if out.Status != OutcomeOK {
				t.Fatalf("Expected OK outcome, got %v (%v)", out.Status, out.Err)
			}
			if out.Text != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, out.Text)
			}
		})
	}
}

func TestDirectStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected Kind
	}{
		{"unauthorized", http.StatusUnauthorized, KindAuth},
		{"rate limited", http.StatusTooManyRequests, KindRateLimited},
		{"service unavailable", http.StatusServiceUnavailable, KindServerUnavailable},
		{"gateway timeout", http.StatusGatewayTimeout, KindServerUnavailable},
		{"internal error", http.StatusInternalServerError, KindUnknownAPI},
		{"bad request", http.StatusBadRequest, KindUnknownAPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			d := NewDirect("key", server.URL, "Live")
			out := d.Ask(context.Background(), "hi", testOpts())
			if out.Status != OutcomeFatal {
				t.Fatalf("Expected fatal outcome, got %v", out.Status)
			}
			if out.Err.Kind != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, out.Err.Kind)
			}
			if out.Err.Status != tt.status {
				t.Errorf("Expected status %d recorded, got %d", tt.status, out.Err.Status)
			}
		})
	}
}

func TestDirectServerMessageSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "model not found"}}`))
	}))
	defer server.Close()

	d := NewDirect("key", server.URL, "Live")
	out := d.Ask(context.Background(), "hi", testOpts())
	if out.Err == nil || out.Err.Message != "model not found" {
		t.Errorf("Expected server message to surface, got %v", out.Err)
	}
}

func TestDirectTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	d := NewDirect("key", server.URL, "Live")
	opts := testOpts()
	opts.Timeout = 20 * time.Millisecond

	out := d.Ask(context.Background(), "hi", opts)
	if out.Status != OutcomeFatal {
		t.Fatalf("Expected fatal outcome, got %v", out.Status)
	}
	if out.Err.Kind != KindTimeout {
		t.Errorf("Expected KindTimeout, got %v", out.Err.Kind)
	}
}

func TestDirectNetworkError(t *testing.T) {
	// point at a closed port
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	d := NewDirect("key", url, "Live")
	out := d.Ask(context.Background(), "hi", testOpts())
	if out.Status != OutcomeFatal {
		t.Fatalf("Expected fatal outcome, got %v", out.Status)
	}
	if out.Err.Kind != KindNetwork {
		t.Errorf("Expected KindNetwork, got %v", out.Err.Kind)
	}
}

func TestDirectRequestShape(t *testing.T) {
	var got chatRequest
	var auth, env string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		env = r.Header.Get("X-Environment")
		if r.URL.Path != "/ai/chat" {
			t.Errorf("Expected path /ai/chat, got %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"text": "ok"}`))
	}))
	defer server.Close()

	d := NewDirect("secret", server.URL, "Live")
	opts := testOpts()
	opts.MaxTokens = 512
	d.Ask(context.Background(), "what is up", opts)

	if auth != "Bearer secret" {
		t.Errorf("Expected bearer auth header, got %q", auth)
	}
	if env != "Live" {
		t.Errorf("Expected X-Environment Live, got %q", env)
	}
	if got.Prompt != "what is up" {
		t.Errorf("Expected prompt to pass through, got %q", got.Prompt)
	}
	if got.Stream {
		t.Error("Expected stream to be false")
	}
	if got.MaxTokens != 512 {
		t.Errorf("Expected max_tokens 512, got %d", got.MaxTokens)
	}
}
