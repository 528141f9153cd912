// internal/provider/direct.go
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// PlaceholderText stands in for a 2xx response whose body carried no
// recognizable text field. An empty-content success is still a success.
const PlaceholderText = "(the service returned an empty response)"

// maxResponseSize caps how much of a response body we read
const maxResponseSize = 10 * 1024 * 1024

// chatRequest is the wire body for the gateway chat endpoint
type chatRequest struct {
	Prompt           string  `json:"prompt"`
	Model            string  `json:"model"`
	Stream           bool    `json:"stream"`
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens"`
	TopP             float64 `json:"top_p"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
	PresencePenalty  float64 `json:"presence_penalty"`
}

// chatEnvelope covers the success shapes the gateway is known to emit
type chatEnvelope struct {
	Message *struct {
		Content string `json:"content"`
	} `json:"message"`
	Response string `json:"response"`
	Text     string `json:"text"`
}

// apiError is the error body shape, when the gateway bothers with one
type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// Direct calls the remote chat gateway over plain HTTP, bypassing the
// sidecar. It performs exactly one call per Ask; retry belongs to the
// pipeline.
type Direct struct {
	apiKey      string
	baseURL     string
	environment string
	client      *http.Client
}

// NewDirect creates a direct transport adapter. The per-call timeout
// comes from CallOptions, so the underlying client carries none.
func NewDirect(apiKey, baseURL, environment string) *Direct {
	return &Direct{
		apiKey:      strings.TrimSpace(apiKey),
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		environment: environment,
		client:      &http.Client{},
	}
}

// Configured reports whether a credential is present
func (d *Direct) Configured() bool {
	return d.apiKey != ""
}

// Ask performs one gateway call with a hard timeout. The in-flight
// request is cancelled at the timeout boundary.
func (d *Direct) Ask(ctx context.Context, prompt string, opts CallOptions) Outcome {
	if !d.Configured() {
		return Fatal(Classify(KindAuth, "no API key configured"))
	}

	callCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Prompt:      prompt,
		Model:       opts.Model,
		Stream:      false,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		TopP:        1,
	})
	if err != nil {
		return Fatal(Classify(KindUnknownAPI, "marshal request: "+err.Error()))
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, d.baseURL+"/ai/chat", bytes.NewReader(body))
	if err != nil {
		return Fatal(Classify(KindUnknownAPI, "build request: "+err.Error()))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("X-Environment", d.environment)

	resp, err := d.client.Do(req)
	if err != nil {
		if isTimeout(err) && ctx.Err() == nil {
			return Fatal(Classify(KindTimeout, fmt.Sprintf("call exceeded %s", opts.Timeout)))
		}
		return Fatal(&ClassifiedError{Kind: KindNetwork, Message: err.Error(), Cause: err})
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return Fatal(&ClassifiedError{Kind: KindNetwork, Message: "read response: " + err.Error(), Cause: err})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Fatal(classifyStatus(resp.StatusCode, payload))
	}

	return Ok(extractText(payload))
}

// classifyStatus maps an HTTP error response onto the taxonomy.
// 401 is always auth and 429 always rate limiting, whatever the body.
func classifyStatus(status int, payload []byte) *ClassifiedError {
	switch status {
	case http.StatusUnauthorized:
		return &ClassifiedError{Kind: KindAuth, Message: "authentication rejected", Status: status}
	case http.StatusTooManyRequests:
		return &ClassifiedError{Kind: KindRateLimited, Message: "rate limited by gateway", Status: status}
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &ClassifiedError{Kind: KindServerUnavailable, Message: "gateway unavailable", Status: status}
	default:
		msg := serverMessage(payload)
		if msg == "" {
			msg = fmt.Sprintf("unexpected status %d", status)
		}
		return &ClassifiedError{Kind: KindUnknownAPI, Message: msg, Status: status}
	}
}

// serverMessage digs a human message out of an error body, if any
func serverMessage(payload []byte) string {
	var e apiError
	if err := json.Unmarshal(payload, &e); err != nil {
		return ""
	}
	if e.Error.Message != "" {
		return e.Error.Message
	}
	return e.Message
}

// extractText pulls response text out of the tolerated envelope
// shapes: message.content, response, or text, in that order.
func extractText(payload []byte) string {
	var env chatEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return PlaceholderText
	}
	switch {
	case env.Message != nil && env.Message.Content != "":
		return env.Message.Content
	case env.Response != "":
		return env.Response
	case env.Text != "":
		return env.Text
	}
	return PlaceholderText
}

// isTimeout distinguishes a deadline hit from other transport errors
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
