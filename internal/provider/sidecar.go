// internal/provider/sidecar.go
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Sidecar talks to the optional local AI daemon. The daemon may not be
// installed at all; every failure here is a fall-through signal for
// the pipeline, never a terminal error.
type Sidecar struct {
	baseURL    string
	maxRetries int
	baseDelay  time.Duration

	// probeClient pings with a short budget; askClient is bounded by
	// the per-call context instead
	probeClient *http.Client
	askClient   *http.Client

	health  atomic.Int32
	mu      sync.Mutex
	probing bool
	lastErr error
}

// sidecarRequest is the daemon's chat body
type sidecarRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

// NewSidecar creates a sidecar adapter. maxRetries and baseDelay shape
// the availability probe's linear backoff.
func NewSidecar(baseURL string, maxRetries int, baseDelay time.Duration) *Sidecar {
	s := &Sidecar{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		maxRetries:  maxRetries,
		baseDelay:   baseDelay,
		probeClient: &http.Client{Timeout: 2 * time.Second},
		askClient:   &http.Client{},
	}
	s.health.Store(int32(HealthChecking))
	return s
}

// Health returns the current liveness without probing
func (s *Sidecar) Health() Health {
	return Health(s.health.Load())
}

func (s *Sidecar) setHealth(h Health) {
	s.health.Store(int32(h))
}

// LastError returns the terminal failure of the most recent probe
func (s *Sidecar) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Ensure verifies the daemon is reachable, probing with linear backoff
// (baseDelay x attempt number) when it is not. It never returns an
// error; the worst case is HealthUnhealthy. A probe already in flight
// is not duplicated: late callers observe the current state.
func (s *Sidecar) Ensure(ctx context.Context) Health {
	s.mu.Lock()
	if s.probing {
		s.mu.Unlock()
		return s.Health()
	}
	if s.Health() == HealthHealthy {
		s.mu.Unlock()
		return HealthHealthy
	}
	s.probing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.probing = false
		s.mu.Unlock()
	}()

	s.setHealth(HealthChecking)

	for attempt := 0; ; attempt++ {
		err := s.ping(ctx)
		if err == nil {
			s.setHealth(HealthHealthy)
			return HealthHealthy
		}
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()

		if attempt >= s.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			s.setHealth(HealthUnhealthy)
			return HealthUnhealthy
		case <-time.After(s.baseDelay * time.Duration(attempt+1)):
		}
	}

	s.setHealth(HealthUnhealthy)
	return HealthUnhealthy
}

// ping checks that the daemon answers on its base URL
func (s *Sidecar) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := s.probeClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status from sidecar: %s", resp.Status)
	}
	return nil
}

// Ask asks the daemon for a completion. Returns TryNext immediately,
// without a network call, when the daemon is not known to be healthy.
func (s *Sidecar) Ask(ctx context.Context, prompt string, opts CallOptions) Outcome {
	if s.Health() != HealthHealthy {
		return TryNext("sidecar unavailable")
	}

	callCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	body, err := json.Marshal(sidecarRequest{Prompt: prompt, Model: opts.Model})
	if err != nil {
		return TryNext("sidecar call failed: " + err.Error())
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, s.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return TryNext("sidecar call failed: " + err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.askClient.Do(req)
	if err != nil {
		s.setHealth(HealthUnhealthy)
		return TryNext("sidecar call failed: " + err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.setHealth(HealthUnhealthy)
		return TryNext("sidecar call failed: " + resp.Status)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return TryNext("sidecar call failed: " + err.Error())
	}

	text, ok := normalizeSidecarText(payload)
	if !ok {
		return TryNext("sidecar returned no interpretable text")
	}
	return Ok(text)
}

// normalizeSidecarText accepts the daemon's tolerated response shapes:
// a bare JSON string, {"content": "..."}, a content field holding a
// list of parts each carrying "text", or the same nested under
// "message". Everything normalizes to a single string.
func normalizeSidecarText(payload []byte) (string, bool) {
	var plain string
	if err := json.Unmarshal(payload, &plain); err == nil {
		return plain, plain != ""
	}

	var obj map[string]any
	if err := json.Unmarshal(payload, &obj); err != nil {
		return "", false
	}
	if text, ok := contentText(obj["content"]); ok {
		return text, true
	}
	if msg, ok := obj["message"].(map[string]any); ok {
		if text, ok := contentText(msg["content"]); ok {
			return text, true
		}
	}
	return "", false
}

// contentText flattens a content field: plain string or list of parts
func contentText(v any) (string, bool) {
	switch c := v.(type) {
	case string:
		return c, c != ""
	case []any:
		var sb strings.Builder
		for _, part := range c {
			p, ok := part.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := p["text"].(string); ok {
				sb.WriteString(text)
			}
		}
		return sb.String(), sb.Len() > 0
	}
	return "", false
}
