// internal/speech/speaker.go
// Spoken playback of assistant responses via the local TTS daemon.
// A thin wrapper over a capability the daemon owns: we hand it text
// and a voice, and track whether playback is running.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync/atomic"
	"time"
)

// Voice describes one synthetic voice the daemon offers
type Voice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Lang string `json:"lang"`
}

// sayRequest is the daemon's playback body
type sayRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// Speaker handles communication with the TTS daemon
type Speaker struct {
	endpoint string
	// the daemon replies when playback finishes, so the request can
	// run as long as the speech does
	client  *http.Client
	enabled bool
	voice   string

	speaking atomic.Bool

	connErrorLogged bool // only log connection errors once
}

// NewSpeaker creates a speaker talking to the daemon at endpoint
func NewSpeaker(endpoint string) *Speaker {
	return &Speaker{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 120 * time.Second},
		enabled:  true,
	}
}

// SetEnabled enables or disables spoken playback
func (s *Speaker) SetEnabled(enabled bool) {
	s.enabled = enabled
}

// Enabled reports whether playback is on
func (s *Speaker) Enabled() bool {
	return s.enabled
}

// SetVoice selects the voice for subsequent playback
func (s *Speaker) SetVoice(id string) {
	s.voice = id
}

// SelectedVoice returns the selected voice ID, empty for the default
func (s *Speaker) SelectedVoice() string {
	return s.voice
}

// Speaking reports whether playback is in progress
func (s *Speaker) Speaking() bool {
	return s.speaking.Load()
}

// Say sends text to the daemon for playback, fire and forget. The
// speaking flag holds for the duration of the daemon's playback.
func (s *Speaker) Say(text string) {
	if !s.enabled || text == "" {
		return
	}

	go func() {
		s.speaking.Store(true)
		defer s.speaking.Store(false)
		s.send(sayRequest{Text: text, Voice: s.voice})
	}()
}

// send performs the playback POST (runs in goroutine)
func (s *Speaker) send(req sayRequest) {
	body, err := json.Marshal(req)
	if err != nil {
		log.Printf("[speech] failed to marshal request: %v", err)
		return
	}

	resp, err := s.client.Post(s.endpoint+"/say", "application/json", bytes.NewReader(body))
	if err != nil {
		// connection failures are expected when the daemon isn't
		// running; log the first and go quiet
		if !s.connErrorLogged {
			log.Printf("[speech] TTS daemon unreachable: %v", err)
			s.connErrorLogged = true
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Printf("[speech] playback rejected with status %d", resp.StatusCode)
	}
}

// Stop interrupts any in-progress playback
func (s *Speaker) Stop() {
	go func() {
		resp, err := s.client.Post(s.endpoint+"/stop", "application/json", nil)
		if err != nil {
			return
		}
		resp.Body.Close()
	}()
	s.speaking.Store(false)
}

// Voices fetches the voices the daemon has available
func (s *Speaker) Voices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"/voices", nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var voices []Voice
	if err := json.NewDecoder(resp.Body).Decode(&voices); err != nil {
		return nil, err
	}
	return voices, nil
}
