// internal/speech/speaker_test.go
package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestSayPostsText(t *testing.T) {
	got := make(chan sayRequest, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/say" {
			t.Errorf("Expected path /say, got %s", r.URL.Path)
		}
		var req sayRequest
		json.NewDecoder(r.Body).Decode(&req)
		got <- req
	}))
	defer server.Close()

	s := NewSpeaker(server.URL)
	s.SetVoice("nova")
	s.Say("hello world")

	select {
	case req := <-got:
		if req.Text != "hello world" {
			t.Errorf("Expected text to pass through, got %q", req.Text)
		}
		if req.Voice != "nova" {
			t.Errorf("Expected the selected voice, got %q", req.Voice)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a playback request")
	}
}

func TestSayDisabledSkipsCall(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	s := NewSpeaker(server.URL)
	s.SetEnabled(false)
	s.Say("quiet please")

	time.Sleep(100 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("Expected no call while disabled, got %d", calls.Load())
	}
}

func TestSayEmptyTextSkipsCall(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	s := NewSpeaker(server.URL)
	s.Say("")

	time.Sleep(100 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("Expected no call for empty text, got %d", calls.Load())
	}
}

func TestSpeakingFlagDuringPlayback(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
	}))
	defer server.Close()

	s := NewSpeaker(server.URL)
	s.Say("long speech")

	<-started
	if !s.Speaking() {
		t.Error("Expected Speaking while the daemon plays")
	}

	close(release)
	deadline := time.Now().Add(2 * time.Second)
	for s.Speaking() {
		if time.Now().After(deadline) {
			t.Fatal("Expected Speaking to clear after playback")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStopClearsSpeaking(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	s := NewSpeaker(server.URL)
	s.speaking.Store(true)
	s.Stop()
	if s.Speaking() {
		t.Error("Expected Stop to clear the speaking flag")
	}
}

func TestVoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/voices" {
			t.Errorf("Expected path /voices, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]Voice{
			{ID: "nova", Name: "Nova", Lang: "en"},
			{ID: "astra", Name: "Astra", Lang: "en"},
		})
	}))
	defer server.Close()

	s := NewSpeaker(server.URL)
	voices, err := s.Voices(context.Background())
	if err != nil {
		t.Fatalf("Expected voices, got %v", err)
	}
	if len(voices) != 2 {
		t.Fatalf("Expected 2 voices, got %d", len(voices))
	}
	if voices[0].ID != "nova" {
		t.Errorf("Unexpected first voice: %+v", voices[0])
	}
}

func TestVoicesDaemonDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	s := NewSpeaker(url)
	if _, err := s.Voices(context.Background()); err == nil {
		t.Error("Expected an error when the daemon is unreachable")
	}
}
