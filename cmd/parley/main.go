package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"parley/internal/config"
	"parley/internal/history"
	"parley/internal/pipeline"
	"parley/internal/provider"
	"parley/internal/speech"
	"parley/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// log lines would tear the TUI, so they go to a file
	closeLog := redirectLog()
	defer closeLog()

	store, err := history.Open()
	if err != nil {
		log.Printf("[main] history db unavailable, conversations won't persist: %v", err)
		store = nil
	} else {
		defer store.Close()
	}

	sidecar := provider.NewSidecar(cfg.SidecarURL, cfg.ProbeRetries, cfg.ProbeDelay())
	direct := provider.NewDirect(cfg.APIKey, cfg.BaseURL, cfg.Environment)
	pipe := pipeline.New(pipeline.Config{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.Timeout(),
		MaxRetries:  cfg.MaxRetries,
		RetryDelay:  cfg.RetryDelay(),
		ForceDirect: cfg.ForceDirect,
		Environment: cfg.Environment,
	}, sidecar, direct)

	speaker := speech.NewSpeaker(cfg.SpeechURL)

	p := tea.NewProgram(
		ui.New(cfg, pipe, speaker, store),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// redirectLog sends the standard logger to a file under the state
// directory, discarding output if no file can be opened
func redirectLog() func() {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.SetOutput(io.Discard)
			return func() {}
		}
		dir = filepath.Join(home, ".local", "state")
	}
	dir = filepath.Join(dir, "parley")

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}

	f, err := os.OpenFile(filepath.Join(dir, "parley.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	log.SetOutput(f)
	return func() { f.Close() }
}
