// internal/export/export_test.go
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sampleTranscript() *Transcript {
	base := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return &Transcript{
		ID:        "conv-1",
		Title:     "Sample Chat",
		CreatedAt: base,
		Messages: []Record{
			{Role: "user", Content: "What is Go?", Timestamp: base},
			{Role: "assistant", Content: "A programming language.", Timestamp: base.Add(time.Minute)},
		},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	data, err := JSON(sampleTranscript())
	if err != nil {
		t.Fatalf("Failed to render JSON: %v", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("Export is not valid JSON: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Role != "user" || records[0].Content != "What is Go?" {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
	if records[1].Role != "assistant" || records[1].Content != "A programming language." {
		t.Errorf("Unexpected second record: %+v", records[1])
	}
	if !records[1].Timestamp.After(records[0].Timestamp) {
		t.Error("Expected timestamps to survive the round trip")
	}
}

func TestJSONFieldNames(t *testing.T) {
	data, err := JSON(sampleTranscript())
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"role"`, `"content"`, `"timestamp"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("Expected field %s in export", field)
		}
	}
}

func TestJSONEmptyTranscript(t *testing.T) {
	data, err := JSON(&Transcript{ID: "x", Title: "Empty"})
	if err != nil {
		t.Fatalf("Expected empty transcript to export, got %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("Expected an empty JSON array, got %q", string(data))
	}
}

func TestJSONNilTranscript(t *testing.T) {
	if _, err := JSON(nil); err == nil {
		t.Error("Expected an error for a nil transcript")
	}
}

func TestWriteJSONFilename(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteJSON(sampleTranscript(), dir)
	if err != nil {
		t.Fatalf("Failed to write export: %v", err)
	}

	expected := fmt.Sprintf("parley-%s.json", time.Now().Format("2006-01-02"))
	if filepath.Base(path) != expected {
		t.Errorf("Expected filename %q, got %q", expected, filepath.Base(path))
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected the file to exist: %v", err)
	}
}

func TestMarkdownContent(t *testing.T) {
	md := Markdown(sampleTranscript())

	if !strings.Contains(md, "# Sample Chat") {
		t.Error("Expected the title heading")
	}
	if !strings.Contains(md, "`conv-1`") {
		t.Error("Expected the conversation ID")
	}
	if !strings.Contains(md, "User") || !strings.Contains(md, "Assistant") {
		t.Error("Expected role headings")
	}
	if !strings.Contains(md, "> What is Go?") {
		t.Error("Expected plain content to be blockquoted")
	}
}

func TestMarkdownKeepsCodeFences(t *testing.T) {
	tr := sampleTranscript()
	tr.Messages[1].Content = "Here:\n```go\nfmt.Println(\"hi\")\n```"

	md := Markdown(tr)
	if !strings.Contains(md, "```go") {
		t.Error("Expected code fences to pass through")
	}
	if strings.Contains(md, "> ```go") {
		t.Error("Expected fenced content not to be blockquoted")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Simple Chat", "simple-chat"},
		{"What?! About *this*", "what-about-this"},
		{"---", "conversation"},
		{"", "conversation"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.input); got != tt.expected {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}
