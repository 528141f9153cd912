// internal/export/json.go
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Record is one exported message
type Record struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript contains the data needed to export a conversation
type Transcript struct {
	ID        string
	Title     string
	CreatedAt time.Time
	Messages  []Record
}

// JSON renders the canonical export artifact: a JSON array of
// {role, content, timestamp} records, one per message, in original
// order with text preserved exactly.
func JSON(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}
	records := t.Messages
	if records == nil {
		records = []Record{}
	}
	return json.MarshalIndent(records, "", "  ")
}

// WriteJSON writes the artifact into dir, named with the current date
func WriteJSON(t *Transcript, dir string) (string, error) {
	data, err := JSON(t)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	filename := fmt.Sprintf("parley-%s.json", time.Now().Format("2006-01-02"))
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}
