// internal/export/markdown.go
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Markdown generates a formatted markdown transcript
func Markdown(t *Transcript) string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(t.Title)
	sb.WriteString("\n\n")

	sb.WriteString("---\n\n")
	sb.WriteString(fmt.Sprintf("**Conversation ID:** `%s`\n\n", t.ID))
	sb.WriteString(fmt.Sprintf("**Created:** %s\n\n", t.CreatedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString("---\n\n")

	sb.WriteString("## Transcript\n\n")

	for i, msg := range t.Messages {
		ts := msg.Timestamp.Format("15:04:05")
		sb.WriteString(fmt.Sprintf("### [%s] %s\n\n", ts, formatRole(msg.Role)))

		content := strings.TrimSpace(msg.Content)
		if containsCodeBlock(content) {
			// content already has code fences, render as-is
			sb.WriteString(content)
		} else {
			// wrap in blockquote for visual distinction
			for _, line := range strings.Split(content, "\n") {
				sb.WriteString("> ")
				sb.WriteString(line)
				sb.WriteString("\n")
			}
		}
		sb.WriteString("\n")

		if i < len(t.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported from Parley on %s*\n", time.Now().Format("2006-01-02 15:04:05")))

	return sb.String()
}

// WriteMarkdown writes a markdown transcript into dir
func WriteMarkdown(t *Transcript, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	datePart := time.Now().Format("2006-01-02")
	namePart := sanitizeFilename(t.Title)
	filename := fmt.Sprintf("%s-%s.md", datePart, namePart)
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, []byte(Markdown(t)), 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// formatRole returns a display name for a message role
func formatRole(role string) string {
	switch role {
	case "user":
		return "User"
	case "assistant":
		return "Assistant"
	case "system":
		return "System"
	default:
		return role
	}
}

// sanitizeFilename removes/replaces characters unsuitable for filenames
func sanitizeFilename(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")

	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '-' || r == '_':
			sb.WriteRune(r)
		}
	}

	result := sb.String()
	for strings.Contains(result, "--") {
		result = strings.ReplaceAll(result, "--", "-")
	}
	result = strings.Trim(result, "-")

	if result == "" {
		result = "conversation"
	}
	if len(result) > 50 {
		result = result[:50]
	}
	return result
}

// containsCodeBlock checks if content already has markdown code fences
func containsCodeBlock(content string) bool {
	return strings.Contains(content, "```")
}
