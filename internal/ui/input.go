// internal/ui/input.go
package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidatePrompt checks a prompt before it reaches the acquisition
// pipeline. Empty and oversize prompts are rejected here; the pipeline
// is never invoked for them.
func ValidatePrompt(prompt string, maxLen int) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("message is empty")
	}
	if n := utf8.RuneCountInString(prompt); maxLen > 0 && n > maxLen {
		return fmt.Errorf("message is %d characters, the limit is %d", n, maxLen)
	}
	return nil
}
