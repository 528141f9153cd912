// internal/ui/history.go
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"parley/internal/history"
	"parley/internal/provider"
)

// ViewMode represents the current view state
type ViewMode int

const (
	ViewNormal ViewMode = iota
	ViewHelp
	ViewHistory
)

// HistoryState holds the state for the conversation history browser
type HistoryState struct {
	conversations []history.Conversation
	cursor        int
	scrollTop     int
	maxHeight     int
}

// NewHistoryState creates a new history state
func NewHistoryState() *HistoryState {
	return &HistoryState{
		conversations: nil,
		cursor:        0,
		scrollTop:     0,
		maxHeight:     20, // default, will be updated based on terminal size
	}
}

// Up moves the cursor up
func (h *HistoryState) Up() {
	if h.cursor > 0 {
		h.cursor--
		// Adjust scroll if cursor goes above visible area
		if h.cursor < h.scrollTop {
			h.scrollTop = h.cursor
		}
	}
}

// Down moves the cursor down
func (h *HistoryState) Down() {
	if h.cursor < len(h.conversations)-1 {
		h.cursor++
		// Adjust scroll if cursor goes below visible area
		if h.cursor >= h.scrollTop+h.maxHeight {
			h.scrollTop = h.cursor - h.maxHeight + 1
		}
	}
}

// Selected returns the currently selected conversation, or nil if none
func (h *HistoryState) Selected() *history.Conversation {
	if h.cursor >= 0 && h.cursor < len(h.conversations) {
		return &h.conversations[h.cursor]
	}
	return nil
}

// Load loads conversations from the store
func (h *HistoryState) Load(store *history.Store) error {
	if store == nil {
		return fmt.Errorf("history store not available")
	}
	conversations, err := store.ListConversations()
	if err != nil {
		return err
	}
	h.conversations = conversations
	h.cursor = 0
	h.scrollTop = 0
	return nil
}

// SetMaxHeight updates the max visible height
func (h *HistoryState) SetMaxHeight(height int) {
	h.maxHeight = height - 10 // Leave room for header/footer
	if h.maxHeight < 5 {
		h.maxHeight = 5
	}
}

// Render renders the history browser overlay
func (h *HistoryState) Render(width, height int) string {
	var content strings.Builder

	// Title
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Render("CONVERSATION HISTORY")
	content.WriteString(title)
	content.WriteString("\n")
	content.WriteString(DimStyle.Render("Select a past conversation to resume"))
	content.WriteString("\n\n")

	if len(h.conversations) == 0 {
		content.WriteString(DimStyle.Render("No past conversations found."))
		content.WriteString("\n\n")
		content.WriteString(DimStyle.Render("Start chatting and it will appear here."))
	} else {
		// Calculate visible range
		visibleEnd := h.scrollTop + h.maxHeight
		if visibleEnd > len(h.conversations) {
			visibleEnd = len(h.conversations)
		}

		// Header row
		header := fmt.Sprintf("  %-8s  %-30s  %s", "ID", "Title", "Updated")
		content.WriteString(DimStyle.Render(header))
		content.WriteString("\n")
		content.WriteString(DimStyle.Render(strings.Repeat("-", 62)))
		content.WriteString("\n")

		// Conversation rows
		for i := h.scrollTop; i < visibleEnd; i++ {
			c := h.conversations[i]

			// Truncate title if too long
			title := c.Title
			if len(title) > 28 {
				title = title[:28] + ".."
			}

			// Format time
			timeStr := c.UpdatedAt.Format("2006-01-02 15:04")
			if time.Since(c.UpdatedAt) < 24*time.Hour {
				timeStr = c.UpdatedAt.Format("Today 15:04")
			}

			// Build the line
			cursor := "  "
			lineStyle := DimStyle
			if i == h.cursor {
				cursor = "> "
				lineStyle = lipgloss.NewStyle().Foreground(Cyan)
			}

			id := c.ID
			if len(id) > 8 {
				id = id[:8]
			}
			line := fmt.Sprintf("%-8s  %-30s  %s", id, title, timeStr)

			content.WriteString(cursor)
			content.WriteString(lineStyle.Render(line))
			content.WriteString("\n")
		}

		// Scroll indicator
		if len(h.conversations) > h.maxHeight {
			scrollInfo := fmt.Sprintf("Showing %d-%d of %d",
				h.scrollTop+1, visibleEnd, len(h.conversations))
			content.WriteString("\n")
			content.WriteString(DimStyle.Render(scrollInfo))
		}
	}

	// Footer with keybindings
	content.WriteString("\n\n")
	footer := DimStyle.Render("Up/Down: Navigate | Enter: Resume | Esc: Cancel")
	content.WriteString(footer)

	// Build the overlay box
	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(1, 2).
		MaxWidth(width - 10).
		MaxHeight(height - 4)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlayStyle.Render(content.String()),
	)
}

// ResumeConversation loads a stored conversation into a fresh Session
func ResumeConversation(store *history.Store, conversationID string) (*Session, error) {
	if store == nil {
		return nil, fmt.Errorf("history store not available")
	}

	conv, err := store.GetConversation(conversationID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	stored, err := store.GetMessages(conversationID)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	session := NewSession()
	session.ConversationID = conv.ID
	session.Title = conv.Title
	session.CreatedAt = conv.CreatedAt

	msgs := make([]provider.Message, 0, len(stored))
	for _, m := range stored {
		msgs = append(msgs, provider.Message{
			Role:      provider.Role(m.Role),
			Content:   m.Content,
			Timestamp: m.CreatedAt,
		})
	}
	session.LoadMessages(msgs)
	return session, nil
}
