// internal/ui/session.go
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"parley/internal/codeblock"
	"parley/internal/provider"
)

// Entry is one rendered line item of the transcript. Errors stay in
// the visible transcript but are never persisted or exported.
type Entry struct {
	Msg     provider.Message
	IsError bool
}

// Session is the visible state of one conversation: the committed
// transcript plus, while a reveal is running, the partially disclosed
// response.
type Session struct {
	ConversationID string
	Title          string
	CreatedAt      time.Time
	Entries        []Entry

	// reveal in progress; pendingFull is the complete response text so
	// an interrupted reveal can still commit verbatim
	revealing    bool
	revealPrefix string
	pendingFull  string
}

// NewSession creates an empty, untitled session
func NewSession() *Session {
	return &Session{CreatedAt: time.Now()}
}

// AddUser appends the user's prompt to the transcript
func (s *Session) AddUser(content string) {
	s.Entries = append(s.Entries, Entry{Msg: provider.Message{
		Role:      provider.RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}})
}

// AddAssistant appends a completed assistant response
func (s *Session) AddAssistant(content string) {
	s.Entries = append(s.Entries, Entry{Msg: provider.Message{
		Role:      provider.RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	}})
}

// AddSystem appends an informational system line
func (s *Session) AddSystem(content string) {
	s.Entries = append(s.Entries, Entry{Msg: provider.Message{
		Role:      provider.RoleSystem,
		Content:   content,
		Timestamp: time.Now(),
	}})
}

// AddError appends a failure notice rendered in the error style
func (s *Session) AddError(content string) {
	s.Entries = append(s.Entries, Entry{
		Msg: provider.Message{
			Role:      provider.RoleSystem,
			Content:   content,
			Timestamp: time.Now(),
		},
		IsError: true,
	})
}

// BeginReveal starts displaying fullText word by word
func (s *Session) BeginReveal(fullText string) {
	s.revealing = true
	s.revealPrefix = ""
	s.pendingFull = fullText
}

// SetRevealPrefix updates the visible portion of the in-flight reveal
func (s *Session) SetRevealPrefix(prefix string) {
	s.revealPrefix = prefix
}

// Revealing reports whether a reveal is in progress
func (s *Session) Revealing() bool {
	return s.revealing
}

// CommitReveal finishes the reveal, appending the complete response to
// the transcript. The committed text is always the full response, even
// when the reveal was cut short.
func (s *Session) CommitReveal() string {
	full := s.pendingFull
	s.revealing = false
	s.revealPrefix = ""
	s.pendingFull = ""
	s.AddAssistant(full)
	return full
}

// Clear wipes the visible transcript, keeping the conversation identity
func (s *Session) Clear() {
	s.Entries = nil
	s.revealing = false
	s.revealPrefix = ""
	s.pendingFull = ""
}

// Messages returns the committed transcript messages, errors excluded
func (s *Session) Messages() []provider.Message {
	var msgs []provider.Message
	for _, e := range s.Entries {
		if e.IsError {
			continue
		}
		msgs = append(msgs, e.Msg)
	}
	return msgs
}

// AssistantContents returns the text of every committed assistant
// response, oldest first
func (s *Session) AssistantContents() []string {
	var contents []string
	for _, e := range s.Entries {
		if e.Msg.Role == provider.RoleAssistant {
			contents = append(contents, e.Msg.Content)
		}
	}
	return contents
}

// LoadMessages replaces the transcript with stored history
func (s *Session) LoadMessages(msgs []provider.Message) {
	s.Entries = nil
	for _, m := range msgs {
		s.Entries = append(s.Entries, Entry{Msg: m})
	}
}

// Render produces the transcript view at the given width
func (s *Session) Render(width int) string {
	var sb strings.Builder

	renderer := markdownRenderer(width)

	for _, e := range s.Entries {
		writeEntry(&sb, e, renderer)
	}

	if s.revealing {
		header := AssistantStyle.Render(fmt.Sprintf("[%s] %s:", time.Now().Format("15:04"), RoleName("assistant")))
		sb.WriteString(header)
		sb.WriteString("\n")
		// the in-flight prefix renders plain; markdown styling waits
		// for the committed message
		writeIndented(&sb, s.revealPrefix, nil)
		sb.WriteString(DimStyle.Render("▌"))
		sb.WriteString("\n\n")
	}

	return sb.String()
}

func writeEntry(sb *strings.Builder, e Entry, renderer *glamour.TermRenderer) {
	ts := e.Msg.Timestamp.Format("15:04")

	var header string
	if e.IsError {
		header = ErrorStyle.Render(fmt.Sprintf("[%s] Error:", ts))
	} else {
		style := RoleStyle(string(e.Msg.Role))
		header = style.Render(fmt.Sprintf("[%s] %s:", ts, RoleName(string(e.Msg.Role))))
	}
	sb.WriteString(header)
	sb.WriteString("\n")

	switch {
	case e.IsError:
		writeIndented(sb, e.Msg.Content, &ErrorStyle)
	case e.Msg.Role == provider.RoleAssistant:
		writeAssistant(sb, e.Msg.Content, renderer)
	default:
		writeIndented(sb, e.Msg.Content, nil)
	}
	sb.WriteString("\n")
}

// writeAssistant interleaves glamour-rendered prose with highlighted
// code blocks, keeping the blocks out of glamour's hands so chroma
// controls their coloring
func writeAssistant(sb *strings.Builder, content string, renderer *glamour.TermRenderer) {
	for _, seg := range codeblock.Split(content) {
		if seg.Block != nil {
			sb.WriteString("  ")
			sb.WriteString(DimStyle.Render("```" + seg.Block.Language))
			sb.WriteString("\n")
			highlighted := codeblock.Highlight(seg.Block.Code, seg.Block.Language)
			for _, line := range strings.Split(strings.TrimRight(highlighted, "\n"), "\n") {
				sb.WriteString("  ")
				sb.WriteString(line)
				sb.WriteString("\n")
			}
			sb.WriteString("  ")
			sb.WriteString(DimStyle.Render("```"))
			sb.WriteString("\n")
			continue
		}

		if strings.TrimSpace(seg.Prose) == "" {
			continue
		}
		if renderer != nil {
			if out, err := renderer.Render(seg.Prose); err == nil {
				sb.WriteString(strings.TrimRight(out, "\n"))
				sb.WriteString("\n")
				continue
			}
		}
		writeIndented(sb, seg.Prose, nil)
	}
}

// writeIndented writes content two spaces in, one line at a time
func writeIndented(sb *strings.Builder, content string, style *lipgloss.Style) {
	for _, line := range strings.Split(content, "\n") {
		sb.WriteString("  ")
		if style != nil {
			sb.WriteString(style.Render(line))
		} else {
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}
}

// markdownRenderer builds a glamour renderer sized to the viewport, or
// nil when one can't be constructed
func markdownRenderer(width int) *glamour.TermRenderer {
	wrap := width - 4
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return r
}
