// Package commands handles slash command parsing for the parley TUI.
package commands

import (
	"strconv"
	"strings"
)

// Command interface for all command types
type Command interface {
	Type() string
}

// Help shows the help overlay
type Help struct{}

func (Help) Type() string { return "help" }

// NewChat starts a fresh conversation
type NewChat struct {
	Title string
}

func (NewChat) Type() string { return "new" }

// Clear wipes the visible transcript of the current conversation
type Clear struct{}

func (Clear) Type() string { return "clear" }

// Rename retitles the current conversation
type Rename struct {
	Title string
}

func (Rename) Type() string { return "rename" }

// Export writes the conversation to disk. Format is "json" or "md".
type Export struct {
	Format string
}

func (Export) Type() string { return "export" }

// CopyBlock copies code block n (1-based) to the clipboard.
// Index 0 means the most recent block.
type CopyBlock struct {
	Index int
}

func (CopyBlock) Type() string { return "copy" }

// Say speaks assistant message n aloud; index 0 means the latest
type Say struct {
	Index int
}

func (Say) Type() string { return "say" }

// SetVoice selects the playback voice
type SetVoice struct {
	ID string
}

func (SetVoice) Type() string { return "voice" }

// ListVoices lists the available playback voices
type ListVoices struct{}

func (ListVoices) Type() string { return "voices" }

// Mute disables spoken playback
type Mute struct{}

func (Mute) Type() string { return "mute" }

// Unmute re-enables spoken playback
type Unmute struct{}

func (Unmute) Type() string { return "unmute" }

// ToggleDirect flips the force-direct-transport flag
type ToggleDirect struct{}

func (ToggleDirect) Type() string { return "direct" }

// HealthCheck reports the sidecar's liveness
type HealthCheck struct{}

func (HealthCheck) Type() string { return "health" }

// ShowHistory opens the conversation history browser
type ShowHistory struct{}

func (ShowHistory) Type() string { return "history" }

// Quit exits the program
type Quit struct{}

func (Quit) Type() string { return "quit" }

// ParseError represents a command parsing error
type ParseError struct {
	Message string
}

func (ParseError) Type() string { return "error" }

// Parse parses user input and returns the appropriate Command.
// Returns nil if the input is not a slash command.
func Parse(input string) Command {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return nil
	}

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "/help":
		return Help{}

	case "/new":
		return NewChat{Title: strings.Join(args, " ")}

	case "/clear":
		return Clear{}

	case "/rename":
		title := strings.Join(args, " ")
		if title == "" {
			return ParseError{Message: "/rename requires a title"}
		}
		return Rename{Title: title}

	case "/export":
		format := "json"
		if len(args) > 0 {
			format = strings.ToLower(args[0])
		}
		if format != "json" && format != "md" {
			return ParseError{Message: "/export takes json or md"}
		}
		return Export{Format: format}

	case "/copy":
		n, err := indexArg(args)
		if err != nil {
			return ParseError{Message: "/copy takes a block number"}
		}
		return CopyBlock{Index: n}

	case "/say":
		n, err := indexArg(args)
		if err != nil {
			return ParseError{Message: "/say takes a message number"}
		}
		return Say{Index: n}

	case "/voice":
		if len(args) == 0 {
			return ParseError{Message: "/voice requires a voice id"}
		}
		return SetVoice{ID: args[0]}

	case "/voices":
		return ListVoices{}

	case "/mute":
		return Mute{}

	case "/unmute":
		return Unmute{}

	case "/direct":
		return ToggleDirect{}

	case "/health":
		return HealthCheck{}

	case "/history":
		return ShowHistory{}

	case "/quit", "/exit":
		return Quit{}

	default:
		return ParseError{Message: "unknown command: " + cmd}
	}
}

// indexArg parses an optional 1-based index argument; missing means 0
// (the latest)
func indexArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}

// HelpText returns the help text for all available commands.
func HelpText() string {
	return `Available commands:
  /help           - Show this help
  /new [title]    - Start a new conversation
  /clear          - Clear the current transcript
  /rename <title> - Rename the current conversation
  /export [json|md] - Export the conversation to disk
  /copy [n]       - Copy code block n (latest if omitted)
  /say [n]        - Speak assistant message n aloud
  /voice <id>     - Select a playback voice
  /voices         - List available playback voices
  /mute, /unmute  - Toggle spoken playback
  /direct         - Toggle force-direct transport
  /health         - Show sidecar health
  /history        - Browse past conversations
  /quit           - Exit`
}
