// internal/ui/help.go
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Help overlay content and rendering

var (
	// Help section title style
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Cyan).
			MarginBottom(1)

	// Help section header style
	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Yellow).
				MarginTop(1)

	// Help key style (for keybindings)
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	// Help command style (for slash commands)
	helpCmdStyle = lipgloss.NewStyle().
			Foreground(Magenta)

	// Help description style
	helpDescStyle = lipgloss.NewStyle().
			Foreground(White)

	// Help dim style (for secondary info)
	helpDimStyle = lipgloss.NewStyle().
			Foreground(Dim)

	// Status indicator styles for help
	helpStatusOK   = lipgloss.NewStyle().Foreground(Green).Bold(true)
	helpStatusWarn = lipgloss.NewStyle().Foreground(Orange).Bold(true)
	helpStatusDim  = lipgloss.NewStyle().Foreground(Dim)
	helpStatusErr  = lipgloss.NewStyle().Foreground(Red).Bold(true)
)

// HelpContent returns the formatted help overlay content
func HelpContent(width, height int) string {
	var content strings.Builder

	// Title
	title := helpTitleStyle.Render("PARLEY HELP")
	content.WriteString(title)
	content.WriteString("\n\n")

	// Keybindings section
	content.WriteString(helpSectionStyle.Render("KEYBINDINGS"))
	content.WriteString("\n\n")

	keybindings := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send the typed message"},
		{"Alt+H", "Browse past conversations (history)"},
		{"PgUp / PgDn", "Scroll the transcript"},
		{"F1 / ?", "Toggle this help overlay"},
		{"Esc", "Close help or history / Return to input"},
		{"Ctrl+C", "Quit Parley"},
	}

	for _, kb := range keybindings {
		key := helpKeyStyle.Width(14).Render(kb.key)
		desc := helpDescStyle.Render(kb.desc)
		content.WriteString("  " + key + "  " + desc + "\n")
	}

	// Slash commands section
	content.WriteString("\n")
	content.WriteString(helpSectionStyle.Render("SLASH COMMANDS"))
	content.WriteString("\n\n")

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help", "Show this help overlay"},
		{"/new [title]", "Start a new conversation (optional title)"},
		{"/clear", "Clear the current transcript"},
		{"/rename <title>", "Rename the current conversation"},
		{"/export [json|md]", "Export the conversation to disk"},
		{"/copy [n]", "Copy code block n to the clipboard (latest if omitted)"},
		{"/say [n]", "Speak assistant message n aloud"},
		{"/voice <id>", "Select a playback voice"},
		{"/voices", "List available playback voices"},
		{"/mute, /unmute", "Toggle spoken playback"},
		{"/direct", "Toggle force-direct transport"},
		{"/health", "Show sidecar health"},
		{"/history", "Browse past conversations"},
		{"/quit", "Exit Parley"},
	}

	for _, cmd := range commands {
		cmdStr := helpCmdStyle.Width(20).Render(cmd.cmd)
		desc := helpDescStyle.Render(cmd.desc)
		content.WriteString("  " + cmdStr + "  " + desc + "\n")
	}

	// Status indicators section
	content.WriteString("\n")
	content.WriteString(helpSectionStyle.Render("STATUS INDICATORS"))
	content.WriteString("\n\n")

	indicators := []struct {
		symbol string
		style  lipgloss.Style
		desc   string
	}{
		{"●", helpStatusOK, "Sidecar healthy - responses come from the local capability"},
		{"●", helpStatusWarn, "Probing - sidecar liveness is being checked"},
		{"○", helpStatusDim, "Sidecar down - responses go through the direct gateway"},
		{"✗", helpStatusErr, "No path - neither sidecar nor gateway is configured"},
	}

	for _, ind := range indicators {
		symbol := ind.style.Width(3).Render(ind.symbol)
		desc := helpDescStyle.Render(ind.desc)
		content.WriteString("  " + symbol + "  " + desc + "\n")
	}

	// Response path section
	content.WriteString("\n")
	content.WriteString(helpSectionStyle.Render("HOW RESPONSES ARRIVE"))
	content.WriteString("\n\n")

	notes := []string{
		"Parley tries the local sidecar first, then the direct gateway.",
		"",
		"1. A healthy sidecar answers locally with no API key needed",
		"2. Otherwise the configured gateway is called directly",
		"3. Transient failures retry automatically on a fixed delay",
		"4. Outside the Live environment a mock response stands in",
		"",
		"Use /direct to skip the sidecar and /health to check on it.",
	}

	for _, line := range notes {
		if line == "" {
			content.WriteString("\n")
		} else {
			content.WriteString("  " + helpDimStyle.Render(line) + "\n")
		}
	}

	// Footer
	content.WriteString("\n")
	footer := helpDimStyle.Render("Press F1 or Esc to close this help")
	content.WriteString(lipgloss.PlaceHorizontal(width-8, lipgloss.Center, footer))

	// Build the overlay box
	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(1, 3).
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

// renderHelp renders the help overlay (called from app.go)
func (m Model) renderHelp() string {
	return HelpContent(m.width, m.height)
}
