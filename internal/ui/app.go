// internal/ui/app.go
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"parley/internal/clipboard"
	"parley/internal/codeblock"
	"parley/internal/commands"
	"parley/internal/config"
	"parley/internal/export"
	"parley/internal/history"
	"parley/internal/pipeline"
	"parley/internal/provider"
	"parley/internal/reveal"
	"parley/internal/speech"
)

// acquireDoneMsg carries the pipeline's verdict for one prompt
type acquireDoneMsg struct {
	text string
	err  *provider.ClassifiedError
}

// revealFrameMsg is one frame of the word-by-word reveal; ok is false
// once the run's channel closes
type revealFrameMsg struct {
	snap reveal.Snapshot
	ok   bool
}

// voicesMsg carries the TTS daemon's voice list
type voicesMsg struct {
	voices []speech.Voice
	err    error
}

// Model is the top-level Bubble Tea model
type Model struct {
	cfg       *config.Config
	pipe      *pipeline.Pipeline
	scheduler *reveal.Scheduler
	speaker   *speech.Speaker
	store     *history.Store // nil when the history db failed to open

	session   *Session
	histState *HistoryState
	mode      ViewMode

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model

	run           *reveal.Run // in-flight reveal, nil otherwise
	acquireCancel context.CancelFunc

	width, height int
	ready         bool
	statusMsg     string
}

// New builds the application model
func New(cfg *config.Config, pipe *pipeline.Pipeline, speaker *speech.Speaker, store *history.Store) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message, or /help for commands"
	ti.Prompt = "> "
	ti.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(Orange)),
	)

	return Model{
		cfg:       cfg,
		pipe:      pipe,
		scheduler: reveal.NewScheduler(cfg.RevealTick(), 1),
		speaker:   speaker,
		store:     store,
		session:   NewSession(),
		histState: NewHistoryState(),
		input:     ti,
		spin:      sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.histState.SetMaxHeight(msg.Height)
		m.input.Width = msg.Width - 6

		vpHeight := msg.Height - 7
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case acquireDoneMsg:
		if msg.err != nil {
			m.session.AddError(msg.err.Message)
			m.refreshViewport()
			return m, nil
		}
		m.session.BeginReveal(msg.text)
		m.run = m.scheduler.Start(msg.text)
		m.refreshViewport()
		return m, waitForFrame(m.run)

	case revealFrameMsg:
		if m.run == nil {
			// a frame that was already in flight when the reveal was
			// cancelled; the full text is committed, drop the frame
			return m, nil
		}
		if !msg.ok {
			// channel closed without a Done frame: the run was cancelled
			// and its text already committed by whoever cancelled it
			m.run = nil
			return m, nil
		}
		if msg.snap.Done {
			m.commitReveal()
			m.refreshViewport()
			return m, nil
		}
		m.session.SetRevealPrefix(msg.snap.Prefix)
		m.refreshViewport()
		return m, waitForFrame(m.run)

	case voicesMsg:
		if msg.err != nil {
			m.statusMsg = "voices unavailable: " + msg.err.Error()
			return m, nil
		}
		if len(msg.voices) == 0 {
			m.statusMsg = "the TTS daemon reports no voices"
			return m, nil
		}
		var names []string
		for _, v := range msg.voices {
			names = append(names, fmt.Sprintf("%s (%s)", v.ID, v.Lang))
		}
		m.session.AddSystem("Available voices: " + strings.Join(names, ", "))
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		if m.acquireCancel != nil {
			m.acquireCancel()
		}
		return m, tea.Quit
	}

	switch m.mode {
	case ViewHelp:
		switch key {
		case "esc", "f1", "?", "q":
			m.mode = ViewNormal
		}
		return m, nil

	case ViewHistory:
		switch key {
		case "esc":
			m.mode = ViewNormal
		case "up", "k":
			m.histState.Up()
		case "down", "j":
			m.histState.Down()
		case "enter":
			return m.resumeSelected()
		}
		return m, nil
	}

	switch key {
	case "enter":
		return m.submit()
	case "f1":
		m.mode = ViewHelp
		return m, nil
	case "?":
		if m.input.Value() == "" {
			m.mode = ViewHelp
			return m, nil
		}
	case "alt+h":
		return m.openHistory()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit handles Enter on the input line: a slash command dispatches,
// anything else goes through validation and into the pipeline.
func (m Model) submit() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.input.Value())
	if raw == "" {
		return m, nil
	}

	if cmd := commands.Parse(raw); cmd != nil {
		m.input.Reset()
		m.statusMsg = ""
		return m.dispatch(cmd)
	}

	if err := ValidatePrompt(raw, m.cfg.MaxInputLen); err != nil {
		m.statusMsg = err.Error()
		return m, nil
	}

	if m.pipe.Loading() {
		m.statusMsg = "still working on the last message"
		return m, nil
	}

	// a reveal still ticking is interrupted: its full text commits
	// immediately and the new prompt proceeds
	if m.run != nil {
		m.run.Cancel()
		m.commitReveal()
	}

	m.ensureConversation(raw)
	m.session.AddUser(raw)
	m.persist("user", raw)
	m.input.Reset()
	m.statusMsg = ""
	m.refreshViewport()

	ctx, cancel := context.WithCancel(context.Background())
	m.acquireCancel = cancel
	return m, tea.Batch(m.spin.Tick, acquireCmd(ctx, m.pipe, raw))
}

func (m Model) dispatch(cmd commands.Command) (tea.Model, tea.Cmd) {
	switch c := cmd.(type) {
	case commands.Help:
		m.mode = ViewHelp

	case commands.NewChat:
		if m.run != nil {
			m.run.Cancel()
			m.commitReveal()
		}
		m.session = NewSession()
		m.session.Title = c.Title
		m.statusMsg = "started a new conversation"
		m.refreshViewport()

	case commands.Clear:
		m.session.Clear()
		m.refreshViewport()

	case commands.Rename:
		m.session.Title = c.Title
		if m.store != nil && m.session.ConversationID != "" {
			if err := m.store.RenameConversation(m.session.ConversationID, c.Title); err != nil {
				m.statusMsg = "rename failed: " + err.Error()
				break
			}
		}
		m.statusMsg = "renamed to " + c.Title

	case commands.Export:
		m.exportConversation(c.Format)

	case commands.CopyBlock:
		m.copyBlock(c.Index)

	case commands.Say:
		m.sayMessage(c.Index)

	case commands.SetVoice:
		m.speaker.SetVoice(c.ID)
		m.statusMsg = "voice set to " + c.ID

	case commands.ListVoices:
		return m, voicesCmd(m.speaker)

	case commands.Mute:
		m.speaker.Stop()
		m.speaker.SetEnabled(false)
		m.statusMsg = "playback muted"

	case commands.Unmute:
		m.speaker.SetEnabled(true)
		m.statusMsg = "playback enabled"

	case commands.ToggleDirect:
		next := !m.pipe.ForceDirect()
		m.pipe.SetForceDirect(next)
		if next {
			m.statusMsg = "force-direct on: sidecar will be skipped"
		} else {
			m.statusMsg = "force-direct off: sidecar tried first"
		}

	case commands.HealthCheck:
		m.statusMsg = "sidecar: " + m.pipe.Health().String()

	case commands.ShowHistory:
		return m.openHistory()

	case commands.Quit:
		if m.acquireCancel != nil {
			m.acquireCancel()
		}
		return m, tea.Quit

	case commands.ParseError:
		m.statusMsg = c.Message
	}

	return m, nil
}

func (m Model) openHistory() (tea.Model, tea.Cmd) {
	if err := m.histState.Load(m.store); err != nil {
		m.statusMsg = "history unavailable: " + err.Error()
		return m, nil
	}
	m.mode = ViewHistory
	return m, nil
}

func (m Model) resumeSelected() (tea.Model, tea.Cmd) {
	selected := m.histState.Selected()
	if selected == nil {
		m.mode = ViewNormal
		return m, nil
	}

	session, err := ResumeConversation(m.store, selected.ID)
	if err != nil {
		m.statusMsg = err.Error()
		m.mode = ViewNormal
		return m, nil
	}

	if m.run != nil {
		m.run.Cancel()
		m.commitReveal()
	}
	m.session = session
	m.mode = ViewNormal
	m.statusMsg = "resumed " + session.Title
	m.refreshViewport()
	return m, nil
}

// commitReveal finalizes the in-flight reveal, persisting the full
// response text
func (m *Model) commitReveal() {
	if m.run == nil {
		return
	}
	m.run.Cancel()
	m.run = nil
	if !m.session.Revealing() {
		return
	}
	full := m.session.CommitReveal()
	m.persist("assistant", full)
}

// ensureConversation lazily creates the conversation record on the
// first prompt
func (m *Model) ensureConversation(prompt string) {
	if m.session.ConversationID != "" {
		return
	}
	m.session.ConversationID = uuid.NewString()
	if m.session.Title == "" {
		m.session.Title = titleFromPrompt(prompt)
	}
	if m.store != nil {
		if err := m.store.CreateConversation(m.session.ConversationID, m.session.Title); err != nil {
			m.statusMsg = "history unavailable: " + err.Error()
		}
	}
}

// persist appends a message to the history store, quietly skipping
// when no store is open
func (m *Model) persist(role, content string) {
	if m.store == nil || m.session.ConversationID == "" {
		return
	}
	if _, err := m.store.AddMessage(m.session.ConversationID, role, content); err != nil {
		m.statusMsg = "history write failed: " + err.Error()
	}
}

func (m *Model) exportConversation(format string) {
	msgs := m.session.Messages()
	if len(msgs) == 0 {
		m.statusMsg = "nothing to export yet"
		return
	}

	records := make([]export.Record, 0, len(msgs))
	for _, msg := range msgs {
		records = append(records, export.Record{
			Role:      string(msg.Role),
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}
	t := &export.Transcript{
		ID:        m.session.ConversationID,
		Title:     m.session.Title,
		CreatedAt: m.session.CreatedAt,
		Messages:  records,
	}
	if t.Title == "" {
		t.Title = "Conversation"
	}

	var path string
	var err error
	if format == "md" {
		path, err = export.WriteMarkdown(t, ".")
	} else {
		path, err = export.WriteJSON(t, ".")
	}
	if err != nil {
		m.statusMsg = "export failed: " + err.Error()
		return
	}
	m.statusMsg = "exported to " + path
}

func (m *Model) copyBlock(index int) {
	if !clipboard.Available() {
		m.statusMsg = "no clipboard available on this system"
		return
	}

	blocks := codeblock.ExtractAll(m.session.AssistantContents())
	if len(blocks) == 0 {
		m.statusMsg = "no code blocks in this conversation"
		return
	}

	// index is 1-based; 0 means the most recent block
	i := index - 1
	if index == 0 {
		i = len(blocks) - 1
	}
	if i < 0 || i >= len(blocks) {
		m.statusMsg = fmt.Sprintf("no code block %d (have %d)", index, len(blocks))
		return
	}

	if err := clipboard.Copy(blocks[i].Code); err != nil {
		m.statusMsg = "copy failed: " + err.Error()
		return
	}
	m.statusMsg = fmt.Sprintf("copied code block %d of %d", i+1, len(blocks))
}

func (m *Model) sayMessage(index int) {
	contents := m.session.AssistantContents()
	if len(contents) == 0 {
		m.statusMsg = "no assistant messages to speak"
		return
	}

	i := index - 1
	if index == 0 {
		i = len(contents) - 1
	}
	if i < 0 || i >= len(contents) {
		m.statusMsg = fmt.Sprintf("no message %d (have %d)", index, len(contents))
		return
	}

	if !m.speaker.Enabled() {
		m.statusMsg = "playback is muted; /unmute first"
		return
	}
	m.speaker.Say(contents[i])
	m.statusMsg = "speaking..."
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.session.Render(m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "Starting Parley..."
	}

	switch m.mode {
	case ViewHelp:
		return m.renderHelp()
	case ViewHistory:
		return m.histState.Render(m.width, m.height)
	}

	title := m.session.Title
	if title == "" {
		title = "New conversation"
	}
	header := TitleStyle.Render("PARLEY") + DimStyle.Render("  "+title)

	transcript := ActiveBox.Width(m.width - 2).Render(m.viewport.View())

	input := InactiveBox.Width(m.width - 2).Render(m.input.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		transcript,
		m.statusLine(),
		input,
	)
}

// statusLine renders sidecar health, activity, and the last status note
func (m Model) statusLine() string {
	var parts []string

	switch m.pipe.Health() {
	case provider.HealthHealthy:
		parts = append(parts, StatusOK.Render("●")+DimStyle.Render(" sidecar"))
	case provider.HealthChecking:
		parts = append(parts, StatusWarn.Render("●")+DimStyle.Render(" probing"))
	default:
		parts = append(parts, DimStyle.Render("○ direct"))
	}

	if m.pipe.Loading() {
		parts = append(parts, m.spin.View()+DimStyle.Render("thinking"))
	}
	if m.speaker.Speaking() {
		parts = append(parts, StatusWarn.Render("♪")+DimStyle.Render(" speaking"))
	}
	if m.statusMsg != "" {
		parts = append(parts, SystemStyle.Render(m.statusMsg))
	}

	return " " + strings.Join(parts, DimStyle.Render("  |  "))
}

// titleFromPrompt derives a conversation title from its first prompt
func titleFromPrompt(prompt string) string {
	title := strings.Join(strings.Fields(prompt), " ")
	runes := []rune(title)
	if len(runes) > 40 {
		title = string(runes[:40]) + "..."
	}
	return title
}

// acquireCmd runs the acquisition pipeline off the UI goroutine
func acquireCmd(ctx context.Context, pipe *pipeline.Pipeline, prompt string) tea.Cmd {
	return func() tea.Msg {
		text, err := pipe.Acquire(ctx, prompt)
		return acquireDoneMsg{text: text, err: err}
	}
}

// waitForFrame blocks for the next reveal frame
func waitForFrame(run *reveal.Run) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-run.Snapshots()
		return revealFrameMsg{snap: snap, ok: ok}
	}
}

// voicesCmd fetches the TTS voice list off the UI goroutine
func voicesCmd(speaker *speech.Speaker) tea.Cmd {
	return func() tea.Msg {
		voices, err := speaker.Voices(context.Background())
		return voicesMsg{voices: voices, err: err}
	}
}
