package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"

	"github.com/ialtaf14/Nova-AI/internal/speech"
)

// scrollThreshold is how many lines from the bottom still count as "at the
// bottom" for auto-scroll.
const scrollThreshold = 3

// Controller is the chat engine as driven by the TUI. Calls are made from
// commands, never from Update itself.
type Controller interface {
	Send(ctx context.Context, text string) (turnID string, ok bool)
	Stop() bool
	StopSpeech()
	SetMuted(muted bool)
	SetCloud(cloud bool)
	SwitchModel(ctx context.Context, alias string) error
}

type role int

const (
	roleUser role = iota
	roleAssistant
	roleNotice
	roleError
)

// entry is one block of the transcript.
type entry struct {
	role        role
	turnID      string
	content     string
	interrupted bool
	failed      bool
	// rendered caches the styled block; cleared whenever the entry changes.
	rendered string
}

// Model is the main TUI state
type Model struct {
	width  int
	height int
	ready  bool

	entries  []entry
	viewport viewport.Model
	textarea textarea.Model
	help     help.Model
	renderer *glamour.TermRenderer

	styles       Styles
	keys         KeyMap
	glamourStyle string

	ctx        context.Context
	ctrl       Controller
	recognizer speech.Recognizer
	logger     zerolog.Logger

	busy      bool
	listening bool
	muted     bool
	cloud     bool
}

// NewModel creates the chat screen for ctrl. A nil recognizer disables voice
// input.
func NewModel(ctrl Controller, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Type a message or /help..."
	ta.Focus()
	ta.CharLimit = 4096
	ta.SetWidth(80)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(80, 20)
	vp.SetContent("")

	return Model{
		textarea:     ta,
		viewport:     vp,
		help:         help.New(),
		styles:       DefaultStyles(),
		keys:         DefaultKeyMap(),
		glamourStyle: opts.GlamourStyle,
		ctx:          context.Background(),
		ctrl:         ctrl,
		recognizer:   opts.Recognizer,
		logger:       opts.Logger,
		muted:        opts.Muted,
		cloud:        opts.Cloud,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m = m.updateDimensions()
		m.refresh()
		return m, nil

	case TurnStartedMsg:
		m.busy = true
		m.entries = append(m.entries,
			entry{role: roleUser, turnID: msg.TurnID, content: msg.Text},
			entry{role: roleAssistant, turnID: msg.TurnID},
		)
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil

	case RenderMsg:
		if e := m.response(msg.TurnID); e != nil {
			e.content = msg.Content
			e.rendered = ""
			m.refresh()
		}
		return m, nil

	case InterruptedMsg:
		if e := m.response(msg.TurnID); e != nil {
			e.interrupted = true
			e.rendered = ""
			m.refresh()
		}
		return m, nil

	case FailedMsg:
		if e := m.response(msg.TurnID); e != nil {
			e.content = msg.Message
			e.failed = true
			e.rendered = ""
			m.refresh()
		}
		return m, nil

	case ReadyMsg:
		m.busy = false
		return m, nil

	case NoticeMsg:
		m = m.addNotice(msg.Text)
		return m, nil

	case RecognitionMsg:
		m.listening = false
		if msg.Err != nil {
			m.logger.Warn().Err(msg.Err).Msg("speech recognition failed")
			m = m.addError("Speech recognition failed: " + msg.Err.Error())
			return m, nil
		}
		if text := strings.TrimSpace(msg.Text); text != "" {
			return m, sendCmd(m.ctx, m.ctrl, text)
		}
		return m, nil

	case CommandErrorMsg:
		m = m.addError(msg.Command + ": " + msg.Error)
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// handleKeyMsg processes keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Stop):
		return m, stopCmd(m.ctrl)

	case key.Matches(msg, m.keys.Listen):
		return m.startListening()

	case key.Matches(msg, m.keys.ToggleMute):
		return m.setMuted(!m.muted)

	case key.Matches(msg, m.keys.ToggleMode):
		return m.setCloud(!m.cloud)

	case key.Matches(msg, m.keys.Clear):
		m.entries = nil
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Send):
		return m.handleSend()
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// handleSend submits the input. The exchange appears once the engine
// reports the turn as started.
func (m Model) handleSend() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.textarea.Value())
	if content == "" {
		return m, nil
	}
	m.textarea.Reset()

	if strings.HasPrefix(content, "/") {
		return m.handleCommand(content)
	}
	return m, sendCmd(m.ctx, m.ctrl, content)
}

func (m Model) startListening() (Model, tea.Cmd) {
	if m.recognizer == nil {
		return m, func() tea.Msg {
			return CommandErrorMsg{Command: "/mic", Error: "speech recognition is not available"}
		}
	}
	if m.listening {
		return m, nil
	}
	m.listening = true
	return m, listenCmd(m.ctx, m.recognizer)
}

func (m Model) setMuted(muted bool) (Model, tea.Cmd) {
	m.muted = muted
	return m, setMutedCmd(m.ctrl, muted)
}

func (m Model) setCloud(cloud bool) (Model, tea.Cmd) {
	m.cloud = cloud
	return m, setCloudCmd(m.ctrl, cloud)
}

func (m Model) addNotice(text string) Model {
	m.entries = append(m.entries, entry{role: roleNotice, content: text})
	m.refresh()
	return m
}

func (m Model) addError(text string) Model {
	m.entries = append(m.entries, entry{role: roleError, content: text})
	m.refresh()
	return m
}

// response finds the assistant entry for turnID, newest first.
func (m Model) response(turnID string) *entry {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].role == roleAssistant && m.entries[i].turnID == turnID {
			return &m.entries[i]
		}
	}
	return nil
}

// nearBottom reports whether the viewport is within scrollThreshold lines of
// the end of its content.
func (m Model) nearBottom() bool {
	below := m.viewport.TotalLineCount() - (m.viewport.YOffset + m.viewport.Height)
	return below <= scrollThreshold
}

// refresh re-renders the transcript, following the bottom only when the
// reader was already there.
func (m *Model) refresh() {
	follow := m.nearBottom()
	m.viewport.SetContent(m.renderChat())
	if follow {
		m.viewport.GotoBottom()
	}
}

// updateDimensions recalculates component sizes and the markdown renderer.
func (m Model) updateDimensions() Model {
	headerHeight := 2
	statusHeight := 1
	inputHeight := 3
	borders := 2

	chatHeight := m.height - headerHeight - statusHeight - inputHeight - borders
	if chatHeight < 1 {
		chatHeight = 1
	}
	width := m.width - 4
	if width < 10 {
		width = 10
	}

	m.viewport.Width = width
	m.viewport.Height = chatHeight
	m.textarea.SetWidth(width)
	m.help.Width = m.width

	m.renderer = newRenderer(m.glamourStyle, width-2)
	for i := range m.entries {
		m.entries[i].rendered = ""
	}
	return m
}

func newRenderer(style string, width int) *glamour.TermRenderer {
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil
	}
	return r
}
