package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ialtaf14/Nova-AI/internal/chat"
)

// View implements tea.Model
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	sections := []string{
		m.renderHeader(),
		m.styles.ChatPane.Width(m.width - 2).Render(m.viewport.View()),
		m.styles.InputBox.Width(m.width - 2).Render(m.textarea.View()),
		m.renderStatusBar(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	mode := m.styles.Badge.Render("💻 Local")
	if m.cloud {
		mode = m.styles.Badge.Render("☁️ Cloud")
	}
	voice := m.styles.Badge.Render("🔊 Speech")
	if m.muted {
		voice = m.styles.BadgeOff.Render("🔇 Muted")
	}
	header := "Nova" + mode + voice
	if m.listening {
		header += m.styles.Busy.Render(" 🎙 Listening...")
	}
	return m.styles.Header.Width(m.width).Render(header)
}

func (m Model) renderStatusBar() string {
	if m.busy {
		return m.styles.StatusBar.Render(m.styles.Busy.Render("● Responding") + "  esc to stop")
	}
	return m.styles.StatusBar.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

// renderChat renders the transcript for the viewport, reusing cached blocks.
func (m Model) renderChat() string {
	blocks := make([]string, 0, len(m.entries))
	for i := range m.entries {
		e := &m.entries[i]
		if e.rendered == "" {
			e.rendered = m.renderEntry(*e)
		}
		blocks = append(blocks, e.rendered)
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderEntry(e entry) string {
	switch e.role {
	case roleUser:
		return m.styles.UserMsg.Render("You: ") + e.content
	case roleError:
		return m.styles.Error.Render(e.content)
	case roleNotice:
		return m.styles.BotMsg.Render("Nova:") + "\n" + m.renderMarkdown(e.content)
	}

	label := m.styles.BotMsg.Render("Nova:")
	var body string
	switch {
	case e.failed:
		body = m.styles.Error.Render(e.content)
	case e.content == "" && !e.interrupted:
		body = m.styles.Notice.Render("...")
	default:
		body = m.renderMarkdown(e.content)
	}
	if e.interrupted {
		body += m.styles.Interrupted.Render(chat.InterruptedMarker)
	}
	return label + "\n" + body
}

// renderMarkdown renders content with glamour, falling back to the raw text.
func (m Model) renderMarkdown(content string) string {
	if strings.TrimSpace(content) == "" || m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}
