package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ialtaf14/Nova-AI/internal/backend"
	"github.com/ialtaf14/Nova-AI/internal/speech"
)

const commandHelp = "**Commands**\n\n" +
	"- `/model <name>` switch the local model\n" +
	"- `/cloud`, `/local` choose the backend\n" +
	"- `/mute`, `/unmute` toggle speech\n" +
	"- `/mic` speak a message\n" +
	"- `/stop` interrupt the response\n" +
	"- `/clear` clear the screen\n" +
	"- `/quit` exit"

// handleCommand routes a slash command typed into the input.
//
// Supported commands:
//   - /model, /m [alias]  switch model or list the available ones
//   - /cloud, /local      select the backend for later turns
//   - /mute, /unmute      toggle speech
//   - /mic, /listen       capture one spoken message
//   - /stop               interrupt the turn in flight
//   - /clear, /c          clear the transcript
//   - /help, /h, /?       list commands
//   - /quit, /q, /exit    leave
func (m Model) handleCommand(input string) (Model, tea.Cmd) {
	parts := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(parts) == 0 {
		return m, cmdUnknown(input)
	}
	args := parts[1:]

	switch strings.ToLower(parts[0]) {
	case "model", "m":
		if len(args) == 0 {
			m = m.addNotice(modelList())
			return m, nil
		}
		return m, switchModelCmd(m.ctx, m.ctrl, args[0])
	case "cloud":
		return m.setCloud(true)
	case "local":
		return m.setCloud(false)
	case "mute":
		return m.setMuted(true)
	case "unmute":
		return m.setMuted(false)
	case "mic", "listen":
		return m.startListening()
	case "stop":
		return m, stopCmd(m.ctrl)
	case "clear", "c":
		m.entries = nil
		m.refresh()
		return m, nil
	case "help", "h", "?":
		m = m.addNotice(commandHelp)
		return m, nil
	case "quit", "q", "exit":
		return m, tea.Quit
	default:
		return m, cmdUnknown(input)
	}
}

func cmdUnknown(input string) tea.Cmd {
	return func() tea.Msg {
		return CommandErrorMsg{Command: input, Error: "unknown command, try /help"}
	}
}

func modelList() string {
	var sb strings.Builder
	sb.WriteString("**Models**\n")
	for _, model := range backend.Models {
		fmt.Fprintf(&sb, "\n- `%s` %s: %s", model.Alias, model.Name, model.Description)
	}
	return sb.String()
}

func sendCmd(ctx context.Context, ctrl Controller, text string) tea.Cmd {
	return func() tea.Msg {
		ctrl.Send(ctx, text)
		return nil
	}
}

// stopCmd interrupts the turn in flight, or just silences speech when idle.
func stopCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		if !ctrl.Stop() {
			ctrl.StopSpeech()
		}
		return nil
	}
}

func switchModelCmd(ctx context.Context, ctrl Controller, alias string) tea.Cmd {
	return func() tea.Msg {
		if err := ctrl.SwitchModel(ctx, alias); err != nil {
			return CommandErrorMsg{Command: "/model " + alias, Error: err.Error()}
		}
		return nil
	}
}

func setMutedCmd(ctrl Controller, muted bool) tea.Cmd {
	return func() tea.Msg {
		ctrl.SetMuted(muted)
		return nil
	}
}

func setCloudCmd(ctrl Controller, cloud bool) tea.Cmd {
	return func() tea.Msg {
		ctrl.SetCloud(cloud)
		return nil
	}
}

// listenCmd runs one recognition session and reports its outcome.
func listenCmd(ctx context.Context, rec speech.Recognizer) tea.Cmd {
	return func() tea.Msg {
		done := make(chan RecognitionMsg, 1)
		deliver := func(msg RecognitionMsg) {
			select {
			case done <- msg:
			default:
			}
		}
		err := rec.Start(ctx, speech.RecognitionHandlers{
			OnResult: func(text string) { deliver(RecognitionMsg{Text: text}) },
			OnError:  func(err error) { deliver(RecognitionMsg{Err: err}) },
			OnEnd:    func() { deliver(RecognitionMsg{}) },
		})
		if err != nil {
			return RecognitionMsg{Err: err}
		}
		select {
		case msg := <-done:
			return msg
		case <-ctx.Done():
			return RecognitionMsg{}
		}
	}
}
