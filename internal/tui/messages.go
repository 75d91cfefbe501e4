package tui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ialtaf14/Nova-AI/internal/chat"
)

// TurnStartedMsg opens a new exchange in the transcript.
type TurnStartedMsg struct {
	TurnID string
	Text   string
}

// RenderMsg carries the full response accumulated so far.
type RenderMsg struct {
	TurnID  string
	Content string
}

type InterruptedMsg struct {
	TurnID string
}

type FailedMsg struct {
	TurnID  string
	Message string
}

// ReadyMsg re-enables sending once no turn is in flight.
type ReadyMsg struct{}

type NoticeMsg struct {
	Text string
}

// RecognitionMsg is the outcome of one listening session. Empty Text with a
// nil Err means nothing was heard.
type RecognitionMsg struct {
	Text string
	Err  error
}

// CommandErrorMsg reports a failed or unknown slash command.
type CommandErrorMsg struct {
	Command string
	Error   string
}

// sender is the part of tea.Program the view adapter needs.
type sender interface {
	Send(msg tea.Msg)
}

// programView forwards engine callbacks to the running program as messages.
// Before the program starts, and after it exits, callbacks are dropped.
type programView struct {
	target atomic.Pointer[sender]
}

var _ chat.View = (*programView)(nil)

func (v *programView) attach(s sender) {
	v.target.Store(&s)
}

func (v *programView) detach() {
	v.target.Store(nil)
}

func (v *programView) send(msg tea.Msg) {
	if s := v.target.Load(); s != nil {
		(*s).Send(msg)
	}
}

func (v *programView) TurnStarted(turnID, userText string) {
	v.send(TurnStartedMsg{TurnID: turnID, Text: userText})
}

func (v *programView) Render(turnID, content string) {
	v.send(RenderMsg{TurnID: turnID, Content: content})
}

func (v *programView) Interrupted(turnID string) {
	v.send(InterruptedMsg{TurnID: turnID})
}

func (v *programView) Failed(turnID, message string) {
	v.send(FailedMsg{TurnID: turnID, Message: message})
}

func (v *programView) Ready() {
	v.send(ReadyMsg{})
}

func (v *programView) Notice(text string) {
	v.send(NoticeMsg{Text: text})
}
