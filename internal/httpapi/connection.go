package httpapi

import (
	"context"
	"sync"

	"github.com/ialtaf14/Nova-AI/internal/backend"
	"github.com/ialtaf14/Nova-AI/internal/chat"
	"github.com/ialtaf14/Nova-AI/internal/protocol"
	"github.com/ialtaf14/Nova-AI/internal/session"
	"github.com/ialtaf14/Nova-AI/internal/speech"
)

// runConnection drives one chat engine for a websocket session until ctx ends
// or inbound is closed.
func (s *Server) runConnection(ctx context.Context, sess *session.Session, be backend.Backend, inbound <-chan any, outbound chan<- any) {
	logger := s.logger.With().Str("session_id", sess.ID).Logger()
	view := &wsView{ctx: ctx, sessionID: sess.ID, outbound: outbound, sessions: s.sessions}
	synth := newRemoteSynthesizer(view)

	queue := speech.NewQueue(synth, speech.QueueConfig{
		Rate:   s.cfg.SpeechRate,
		Region: s.cfg.SpeechRegion,
		OnStop: func() { s.metrics.ObserveSessionEvent("speech_stopped") },
	}, logger)
	defer queue.Close()

	engine, err := chat.NewEngine(chat.Options{
		Backend:        be,
		Speech:         queue,
		View:           view,
		Store:          s.store,
		Metrics:        s.metrics,
		Logger:         logger,
		ConversationID: sess.ConversationID,
		Muted:          sess.Muted,
		Cloud:          sess.Cloud,
	})
	if err != nil {
		view.sendError("engine_unavailable", err, false)
		return
	}
	defer engine.Close()

	view.send(protocol.SystemEvent{
		Type:      protocol.TypeSystemEvent,
		SessionID: sess.ID,
		Code:      "session_ready",
		Detail:    sess.ConversationID,
	})

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-inbound:
			if !ok {
				return
			}
			_ = s.sessions.Touch(sess.ID)
			switch m := msg.(type) {
			case protocol.ClientMessage:
				engine.Send(ctx, m.Text)
			case protocol.ClientControl:
				s.applyControl(sess.ID, engine, m.Action)
			case protocol.ClientModel:
				go func(alias string) {
					if err := engine.SwitchModel(ctx, alias); err != nil && ctx.Err() == nil {
						logger.Warn().Err(err).Str("alias", alias).Msg("model switch failed")
						view.sendError("model_switch_failed", err, true)
					}
				}(m.Alias)
			case protocol.ClientVoices:
				synth.setVoices(m.Voices)
				queue.RefreshVoices()
			case protocol.ClientSpeechDone:
				synth.done(m.UnitID)
			}
		}
	}
}

func (s *Server) applyControl(sessionID string, engine *chat.Engine, action string) {
	switch action {
	case protocol.ActionStop:
		engine.Stop()
	case protocol.ActionStopSpeech:
		engine.StopSpeech()
	case protocol.ActionMute, protocol.ActionUnmute:
		engine.SetMuted(action == protocol.ActionMute)
	case protocol.ActionCloudOn, protocol.ActionCloudOff:
		engine.SetCloud(action == protocol.ActionCloudOn)
	default:
		return
	}
	_ = s.sessions.SetPreferences(sessionID, engine.Cloud(), engine.Muted())
}

// wsView forwards engine view calls to the websocket writer. Sends block
// until queued or the connection ends.
type wsView struct {
	ctx       context.Context
	sessionID string
	outbound  chan<- any
	sessions  *session.Manager

	mu     sync.Mutex
	turnID string
}

func (v *wsView) send(msg any) bool {
	select {
	case v.outbound <- msg:
		return true
	case <-v.ctx.Done():
		return false
	}
}

func (v *wsView) sendError(code string, err error, retryable bool) {
	v.send(protocol.ErrorEvent{
		Type:      protocol.TypeErrorEvent,
		SessionID: v.sessionID,
		Code:      code,
		Source:    "engine",
		Retryable: retryable,
		Detail:    err.Error(),
	})
}

func (v *wsView) TurnStarted(turnID, userText string) {
	v.mu.Lock()
	v.turnID = turnID
	v.mu.Unlock()
	_ = v.sessions.StartTurn(v.sessionID, turnID)
	v.send(protocol.TurnStarted{
		Type:      protocol.TypeTurnStarted,
		SessionID: v.sessionID,
		TurnID:    turnID,
		Text:      userText,
	})
}

func (v *wsView) Render(turnID, content string) {
	v.send(protocol.TurnRender{
		Type:      protocol.TypeTurnRender,
		SessionID: v.sessionID,
		TurnID:    turnID,
		Content:   content,
	})
}

func (v *wsView) Interrupted(turnID string) {
	_ = v.sessions.Interrupt(v.sessionID, turnID)
	v.send(protocol.TurnInterrupted{
		Type:      protocol.TypeTurnInterrupted,
		SessionID: v.sessionID,
		TurnID:    turnID,
		Marker:    chat.InterruptedMarker,
	})
}

func (v *wsView) Failed(turnID, message string) {
	v.send(protocol.TurnFailed{
		Type:      protocol.TypeTurnFailed,
		SessionID: v.sessionID,
		TurnID:    turnID,
		Message:   message,
	})
}

func (v *wsView) Ready() {
	v.mu.Lock()
	turnID := v.turnID
	v.mu.Unlock()
	_ = v.sessions.FinishTurn(v.sessionID, turnID)
	v.send(protocol.TurnReady{Type: protocol.TypeTurnReady, SessionID: v.sessionID})
}

func (v *wsView) Notice(text string) {
	v.send(protocol.Notice{Type: protocol.TypeNotice, SessionID: v.sessionID, Text: text})
}
