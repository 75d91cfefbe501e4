package protocol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeClientMessage    MessageType = "client_message"
	TypeClientControl    MessageType = "client_control"
	TypeClientModel      MessageType = "client_model"
	TypeClientVoices     MessageType = "client_voices"
	TypeClientSpeechDone MessageType = "client_speech_done"

	TypeTurnStarted     MessageType = "turn_started"
	TypeTurnRender      MessageType = "turn_render"
	TypeTurnInterrupted MessageType = "turn_interrupted"
	TypeTurnFailed      MessageType = "turn_failed"
	TypeTurnReady       MessageType = "turn_ready"
	TypeNotice          MessageType = "notice"
	TypeSpeechEnqueue   MessageType = "speech_enqueue"
	TypeSpeechCancel    MessageType = "speech_cancel"
	TypeSystemEvent     MessageType = "system_event"
	TypeErrorEvent      MessageType = "error_event"
)

// Control actions carried by ClientControl.
const (
	ActionStop       = "stop"
	ActionStopSpeech = "stop_speech"
	ActionMute       = "mute"
	ActionUnmute     = "unmute"
	ActionCloudOn    = "cloud_on"
	ActionCloudOff   = "cloud_off"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// ClientMessage submits a prompt.
type ClientMessage struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Text      string      `json:"text"`
}

type ClientControl struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Action    string      `json:"action"`
}

type ClientModel struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Alias     string      `json:"alias"`
}

// Voice is a synthesis voice available on the client.
type Voice struct {
	Name   string `json:"name"`
	Locale string `json:"locale"`
	Gender string `json:"gender,omitempty"`
}

// ClientVoices reports the voices the client can speak with. An empty list
// means the client does not speak.
type ClientVoices struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Voices    []Voice     `json:"voices"`
}

// ClientSpeechDone acknowledges that a speech unit finished playing.
type ClientSpeechDone struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	UnitID    string      `json:"unit_id"`
}

type TurnStarted struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	TurnID    string      `json:"turn_id"`
	Text      string      `json:"text"`
}

// TurnRender carries the full accumulated markdown of a turn.
type TurnRender struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	TurnID    string      `json:"turn_id"`
	Content   string      `json:"content"`
}

type TurnInterrupted struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	TurnID    string      `json:"turn_id"`
	Marker    string      `json:"marker"`
}

type TurnFailed struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	TurnID    string      `json:"turn_id"`
	Message   string      `json:"message"`
}

type TurnReady struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
}

type Notice struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Text      string      `json:"text"`
}

type SpeechEnqueue struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	UnitID    string      `json:"unit_id"`
	Text      string      `json:"text"`
	Voice     Voice       `json:"voice"`
	Rate      float64     `json:"rate"`
	Lang      string      `json:"lang"`
}

type SpeechCancel struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
}

type SystemEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Detail    string      `json:"detail,omitempty"`
}

type ErrorEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Source    string      `json:"source"`
	Retryable bool        `json:"retryable"`
	Detail    string      `json:"detail"`
}

// Encode serializes an outbound message.
func Encode(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeClientMessage:
		var msg ClientMessage
		if err := sonic.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" {
			return nil, errors.New("invalid client_message")
		}
		return msg, nil
	case TypeClientControl:
		var msg ClientControl
		if err := sonic.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" || !validAction(msg.Action) {
			return nil, errors.New("invalid client_control")
		}
		return msg, nil
	case TypeClientModel:
		var msg ClientModel
		if err := sonic.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" || strings.TrimSpace(msg.Alias) == "" {
			return nil, errors.New("invalid client_model")
		}
		return msg, nil
	case TypeClientVoices:
		var msg ClientVoices
		if err := sonic.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" {
			return nil, errors.New("invalid client_voices")
		}
		return msg, nil
	case TypeClientSpeechDone:
		var msg ClientSpeechDone
		if err := sonic.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" || msg.UnitID == "" {
			return nil, errors.New("invalid client_speech_done")
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}

func validAction(action string) bool {
	switch action {
	case ActionStop, ActionStopSpeech, ActionMute, ActionUnmute, ActionCloudOn, ActionCloudOff:
		return true
	default:
		return false
	}
}

// TypeOf reports the message type of any protocol message.
func TypeOf(v any) (MessageType, bool) {
	switch m := v.(type) {
	case ClientMessage:
		return m.Type, true
	case ClientControl:
		return m.Type, true
	case ClientModel:
		return m.Type, true
	case ClientVoices:
		return m.Type, true
	case ClientSpeechDone:
		return m.Type, true
	case TurnStarted:
		return m.Type, true
	case TurnRender:
		return m.Type, true
	case TurnInterrupted:
		return m.Type, true
	case TurnFailed:
		return m.Type, true
	case TurnReady:
		return m.Type, true
	case Notice:
		return m.Type, true
	case SpeechEnqueue:
		return m.Type, true
	case SpeechCancel:
		return m.Type, true
	case SystemEvent:
		return m.Type, true
	case ErrorEvent:
		return m.Type, true
	default:
		return "", false
	}
}
