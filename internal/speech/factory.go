package speech

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const (
	EngineMock = "mock"
	EngineOff  = "off"
)

// NewSynthesizer builds the synthesizer named by engine. "off" returns a nil
// synthesizer and no error; speech is then silent.
func NewSynthesizer(engine string, logger zerolog.Logger) (Synthesizer, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case EngineOff, "none":
		return nil, nil
	case EngineMock:
		return NewMockSynthesizer(), nil
	case "", EngineAuto, EngineSay, EngineEspeak:
		s, err := NewCommandSynthesizer(engine, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown speech engine %q", engine)
	}
}
