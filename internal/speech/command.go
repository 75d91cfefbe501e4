package speech

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Engine names accepted by NewCommandSynthesizer.
const (
	EngineAuto   = "auto"
	EngineSay    = "say"
	EngineEspeak = "espeak"
)

// baseWordsPerMinute is the rate both engines treat as normal speed.
const baseWordsPerMinute = 175

var sayVoiceLine = regexp.MustCompile(`^(.+?)\s+([A-Za-z]{2,3}[_-][A-Za-z0-9]+)\s+#`)

type engineBinary struct {
	engine string
	bin    string
}

var espeakBinaries = []engineBinary{{EngineEspeak, "espeak-ng"}, {EngineEspeak, "espeak"}}

// CommandSynthesizer speaks through a local text-to-speech program: `say` on
// macOS, espeak-ng (or espeak) elsewhere.
type CommandSynthesizer struct {
	engine string
	path   string
	logger zerolog.Logger

	mu      sync.Mutex
	running map[*exec.Cmd]struct{}
}

// NewCommandSynthesizer locates the program for engine. It returns an error
// wrapping ErrUnavailable when no suitable program is installed.
func NewCommandSynthesizer(engine string, logger zerolog.Logger) (*CommandSynthesizer, error) {
	engine = strings.ToLower(strings.TrimSpace(engine))
	if engine == "" {
		engine = EngineAuto
	}

	var candidates []engineBinary
	switch engine {
	case EngineSay:
		candidates = []engineBinary{{EngineSay, "say"}}
	case EngineEspeak:
		candidates = espeakBinaries
	case EngineAuto:
		if runtime.GOOS == "darwin" {
			candidates = append(candidates, engineBinary{EngineSay, "say"})
		}
		candidates = append(candidates, espeakBinaries...)
	default:
		return nil, fmt.Errorf("unknown speech engine %q", engine)
	}

	for _, c := range candidates {
		if p, err := exec.LookPath(c.bin); err == nil && strings.TrimSpace(p) != "" {
			return &CommandSynthesizer{
				engine:  c.engine,
				path:    p,
				logger:  logger.With().Str("provider", c.engine).Logger(),
				running: make(map[*exec.Cmd]struct{}),
			}, nil
		}
	}
	return nil, fmt.Errorf("speech engine %q: no program found: %w", engine, ErrUnavailable)
}

func (s *CommandSynthesizer) Engine() string { return s.engine }

func (s *CommandSynthesizer) Voices(ctx context.Context) ([]Voice, error) {
	var args []string
	if s.engine == EngineSay {
		args = []string{"-v", "?"}
	} else {
		args = []string{"--voices"}
	}
	out, err := exec.CommandContext(ctx, s.path, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("list %s voices: %w", s.engine, err)
	}
	if s.engine == EngineSay {
		return parseSayVoices(out), nil
	}
	return parseEspeakVoices(out), nil
}

func (s *CommandSynthesizer) Speak(ctx context.Context, u Unit) error {
	if strings.TrimSpace(u.Text) == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, s.path, s.args(u)...)
	cmd.Stdin = strings.NewReader(u.Text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", s.engine, err)
	}
	s.track(cmd, true)
	err := cmd.Wait()
	s.track(cmd, false)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Errorf("%s failed: %s", s.engine, detail)
	}
	s.logger.Debug().Str("voice", u.Voice.Name).Int("text_len", len(u.Text)).Msg("spoke unit")
	return nil
}

// CancelAll kills every utterance still running.
func (s *CommandSynthesizer) CancelAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for cmd := range s.running {
		if cmd.Process == nil {
			continue
		}
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *CommandSynthesizer) args(u Unit) []string {
	rate := u.Rate
	if rate <= 0 {
		rate = DefaultRate
	}
	wpm := strconv.Itoa(int(float64(baseWordsPerMinute)*rate + 0.5))

	var args []string
	if s.engine == EngineSay {
		if u.Voice.Name != "" {
			args = append(args, "-v", u.Voice.Name)
		}
		args = append(args, "-r", wpm)
	} else {
		if u.Voice.Locale != "" {
			args = append(args, "-v", u.Voice.Locale)
		}
		args = append(args, "-s", wpm, "--stdin")
	}
	// Text goes through stdin so sentences starting with '-' are never flags.
	return args
}

func (s *CommandSynthesizer) track(cmd *exec.Cmd, running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if running {
		s.running[cmd] = struct{}{}
	} else {
		delete(s.running, cmd)
	}
}

// parseSayVoices reads `say -v ?` output, one "Name  locale  # sample" per line.
func parseSayVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		m := sayVoiceLine.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		voices = append(voices, Voice{
			Name:   strings.TrimSpace(m[1]),
			Locale: strings.ReplaceAll(m[2], "_", "-"),
		})
	}
	return voices
}

// parseEspeakVoices reads the `espeak-ng --voices` table:
// Pty Language Age/Gender VoiceName File [Other Languages].
func parseEspeakVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}
		v := Voice{
			Name:   strings.ReplaceAll(fields[3], "_", " "),
			Locale: fields[1],
		}
		if i := strings.IndexByte(fields[2], '/'); i >= 0 {
			switch strings.ToUpper(fields[2][i+1:]) {
			case "M":
				v.Gender = GenderMale
			case "F":
				v.Gender = GenderFemale
			}
		}
		voices = append(voices, v)
	}
	return voices
}
