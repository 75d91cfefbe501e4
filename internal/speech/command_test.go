package speech

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ialtaf14/Nova-AI/internal/lang"
)

func TestParseSayVoices(t *testing.T) {
	out := []byte(`Alex                en_US    # Most people recognize me by my voice.
Eddy (English (UK)) en_GB    # Hello! My name is Eddy.
Lekha               hi_IN    # नमस्कार, मेरा नाम लेखा है।
Rishi               en_IN    # Hello! My name is Rishi.
garbage line without a locale
`)
	voices := parseSayVoices(out)
	require.Len(t, voices, 4)
	assert.Equal(t, Voice{Name: "Alex", Locale: "en-US"}, voices[0])
	assert.Equal(t, Voice{Name: "Eddy (English (UK))", Locale: "en-GB"}, voices[1])
	assert.Equal(t, Voice{Name: "Lekha", Locale: "hi-IN"}, voices[2])

	got, ok := ResolveVoice(voices, lang.English, DefaultRegion)
	require.True(t, ok)
	assert.Equal(t, "Rishi", got.Name)

	got, ok = ResolveVoice(voices, lang.Hindi, DefaultRegion)
	require.True(t, ok)
	assert.Equal(t, "Lekha", got.Name)
}

func TestParseEspeakVoices(t *testing.T) {
	out := []byte(`Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  en-in           --/M      English_(India)    gmw/en-IN
 5  hi              --/F      Hindi              inc/hi
`)
	voices := parseEspeakVoices(out)
	require.Len(t, voices, 3)
	assert.Equal(t, Voice{Name: "English (India)", Locale: "en-in", Gender: GenderMale}, voices[1])
	assert.Equal(t, Voice{Name: "Hindi", Locale: "hi", Gender: GenderFemale}, voices[2])

	got, ok := ResolveVoice(voices, lang.Hinglish, DefaultRegion)
	require.True(t, ok)
	assert.Equal(t, "Hindi", got.Name)
}

func TestCommandSynthesizerArgs(t *testing.T) {
	say := &CommandSynthesizer{engine: EngineSay}
	assert.Equal(t,
		[]string{"-v", "Rishi", "-r", "193"},
		say.args(Unit{Text: "- item", Voice: Voice{Name: "Rishi", Locale: "en-IN"}, Rate: DefaultRate}))
	assert.Equal(t, []string{"-r", "175"}, say.args(Unit{Text: "hi", Rate: 1}))

	espeak := &CommandSynthesizer{engine: EngineEspeak}
	assert.Equal(t,
		[]string{"-v", "en-in", "-s", "193", "--stdin"},
		espeak.args(Unit{Text: "hello", Voice: Voice{Name: "English (India)", Locale: "en-in"}}))
}

func TestNewCommandSynthesizerRejectsUnknownEngine(t *testing.T) {
	_, err := NewCommandSynthesizer("festival", zerolog.Nop())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
}
