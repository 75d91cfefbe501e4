package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ialtaf14/Nova-AI/internal/lang"
)

func TestResolveVoiceTiers(t *testing.T) {
	victoria := Voice{Name: "Victoria", Locale: "en_US", Gender: GenderFemale}
	rishi := Voice{Name: "Rishi", Locale: "en_IN", Gender: GenderMale}
	veena := Voice{Name: "Veena", Locale: "en_IN", Gender: GenderFemale}
	lekha := Voice{Name: "Lekha", Locale: "hi_IN", Gender: GenderFemale}
	ravi := Voice{Name: "Microsoft Ravi - English (India)", Locale: "en-IN"}
	heera := Voice{Name: "Microsoft Heera - English (India)", Locale: "en-IN"}

	cases := []struct {
		name   string
		voices []Voice
		tag    lang.Tag
		want   Voice
	}{
		{name: "hindi prefers hindi female", voices: []Voice{victoria, rishi, veena, lekha}, tag: lang.Hindi, want: lekha},
		{name: "hinglish falls back to regional female", voices: []Voice{victoria, rishi, veena}, tag: lang.Hinglish, want: veena},
		{name: "hinglish falls back to regional", voices: []Voice{victoria, rishi}, tag: lang.Hinglish, want: rishi},
		{name: "hindi falls back to any voice", voices: []Voice{victoria}, tag: lang.Hindi, want: victoria},
		{name: "english prefers regional male", voices: []Voice{victoria, veena, rishi}, tag: lang.English, want: rishi},
		{name: "english uses name hints without gender", voices: []Voice{heera, ravi}, tag: lang.English, want: ravi},
		{name: "english falls back to regional female", voices: []Voice{victoria, veena}, tag: lang.English, want: veena},
		{name: "english falls back to any voice", voices: []Voice{victoria}, tag: lang.English, want: victoria},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ResolveVoice(tc.voices, tc.tag, "")
			assert.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveVoiceEmpty(t *testing.T) {
	_, ok := ResolveVoice(nil, lang.English, "IN")
	assert.False(t, ok)
}

func TestResolveVoiceOtherRegion(t *testing.T) {
	daniel := Voice{Name: "Daniel", Locale: "en_GB", Gender: GenderMale}
	rishi := Voice{Name: "Rishi", Locale: "en_IN", Gender: GenderMale}

	got, ok := ResolveVoice([]Voice{rishi, daniel}, lang.English, "gb")
	assert.True(t, ok)
	assert.Equal(t, daniel, got)
}
