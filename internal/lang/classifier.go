// Package lang maps user input to the coarse language tag used to pick a speech voice.
package lang

import "strings"

// Tag is a coarse language classification.
type Tag string

const (
	Hindi    Tag = "hindi"
	Hinglish Tag = "hinglish"
	English  Tag = "english"
)

// hinglishKeywords are colloquial Hindi words commonly typed in Latin script.
var hinglishKeywords = map[string]struct{}{
	"kya": {}, "kaise": {}, "kaisa": {}, "hai": {}, "hain": {}, "ho": {}, "hu": {}, "hoon": {},
	"nahi": {}, "haan": {}, "acha": {}, "bura": {}, "theek": {}, "tum": {}, "main": {}, "hum": {},
	"karo": {}, "karna": {}, "baat": {}, "bol": {}, "sun": {}, "dekho": {}, "bhai": {}, "yaar": {},
	"kaun": {}, "kab": {}, "kahan": {}, "kyun": {}, "kisliye": {}, "namaste": {}, "shukriya": {},
}

// Classify returns Hindi when text contains any Devanagari rune, Hinglish when a
// keyword appears as a whole word, and English otherwise.
func Classify(text string) Tag {
	for _, r := range text {
		if isDevanagari(r) {
			return Hindi
		}
	}
	for _, word := range strings.FieldsFunc(strings.ToLower(text), isWordSeparator) {
		if _, ok := hinglishKeywords[word]; ok {
			return Hinglish
		}
	}
	return English
}

// IsIndic reports whether the tag prefers a Hindi voice.
func (t Tag) IsIndic() bool {
	return t == Hindi || t == Hinglish
}

func isDevanagari(r rune) bool {
	return r >= 0x0900 && r <= 0x097F
}

// isWordSeparator splits on anything outside [A-Za-z0-9_], so a non-ASCII
// letter bounds a keyword the way \b does.
func isWordSeparator(r rune) bool {
	return !(r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9'))
}
