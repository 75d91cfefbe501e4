package speech

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	markdownLinkPattern = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	sigilReplacer       = strings.NewReplacer("*", "", "#", "", "_", "", "`", "")
)

// Sanitize removes markdown sigils and symbol glyphs so they are not read
// aloud, keeps link labels, and collapses whitespace.
func Sanitize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	raw = markdownLinkPattern.ReplaceAllString(raw, "$1")
	raw = sigilReplacer.Replace(raw)

	var b strings.Builder
	b.Grow(len(raw))
	prevSpace := true
	for _, r := range raw {
		switch {
		case r == '\u200d' || r == '\ufe0f':
			continue
		case unicode.IsSpace(r):
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
		case unicode.IsControl(r), unicode.Is(unicode.So, r):
			continue
		default:
			b.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}
