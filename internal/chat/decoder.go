package chat

import (
	"strings"
	"unicode/utf8"
)

// utf8Decoder turns arbitrary byte chunks into valid text, holding back an
// incomplete trailing sequence until the rest of it arrives. Invalid bytes
// become U+FFFD.
type utf8Decoder struct {
	pending []byte
}

func (d *utf8Decoder) decode(p []byte) string {
	data := append(d.pending, p...)
	cut := len(data)
	for i := len(data) - 1; i >= 0 && i >= len(data)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(data[i]) {
			continue
		}
		if !utf8.FullRune(data[i:]) {
			cut = i
		}
		break
	}
	d.pending = append([]byte(nil), data[cut:]...)
	return strings.ToValidUTF8(string(data[:cut]), "�")
}

// flush returns whatever is still pending at end of stream.
func (d *utf8Decoder) flush() string {
	rest := d.pending
	d.pending = nil
	return strings.ToValidUTF8(string(rest), "�")
}
