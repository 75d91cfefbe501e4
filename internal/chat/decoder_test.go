package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUTF8DecoderCarriesPartialRunes(t *testing.T) {
	text := "héllo नमस्ते 👋 done"
	raw := []byte(text)

	var dec utf8Decoder
	var out strings.Builder
	for i := range raw {
		out.WriteString(dec.decode(raw[i : i+1]))
	}
	out.WriteString(dec.flush())
	assert.Equal(t, text, out.String())
}

func TestUTF8DecoderReplacesInvalidBytes(t *testing.T) {
	var dec utf8Decoder
	assert.Equal(t, "a�b", dec.decode([]byte{'a', 0xff, 'b'}))

	assert.Equal(t, "x", dec.decode([]byte{'x', 0xe0, 0xa4}))
	assert.Equal(t, "�", dec.flush())
	assert.Equal(t, "", dec.flush())
}
