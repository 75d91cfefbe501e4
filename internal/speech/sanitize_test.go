package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "bold and headers", in: "## **Step one:** run it", want: "Step one: run it"},
		{name: "inline code ticks", in: "Call `make test` now.", want: "Call make test now."},
		{name: "underscores", in: "_really_ good", want: "really good"},
		{name: "link keeps label", in: "Read [the docs](https://example.com) first.", want: "Read the docs first."},
		{name: "emoji dropped", in: "Sure 😊 let's go!", want: "Sure let's go!"},
		{name: "newlines collapse", in: "one\n\n two", want: "one two"},
		{name: "only sigils", in: "***", want: ""},
		{name: "devanagari kept", in: "**नमस्ते** दोस्त", want: "नमस्ते दोस्त"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Sanitize(tc.in))
		})
	}
}
