package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		changed bool
	}{
		{"plain", "Namaste! Kaise ho?", "Namaste! Kaise ho?", false},
		{"email", "mail me at ravi@example.in", "mail me at [REDACTED_EMAIL]", true},
		{"card before phone", "card 4242 4242 4242 4242 ok", "card [REDACTED_CARD] ok", true},
		{"phone", "call +91 98765 43210 now", "call [REDACTED_PHONE] now", true},
		{"api key", "my key is sk-or-v1abcdefghijklmnop1234", "my key is [REDACTED_KEY]", true},
		{"short numbers kept", "It is 10.30 and 42 degrees.", "It is 10.30 and 42 degrees.", false},
		{"grouped mobile", "ring 98765 43210 later", "ring [REDACTED_PHONE] later", true},
		{"dashed local", "office (555) 123-4567", "office [REDACTED_PHONE]", true},
		{"year range kept", "The war lasted 1939-1945.", "The war lasted 1939-1945.", false},
		{"figures kept", "Revenue grew to 12345678 in 2021 2022.", "Revenue grew to 12345678 in 2021 2022.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := Redact(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)
		})
	}
}
