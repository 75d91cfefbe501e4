package transcript

import "regexp"

type redaction struct {
	pattern *regexp.Regexp
	mask    string
}

// Order matters: card numbers would otherwise match the phone rule, and keys
// can contain digit runs.
var redactions = []redaction{
	{regexp.MustCompile(`\b(?:sk|pk|rk)-[A-Za-z0-9_\-]{16,}\b`), "[REDACTED_KEY]"},
	{regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`), "[REDACTED_EMAIL]"},
	{regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`), "[REDACTED_CARD]"},
	// International numbers need a + prefix; local ones must be grouped like
	// 98765 43210 or 555-123-4567 so year ranges and figures stay intact.
	{regexp.MustCompile(`\+\d{1,3}[ \-]?(?:\(\d{1,4}\)|\d{1,4})(?:[ \-]?\d{2,5}){2,4}\b` +
		`|\(\d{3}\)[ \-]?\d{3}[ \-.]\d{4}\b` +
		`|\b\d{3}[\-.]\d{3}[\-.]\d{4}\b` +
		`|\b\d{5}[ \-]\d{5}\b`), "[REDACTED_PHONE]"},
}

// Redact masks API keys, email addresses, card and phone numbers before text
// is stored. It reports whether anything was masked.
func Redact(content string) (string, bool) {
	out := content
	for _, r := range redactions {
		out = r.pattern.ReplaceAllString(out, r.mask)
	}
	return out, out != content
}
