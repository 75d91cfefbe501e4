// Package segment peels complete sentences off a growing text buffer.
//
// A sentence ends with a run of '.', '!', '?' or '\n' that is followed by
// whitespace. While text is still streaming, a run is only committed once the
// character after it has arrived, so the result does not depend on where chunk
// boundaries fall ("3." followed by "14" never yields a sentence). At stream
// end Flush emits whatever is left.
package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Segmenter keeps the unconsumed remainder between pushes.
type Segmenter struct {
	remainder string
}

func New() *Segmenter {
	return &Segmenter{}
}

// Push appends a chunk and returns every sentence completed by it.
func (s *Segmenter) Push(chunk string) []string {
	if chunk == "" {
		return nil
	}
	sentences, rest := Extract(s.remainder + chunk)
	s.remainder = rest
	return sentences
}

// Finalize drains the remainder as the last sentence, if any.
func (s *Segmenter) Finalize() []string {
	rest := s.remainder
	s.remainder = ""
	if last, ok := Flush(rest); ok {
		return []string{last}
	}
	return nil
}

// Remainder returns the text not yet emitted as a sentence.
func (s *Segmenter) Remainder() string {
	return s.remainder
}

// Reset discards the remainder.
func (s *Segmenter) Reset() {
	s.remainder = ""
}

// Extract returns the completed sentences in buffer, in order, and the
// unconsumed remainder.
func Extract(buffer string) (sentences []string, remainder string) {
	for {
		end, ok := nextBoundary(buffer)
		if !ok {
			return sentences, buffer
		}
		if sentence := strings.TrimSpace(buffer[:end]); sentence != "" {
			sentences = append(sentences, sentence)
		}
		buffer = buffer[end:]
	}
}

// Flush returns the trimmed remainder as a final sentence.
func Flush(remainder string) (string, bool) {
	last := strings.TrimSpace(remainder)
	return last, last != ""
}

// nextBoundary finds the leftmost terminator run whose tail is followed by
// whitespace and returns the byte offset just past the committed terminators.
// Runs that touch the end of input are left undecided.
func nextBoundary(buffer string) (int, bool) {
	for start := 0; start < len(buffer); start++ {
		if !isTerminator(buffer[start]) {
			continue
		}
		runEnd := start
		for runEnd < len(buffer) && isTerminator(buffer[runEnd]) {
			runEnd++
		}
		if runEnd == len(buffer) || !utf8.FullRuneInString(buffer[runEnd:]) {
			return 0, false
		}
		// Greedy first, then give back terminators until one is followed by
		// whitespace (a '\n' inside the run counts as that whitespace).
		for end := runEnd; end > start; end-- {
			if startsWithSpace(buffer[end:]) {
				return end, true
			}
		}
		start = runEnd - 1
	}
	return 0, false
}

func isTerminator(b byte) bool {
	switch b {
	case '.', '!', '?', '\n':
		return true
	default:
		return false
	}
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}
