package llm

import (
	"errors"
)

// ErrNoJSON indicates the text contained no extractable JSON value.
var ErrNoJSON = errors.New("llm: no JSON found in output")

// ExtractArray returns the first bracket-balanced JSON array substring
// of text. Models wrap JSON in prose and code fences; this scans past
// that noise. The result is a candidate: callers still unmarshal it.
func ExtractArray(text string) (string, error) {
	return extract(text, '[', ']')
}

// ExtractObject returns the first brace-balanced JSON object substring
// of text.
func ExtractObject(text string) (string, error) {
	return extract(text, '{', '}')
}

// extract scans for the first balanced open..close span, ignoring
// delimiters inside JSON strings.
func extract(text string, open, close byte) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			if start >= 0 {
				inString = true
			}
		case open:
			if start < 0 {
				start = i
			}
			depth++
		case close:
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}

	return "", ErrNoJSON
}
