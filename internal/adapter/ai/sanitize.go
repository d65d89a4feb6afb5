// Package ai turns free-form model output into bounded, typed interview data.
// It holds the sanitizer, decoder, field normalizers, prompt builders and
// fallback generators, plus the transport decorators (cache, circuit breaker).
package ai

import (
	"regexp"
	"strings"
)

// trailingComma matches a comma followed only by whitespace before a closing brace or bracket.
var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

// maxBalancedStarts bounds the balanced-span scan on pathological inputs.
const maxBalancedStarts = 64

// ExtractJSONBlock isolates a JSON substring from arbitrary model output.
// The widest object span (first '{' .. last '}') is tried before the widest
// array span (first '[' .. last ']'). When neither decodes, the first balanced
// object that does decode is returned. A returned string always decodes.
func ExtractJSONBlock(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	for _, cand := range wideCandidates(text) {
		if cleaned, ok := tryCandidate(cand); ok {
			return cleaned, true
		}
	}
	return firstBalancedObject(text)
}

// ExtractJSON is ExtractJSONBlock followed by Decode.
func ExtractJSON(text string) (any, bool) {
	block, ok := ExtractJSONBlock(text)
	if !ok {
		return nil, false
	}
	return Decode(block)
}

func wideCandidates(text string) []string {
	out := make([]string, 0, 2)
	if s, e := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}'); s != -1 && e > s {
		out = append(out, text[s:e+1])
	}
	if s, e := strings.IndexByte(text, '['), strings.LastIndexByte(text, ']'); s != -1 && e > s {
		out = append(out, text[s:e+1])
	}
	return out
}

// tryCandidate decodes the trimmed span as is, and only when that fails
// retries with trailing commas dropped. Valid JSON is never rewritten.
func tryCandidate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if _, ok := Decode(s); ok {
		return s, true
	}
	cleaned := trailingComma.ReplaceAllString(s, "$1")
	if _, ok := Decode(cleaned); ok {
		return cleaned, true
	}
	return "", false
}

// firstBalancedObject walks '{' positions left to right and returns the first
// balanced span that decodes. Braces inside string literals are ignored.
func firstBalancedObject(text string) (string, bool) {
	offset := 0
	for starts := 0; starts < maxBalancedStarts; starts++ {
		i := strings.IndexByte(text[offset:], '{')
		if i == -1 {
			return "", false
		}
		start := offset + i
		if end, ok := matchBrace(text, start); ok {
			if cleaned, ok := tryCandidate(text[start : end+1]); ok {
				return cleaned, true
			}
		}
		offset = start + 1
	}
	return "", false
}

// matchBrace returns the index of the '}' closing the '{' at start.
func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
