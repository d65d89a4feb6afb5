package ai

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Decode strictly parses text as a single JSON value. Numbers are kept as
// json.Number so the normalizers decide how to coerce them. Trailing data
// after the first value is rejected. Decode never panics.
func Decode(text string) (any, bool) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return v, true
}

// DecodeObject is Decode restricted to JSON objects.
func DecodeObject(text string) (map[string]any, bool) {
	v, ok := Decode(text)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}
