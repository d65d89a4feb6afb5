package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorConstants(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ErrInvalidArgument", ErrInvalidArgument, "invalid argument"},
		{"ErrInternal", ErrInternal, "internal error"},
		{"ErrUpstreamTimeout", ErrUpstreamTimeout, "upstream timeout"},
		{"ErrUpstreamUnavailable", ErrUpstreamUnavailable, "upstream unavailable"},
		{"ErrUpstreamStatus", ErrUpstreamStatus, "upstream status"},
		{"ErrUpstreamEmpty", ErrUpstreamEmpty, "upstream empty response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestClassifyTransportError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want TransportErrorKind
	}{
		{"nil", nil, TransportErrNone},
		{"timeout_sentinel", fmt.Errorf("ollama generate: %w", ErrUpstreamTimeout), TransportErrTimeout},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), TransportErrTimeout},
		{"unavailable", fmt.Errorf("dial: %w", ErrUpstreamUnavailable), TransportErrUnavailable},
		{"status", fmt.Errorf("%w: 502", ErrUpstreamStatus), TransportErrStatus},
		{"empty", ErrUpstreamEmpty, TransportErrEmpty},
		{"other", errors.New("boom"), TransportErrUnknown},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClassifyTransportError(tt.err))
		})
	}
}

func TestQuestionJSONShape(t *testing.T) {
	b, err := json.Marshal(Question{Text: "Why Go?", Type: QuestionTechnical, Order: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"question_text":"Why Go?","question_type":"technical","order":1}`, string(b))
}

func TestParsedResumeEmptySlicesEncodeAsArrays(t *testing.T) {
	r := ParsedResume{Skills: []string{}, Experience: []any{}, Education: []any{}}
	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"","email":"","phone":"","skills":[],"experience":[],"education":[]}`, string(b))
}
