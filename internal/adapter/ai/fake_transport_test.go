package ai

import (
	"sync"
	"time"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// fakeTransport replays canned responses and counts calls.
type fakeTransport struct {
	mu        sync.Mutex
	text      string
	err       error
	available bool
	calls     int
	probes    int
}

func (f *fakeTransport) GenerateText(_ domain.Context, _ domain.Prompt, _ time.Duration) (domain.RawModelResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return domain.RawModelResponse{Provider: "fake", ErrKind: domain.ClassifyTransportError(f.err)}, f.err
	}
	return domain.RawModelResponse{Text: f.text, Provider: "fake", ErrKind: domain.TransportErrNone}, nil
}

func (f *fakeTransport) ProbeAvailability(_ domain.Context, _ time.Duration) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes++
	return f.available
}

func (f *fakeTransport) set(text string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text, f.err = text, err
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
