package testutil

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"voice-type/internal/app/api/provider"
)

// ProviderCall records one Transcribe invocation
type ProviderCall struct {
	InputFilePath string
	Language      string
	// FileExisted is whether the input file was on disk when the engine ran
	FileExisted bool
	// FileContents is what the engine found in the input file
	FileContents []byte
}

// MockProvider is a scriptable provider.TranscriptionProvider. It returns
// Segments, or Err, after Latency, and tracks how many calls overlap.
type MockProvider struct {
	mu sync.Mutex

	Name     string
	Segments []provider.Segment
	Err      error
	// IterErr is returned by the iterator after the segments, simulating a
	// decode failure midway through
	IterErr error
	Latency time.Duration

	Calls         []ProviderCall
	inFlight      int
	MaxConcurrent int
	Closed        bool
}

// NewMockProvider creates a provider that transcribes every file to text
func NewMockProvider(text ...string) *MockProvider {
	m := &MockProvider{Name: "mock"}
	for i, t := range text {
		m.Segments = append(m.Segments, provider.Segment{
			Index: i,
			Start: time.Duration(i) * time.Second,
			End:   time.Duration(i+1) * time.Second,
			Text:  t,
		})
	}
	return m
}

// WithError makes every call fail with err
func (m *MockProvider) WithError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
	return m
}

// WithLatency makes every call block for latency, or until ctx is done
func (m *MockProvider) WithLatency(latency time.Duration) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Latency = latency
	return m
}

func (m *MockProvider) Transcribe(ctx context.Context, request *provider.TranscriptionRequest) (provider.SegmentIterator, error) {
	data, statErr := os.ReadFile(request.InputFilePath)

	m.mu.Lock()
	m.Calls = append(m.Calls, ProviderCall{
		InputFilePath: request.InputFilePath,
		Language:      request.Language,
		FileExisted:   statErr == nil,
		FileContents:  data,
	})
	m.inFlight++
	if m.inFlight > m.MaxConcurrent {
		m.MaxConcurrent = m.inFlight
	}
	latency, err, iterErr := m.Latency, m.Err, m.IterErr
	segments := append([]provider.Segment(nil), m.Segments...)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}
	return &mockIterator{segments: segments, err: iterErr}, nil
}

func (m *MockProvider) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        m.Name,
		DisplayName: "Mock Provider",
		Type:        provider.ProviderTypeLocal,
		Model:       "mock-small",
	}
}

func (m *MockProvider) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// CallCount returns how many times Transcribe was called
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent call
func (m *MockProvider) LastCall() ProviderCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return ProviderCall{}
	}
	return m.Calls[len(m.Calls)-1]
}

// LastSuffix is the extension of the most recent input file
func (m *MockProvider) LastSuffix() string {
	return filepath.Ext(m.LastCall().InputFilePath)
}

// Peak returns the highest number of overlapping calls seen
func (m *MockProvider) Peak() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.MaxConcurrent
}

type mockIterator struct {
	segments []provider.Segment
	pos      int
	err      error
	closed   bool
}

func (it *mockIterator) Next() (provider.Segment, error) {
	if it.pos < len(it.segments) {
		seg := it.segments[it.pos]
		it.pos++
		return seg, nil
	}
	if it.err != nil {
		return provider.Segment{}, it.err
	}
	return provider.Segment{}, io.EOF
}

func (it *mockIterator) Close() error {
	it.closed = true
	return nil
}
