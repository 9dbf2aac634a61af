package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"voice-type/internal/api/v1/dto"
	"voice-type/internal/app/api/provider"
)

// MockTranscriptionService is a mock implementation of TranscriptionService
type MockTranscriptionService struct {
	mock.Mock
}

func NewMockTranscriptionService(t *testing.T) *MockTranscriptionService {
	m := &MockTranscriptionService{}
	m.Test(t)
	return m
}

func (m *MockTranscriptionService) Transcribe(ctx context.Context, req *dto.TranscribeRequest) (*dto.TranscribeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TranscribeResponse), args.Error(1)
}

func (m *MockTranscriptionService) Ready() bool {
	args := m.Called()
	return args.Bool(0)
}

// RecordingMetrics implements provider.ProviderMetrics and keeps every event
type RecordingMetrics struct {
	mu        sync.Mutex
	Successes []string
	Failures  map[string][]string
}

var _ provider.ProviderMetrics = (*RecordingMetrics)(nil)

func NewRecordingMetrics() *RecordingMetrics {
	return &RecordingMetrics{Failures: make(map[string][]string)}
}

func (r *RecordingMetrics) RecordSuccess(provider string, latency time.Duration, segments int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Successes = append(r.Successes, provider)
}

func (r *RecordingMetrics) RecordFailure(provider string, errorType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures[provider] = append(r.Failures[provider], errorType)
}

// SuccessCount returns how many successes were recorded
func (r *RecordingMetrics) SuccessCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Successes)
}

// FailureCodes returns the error codes recorded for provider
func (r *RecordingMetrics) FailureCodes(provider string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.Failures[provider]...)
}
