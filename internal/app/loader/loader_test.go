package loader

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"voice-type/internal/app/api/provider"
)

type fakeProvider struct {
	closed bool
}

func (f *fakeProvider) Transcribe(ctx context.Context, request *provider.TranscriptionRequest) (provider.SegmentIterator, error) {
	return provider.NewSliceIterator(nil), nil
}

func (f *fakeProvider) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{Name: "loader_test", DisplayName: "Loader Test", Model: "tiny"}
}

func (f *fakeProvider) Close() error {
	f.closed = true
	return nil
}

func init() {
	provider.RegisterProvider("loader_test", func(ctx context.Context, config provider.ProviderConfig, logger *zap.Logger) (provider.TranscriptionProvider, error) {
		return &fakeProvider{}, nil
	})
	provider.RegisterProvider("loader_test_broken", func(ctx context.Context, config provider.ProviderConfig, logger *zap.Logger) (provider.TranscriptionProvider, error) {
		return nil, errors.New("model weights corrupt")
	})
}

func TestHandle_Lifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewHandle(reg)

	_, ok := h.Provider()
	assert.False(t, ok)
	assert.False(t, h.Ready())
	assert.Equal(t, 0.0, testutil.ToFloat64(h.loaded))

	require.NoError(t, h.Load(context.Background(), provider.ProviderConfig{Backend: "loader_test", Model: "tiny"}, zap.NewNop()))
	assert.True(t, h.Ready())
	assert.Equal(t, 1.0, testutil.ToFloat64(h.loaded))

	p, ok := h.Provider()
	require.True(t, ok)

	err := h.Load(context.Background(), provider.ProviderConfig{Backend: "loader_test"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrAlreadyLoaded)

	require.NoError(t, h.Close())
	assert.True(t, p.(*fakeProvider).closed)
	assert.False(t, h.Ready())
	assert.Equal(t, 0.0, testutil.ToFloat64(h.loaded))
}

func TestHandle_LoadFailureLeavesNotReady(t *testing.T) {
	h := NewHandle(nil)

	err := h.Load(context.Background(), provider.ProviderConfig{Backend: "loader_test_broken"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model weights corrupt")
	assert.False(t, h.Ready())

	err = h.Load(context.Background(), provider.ProviderConfig{Backend: "missing"}, zap.NewNop())
	assert.ErrorIs(t, err, provider.ErrUnknownProvider)
}

func TestHandle_ConcurrentReaders(t *testing.T) {
	h := NewHandle(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.Ready()
			}
		}()
	}
	require.NoError(t, h.Set(&fakeProvider{}))
	wg.Wait()

	assert.True(t, h.Ready())
	assert.ErrorIs(t, h.Set(&fakeProvider{}), ErrAlreadyLoaded)
}

func TestHandle_LoadAfterCloseReleasesEngine(t *testing.T) {
	var created *fakeProvider
	provider.RegisterProvider("loader_test_tracked", func(ctx context.Context, config provider.ProviderConfig, logger *zap.Logger) (provider.TranscriptionProvider, error) {
		created = &fakeProvider{}
		return created, nil
	})

	h := NewHandle(nil)
	require.NoError(t, h.Close())

	err := h.Load(context.Background(), provider.ProviderConfig{Backend: "loader_test_tracked"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrClosed)
	require.NotNil(t, created)
	assert.True(t, created.closed)
	assert.False(t, h.Ready())

	assert.ErrorIs(t, h.Set(&fakeProvider{}), ErrClosed)
}
