package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrUnknownProvider is returned when no creator is registered for a backend
var ErrUnknownProvider = errors.New("unknown provider")

var (
	registryMutex    sync.RWMutex
	providerRegistry = make(map[string]ProviderCreator)
)

// RegisterProvider registers a provider creator function. Backends call it
// from init so that importing the package makes them available.
func RegisterProvider(providerType string, creator ProviderCreator) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	providerRegistry[providerType] = creator
}

// ListRegisteredProviders returns all registered provider types, sorted
func ListRegisteredProviders() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	providers := lo.Keys(providerRegistry)
	sort.Strings(providers)
	return providers
}

// CreateProvider builds the provider selected by config.Backend
func CreateProvider(ctx context.Context, config ProviderConfig, logger *zap.Logger) (TranscriptionProvider, error) {
	registryMutex.RLock()
	creator, ok := providerRegistry[config.Backend]
	registryMutex.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %v)", ErrUnknownProvider, config.Backend, ListRegisteredProviders())
	}
	return creator(ctx, config, logger.With(zap.String("provider", config.Backend)))
}
