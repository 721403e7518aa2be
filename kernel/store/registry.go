package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/openziti/virgo/kernel/model"
)

// ProviderFactory opens a provider handle from configuration.
type ProviderFactory func(cfg *model.VirgoConfig) (Provider, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]ProviderFactory)
)

// RegisterProviderType registers a factory for a given provider name.
// e.g. RegisterProviderType("ec2", OpenEc2)
func RegisterProviderType(name string, factory ProviderFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("RegisterProviderType called twice for " + name)
	}
	registry[name] = factory
}

func ProviderTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open creates the provider handle named by cfg.Provider. The caller owns the handle and must Close it.
func Open(cfg *model.VirgoConfig) (Provider, error) {
	registryMu.RLock()
	factory, ok := registry[cfg.Provider]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("provider type '%s' not found in registry", cfg.Provider)
	}
	return factory(cfg)
}
