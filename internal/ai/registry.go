package ai

import (
	"fmt"
	"sort"
	"strings"
)

// ProviderFactory builds a configured provider. Factories run lazily so
// an unused provider's environment is never validated.
type ProviderFactory func() (Provider, error)

var providers = make(map[string]ProviderFactory)

// RegisterProvider makes a factory available under name. Provider
// packages call this from init; the last registration for a name wins.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewProvider instantiates the provider registered under name.
func NewProvider(name string) (Provider, error) {
	factory, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown AI provider %q (registered: %s)", name, strings.Join(registeredProviders(), ", "))
	}
	return factory()
}

func registeredProviders() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
