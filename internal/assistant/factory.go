package assistant

import (
	"fmt"

	"terroir/internal/config"
	"terroir/internal/port"
)

// ProviderFactory creates a DossierAssistant from a provider config.
type ProviderFactory func(cfg *config.AssistantProviderConfig) (port.DossierAssistant, error)

// providers is populated explicitly via RegisterProvider at startup.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an assistant provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewAssistant creates a DossierAssistant from a provider config using the registered factory.
func NewAssistant(cfg *config.AssistantProviderConfig) (port.DossierAssistant, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown assistant provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// FromConfig builds the fallback chain for every configured provider.
func FromConfig(cfg *config.AssistantConfig) (*Fallback, error) {
	var chain []Named
	for _, pc := range cfg.Providers() {
		a, err := NewAssistant(pc)
		if err != nil {
			return nil, err
		}
		chain = append(chain, Named{Name: pc.Provider, Assistant: a})
	}
	return NewFallback(chain), nil
}
