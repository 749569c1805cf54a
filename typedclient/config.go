package typedclient

import (
	"fmt"
	"net/url"

	"github.com/kbukum/clientkit/config"
	"github.com/kbukum/clientkit/di"
	"github.com/kbukum/clientkit/errors"
)

// UseConfig registers loaded client definitions in c for SettingsFromConfig.
func UseConfig(c di.Container, cfg *config.ClientsConfig) error {
	if c == nil {
		return errors.InvalidArgument("container", "must not be nil")
	}
	if cfg == nil {
		return errors.InvalidArgument("config", "must not be nil")
	}
	return c.RegisterInstance(di.Keys.Config, cfg)
}

// SettingsFromConfig returns a provider building Settings from the client
// entry name of the *config.ClientsConfig registered under di.Keys.Config.
func SettingsFromConfig(name string) SettingsProvider {
	return func(r di.Resolver) (*Settings, error) {
		cfg, err := di.Resolve[*config.ClientsConfig](r, di.Keys.Config)
		if err != nil {
			return nil, err
		}
		entry, ok := cfg.Client(name)
		if !ok {
			return nil, errors.InvalidConfig(fmt.Sprintf("no client entry %q", name)).
				WithDetail("client", name)
		}
		return settingsFromEntry(entry)
	}
}

func settingsFromEntry(entry config.ClientConfig) (*Settings, error) {
	s := &Settings{
		TransportName:        entry.Transport,
		OverwriteBaseAddress: entry.OverwriteBaseURL,
		AuthSupplier:         entry.TokenSupplier(),
		AuthScheme:           entry.AuthScheme,
		TransportOptions:     entry.TransportOptions(),
	}
	if entry.BaseURL != "" {
		u, err := url.Parse(entry.BaseURL)
		if err != nil {
			return nil, errors.InvalidConfig(fmt.Sprintf("invalid base_url %q", entry.BaseURL)).WithCause(err)
		}
		s.BaseAddress = u
	}
	return s, nil
}
