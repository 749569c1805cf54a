package typedclient

import (
	"net/http"
	"net/url"

	"github.com/kbukum/clientkit/di"
	"github.com/kbukum/clientkit/httpclient"
	"github.com/kbukum/clientkit/httpclient/rest"
)

// Settings configures one client type. A Settings value is read-only once a
// provider has returned it.
type Settings struct {
	// TransportName opts the client into a shared transport. Empty gives
	// the client type its own transport.
	TransportName string
	// BaseAddress is the base address of the transport.
	BaseAddress *url.URL
	// OverwriteBaseAddress replaces a base address already set on a shared
	// transport.
	OverwriteBaseAddress bool

	// HandlerFactory builds the innermost transport. Nil uses the transport
	// factory's default.
	HandlerFactory func() (http.RoundTripper, error)
	// AuthSupplier returns the credential attached to every request.
	AuthSupplier httpclient.TokenSupplier
	// ParameterizedAuthSupplier returns the credential for a specific
	// request, e.g. one scoped to its host.
	ParameterizedAuthSupplier httpclient.RequestTokenSupplier
	// AuthScheme prefixes the credential. Defaults to Bearer.
	AuthScheme string
	// LegacyAuthPrecedence lets AuthSupplier win when both suppliers are
	// set instead of failing resolution.
	LegacyAuthPrecedence bool

	// ContentSerializer encodes request and decodes response bodies.
	// Nil uses JSON.
	ContentSerializer rest.Serializer

	// TransportOptions are applied when this client creates its transport.
	TransportOptions []httpclient.Option
}

// SettingsProvider produces the Settings of a client type. The resolver is
// scoped to the resolution in progress and must not be retained.
type SettingsProvider func(r di.Resolver) (*Settings, error)

// StaticSettings returns a provider that always yields s.
func StaticSettings(s *Settings) SettingsProvider {
	return func(di.Resolver) (*Settings, error) {
		return s, nil
	}
}

func (s *Settings) serializer() rest.Serializer {
	if s.ContentSerializer == nil {
		return rest.DefaultSerializer
	}
	return s.ContentSerializer
}

func (s *Settings) authScheme() string {
	if s.AuthScheme == "" {
		return httpclient.DefaultAuthScheme
	}
	return s.AuthScheme
}

// settingsConstructor registers provider as the container singleton
// holding a type's Settings. A nil provider or a nil result yields zero
// Settings.
func settingsConstructor(provider SettingsProvider) di.Constructor {
	return func(r di.Resolver) (any, error) {
		if provider == nil {
			return &Settings{}, nil
		}
		s, err := provider(r)
		if err != nil {
			return nil, err
		}
		if s == nil {
			s = &Settings{}
		}
		return s, nil
	}
}
