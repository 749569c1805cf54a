package typedclient

import (
	"context"
	stderrors "errors"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kbukum/clientkit/config"
	"github.com/kbukum/clientkit/di"
	"github.com/kbukum/clientkit/errors"
	"github.com/kbukum/clientkit/httpclient"
	"github.com/kbukum/clientkit/httpclient/rest"
	"github.com/kbukum/clientkit/observability"
)

func TestSharedName_FirstWriterBaseAddress(t *testing.T) {
	c := di.NewContainer()
	if _, err := AddClient[Accounts](c, &Settings{
		TransportName: "svc",
		BaseAddress:   mustURL(t, "https://a.example"),
	}, newAccounts); err != nil {
		t.Fatalf("AddClient Accounts: %v", err)
	}
	if _, err := AddClient[Billing](c, &Settings{
		TransportName: "svc",
		BaseAddress:   mustURL(t, "https://b.example"),
	}, newBilling); err != nil {
		t.Fatalf("AddClient Billing: %v", err)
	}

	accounts := MustResolve[Accounts](c)
	billing := MustResolve[Billing](c)

	if accounts.Transport() != billing.Transport() {
		t.Fatal("clients with the same name must share the transport instance")
	}
	if got := accounts.Transport().BaseURL().String(); got != "https://a.example" {
		t.Errorf("base address = %q, want the first registrant's", got)
	}

	registry := di.MustResolve[*Registry](c, di.Keys.Registry)
	if registry.Len() != 1 {
		t.Errorf("registry holds %d transports, want 1", registry.Len())
	}
}

func TestSharedName_OverwriteBaseAddress(t *testing.T) {
	c := di.NewContainer()
	_, _ = AddClient[Accounts](c, &Settings{TransportName: "svc", BaseAddress: mustURL(t, "https://a.example")}, newAccounts)
	_, _ = AddClient[Billing](c, &Settings{
		TransportName:        "svc",
		BaseAddress:          mustURL(t, "https://b.example"),
		OverwriteBaseAddress: true,
	}, newBilling)

	accounts := MustResolve[Accounts](c)
	_ = MustResolve[Billing](c)
	if got := accounts.Transport().BaseURL().String(); got != "https://b.example" {
		t.Errorf("base address = %q, want the overwriting registrant's", got)
	}
}

func TestDifferentNames_DistinctTransports(t *testing.T) {
	c := di.NewContainer()
	_, _ = AddClient[Accounts](c, &Settings{TransportName: "accounts", BaseAddress: mustURL(t, "https://a.example")}, newAccounts)
	_, _ = AddClient[Billing](c, &Settings{TransportName: "billing", BaseAddress: mustURL(t, "https://b.example")}, newBilling)

	accounts := MustResolve[Accounts](c)
	billing := MustResolve[Billing](c)

	if accounts.Transport() == billing.Transport() {
		t.Fatal("different names must not share a transport")
	}
	if got := accounts.Transport().BaseURL().String(); got != "https://a.example" {
		t.Errorf("accounts base = %q", got)
	}
	if got := billing.Transport().BaseURL().String(); got != "https://b.example" {
		t.Errorf("billing base = %q", got)
	}
}

func TestUnnamed_IndependentTransports(t *testing.T) {
	c := di.NewContainer()
	_, _ = AddClient[Accounts](c, &Settings{BaseAddress: mustURL(t, "https://a.example")}, newAccounts)
	_, _ = AddClient[Billing](c, nil, newBilling)

	accounts := MustResolve[Accounts](c)
	billing := MustResolve[Billing](c)

	if accounts.Transport() == billing.Transport() {
		t.Fatal("unnamed client types must get distinct transports")
	}
	if accounts.Transport().Transport() == billing.Transport().Transport() {
		t.Error("unnamed client types must not share a handler chain")
	}
	if got := accounts.Transport().Name(); got != UniqueName(reflect.TypeFor[Accounts]()) {
		t.Errorf("transport name = %q", got)
	}
	if got := accounts.Transport().BaseURL().String(); got != "https://a.example" {
		t.Errorf("base = %q", got)
	}

	registry := di.MustResolve[*Registry](c, di.Keys.Registry)
	if registry.Len() != 0 {
		t.Errorf("unnamed clients must not use the registry, found %v", registry.Names())
	}
}

func TestUnnamed_SameTypeSharesPool(t *testing.T) {
	c := di.NewContainer()
	_, _ = AddClient[Accounts](c, nil, newAccounts)

	first := MustResolve[Accounts](c)
	second := MustResolve[Accounts](c)
	if first == second {
		t.Error("every resolution must return a new client")
	}
	if first.Transport().Transport() != second.Transport().Transport() {
		t.Error("resolutions of one type should reuse its handler chain")
	}
}

func TestAuthSupplier_EveryRequest(t *testing.T) {
	srv := newRecorder(t)
	c := di.NewContainer()
	_, _ = AddClient[Accounts](c, &Settings{
		BaseAddress:  mustURL(t, srv.URL),
		AuthSupplier: httpclient.StaticToken("token-123"),
	}, newAccounts)

	accounts := MustResolve[Accounts](c)
	for range 3 {
		got, err := accounts.Get(context.Background(), "1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Name != "Alice" {
			t.Errorf("Name = %q", got.Name)
		}
	}

	reqs := srv.requests()
	if len(reqs) != 3 {
		t.Fatalf("server saw %d requests, want 3", len(reqs))
	}
	for i, h := range reqs {
		if got := h.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("request %d Authorization = %q", i, got)
		}
	}
}

func TestParameterizedAuthSupplier(t *testing.T) {
	srv := newRecorder(t)
	c := di.NewContainer()
	_, _ = AddClient[Accounts](c, &Settings{
		BaseAddress: mustURL(t, srv.URL),
		ParameterizedAuthSupplier: func(r *http.Request) (string, error) {
			return "for-" + r.URL.Path, nil
		},
	}, newAccounts)

	if _, err := MustResolve[Accounts](c).Get(context.Background(), "7"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := srv.requests()[0].Get("Authorization"); got != "Bearer for-/accounts/7" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestAmbiguousAuth(t *testing.T) {
	srv := newRecorder(t)
	settings := &Settings{
		BaseAddress:               mustURL(t, srv.URL),
		AuthSupplier:              httpclient.StaticToken("single"),
		ParameterizedAuthSupplier: func(*http.Request) (string, error) { return "param", nil },
	}

	c := di.NewContainer()
	_, _ = AddClient[Accounts](c, settings, newAccounts)
	if _, err := Resolve[Accounts](c); !errors.IsCode(err, errors.ErrCodeAmbiguousAuth) {
		t.Fatalf("expected AMBIGUOUS_AUTH, got %v", err)
	}

	legacy := *settings
	legacy.LegacyAuthPrecedence = true
	c = di.NewContainer()
	_, _ = AddClient[Accounts](c, &legacy, newAccounts)
	if _, err := MustResolve[Accounts](c).Get(context.Background(), "1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := srv.requests()[0].Get("Authorization"); got != "Bearer single" {
		t.Errorf("Authorization = %q, want the single-argument supplier", got)
	}
}

func TestAmbiguousAuth_DetectedOnSharedTransport(t *testing.T) {
	c := di.NewContainer()
	_, _ = AddClient[Accounts](c, &Settings{TransportName: "svc"}, newAccounts)
	_, _ = AddClient[Billing](c, &Settings{
		TransportName:             "svc",
		AuthSupplier:              httpclient.StaticToken("a"),
		ParameterizedAuthSupplier: func(*http.Request) (string, error) { return "b", nil },
	}, newBilling)

	_ = MustResolve[Accounts](c)
	if _, err := Resolve[Billing](c); !errors.IsCode(err, errors.ErrCodeAmbiguousAuth) {
		t.Errorf("expected AMBIGUOUS_AUTH for a reusing registrant, got %v", err)
	}
}

func TestConcurrentResolution_SingleTransport(t *testing.T) {
	c := di.NewContainer()
	var builds atomic.Int32
	_, _ = AddClient[Accounts](c, &Settings{
		TransportName: "shared",
		HandlerFactory: func() (http.RoundTripper, error) {
			builds.Add(1)
			return http.DefaultTransport.(*http.Transport).Clone(), nil
		},
	}, newAccounts)

	const workers = 100
	start := make(chan struct{})
	transports := make([]*httpclient.Client, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			a, err := Resolve[Accounts](c)
			if err != nil {
				t.Errorf("Resolve: %v", err)
				return
			}
			transports[i] = a.Transport()
		}()
	}
	close(start)
	wg.Wait()

	registry := di.MustResolve[*Registry](c, di.Keys.Registry)
	if registry.Len() != 1 {
		t.Fatalf("registry holds %d transports, want 1", registry.Len())
	}
	stored, _ := registry.Get("shared")
	for i, tr := range transports {
		if tr != stored {
			t.Fatalf("caller %d holds a different transport", i)
		}
	}
	if builds.Load() != 1 {
		t.Errorf("handler factory invoked %d times, want 1", builds.Load())
	}
}

func TestSettingsProvider_InvokedOnce(t *testing.T) {
	c := di.NewContainer()
	var calls atomic.Int32
	_, _ = AddClientFunc[Accounts](c, func(di.Resolver) (*Settings, error) {
		calls.Add(1)
		return &Settings{TransportName: "svc"}, nil
	}, newAccounts)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Resolve[Accounts](c); err != nil {
				t.Errorf("Resolve: %v", err)
			}
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("provider invoked %d times, want 1", calls.Load())
	}
}

func TestSettingsProvider_FailureNotCached(t *testing.T) {
	c := di.NewContainer()
	errProvider := stderrors.New("settings unavailable")
	calls := 0
	_, _ = AddClientFunc[Accounts](c, func(di.Resolver) (*Settings, error) {
		calls++
		if calls == 1 {
			return nil, errProvider
		}
		return &Settings{TransportName: "svc"}, nil
	}, newAccounts)

	if _, err := Resolve[Accounts](c); err != errProvider {
		t.Fatalf("expected provider error unchanged, got %v", err)
	}
	registry := di.MustResolve[*Registry](c, di.Keys.Registry)
	if registry.Len() != 0 {
		t.Fatal("a failed settings resolution must not register a transport")
	}

	if _, err := Resolve[Accounts](c); err != nil {
		t.Fatalf("second resolution: %v", err)
	}
	if calls != 2 || registry.Len() != 1 {
		t.Errorf("calls = %d, registry = %d", calls, registry.Len())
	}
}

func TestSettingsProvider_Panic(t *testing.T) {
	c := di.NewContainer()
	_, _ = AddClientFunc[Accounts](c, func(di.Resolver) (*Settings, error) {
		panic("bad provider")
	}, newAccounts)

	if _, err := Resolve[Accounts](c); !errors.IsCode(err, errors.ErrCodeConstructorPanic) {
		t.Errorf("expected CONSTRUCTOR_PANIC, got %v", err)
	}
}

func TestSettingsProvider_ReentrancyDetected(t *testing.T) {
	c := di.NewContainer()
	_, _ = AddClientFunc[Accounts](c, func(r di.Resolver) (*Settings, error) {
		return ResolveSettings[Accounts](r)
	}, newAccounts)

	if _, err := Resolve[Accounts](c); !errors.IsCode(err, errors.ErrCodeCircularDependency) {
		t.Errorf("expected CIRCULAR_DEPENDENCY, got %v", err)
	}
}

type upperSerializer struct{ rest.JSONSerializer }

func (upperSerializer) ContentType() string { return "application/vnd.test+json" }

func TestContentSerializer_ReachesClient(t *testing.T) {
	srv := newRecorder(t)
	c := di.NewContainer()
	ser := upperSerializer{}
	_, _ = AddClient[Accounts](c, &Settings{
		BaseAddress:       mustURL(t, srv.URL),
		ContentSerializer: ser,
	}, newAccounts)

	accounts := MustResolve[Accounts](c)
	if got := accounts.(*accountsClient).rest.Serializer(); got != ser {
		t.Errorf("serializer = %T, want upperSerializer", got)
	}
	if _, err := accounts.Get(context.Background(), "1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := srv.requests()[0].Get("Accept"); got != "application/vnd.test+json" {
		t.Errorf("Accept = %q", got)
	}

	rb := di.MustResolve[*RequestBuilder](c, RequestBuilderKey(reflect.TypeFor[Accounts]()))
	if rb.Serializer() != ser {
		t.Error("request builder should carry the settings serializer")
	}
}

func TestRegistration_Keys(t *testing.T) {
	c := di.NewContainer()
	b, err := AddClient[Accounts](c, nil, newAccounts)
	if err != nil {
		t.Fatalf("AddClient: %v", err)
	}

	typ := reflect.TypeFor[Accounts]()
	for _, key := range []string{
		ClientKey(typ),
		SettingsKey(typ),
		RequestBuilderKey(typ),
		di.Keys.TransportFactory,
		di.Keys.Registry,
	} {
		if !c.IsRegistered(key) {
			t.Errorf("%s not registered", key)
		}
	}
	if b.Key() != ClientKey(typ) || b.Type() != typ {
		t.Errorf("builder key = %q, type = %v", b.Key(), b.Type())
	}

	s, err := ResolveSettings[Accounts](c)
	if err != nil || s == nil {
		t.Errorf("ResolveSettings = %v, %v", s, err)
	}
}

func TestBuilder_TransportName(t *testing.T) {
	c := di.NewContainer()
	named, _ := AddClient[Accounts](c, &Settings{TransportName: "svc"}, newAccounts)
	unnamed, _ := AddClient[Billing](c, nil, newBilling)

	if got, err := named.TransportName(); err != nil || got != "svc" {
		t.Errorf("named = %q, %v", got, err)
	}
	if got, err := unnamed.TransportName(); err != nil || got != UniqueName(reflect.TypeFor[Billing]()) {
		t.Errorf("unnamed = %q, %v", got, err)
	}
}

func TestBuilder_ConfigureTransport(t *testing.T) {
	srv := newRecorder(t)
	c := di.NewContainer()
	b, _ := AddClient[Accounts](c, &Settings{TransportName: "svc", BaseAddress: mustURL(t, srv.URL)}, newAccounts)
	if err := b.ConfigureTransport(
		httpclient.WithHeaders(map[string]string{"X-Team": "orders"}),
		httpclient.WithRequestID(""),
	); err != nil {
		t.Fatalf("ConfigureTransport: %v", err)
	}

	if _, err := MustResolve[Accounts](c).Get(context.Background(), "1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	h := srv.requests()[0]
	if h.Get("X-Team") != "orders" {
		t.Errorf("X-Team = %q", h.Get("X-Team"))
	}
	if h.Get("X-Request-ID") == "" {
		t.Error("expected a request id")
	}
}

func TestTransportOptionsFromSettings(t *testing.T) {
	srv := newRecorder(t)
	c := di.NewContainer()
	_, _ = AddClient[Accounts](c, &Settings{
		BaseAddress:      mustURL(t, srv.URL),
		TransportOptions: []httpclient.Option{httpclient.WithHeaders(map[string]string{"X-From": "settings"})},
	}, newAccounts)

	if _, err := MustResolve[Accounts](c).Get(context.Background(), "1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := srv.requests()[0].Get("X-From"); got != "settings" {
		t.Errorf("X-From = %q", got)
	}
}

func TestRegister_InvalidArguments(t *testing.T) {
	c := di.NewContainer()
	tests := []struct {
		name string
		fn   func() error
	}{
		{"nil container", func() error { _, err := AddClient[Accounts](nil, nil, newAccounts); return err }},
		{"nil constructor", func() error { _, err := AddClient[Accounts](c, nil, nil); return err }},
		{"nil type", func() error {
			_, err := Register(c, Registration{New: func(*rest.Client, di.Resolver) (any, error) { return nil, nil }})
			return err
		}},
		{"nil new", func() error { _, err := Register(c, Registration{Type: reflect.TypeFor[Accounts]()}); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.IsCode(err, errors.ErrCodeInvalidArgument) {
				t.Errorf("expected INVALID_ARGUMENT, got %v", err)
			}
		})
	}
}

func TestRegister_NonGeneric(t *testing.T) {
	c := di.NewContainer()
	typ := reflect.TypeFor[Accounts]()
	_, err := Register(c, Registration{
		Type:     typ,
		Settings: StaticSettings(&Settings{TransportName: "svc"}),
		New: func(rc *rest.Client, _ di.Resolver) (any, error) {
			return &accountsClient{rest: rc}, nil
		},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	v, err := c.Resolve(ClientKey(typ))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok := v.(Accounts); !ok {
		t.Errorf("resolved %T, want Accounts", v)
	}
}

func TestRegister_ConstructorTypeMismatch(t *testing.T) {
	c := di.NewContainer()
	_, _ = Register(c, Registration{
		Type: reflect.TypeFor[Accounts](),
		New:  func(rc *rest.Client, _ di.Resolver) (any, error) { return &billingClient{rest: rc}, nil },
	})
	if _, err := Resolve[Accounts](c); !errors.IsCode(err, errors.ErrCodeTypeMismatch) {
		t.Errorf("expected TYPE_MISMATCH, got %v", err)
	}
}

func TestConstructorErrorUnchanged(t *testing.T) {
	c := di.NewContainer()
	errCtor := stderrors.New("ctor failed")
	_, _ = AddClient[Accounts](c, nil, func(*rest.Client, di.Resolver) (Accounts, error) { return nil, errCtor })
	if _, err := Resolve[Accounts](c); err != errCtor {
		t.Errorf("expected constructor error unchanged, got %v", err)
	}
}

func TestUseRegistry_CallerOwned(t *testing.T) {
	c := di.NewContainer()
	own := NewRegistry()
	if err := UseRegistry(c, own); err != nil {
		t.Fatalf("UseRegistry: %v", err)
	}
	_, _ = AddClient[Accounts](c, &Settings{TransportName: "svc"}, newAccounts)

	a := MustResolve[Accounts](c)
	stored, ok := own.Get("svc")
	if !ok || stored != a.Transport() {
		t.Error("transport should be stored in the caller-owned registry")
	}
}

func TestIsolatedContainers(t *testing.T) {
	first, second := di.NewContainer(), di.NewContainer()
	for _, c := range []*di.UnifiedContainer{first, second} {
		_, _ = AddClient[Accounts](c, &Settings{TransportName: "svc"}, newAccounts)
	}
	if MustResolve[Accounts](first).Transport() == MustResolve[Accounts](second).Transport() {
		t.Error("containers must not share registries")
	}
}

func TestMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()
	m, err := observability.NewClientMetrics(mp.Meter(observability.MeterName))
	if err != nil {
		t.Fatalf("NewClientMetrics: %v", err)
	}

	c := di.NewContainer()
	if err := UseMetrics(c, m); err != nil {
		t.Fatalf("UseMetrics: %v", err)
	}
	_, _ = AddClient[Accounts](c, &Settings{TransportName: "svc"}, newAccounts)
	_, _ = AddClient[Billing](c, &Settings{TransportName: "svc"}, newBilling)
	_ = MustResolve[Accounts](c)
	_ = MustResolve[Billing](c)
	_ = MustResolve[Accounts](c)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	got := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if sum, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					got[md.Name] += dp.Value
				}
			}
		}
	}
	if got["clientkit.transport.created"] != 1 || got["clientkit.transport.reused"] != 2 || got["clientkit.client.resolved"] != 3 {
		t.Errorf("metrics = %v", got)
	}
}

func TestSettingsFromConfig(t *testing.T) {
	srv := newRecorder(t)
	t.Setenv("CLIENTKIT_TEST_BILLING_TOKEN", "cfg-token")

	cfg := &config.ClientsConfig{Clients: map[string]config.ClientConfig{
		"billing": {
			Transport: "backoffice",
			BaseURL:   srv.URL,
			TokenEnv:  "CLIENTKIT_TEST_BILLING_TOKEN",
			Headers:   map[string]string{"X-Team": "orders"},
		},
	}}
	c := di.NewContainer()
	if err := UseConfig(c, cfg); err != nil {
		t.Fatalf("UseConfig: %v", err)
	}
	_, _ = AddClientFunc[Billing](c, SettingsFromConfig("billing"), newBilling)
	_, _ = AddClientFunc[Accounts](c, SettingsFromConfig("missing"), newAccounts)

	billing := MustResolve[Billing](c)
	if err := billing.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if billing.Transport().Name() != "backoffice" {
		t.Errorf("transport = %q", billing.Transport().Name())
	}
	h := srv.requests()[0]
	if h.Get("Authorization") != "Bearer cfg-token" || h.Get("X-Team") != "orders" {
		t.Errorf("headers = %v", h)
	}

	_, err := Resolve[Accounts](c)
	if !errors.IsCode(err, errors.ErrCodeInvalidConfig) || !strings.Contains(err.Error(), "missing") {
		t.Errorf("expected INVALID_CONFIG for missing entry, got %v", err)
	}
}

func TestSettingsFromConfig_NoConfig(t *testing.T) {
	c := di.NewContainer()
	_, _ = AddClientFunc[Billing](c, SettingsFromConfig("billing"), newBilling)
	if _, err := Resolve[Billing](c); !errors.IsCode(err, errors.ErrCodeNotRegistered) {
		t.Errorf("expected NOT_REGISTERED, got %v", err)
	}
}
