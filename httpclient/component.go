package httpclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/clientkit/component"
)

// compile-time assertions
var _ component.Component = (*Factory)(nil)
var _ component.Describable = (*Factory)(nil)

// Name returns the component name.
func (f *Factory) Name() string {
	return "httpclient"
}

// Start marks the factory as running. Transports are built lazily.
func (f *Factory) Start(_ context.Context) error {
	f.mu.Lock()
	f.stopped = false
	f.mu.Unlock()
	return nil
}

// Stop releases idle connections of every built transport. CreateClient
// fails until the next Start.
func (f *Factory) Stop(_ context.Context) error {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()

	f.CloseIdleConnections()
	return nil
}

// Health reports unhealthy after Stop and degraded while any transport's
// circuit breaker is open.
func (f *Factory) Health(_ context.Context) component.Health {
	f.mu.Lock()
	stopped := f.stopped
	f.mu.Unlock()

	if stopped {
		return component.Health{Name: f.Name(), Status: component.StatusUnhealthy, Message: "stopped"}
	}

	var open []string
	for _, p := range f.builtPools() {
		if !p.available() {
			open = append(open, p.name)
		}
	}
	if len(open) > 0 {
		return component.Health{
			Name:    f.Name(),
			Status:  component.StatusDegraded,
			Message: "circuit open: " + strings.Join(open, ", "),
		}
	}
	return component.Health{Name: f.Name(), Status: component.StatusHealthy}
}

// Describe returns component description for the startup summary.
func (f *Factory) Describe() component.Description {
	return component.Description{
		Name:    "HTTP Transports",
		Type:    "http-client",
		Details: fmt.Sprintf("transports=%d", len(f.Names())),
	}
}
