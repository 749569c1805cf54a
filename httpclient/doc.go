// Package httpclient provides named HTTP transports and the clients built
// over them.
//
// A Factory collects options per transport name and builds the handler
// chain for a name once, on its first CreateClient. Every Client created for
// that name shares the chain and its connection pool. Layers, innermost
// first: primary transport (or a TLS-configured default), custom handlers
// such as authentication, retry (go-retryablehttp), circuit breaker
// (gobreaker), request id, tracing (OpenTelemetry).
//
// # Basic Usage
//
//	f := httpclient.NewFactory(httpclient.WithTimeout(10 * time.Second))
//	f.Configure("billing",
//	    httpclient.WithBaseURL("https://billing.internal"),
//	    httpclient.WithRetry(httpclient.DefaultRetryConfig()),
//	)
//
//	c, err := f.CreateClient("billing")
//	resp, err := c.Do(ctx, httpclient.Request{
//	    Method: http.MethodGet,
//	    Path:   "/invoices/123",
//	})
//
// # Authentication
//
//	f.Configure("billing", httpclient.WithHandler(
//	    httpclient.TokenAuth(tokens.Current, httpclient.DefaultAuthScheme),
//	))
//
// Errors are classified into *Error values (timeout, connection, auth,
// not found, rate limit, validation, server, circuit open).
package httpclient
