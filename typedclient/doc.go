// Package typedclient registers typed HTTP API clients in a di.Container and
// decides which transport each of them is bound to.
//
// A client type is registered once with its Settings (or a provider of
// them) and a constructor that builds the client from a *rest.Client:
//
//	type Accounts interface {
//	    Get(ctx context.Context, id string) (*Account, error)
//	}
//
//	_, err := typedclient.AddClient[Accounts](c, &typedclient.Settings{
//	    TransportName: "backoffice",
//	    BaseAddress:   mustParse("https://accounts.internal"),
//	    AuthSupplier:  tokens.Current,
//	}, newAccountsClient)
//
//	accounts, err := typedclient.Resolve[Accounts](c)
//
// # Transport sharing
//
// Client types with the same explicit TransportName share one
// *httpclient.Client, held by the container's Registry. The first type to
// resolve creates it and fixes its handler chain; later types reuse it
// unchanged and only set the base address if none is set yet (unless
// OverwriteBaseAddress is true).
//
// Client types without a TransportName get a transport named after their
// type (see UniqueName). Each resolution returns a fresh *httpclient.Client
// over that type's own connection pool; nothing is shared across types.
//
// # Settings
//
// A settings provider runs at most once successfully per container. A
// failing provider is not cached, and its error is returned unchanged from
// the resolution that called it. Configuring both AuthSupplier and
// ParameterizedAuthSupplier is an error unless LegacyAuthPrecedence is set,
// in which case AuthSupplier wins.
//
// Every resolution of a client type returns a new client value; only the
// transport identity is shared.
package typedclient
