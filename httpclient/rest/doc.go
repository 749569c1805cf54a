// Package rest provides typed request helpers over an httpclient.Client.
//
// A rest.Client pairs a transport with a Serializer. Typed API clients use
// it to turn method calls into requests:
//
//	c := rest.NewFromClient(transport, rest.WithSerializer(rest.JSONSerializer{}))
//	user, err := rest.Get[User](ctx, c, "/users/123")
//	created, err := rest.Post[User](ctx, c, "/users", CreateUserRequest{Name: "Alice"})
//
// Error helpers re-export httpclient's classification.
package rest
