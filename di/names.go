package di

// KeyNames defines the container keys of the infrastructure clientkit
// registers on demand. Applications may pre-register their own instances
// under these keys to replace the defaults.
type KeyNames struct {
	Config           string
	TransportFactory string
	Registry         string
	Metrics          string
}

// Keys contains the well-known container keys.
var Keys = KeyNames{
	Config:           "clientkit/config",
	TransportFactory: "clientkit/transport_factory",
	Registry:         "clientkit/transport_registry",
	Metrics:          "clientkit/metrics",
}
