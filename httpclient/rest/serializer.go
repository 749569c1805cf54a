package rest

import (
	"encoding/json"
	"fmt"
)

// Serializer encodes request bodies and decodes response bodies.
type Serializer interface {
	// ContentType is sent as Content-Type and Accept.
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONSerializer is the default Serializer.
type JSONSerializer struct{}

var _ Serializer = JSONSerializer{}

// DefaultSerializer is used when no serializer is configured.
var DefaultSerializer Serializer = JSONSerializer{}

// ContentType implements Serializer.
func (JSONSerializer) ContentType() string { return "application/json" }

// Marshal implements Serializer.
func (JSONSerializer) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("httpclient/rest: encode request: %w", err)
	}
	return data, nil
}

// Unmarshal implements Serializer.
func (JSONSerializer) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("httpclient/rest: decode response: %w", err)
	}
	return nil
}
