package logger

// Standard field keys used across clientkit.
const (
	FieldComponent   = "component"
	FieldClient      = "client"
	FieldTransport   = "transport"
	FieldBaseAddress = "base_address"
	FieldKey         = "key"
	FieldTraceID     = "trace_id"
	FieldSpanID      = "span_id"
	FieldRequestID   = "request_id"
	FieldError       = "error"
	FieldAttempt     = "attempt"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Debug("transport reused", logger.Fields("transport", "svc"))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for a failed operation on a client.
func ErrorFields(client string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldClient: client,
		FieldError:  err.Error(),
	}
}
