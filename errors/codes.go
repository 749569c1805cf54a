package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Registration errors, reported synchronously by registration calls.
const (
	// ErrCodeInvalidArgument indicates a nil or empty required argument.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeAlreadyRegistered indicates a key was registered twice.
	ErrCodeAlreadyRegistered ErrorCode = "ALREADY_REGISTERED"
)

// Resolution errors, reported by the first resolution that hits them.
const (
	// ErrCodeNotRegistered indicates no registration exists for a key.
	ErrCodeNotRegistered ErrorCode = "NOT_REGISTERED"
	// ErrCodeTypeMismatch indicates a resolved value has an unexpected type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
	// ErrCodeCircularDependency indicates a constructor re-entered its own resolution.
	ErrCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
	// ErrCodeConstructorPanic indicates a registered constructor panicked.
	ErrCodeConstructorPanic ErrorCode = "CONSTRUCTOR_PANIC"
)

// Client wiring errors
const (
	// ErrCodeAmbiguousAuth indicates both authentication suppliers were configured.
	ErrCodeAmbiguousAuth ErrorCode = "AMBIGUOUS_AUTH"
	// ErrCodeTransportCreation indicates the transport for a name could not be built.
	ErrCodeTransportCreation ErrorCode = "TRANSPORT_CREATION"
	// ErrCodeInvalidConfig indicates loaded configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTransportCreation: true,
}

// IsRetryableCode returns true if resolving again may succeed without a
// configuration change.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
