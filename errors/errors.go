package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified clientkit error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if resolving again may succeed.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code. A target
// without a code never matches.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || t.Code == "" {
		return false
	}
	return e.Code == t.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// Sentinels usable as errors.Is targets.
var (
	ErrInvalidArgument    = &AppError{Code: ErrCodeInvalidArgument}
	ErrAlreadyRegistered  = &AppError{Code: ErrCodeAlreadyRegistered}
	ErrNotRegistered      = &AppError{Code: ErrCodeNotRegistered}
	ErrTypeMismatch       = &AppError{Code: ErrCodeTypeMismatch}
	ErrCircularDependency = &AppError{Code: ErrCodeCircularDependency}
	ErrConstructorPanic   = &AppError{Code: ErrCodeConstructorPanic}
	ErrAmbiguousAuth      = &AppError{Code: ErrCodeAmbiguousAuth}
	ErrTransportCreation  = &AppError{Code: ErrCodeTransportCreation}
	ErrInvalidConfig      = &AppError{Code: ErrCodeInvalidConfig}
)

// --- Constructors ---

// InvalidArgument reports a nil or empty required argument to a registration call.
func InvalidArgument(name, reason string) *AppError {
	return New(ErrCodeInvalidArgument, fmt.Sprintf("invalid argument %s: %s", name, reason)).
		WithDetail("argument", name)
}

// AlreadyRegistered reports a duplicate registration key.
func AlreadyRegistered(key string) *AppError {
	return New(ErrCodeAlreadyRegistered, fmt.Sprintf("%s is already registered", key)).
		WithDetail("key", key)
}

// NotRegistered reports a resolution of an unknown key.
func NotRegistered(key string) *AppError {
	return New(ErrCodeNotRegistered, fmt.Sprintf("component not registered: %s", key)).
		WithDetail("key", key)
}

// TypeMismatch reports a resolved component of the wrong type.
func TypeMismatch(key string, got, want any) *AppError {
	return New(ErrCodeTypeMismatch, fmt.Sprintf("component %s is %T, expected %T", key, got, want)).
		WithDetail("key", key)
}

// CircularDependency reports a key resolved again while already on the
// resolution chain.
func CircularDependency(chain []string) *AppError {
	return New(ErrCodeCircularDependency, fmt.Sprintf("circular dependency: %v", chain)).
		WithDetail("chain", chain)
}

// ConstructorPanic reports a registered constructor that panicked.
func ConstructorPanic(key string, recovered any) *AppError {
	e := New(ErrCodeConstructorPanic, fmt.Sprintf("constructor for %s panicked: %v", key, recovered)).
		WithDetail("key", key)
	if err, ok := recovered.(error); ok {
		e.Cause = err
	}
	return e
}

// AmbiguousAuth reports settings that configure both authentication suppliers.
func AmbiguousAuth(client string) *AppError {
	return New(ErrCodeAmbiguousAuth,
		fmt.Sprintf("client %s configures both an auth supplier and a parameterized auth supplier", client)).
		WithDetail("client", client)
}

// TransportCreation wraps an error raised while building the transport for a name.
func TransportCreation(name string, cause error) *AppError {
	return New(ErrCodeTransportCreation, fmt.Sprintf("failed to create transport %s", name)).
		WithDetail("transport", name).WithCause(cause)
}

// InvalidConfig reports configuration that failed validation.
func InvalidConfig(message string) *AppError {
	return New(ErrCodeInvalidConfig, message)
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether any AppError in err's chain carries code.
func IsCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &AppError{Code: code})
}
