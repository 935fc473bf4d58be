// Package errors defines the error taxonomy shared by the Drive client, the
// folder resolver and the HTTP layer. It is a leaf package with no internal
// dependencies so every layer can import it.
//
// Import graph: errors <- drive <- folders <- gateway <- api
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents the category of a gateway failure.
type ErrorCode int

const (
	// ErrInvalidArguments indicates missing or malformed input.
	ErrInvalidArguments ErrorCode = iota + 1

	// ErrRemoteUnavailable indicates a transport or auth failure talking to Drive.
	ErrRemoteUnavailable

	// ErrCreateFailed indicates Drive accepted a create but returned no id.
	ErrCreateFailed

	// ErrUploadFailed indicates an upload could not be completed or returned no id.
	ErrUploadFailed

	// ErrNotFound indicates the requested identifier does not exist.
	ErrNotFound

	// ErrConversionFailed indicates the audio transcoder rejected the input.
	ErrConversionFailed

	// ErrPayloadTooLarge indicates a request body exceeded the staging limit.
	ErrPayloadTooLarge
)

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidArguments:
		return "InvalidArguments"
	case ErrRemoteUnavailable:
		return "RemoteUnavailable"
	case ErrCreateFailed:
		return "CreateFailed"
	case ErrUploadFailed:
		return "UploadFailed"
	case ErrNotFound:
		return "NotFound"
	case ErrConversionFailed:
		return "ConversionFailed"
	case ErrPayloadTooLarge:
		return "PayloadTooLarge"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

// GatewayError is an error with a code, the operation that produced it and
// an optional underlying cause.
type GatewayError struct {
	Code    ErrorCode
	Message string
	Op      string
	Err     error
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is matches another *GatewayError by code, so errors.Is(err, ErrNotFoundSentinel)
// style comparisons work against the sentinels below.
func (e *GatewayError) Is(target error) bool {
	t, ok := target.(*GatewayError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Op == "" && t.Err == nil && t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	InvalidArguments  = &GatewayError{Code: ErrInvalidArguments}
	RemoteUnavailable = &GatewayError{Code: ErrRemoteUnavailable}
	CreateFailed      = &GatewayError{Code: ErrCreateFailed}
	UploadFailed      = &GatewayError{Code: ErrUploadFailed}
	NotFound          = &GatewayError{Code: ErrNotFound}
	ConversionFailed  = &GatewayError{Code: ErrConversionFailed}
	PayloadTooLarge   = &GatewayError{Code: ErrPayloadTooLarge}
)

// ============================================================================
// Factory Functions
// ============================================================================

// NewInvalidArgumentsError creates an InvalidArguments error.
func NewInvalidArgumentsError(op, message string) *GatewayError {
	return &GatewayError{Code: ErrInvalidArguments, Op: op, Message: message}
}

// NewRemoteUnavailableError wraps a Drive transport failure.
func NewRemoteUnavailableError(op string, err error) *GatewayError {
	return &GatewayError{Code: ErrRemoteUnavailable, Op: op, Message: "drive request failed", Err: err}
}

// NewCreateFailedError creates a CreateFailed error for the named folder.
func NewCreateFailedError(op, name string) *GatewayError {
	return &GatewayError{Code: ErrCreateFailed, Op: op, Message: fmt.Sprintf("folder %q created without an id", name)}
}

// NewUploadFailedError creates an UploadFailed error.
func NewUploadFailedError(op, message string, err error) *GatewayError {
	return &GatewayError{Code: ErrUploadFailed, Op: op, Message: message, Err: err}
}

// NewNotFoundError creates a NotFound error for a Drive identifier.
func NewNotFoundError(op, id string) *GatewayError {
	return &GatewayError{Code: ErrNotFound, Op: op, Message: fmt.Sprintf("%s not found", id)}
}

// NewConversionFailedError creates a ConversionFailed error.
func NewConversionFailedError(op, message string, err error) *GatewayError {
	return &GatewayError{Code: ErrConversionFailed, Op: op, Message: message, Err: err}
}

// NewPayloadTooLargeError creates a PayloadTooLarge error.
func NewPayloadTooLargeError(op string, limit uint64) *GatewayError {
	return &GatewayError{Code: ErrPayloadTooLarge, Op: op, Message: fmt.Sprintf("request body exceeds %d bytes", limit)}
}

// ============================================================================
// Error Type Checking Helpers
// ============================================================================

// CodeOf returns the code of the first GatewayError in err's chain, or 0.
func CodeOf(err error) ErrorCode {
	var gwErr *GatewayError
	if stderrors.As(err, &gwErr) {
		return gwErr.Code
	}
	return 0
}

// IsNotFoundError returns true if err carries a NotFound code.
func IsNotFoundError(err error) bool {
	return CodeOf(err) == ErrNotFound
}

// IsInvalidArgumentsError returns true if err carries an InvalidArguments code.
func IsInvalidArgumentsError(err error) bool {
	return CodeOf(err) == ErrInvalidArguments
}

// IsRemoteError returns true for failures attributable to Drive itself.
func IsRemoteError(err error) bool {
	switch CodeOf(err) {
	case ErrRemoteUnavailable, ErrCreateFailed, ErrUploadFailed:
		return true
	}
	return false
}
