package recommend

import "fmt"

// TransportError is returned when the recommendation service cannot be
// reached or answers with a non-success status.
type TransportError struct {
	Endpoint   string
	StatusCode int // zero when no response was received
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// UnexpectedResponseShapeError is returned when a success response does not
// decode as the expected document.
type UnexpectedResponseShapeError struct {
	Endpoint string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *UnexpectedResponseShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
}

// Unwrap returns the underlying cause.
func (e *UnexpectedResponseShapeError) Unwrap() error {
	return e.Cause
}
