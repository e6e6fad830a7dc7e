// Package apperr defines the error kinds surfaced by the search flow and maps
// them to HTTP statuses and static user-facing messages. Wrapped causes are
// for logs only and never reach a response body.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is malformed local input; never sent over the network.
	KindValidation
	// KindTransport is a network failure or non-success status from the recommendation service.
	KindTransport
	// KindUnexpectedShape is a response body that is not a list of recipes.
	KindUnexpectedShape
	// KindHistoryWrite is a failed history insert. Logged only.
	KindHistoryWrite
	// KindProfileUpdate is a failed profile edit.
	KindProfileUpdate
	// KindBusy means a search is already outstanding for the session.
	KindBusy
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindRateLimited
	KindInternal
)

var kindNames = map[Kind]string{
	KindUnknown:         "unknown",
	KindValidation:      "validation",
	KindTransport:       "transport",
	KindUnexpectedShape: "unexpected_shape",
	KindHistoryWrite:    "history_write",
	KindProfileUpdate:   "profile_update",
	KindBusy:            "busy",
	KindNotFound:        "not_found",
	KindUnauthorized:    "unauthorized",
	KindForbidden:       "forbidden",
	KindRateLimited:     "rate_limited",
	KindInternal:        "internal",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Static messages shown to end users.
const (
	MsgTransport       = "We couldn't reach the recommendation service. Please try again."
	MsgUnexpectedShape = "The recommendation service returned results we couldn't read."
	MsgProfileUpdate   = "We couldn't save your profile. Please try again."
	MsgBusy            = "a search is already in progress"
	MsgRateLimited     = "Too many requests. Please slow down."
	MsgInternal        = "Something went wrong. Please try again."
)

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Op      string // operation that failed (optional)
	Err     error  // underlying error (optional)
	Details any    // additional response details (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindTransport, KindUnexpectedShape:
		return http.StatusBadGateway
	case KindProfileUpdate:
		return http.StatusUnprocessableEntity
	case KindBusy:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp sets the failing operation.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails attaches response details.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func Busy() *Error {
	return New(KindBusy, MsgBusy)
}

// Transport wraps a failed exchange with the recommendation service.
func Transport(err error) *Error {
	return Wrap(KindTransport, MsgTransport, err)
}

// UnexpectedShape wraps a response decoding failure.
func UnexpectedShape(err error) *Error {
	return Wrap(KindUnexpectedShape, MsgUnexpectedShape, err)
}

// HistoryWrite wraps a failed history persist.
func HistoryWrite(err error) *Error {
	return Wrap(KindHistoryWrite, "failed to record search history", err)
}

// ProfileUpdate wraps a failed profile edit.
func ProfileUpdate(err error) *Error {
	return Wrap(KindProfileUpdate, MsgProfileUpdate, err)
}

// Internal wraps an unexpected failure behind the generic message.
func Internal(err error) *Error {
	return Wrap(KindInternal, MsgInternal, err)
}

// GetKind extracts the error kind from anywhere in err's chain.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// PublicMessage returns the message safe to show an end user.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal && e.Kind != KindUnknown && e.Kind != KindHistoryWrite {
		return e.Message
	}
	return MsgInternal
}

// Status returns the HTTP status for err, defaulting to 500.
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}
