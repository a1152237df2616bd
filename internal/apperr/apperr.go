// Package apperr defines the error kinds reported by the appointment core.
// Transports translate a Kind into their own status codes; the core never
// retries or swallows an error.
package apperr

import (
	"errors"
	"fmt"

	"consult-broker/internal/model"
)

type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindNotFound          Kind = "not_found"
	KindInvalidTransition Kind = "invalid_transition"
	KindForbidden         Kind = "forbidden"
	KindBadRequest        Kind = "bad_request"
	KindChatUnavailable   Kind = "chat_unavailable"
)

type Error struct {
	Kind    Kind
	Message string

	// Current is set for InvalidTransition and ChatUnavailable.
	Current model.Status
	// Requested is set for InvalidTransition.
	Requested model.Status
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransition(current, requested model.Status) *Error {
	return &Error{
		Kind:      KindInvalidTransition,
		Message:   fmt.Sprintf("cannot move from %q to %q", current, requested),
		Current:   current,
		Requested: requested,
	}
}

func ChatUnavailable(current model.Status) *Error {
	return &Error{
		Kind:    KindChatUnavailable,
		Message: fmt.Sprintf("chat is closed while appointment is %q", current),
		Current: current,
	}
}

// KindOf returns the kind carried by err, or "" when err is not a core error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
