// Package apperror defines the error kinds surfaced to API callers.
package apperror

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindInactive
	KindForbidden
	KindNotFound
	KindBadRequest
)

// Status returns the HTTP status code a kind is reported with.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict, KindInactive, KindBadRequest:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

func Validation(detail string) *Error { return &Error{Kind: KindValidation, Detail: detail} }
func Conflict(detail string) *Error   { return &Error{Kind: KindConflict, Detail: detail} }
func NotFound(detail string) *Error   { return &Error{Kind: KindNotFound, Detail: detail} }
func BadRequest(detail string) *Error { return &Error{Kind: KindBadRequest, Detail: detail} }

var (
	ErrInvalidCredentials = &Error{Kind: KindAuthentication, Detail: "Could not validate credentials"}
	ErrIncorrectLogin     = &Error{Kind: KindAuthentication, Detail: "Incorrect username or password"}
	ErrInactiveUser       = &Error{Kind: KindInactive, Detail: "Inactive user"}
	ErrNotEnoughPrivilege = &Error{Kind: KindForbidden, Detail: "Not enough privileges"}
)

// KindOf reports the kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
