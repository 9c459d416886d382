// Package apperr defines the error taxonomy surfaced by the HTTP layer.
// Every failure carries an HTTP status and a human-readable detail.
package apperr

import "net/http"

type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string { return e.Detail }

func Validation(detail string) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Detail: detail}
}

func Unauthorized(detail string) *Error {
	return &Error{Status: http.StatusUnauthorized, Detail: detail}
}

func Forbidden(detail string) *Error {
	return &Error{Status: http.StatusForbidden, Detail: detail}
}

func NotFound(detail string) *Error {
	return &Error{Status: http.StatusNotFound, Detail: detail}
}

func Duplicated(detail string) *Error {
	return &Error{Status: http.StatusConflict, Detail: detail}
}

func BadRequest(detail string) *Error {
	return &Error{Status: http.StatusBadRequest, Detail: detail}
}
