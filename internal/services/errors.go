package services

import (
	"database/sql"
	"errors"
)

// Error kinds. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
	ErrUpstream   = errors.New("upstream error")
)

// Error carries a client-safe message; Err, when set, is the internal cause and is only logged.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func notFound(msg string) error { return &Error{Kind: ErrNotFound, Msg: msg} }
func conflict(msg string) error { return &Error{Kind: ErrConflict, Msg: msg} }
func invalid(msg string) error { return &Error{Kind: ErrValidation, Msg: msg} }
func upstream(msg string, cause error) error {
	return &Error{Kind: ErrUpstream, Msg: msg, Err: cause}
}

// missing turns a store miss into a NotFound with msg and passes other errors through.
func missing(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(msg)
	}
	return err
}
