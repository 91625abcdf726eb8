package pollclient

import (
	"errors"
	"fmt"
)

// ErrDuplicateVote is returned when the server has already recorded a
// vote for this voter on the poll. It is an expected outcome, not a
// fault: callers treat it as confirmation that a vote exists.
var ErrDuplicateVote = errors.New("already voted")

// ValidationError is a client-correctable input problem.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError means the referenced poll or option does not exist.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// StoreError is a backend fault; the request may be retried by the user.
type StoreError struct {
	Msg string
}

func (e *StoreError) Error() string { return e.Msg }

func apiError(status int, msg string) error {
	switch {
	case status == 400:
		return &ValidationError{Msg: msg}
	case status == 404:
		return &NotFoundError{Msg: msg}
	case status == 409:
		return ErrDuplicateVote
	default:
		if msg == "" {
			msg = fmt.Sprintf("API returned status %d", status)
		}
		return &StoreError{Msg: msg}
	}
}
