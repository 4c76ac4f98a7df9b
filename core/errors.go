package core

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidEvent  = errors.New("invalid event")
	ErrEventOverlap  = errors.New("event overlaps with an existing event")
	ErrEventNotFound = errors.New("event not found")
	ErrEventExists   = errors.New("event already scheduled")
	ErrInvalidQuery  = errors.New("invalid query")
	ErrIDsExhausted  = errors.New("no unused event identifiers left")
)

// Error is the JSON envelope returned to HTTP clients.
type Error struct {
	Message string   `json:"message,omitempty"`
	Err     []string `json:"err,omitempty"`
}

func NewError(message string, errs ...error) *Error {
	return &Error{
		Message: message,
		Err: func() []string {
			var msgs []string

			for _, err := range errs {
				if err != nil {
					msgs = append(msgs, err.Error())
				}
			}

			return msgs
		}(),
	}
}

func (e *Error) Error() string {
	//nolint:errchkjson
	data, _ := json.Marshal(e)
	return string(data)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	if len(e.Err) == 0 {
		return nil
	}

	errs := make([]error, len(e.Err))
	for i, err := range e.Err {
		errs[i] = fmt.Errorf("%s", err)
	}

	return errors.Join(errs...)
}

func (e *Error) Messages() []string {
	return e.Err
}

func overlapError(candidate, existing *Event) error {
	return fmt.Errorf("%w: %q [%s, %d min] conflicts with %q (id %d)",
		ErrEventOverlap, candidate.Name, candidate.TimeDate, candidate.Duration, existing.Name, existing.ID)
}

func notFoundError(id int) error {
	return fmt.Errorf("%w: id %d", ErrEventNotFound, id)
}
