package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotFound is returned when a customer, cake, option or order referenced
// by id does not exist. The engine recovers from it by resetting the session
// to the main menu.
var ErrNotFound = errors.New("not found")

// ErrParse is returned when an option or order identifier cannot be read out
// of the input text. The engine treats it as "not understood".
var ErrParse = errors.New("unparseable input")

// ErrInvalidTransition is returned when an order status move would go
// backwards or past the terminal status.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrCategoryFilled is returned when a choice targets a category that was
// already answered in this traversal. Selections are never silently
// overwritten.
var ErrCategoryFilled = errors.New("category already filled")

// ErrMandatoryCategory is returned when a mandatory category is skipped or
// left unanswered at commit time.
var ErrMandatoryCategory = errors.New("mandatory category unanswered")

// ErrCakeCommitted is returned on any attempt to mutate a committed cake.
var ErrCakeCommitted = errors.New("cake already committed")

// ValidationError reports user-correctable input (a bad phone number). The
// engine re-prompts the same state with Message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
