package domain

import (
	"errors"
	"fmt"
)

// ValidationError marks an input or structural failure. These surface to the
// caller immediately and are never recorded as events, unlike business-rule
// rejections which become part of the account history.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

// Input validation failures shared by the aggregate commands.
var (
	ErrBlankCustomerName   = &ValidationError{msg: "customer name is required"}
	ErrCustomerNameTooLong = &ValidationError{msg: "customer name must be 30 characters or less"}
	ErrInvalidCurrencyCode = &ValidationError{msg: "currency must be a 3-letter code"}
	ErrCurrencyMismatch    = &ValidationError{msg: "currency does not match the account currency"}
	ErrNegativeAmount      = &ValidationError{msg: "amount must not be negative"}
	ErrNegativeLimit       = &ValidationError{msg: "limit must not be negative"}
)

// Replay failures.
var (
	// ErrNotInitialized indicates an event or command arrived before the
	// account was created.
	ErrNotInitialized = errors.New("account has not been initialized")
	// ErrAlreadyInitialized indicates a second creation event in the stream.
	ErrAlreadyInitialized = errors.New("account has already been initialized")
)

// UnsupportedEventError indicates the replay engine encountered an event
// variant it does not recognize. This is a schema mismatch between producer
// and consumer and is never recoverable.
type UnsupportedEventError struct {
	Type string
}

func (e *UnsupportedEventError) Error() string {
	return fmt.Sprintf("event type %q is not supported", e.Type)
}

// IsValidation reports whether err is an input/structural failure as opposed
// to an infrastructure or replay error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
