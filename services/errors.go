package services

import (
	"errors"
	"fmt"
)

// Failure taxonomy for the signup and profile flows. Handlers branch on
// these with errors.Is; the banner text shown to the user travels on the
// FlowError, the wrapped cause stays server-side in the logs.
var (
	ErrValidation      = errors.New("validation failed")
	ErrAuth            = errors.New("identity service rejected request")
	ErrProfileCreation = errors.New("profile creation failed")
	ErrCatalogRead     = errors.New("catalog read failed")
	ErrProgressSeed    = errors.New("progress seed failed")
)

// FlowError pairs an internal cause with the short human-readable message
// the redirect banner carries back to the form.
type FlowError struct {
	Kind    error  // one of the sentinels above
	Message string // user-facing banner text
	Cause   error
}

func (e *FlowError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *FlowError) Unwrap() error { return e.Kind }

func flowErr(kind error, message string, cause error) *FlowError {
	return &FlowError{Kind: kind, Message: message, Cause: cause}
}

// UserMessage extracts the banner text for err. Anything outside the flow
// taxonomy gets a generic message — internal detail never reaches the user.
func UserMessage(err error) string {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return "Something went wrong"
}
