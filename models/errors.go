package models

import (
	"strings"

	"github.com/pkg/errors"
)

// Error kinds shared by the workflow, the stores and the API layer.
// Wrap them with errors.Wrap/Wrapf and test with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyProcessed  = errors.New("already processed")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrBusy              = errors.New("busy")
)

var kinds = []error{ErrValidation, ErrInvalidTransition, ErrNotFound, ErrAlreadyProcessed, ErrDuplicateKey, ErrBusy}

func ValidationErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrValidation, format, args...)
}

func InvalidTransitionErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidTransition, format, args...)
}

func AlreadyProcessedErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrAlreadyProcessed, format, args...)
}

func BusyErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrBusy, format, args...)
}

func NotFoundErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrNotFound, format, args...)
}

// Message returns the caller-facing text: the wrapping context without the kind suffix.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return strings.TrimSuffix(msg, ": "+kind.Error())
		}
	}
	return msg
}

// Kind names the error kind of err, "internal" when it has none.
func Kind(err error) string {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal"
}
