// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Kind classifies failures so the dialog layer can pick a recovery path.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNoActiveCandidate Kind = "no_active_candidate"
	KindAccessDenied      Kind = "access_denied"
	KindPersistence       Kind = "persistence"
	KindNotFound          Kind = "not_found"
)

// Error is the single error type crossing service boundaries.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Map converts repo/infra errors into domain errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var domainErr *Error
	if errors.As(err, &domainErr) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Msg: "record not found", Cause: err}

	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindPersistence, Msg: "store timed out", Cause: err}

	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindPersistence, Msg: "store call canceled", Cause: err}

	default:
		return &Error{Kind: KindPersistence, Msg: "store failure", Cause: err}
	}
}

// Validation reports malformed or out-of-range user input.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// NoActiveCandidate reports a like/dislike without a profile on screen.
func NoActiveCandidate() error {
	return &Error{Kind: KindNoActiveCandidate, Msg: "no active candidate"}
}

// AccessDenied reports a ban or maintenance rejection.
func AccessDenied(reason string) error {
	return &Error{Kind: KindAccessDenied, Msg: reason}
}

// NotFound reports a referenced record that no longer exists.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Persistence wraps a store failure.
func Persistence(msg string, cause error) error {
	return &Error{Kind: KindPersistence, Msg: msg, Cause: cause}
}

// KindOf returns the kind of err, or "" when err is not a domain error.
func KindOf(err error) Kind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ""
}

func IsValidation(err error) bool        { return KindOf(err) == KindValidation }
func IsNoActiveCandidate(err error) bool { return KindOf(err) == KindNoActiveCandidate }
func IsAccessDenied(err error) bool      { return KindOf(err) == KindAccessDenied }
func IsPersistence(err error) bool       { return KindOf(err) == KindPersistence }
func IsNotFound(err error) bool          { return KindOf(err) == KindNotFound }
