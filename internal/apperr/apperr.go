// Package apperr defines the typed errors raised by the scheduling core,
// generalizing the ad-hoc fmt.Errorf/log.Fatalf style of the reference
// implementation into a small hierarchy the CLI can translate into exit
// codes.
package apperr

import "fmt"

// Error is a typed domain error with a stable code for callers that want
// to branch on the failure kind without string matching.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(err error, code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Unschedulable is raised when a subject's class capacities cannot cover
// its study-plan followers.
func Unschedulable(subject string) *Error {
	return New("UNSCHEDULABLE", fmt.Sprintf("subject %q cannot cover its study-plan followers", subject))
}

// InvalidStartIndex is raised when a caller requests a start index that
// is not in the legal starting-index set for a class's session length.
// It is a programming error and must not be caught inside the GA.
func InvalidStartIndex(class string, index int) *Error {
	return New("INVALID_START_INDEX", fmt.Sprintf("%d is not a legal start index for class %s", index, class))
}

// CatalogIntegrity is raised on startup if the catalog violates I4 or I5.
func CatalogIntegrity(reason string) *Error {
	return New("CATALOG_INTEGRITY", reason)
}

var ErrCatalogMissing = New("CATALOG_MISSING", "catalog has not been loaded")
