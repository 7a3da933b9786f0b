// Package fault defines the error categories shared by every ledger package.
//
// Package-level sentinels wrap exactly one category so callers can match
// either the precise failure or its class:
//
//	errors.Is(err, sale.ErrTooEarly)  // precise
//	errors.Is(err, fault.ErrTiming)   // category
package fault

import "errors"

var (
	// ErrTiming indicates an operation was attempted outside its allowed window.
	ErrTiming = errors.New("timing")

	// ErrCapacity indicates a cap or batch limit was exceeded.
	ErrCapacity = errors.New("capacity")

	// ErrValidation indicates malformed or out-of-range input.
	ErrValidation = errors.New("validation")

	// ErrAuthorization indicates the caller lacks the required role.
	ErrAuthorization = errors.New("authorization")

	// ErrInvariant indicates internal accounting is inconsistent. Valid input
	// never produces it.
	ErrInvariant = errors.New("invariant violated")
)

// New returns a sentinel error for pkg that wraps category.
// The message reads "pkg: msg" and errors.Is matches the category.
func New(category error, pkg, msg string) error {
	return &sentinel{category: category, text: pkg + ": " + msg}
}

type sentinel struct {
	category error
	text     string
}

func (s *sentinel) Error() string { return s.text }

func (s *sentinel) Unwrap() error { return s.category }

// Category returns the category error wraps, or nil if it wraps none.
func Category(err error) error {
	for _, c := range []error{ErrTiming, ErrCapacity, ErrValidation, ErrAuthorization, ErrInvariant} {
		if errors.Is(err, c) {
			return c
		}
	}
	return nil
}
