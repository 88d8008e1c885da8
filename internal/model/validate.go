package model

import (
	"errors"
	"fmt"
)

// ValidationError describes one user-entered value that breaks an invariant.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the values a save would persist. It returns every problem
// found, joined, or nil.
func Validate(p Portfolio) error {
	var errs []error
	add := func(field, msg string) {
		errs = append(errs, &ValidationError{Field: field, Message: msg})
	}

	if !(p.Goal > 0) {
		add("goal", "must be greater than zero")
	}
	if !(p.InflationPct >= 0) {
		add("inflation", "must not be negative")
	}
	if !(p.MonthlyContribution >= 0) {
		add("contribution", "must not be negative")
	}
	if len(p.Accounts) == 0 {
		add("accounts", "add at least one account")
	}
	for i, a := range p.Accounts {
		field := fmt.Sprintf("account %d", i+1)
		if !(a.Principal > 0) {
			add(field, "principal must be greater than zero")
		}
		if !(a.RatePct > 0) {
			add(field, "rate must be greater than zero")
		}
	}

	return errors.Join(errs...)
}

// ValidationErrors unwraps the individual problems from an error returned by
// Validate, looking through any wrapping. It returns nil for other errors.
func ValidationErrors(err error) []*ValidationError {
	var out []*ValidationError
	for err != nil {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				out = append(out, ValidationErrors(e)...)
			}
			return out
		}
		if ve, ok := err.(*ValidationError); ok {
			return append(out, ve)
		}
		err = errors.Unwrap(err)
	}
	return out
}
