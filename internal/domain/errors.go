package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStateConflict indicates an illegal transition, or a transition that lost
	// a race against a concurrent writer. Callers should re-read and retry.
	ErrStateConflict = errors.New("state conflict")

	// ErrValidation indicates a command is missing a required field or carries
	// an invalid value.
	ErrValidation = errors.New("validation error")

	// ErrRuleConfig indicates a malformed escalation policy or auto-assign rule.
	ErrRuleConfig = errors.New("rule config error")

	// ErrNotFound indicates an unknown assignment, template or employee.
	ErrNotFound = errors.New("not found")

	// ErrNotifierFailure indicates an external delivery failed. It is recorded
	// but never rolls back engine state.
	ErrNotifierFailure = errors.New("notifier failure")

	// ErrForbidden indicates the acting user lacks the role or permission the
	// command requires.
	ErrForbidden = errors.New("forbidden")
)

func conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStateConflict, fmt.Sprintf(format, args...))
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func ruleConfigf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRuleConfig, fmt.Sprintf(format, args...))
}

func forbiddenf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}
