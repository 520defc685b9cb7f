package systemctl

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by Service operations
var (
	// ErrTargetNotSpecified indicates WaitForState was called without an active state
	ErrTargetNotSpecified = errors.New("systemctl: target state not specified")

	// ErrTimeout indicates the expected state was not observed before the deadline
	ErrTimeout = errors.New("systemctl: timeout reached")

	// ErrEmptyOutput indicates `systemctl show` succeeded but printed nothing
	ErrEmptyOutput = errors.New("systemctl: no properties returned")

	// ErrNoMainPID indicates the unit has no main process
	ErrNoMainPID = errors.New("systemctl: unit has no main PID")

	// ErrNotSystemd indicates systemd is not the running init system
	ErrNotSystemd = errors.New("systemctl: systemd is not running")
)

// OpError represents a failed systemctl operation on a unit
type OpError struct {
	// Op is the operation that failed
	Op Operation
	// Unit is the unit name the operation targeted
	Unit string
	// Stdout is the captured standard output of the command, if any
	Stdout string
	// Stderr is the captured standard error of the command, if any
	Stderr string
	// Err is the underlying error
	Err error
}

// Error returns a formatted error message including the command diagnostic
func (e *OpError) Error() string {
	msg := fmt.Sprintf("systemctl %s %q: %v", e.Op.String(), e.Unit, e.Err)
	if diag := strings.TrimSpace(e.Stderr); diag != "" {
		msg += ": " + diag
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection
func (e *OpError) Unwrap() error {
	return e.Err
}

// MultiError aggregates multiple errors from bulk operations
type MultiError struct {
	// Errors contains all accumulated errors
	Errors []error
}

// Error returns a summary of the accumulated errors
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred", len(m.Errors))
}

// Unwrap exposes the collected errors to errors.Is and errors.As
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Add appends an error to the collection if it's not nil
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// Err returns nil if no errors occurred, otherwise returns the MultiError itself
func (m *MultiError) Err() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}
