// Package util provides logging helpers, common error types, and small
// parsing utilities shared by the newtroute packages.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrCommandFailed    = errors.New("command failed")
	ErrRPCFailed        = errors.New("rpc failed")
)

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}

// CommandError describes an external command that exited with an error.
// Host is empty for commands run on the local machine.
type CommandError struct {
	Host    string
	Command string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	where := ""
	if e.Host != "" {
		where = " on " + e.Host
	}
	msg := fmt.Sprintf("command '%s'%s: %v", e.Command, where, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

// Unwrap returns both the sentinel and the underlying cause so callers can
// match either with errors.Is.
func (e *CommandError) Unwrap() []error {
	return []error{ErrCommandFailed, e.Err}
}

// NewCommandError creates a command error for argv.
func NewCommandError(host string, argv []string, output string, err error) *CommandError {
	return &CommandError{
		Host:    host,
		Command: strings.Join(argv, " "),
		Output:  output,
		Err:     err,
	}
}

// RPCError describes a failed call against the routing daemon's API.
type RPCError struct {
	Method string
	Target string
	Err    error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Target, e.Err)
}

func (e *RPCError) Unwrap() []error {
	return []error{ErrRPCFailed, e.Err}
}

// NewRPCError creates an RPC error
func NewRPCError(method, target string, err error) *RPCError {
	return &RPCError{Method: method, Target: target, Err: err}
}
