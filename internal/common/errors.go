package common

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrValidation           = errors.New("validation error")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrIO                   = errors.New("io error")
	ErrRuntimeInvocation    = errors.New("runtime invocation failed")
	ErrUnsupportedMode      = errors.New("not supported yet")
)

// Error attaches a kind and the implicated field, file or command to a cause.
type Error struct {
	Kind    error
	Subject string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Subject == "" && e.Err == nil:
		return e.Kind.Error()
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Kind, e.Subject)
	case e.Subject == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Subject, e.Err)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ValidationError reports an invalid value for field.
func ValidationError(field string, err error) error {
	return &Error{Kind: ErrValidation, Subject: field, Err: err}
}

// MissingField reports a required field left empty after resolution.
func MissingField(field string) error {
	return &Error{Kind: ErrMissingRequiredField, Subject: field}
}

// IOError reports a filesystem failure on path.
func IOError(path string, err error) error {
	return &Error{Kind: ErrIO, Subject: path, Err: err}
}

// RuntimeError reports a failed container runtime command. Output is kept verbatim.
func RuntimeError(command string, output string, err error) error {
	if output != "" {
		err = fmt.Errorf("%w\nOutput: %s", err, output)
	}
	return &Error{Kind: ErrRuntimeInvocation, Subject: command, Err: err}
}

// Unsupported reports a mode or variant combination that is not implemented.
func Unsupported(what string) error {
	return &Error{Kind: ErrUnsupportedMode, Subject: what}
}
