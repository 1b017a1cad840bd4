// Package errs holds the error taxonomy shared by the transfer layer, the
// connection factory and the reconciliation engine.
//
// Only ConfigurationError and CredentialError are meant to reach the caller of
// a scheduled cycle. The other kinds are logged, recorded as Error Records and
// retried on the next cycle.
package errs

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a missing or invalid Connection Profile field.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("configuration error: %s is required", e.Field)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Missing returns a ConfigurationError for a required field that is empty.
func Missing(field string) error {
	return &ConfigurationError{Field: field}
}

// Invalid returns a ConfigurationError for a field holding an unusable value.
func Invalid(field, reason string) error {
	return &ConfigurationError{Field: field, Reason: reason}
}

// ConnectionError reports a network or authentication failure.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// CredentialError reports absent or malformed key material.
type CredentialError struct {
	Mode string
	Err  error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credential error (%s): %v", e.Mode, e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// RemoteIOError reports a failed list/upload/download/delete/move/mkdir/rmdir.
type RemoteIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *RemoteIOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *RemoteIOError) Unwrap() error { return e.Err }

// RemoteIO wraps err as a RemoteIOError, or returns nil when err is nil.
func RemoteIO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteIOError{Op: op, Path: path, Err: err}
}

// ParseError reports a malformed log report or statement file.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

func IsConnection(err error) bool {
	var target *ConnectionError
	return errors.As(err, &target)
}

func IsCredential(err error) bool {
	var target *CredentialError
	return errors.As(err, &target)
}

func IsRemoteIO(err error) bool {
	var target *RemoteIOError
	return errors.As(err, &target)
}

func IsParse(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

// IsFatal reports whether err must be surfaced to the user instead of being
// logged and retried on the next cycle.
func IsFatal(err error) bool {
	return IsConfiguration(err) || IsCredential(err)
}
