package domain

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidArgument indicates caller input validation failure.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound indicates the referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSessionClosed indicates ingestion into an ended trial session.
	ErrSessionClosed = errors.New("session closed")
	// ErrDependencyUnavailable indicates a required collaborator is unreachable.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrInternal indicates an unexpected failure.
	ErrInternal = errors.New("internal")
)

// InvalidArgumentError tags an error as input validation failure.
func InvalidArgumentError(msg string) error {
	return errors.Join(ErrInvalidArgument, errors.New(strings.TrimSpace(msg)))
}

// NotFoundError tags an error as a missing-row failure.
func NotFoundError(msg string) error {
	return errors.Join(ErrNotFound, errors.New(strings.TrimSpace(msg)))
}

// SessionClosedError tags an error as ingestion past session end.
func SessionClosedError(msg string) error {
	return errors.Join(ErrSessionClosed, errors.New(strings.TrimSpace(msg)))
}

// InternalError tags an unexpected failure with the operation that hit it.
func InternalError(msg string, err error) error {
	joined := errors.Join(ErrInternal, errors.New(strings.TrimSpace(msg)))
	if err != nil {
		joined = errors.Join(joined, err)
	}
	return joined
}

// DependencyUnavailableError tags an error as collaborator failure.
func DependencyUnavailableError(msg string, err error) error {
	joined := errors.Join(ErrDependencyUnavailable, errors.New(strings.TrimSpace(msg)))
	if err != nil {
		joined = errors.Join(joined, err)
	}
	return joined
}
