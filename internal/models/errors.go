package models

import "errors"

var (
	// ErrInvalidArgument is returned for malformed identifiers or pagination bounds.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when the subject, owner, or channel does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when viewer context is required but missing,
	// or the viewer lacks rights to the resource.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict is returned on a uniqueness violation, e.g. a duplicate edge.
	ErrConflict = errors.New("conflict")

	// ErrUnavailable is returned when the backing store times out or is
	// transiently unreachable. Callers may retry; nothing retries in-process.
	ErrUnavailable = errors.New("storage unavailable")
)
