// Package apperr holds the error sentinels shared across packages.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	// ErrMetadata marks a note whose header is present but cannot be decoded.
	ErrMetadata = errors.New("malformed note header")
	// ErrIO marks a note file that vanished or could not be read.
	ErrIO = errors.New("note unreadable")
)
