package models

import "errors"

var (
	// ErrInvalidConfiguration is fatal at startup and prevents serving.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrDocumentNotFound is non-fatal: the service starts with no chunks.
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidRequest   = errors.New("invalid request")
	// ErrUpstreamFailure is never returned to the caller, it becomes the answer text.
	ErrUpstreamFailure = errors.New("upstream failure")
	ErrNotReady        = errors.New("service not ready")
)
