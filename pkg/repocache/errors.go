package repocache

import "errors"

var (
	// ErrCacheUnavailable wraps backend failures. It is logged, never returned by the decorator.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrInvalidKey is returned when a key cannot be built from its parts.
	ErrInvalidKey = errors.New("invalid cache key")
)
