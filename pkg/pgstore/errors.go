package pgstore

import "errors"

var (
	// ErrDecode is returned when a stored document cannot be decoded into the aggregate type.
	ErrDecode = errors.New("failed to decode stored aggregate")

	// ErrEncode is returned when an aggregate cannot be encoded as JSON.
	ErrEncode = errors.New("failed to encode aggregate")

	// ErrQuery wraps driver errors.
	ErrQuery = errors.New("aggregate query failed")
)
