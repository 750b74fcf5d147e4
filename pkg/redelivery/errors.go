package redelivery

import "errors"

var (
	ErrEnqueueFailed = errors.New("redelivery: failed to enqueue events")
	ErrInvalidTask   = errors.New("redelivery: invalid task payload")
)
