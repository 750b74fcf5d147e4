package metrics

import "errors"

// ErrRegister is returned when a collector cannot be registered.
var ErrRegister = errors.New("failed to register metrics collector")
