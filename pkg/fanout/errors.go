package fanout

import "errors"

// ErrResultTooLarge is returned when a fan-out without an explicit limit
// matches more than aggregate.MaxLimit rows.
var ErrResultTooLarge = errors.New("fan-out result exceeds the row cap, set a limit or narrow the filter")

// ErrQuery wraps driver errors from the union query.
var ErrQuery = errors.New("fan-out query failed")
