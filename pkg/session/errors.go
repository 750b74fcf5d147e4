package session

import "errors"

var (
	// ErrBeginFailed is returned when the transaction could not be started.
	ErrBeginFailed = errors.New("session.begin_failed")

	// ErrBindSchema is returned when the schema could not be bound to the transaction.
	ErrBindSchema = errors.New("session.bind_schema_failed")

	// ErrNilOperation is returned when Read or Write is called without a function.
	ErrNilOperation = errors.New("session.nil_operation")
)
