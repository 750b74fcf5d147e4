package uow

import "errors"

var (
	// ErrClosed is returned when a hook is registered on, or a commit is attempted
	// for, a unit of work that has already committed or rolled back.
	ErrClosed = errors.New("unit of work is closed")

	// ErrCommitFailed wraps errors returned by the underlying COMMIT.
	ErrCommitFailed = errors.New("unit of work commit failed")
)
