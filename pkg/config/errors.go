package config

import "errors"

var (
	// ErrParsingConfig is returned when environment variables or a file cannot be parsed into the config struct.
	ErrParsingConfig = errors.New("failed to parse config")

	// ErrNilPointer is returned when a nil pointer is provided to Load.
	ErrNilPointer = errors.New("nil pointer provided to config loader")

	// ErrLoadingEnvFile is returned when an explicit .env file cannot be read.
	ErrLoadingEnvFile = errors.New("failed to load env file")

	// ErrLoadingFile is returned when a config file cannot be opened.
	ErrLoadingFile = errors.New("failed to open config file")
)
