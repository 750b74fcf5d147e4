package tenantkit

import "errors"

var (
	ErrUnknownTransport    = errors.New("tenantkit: unknown event transport")
	ErrUnknownCacheBackend = errors.New("tenantkit: unknown cache backend")
	ErrSetupFailed         = errors.New("tenantkit: setup failed")
)
