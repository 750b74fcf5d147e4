package schema

import "errors"

var (
	// ErrInvalidSchemaName is returned when a tenant id or candidate name fails the allow-list.
	// There is no fallback to a default schema.
	ErrInvalidSchemaName = errors.New("invalid schema name")

	// ErrInvalidTableName is returned for table names that are not plain identifiers.
	ErrInvalidTableName = errors.New("invalid table name")

	// ErrProvisioningFailed is returned when a schema could not be created or migrated.
	// Failures are never memoized as ready.
	ErrProvisioningFailed = errors.New("schema provisioning failed")

	// ErrCatalogQuery is returned when listing tenant schemas fails.
	ErrCatalogQuery = errors.New("failed to list tenant schemas")
)
