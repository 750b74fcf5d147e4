package repocache

import (
	"errors"
	"regexp"
	"strings"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

const keyPrefix = "tk"

var namespacePattern = regexp.MustCompile(`^[a-z][a-z0-9_.-]{0,62}$`)

// Key builds the cache key for an aggregate. The tenant must be valid and the
// namespace a lower-case identifier. The id is the last segment and may contain anything.
func Key(tenantID tenant.ID, namespace, id string) (string, error) {
	if tenantID.IsZero() {
		return "", errors.Join(ErrInvalidKey, tenant.ErrMissingTenantContext)
	}
	if !tenantID.Valid() {
		return "", errors.Join(ErrInvalidKey, tenant.ErrInvalidIdentifier)
	}
	if err := ValidateNamespace(namespace); err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.Join(ErrInvalidKey, errors.New("empty id"))
	}
	return strings.Join([]string{keyPrefix, tenantID.String(), namespace, id}, ":"), nil
}

// ValidateNamespace checks a cache namespace.
func ValidateNamespace(namespace string) error {
	if !namespacePattern.MatchString(namespace) {
		return errors.Join(ErrInvalidKey, errors.New("namespace must match [a-z][a-z0-9_.-]*"))
	}
	return nil
}
