package schema

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

const (
	prefix = "tenant_"
	suffix = "_schema"

	// maxIdentLength is PostgreSQL's NAMEDATALEN - 1.
	maxIdentLength = 63
)

// Public is the reserved namespace for platform and cross-tenant data.
const Public Name = "public"

var allowList = regexp.MustCompile(`^tenant_[A-Za-z0-9_]+_schema$`)

// Name is a physical namespace name that has passed validation.
// Only values produced by Resolve or Validate may qualify a statement.
type Name string

// Resolve maps a tenant id to its schema name. It is deterministic and side-effect free.
//
// Tenant ids may contain '-' which is not allowed in schema names, so the id is
// escaped injectively: '_' becomes "__" and '-' becomes "_0". Ids made of letters
// and digits map to the plain form tenant_<id>_schema.
func Resolve(id tenant.ID) (Name, error) {
	if !id.Valid() {
		return "", errors.Join(ErrInvalidSchemaName, tenant.ErrInvalidIdentifier)
	}

	var b strings.Builder
	b.Grow(len(prefix) + 2*len(id) + len(suffix))
	b.WriteString(prefix)
	for i := 0; i < len(id); i++ {
		switch c := id[i]; c {
		case '_':
			b.WriteString("__")
		case '-':
			b.WriteString("_0")
		default:
			b.WriteByte(c)
		}
	}
	b.WriteString(suffix)

	return Validate(b.String())
}

// Validate checks a candidate name against the allow-list:
// ^tenant_[A-Za-z0-9_]+_schema$ or exactly "public". Anything else fails with ErrInvalidSchemaName.
func Validate(candidate string) (Name, error) {
	if candidate == string(Public) {
		return Public, nil
	}
	if len(candidate) > maxIdentLength {
		return "", errors.Join(ErrInvalidSchemaName, errors.New("schema name exceeds 63 bytes"))
	}
	if !allowList.MatchString(candidate) {
		return "", ErrInvalidSchemaName
	}
	return Name(candidate), nil
}

// TenantOf reverses Resolve. It fails for Public and for catalog names that
// were not produced by Resolve.
func TenantOf(name Name) (tenant.ID, error) {
	if _, err := Validate(string(name)); err != nil || name == Public {
		return "", ErrInvalidSchemaName
	}

	body := strings.TrimSuffix(strings.TrimPrefix(string(name), prefix), suffix)
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '_' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(body) {
			return "", ErrInvalidSchemaName
		}
		i++
		switch body[i] {
		case '_':
			b.WriteByte('_')
		case '0':
			b.WriteByte('-')
		default:
			return "", ErrInvalidSchemaName
		}
	}

	id, err := tenant.ParseID(b.String())
	if err != nil {
		return "", errors.Join(ErrInvalidSchemaName, err)
	}
	return id, nil
}

// String implements fmt.Stringer.
func (n Name) String() string { return string(n) }

// Ident re-validates the name and returns it as a quoted SQL identifier.
// It is the only way a name reaches statement text.
func (n Name) Ident() (string, error) {
	if _, err := Validate(string(n)); err != nil {
		return "", err
	}
	return pgx.Identifier{string(n)}.Sanitize(), nil
}

// Qualify returns the quoted schema-qualified identifier for table.
func (n Name) Qualify(table string) (string, error) {
	if _, err := Validate(string(n)); err != nil {
		return "", err
	}
	if err := ValidateTable(table); err != nil {
		return "", err
	}
	return pgx.Identifier{string(n), table}.Sanitize(), nil
}

var tablePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// ValidateTable checks that a table name is a plain lower-case identifier.
func ValidateTable(table string) error {
	if !tablePattern.MatchString(table) {
		return ErrInvalidTableName
	}
	return nil
}
