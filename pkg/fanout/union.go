package fanout

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/tenantkit/pkg/aggregate"
	"github.com/dmitrymomot/tenantkit/pkg/pgstore"
	"github.com/dmitrymomot/tenantkit/pkg/schema"
)

// BuildUnion renders the union over schemas. Parameters: $1 is the containment
// document, $2..$n+1 the schema names, the last one the limit. Without an
// explicit limit the statement asks for aggregate.MaxLimit+1 rows so the caller
// can tell a complete union from a capped one. An empty schema list returns an
// empty statement.
func BuildUnion(schemas []schema.Name, table string, filter aggregate.Filter) (string, []any, error) {
	if len(schemas) == 0 {
		return "", nil, nil
	}
	if err := filter.Validate(); err != nil {
		return "", nil, err
	}
	match, err := pgstore.MatchJSON(filter)
	if err != nil {
		return "", nil, err
	}

	args := make([]any, 0, len(schemas)+2)
	args = append(args, match)

	branches := make([]string, 0, len(schemas))
	for _, name := range schemas {
		qualified, err := name.Qualify(table)
		if err != nil {
			return "", nil, err
		}
		args = append(args, name.String())
		branches = append(branches, fmt.Sprintf(
			"SELECT $%d::text AS schema_name, %s FROM %s WHERE data @> $1::jsonb",
			len(args), pgstore.Columns, qualified,
		))
	}
	limit := filter.Limit
	if limit == 0 {
		limit = aggregate.MaxLimit + 1
	}
	args = append(args, limit)

	var b strings.Builder
	b.WriteString("SELECT schema_name, ")
	b.WriteString(pgstore.Columns)
	b.WriteString(" FROM (\n")
	b.WriteString(strings.Join(branches, "\nUNION ALL\n"))
	b.WriteString("\n) AS fanout")
	if len(filter.OrderBy) > 0 {
		b.WriteString("\n")
		b.WriteString(pgstore.OrderClause(filter))
	}
	fmt.Fprintf(&b, "\nLIMIT $%d", len(args))

	return b.String(), args, nil
}
