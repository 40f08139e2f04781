// Package query assembles the parameterized SQL that does not have a fixed
// shape: the property search, whose WHERE and HAVING clauses depend on which
// filters are set, and the partial reservation update.
//
// Builders return the statement text and its positional arguments. Values
// are only ever bound as $N placeholders, never written into the SQL text.
package query

import (
	"strconv"
	"strings"
)

// DefaultLimit is used when a caller passes a non-positive limit.
const DefaultLimit = 10

// builder accumulates positional arguments and hands out their placeholders.
type builder struct {
	args []any
}

// bind appends v and returns its placeholder, $N where N is v's position.
func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// NormalizeLimit maps a non-positive limit to DefaultLimit.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// EscapeLike escapes the LIKE metacharacters in s so it matches literally
// under the default backslash escape.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
