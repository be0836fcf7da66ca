package repository

import "strings"

// updateBuilder assembles a partial UPDATE statement from an explicit set of
// columns. Each entity exposes a patch struct whose fields are the only
// columns reachable through this path; callers never translate raw request
// keys into column names. Column order follows the order of Set calls so the
// generated SQL is deterministic.
type updateBuilder struct {
    sets []string
    args []any
}

// Set adds a column assignment with a bound argument.
func (b *updateBuilder) Set(col string, v any) {
    b.sets = append(b.sets, col+" = ?")
    b.args = append(b.args, v)
}

// SetNullable adds a column assignment for an optional text field. An empty
// or whitespace-only value is stored as NULL so that "no value" has a single
// representation in the database.
func (b *updateBuilder) SetNullable(col string, v string) {
    v = strings.TrimSpace(v)
    if v == "" {
        b.sets = append(b.sets, col+" = NULL")
        return
    }
    b.Set(col, v)
}

// SetRaw adds a verbatim assignment with no bound argument, e.g. a
// CURRENT_TIMESTAMP touch on updated_at.
func (b *updateBuilder) SetRaw(expr string) {
    b.sets = append(b.sets, expr)
}

// Empty reports whether no assignments were added.
func (b *updateBuilder) Empty() bool { return len(b.sets) == 0 }

// Query returns the full UPDATE statement and its argument list, with the
// WHERE arguments appended after the SET arguments. When no assignments were
// added it returns ErrNoFieldsToUpdate instead of producing a no-op
// statement.
func (b *updateBuilder) Query(table, where string, whereArgs ...any) (string, []any, error) {
    if b.Empty() {
        return "", nil, ErrNoFieldsToUpdate
    }
    q := "UPDATE " + table + " SET " + strings.Join(b.sets, ", ") + " WHERE " + where
    args := make([]any, 0, len(b.args)+len(whereArgs))
    args = append(args, b.args...)
    args = append(args, whereArgs...)
    return q, args, nil
}
