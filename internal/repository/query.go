package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"

	"moments_api/internal/model"
)

// Postgres error codes
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation
}

// filterSet accumulates WHERE conditions written with '?' bindvars. Queries are
// passed through sqlx's Rebind before execution.
type filterSet struct {
	conds []string
	args  []interface{}
}

func (f *filterSet) add(cond string, args ...interface{}) {
	f.conds = append(f.conds, cond)
	f.args = append(f.args, args...)
}

func (f *filterSet) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// pageArgs returns the filter args followed by LIMIT and OFFSET.
func (f *filterSet) pageArgs(opts model.ListOptions) []interface{} {
	args := make([]interface{}, 0, len(f.args)+2)
	args = append(args, f.args...)
	return append(args, opts.Limit(), opts.Offset())
}

// likePattern builds a case-insensitive "contains" pattern, escaping LIKE wildcards.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

// orderBy renders the requested orderings that appear in allowed, followed by
// tieBreak. Unknown fields are skipped; if none remain, fallback is used.
func orderBy(orderings []model.Ordering, allowed map[string]string, fallback, tieBreak string) string {
	parts := make([]string, 0, len(orderings)+1)
	for _, o := range orderings {
		expr, ok := allowed[o.Field]
		if !ok {
			continue
		}
		if o.Desc {
			parts = append(parts, expr+" DESC NULLS LAST")
		} else {
			parts = append(parts, expr+" ASC NULLS LAST")
		}
	}
	if len(parts) == 0 {
		parts = append(parts, fallback)
	}
	parts = append(parts, tieBreak)
	return " ORDER BY " + strings.Join(parts, ", ")
}
