package query

import (
	"sort"
	"strings"

	"github.com/duynguyendang/implica/pkg/typing"
)

// Row maps variable names to their bindings: graph elements, types, or
// terms.
type Row map[string]typing.Binding

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Relation is the list of binding rows carried between clauses. Ordering is
// not part of the contract until an ORDER BY imposes one.
type Relation []Row

// Vars returns the union of variable names bound across rows, sorted.
func (rel Relation) Vars() []string {
	seen := make(map[string]struct{})
	for _, row := range rel {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	vars := make([]string, 0, len(seen))
	for k := range seen {
		vars = append(vars, k)
	}
	sort.Strings(vars)
	return vars
}

// signature renders a row as a canonical string for deduplication.
func (r Row) signature() string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(r[k].UID())
		b.WriteByte(';')
	}
	return b.String()
}

// dedupe removes duplicate rows, keeping first occurrences in order.
func (rel Relation) dedupe() Relation {
	seen := make(map[string]struct{}, len(rel))
	out := make(Relation, 0, len(rel))
	for _, row := range rel {
		sig := row.signature()
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, row)
	}
	return out
}
