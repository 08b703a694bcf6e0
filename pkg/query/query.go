// Package query implements the chainable clause builder and executor that
// drives the implica graph: MATCH, CREATE, SET, REMOVE, ORDER BY, WITH,
// LIMIT, SKIP, ADD, and the RETURN projection, executed in declaration
// order over a relation of binding rows.
package query

import (
	"fmt"
	"log/slog"

	apperrors "github.com/duynguyendang/implica/pkg/common/errors"
	"github.com/duynguyendang/implica/pkg/graph"
	"github.com/duynguyendang/implica/pkg/pattern"
	"github.com/duynguyendang/implica/pkg/props"
	"github.com/duynguyendang/implica/pkg/typing"
)

// clause is one executable step of a query.
type clause interface {
	apply(ex *executor) error
}

// Query accumulates clauses and executes them in declaration order. A
// query is consumed by execution; it cannot run twice.
//
// Build errors (bad patterns, invalid names) are recorded on the builder
// and surfaced by Execute/Return, so chains stay fluent.
//
// There is no cross-clause rollback: a failing clause aborts the query and
// mutations of completed clauses remain visible.
type Query struct {
	graph    *graph.Graph
	clauses  []clause
	buildErr error
	executed bool
}

// New starts a query against g.
func New(g *graph.Graph) *Query {
	return &Query{graph: g}
}

// fail records the first build error.
func (q *Query) fail(err error) *Query {
	if q.buildErr == nil {
		q.buildErr = err
	}
	return q
}

// Match appends a MATCH clause from pattern source text.
func (q *Query) Match(src string) *Query {
	path, err := pattern.ParsePath(src)
	if err != nil {
		return q.fail(fmt.Errorf("match: %w", err))
	}
	return q.MatchPath(path)
}

// MatchPath appends a MATCH clause from a prebuilt path pattern.
func (q *Query) MatchPath(path *pattern.PathPattern) *Query {
	if err := validateUserVars(path); err != nil {
		return q.fail(fmt.Errorf("match: %w", err))
	}
	q.clauses = append(q.clauses, &matchClause{path: path})
	return q
}

// Create appends a CREATE clause from pattern source text.
func (q *Query) Create(src string) *Query {
	path, err := pattern.ParsePath(src)
	if err != nil {
		return q.fail(fmt.Errorf("create: %w", err))
	}
	return q.CreatePath(path)
}

// CreatePath appends a CREATE clause from a prebuilt path pattern.
func (q *Query) CreatePath(path *pattern.PathPattern) *Query {
	if err := validateUserVars(path); err != nil {
		return q.fail(fmt.Errorf("create: %w", err))
	}
	q.clauses = append(q.clauses, &createClause{path: path})
	return q
}

// Set appends a SET clause mutating the properties of the element bound
// under variable: replace the whole map when overwrite is set, otherwise
// overlay the entries.
func (q *Query) Set(variable string, entries map[string]props.Value, overwrite bool) *Query {
	if err := typing.ValidateName(variable); err != nil {
		return q.fail(fmt.Errorf("set: %w", err))
	}
	q.clauses = append(q.clauses, &setClause{variable: variable, entries: entries, overwrite: overwrite})
	return q
}

// Remove appends a REMOVE clause deleting the elements bound under the
// variables. Removing a node cascades to its incident edges.
func (q *Query) Remove(variables ...string) *Query {
	for _, v := range variables {
		if err := typing.ValidateName(v); err != nil {
			return q.fail(fmt.Errorf("remove: %w", err))
		}
	}
	q.clauses = append(q.clauses, &removeClause{variables: variables})
	return q
}

// OrderBy appends an ascending ORDER BY over property paths of the form
// "var.key" (nested keys chain with further dots).
func (q *Query) OrderBy(keys ...string) *Query {
	return q.orderBy(keys, true)
}

// OrderByDesc is OrderBy with descending order.
func (q *Query) OrderByDesc(keys ...string) *Query {
	return q.orderBy(keys, false)
}

func (q *Query) orderBy(keys []string, ascending bool) *Query {
	parsed, err := parseOrderKeys(keys)
	if err != nil {
		return q.fail(err)
	}
	q.clauses = append(q.clauses, &orderByClause{keys: parsed, ascending: ascending})
	return q
}

// With projects the relation down to the listed variables.
func (q *Query) With(variables ...string) *Query {
	for _, v := range variables {
		if err := typing.ValidateName(v); err != nil {
			return q.fail(fmt.Errorf("with: %w", err))
		}
	}
	q.clauses = append(q.clauses, &withClause{variables: variables})
	return q
}

// Limit truncates the relation to at most n rows.
func (q *Query) Limit(n int) *Query {
	if n < 0 {
		return q.fail(fmt.Errorf("%w: limit must not be negative", apperrors.ErrInvalidQuery))
	}
	q.clauses = append(q.clauses, &limitClause{n: n})
	return q
}

// Skip drops the first n rows of the relation.
func (q *Query) Skip(n int) *Query {
	if n < 0 {
		return q.fail(fmt.Errorf("%w: skip must not be negative", apperrors.ErrInvalidQuery))
	}
	q.clauses = append(q.clauses, &skipClause{n: n})
	return q
}

// AddType binds a concrete type into every row under variable.
func (q *Query) AddType(variable string, t typing.Type) *Query {
	if err := typing.ValidateName(variable); err != nil {
		return q.fail(fmt.Errorf("add: %w", err))
	}
	q.clauses = append(q.clauses, &addClause{variable: variable, binding: t})
	return q
}

// AddTerm binds a concrete term into every row under variable.
func (q *Query) AddTerm(variable string, tm typing.Term) *Query {
	if err := typing.ValidateName(variable); err != nil {
		return q.fail(fmt.Errorf("add: %w", err))
	}
	q.clauses = append(q.clauses, &addClause{variable: variable, binding: tm})
	return q
}

// Execute runs the clauses and discards the relation.
func (q *Query) Execute() error {
	_, err := q.run()
	return err
}

// Return runs the clauses and projects the final relation to the listed
// variables. A listed variable absent from the relation fails with
// UnknownVariable.
func (q *Query) Return(variables ...string) (Relation, error) {
	rel, err := q.run()
	if err != nil {
		return nil, err
	}

	bound := rel.Vars()
	for _, v := range variables {
		if !contains(bound, v) {
			return nil, apperrors.WithSuggestion(apperrors.ErrUnknownVariable, v, bound)
		}
	}

	out := make(Relation, 0, len(rel))
	for _, row := range rel {
		projected := make(Row, len(variables))
		for _, v := range variables {
			if b, ok := row[v]; ok {
				projected[v] = b
			}
		}
		out = append(out, projected)
	}
	return out, nil
}

// ReturnCount runs the clauses and returns the number of rows in the final
// relation.
func (q *Query) ReturnCount() (int, error) {
	rel, err := q.run()
	if err != nil {
		return 0, err
	}
	return len(rel), nil
}

func (q *Query) run() (Relation, error) {
	if q.buildErr != nil {
		return nil, q.buildErr
	}
	if q.executed {
		return nil, fmt.Errorf("%w: query already executed", apperrors.ErrInvalidQuery)
	}
	q.executed = true

	ex := &executor{
		graph:    q.graph,
		relation: Relation{Row{}},
	}
	for i, c := range q.clauses {
		if err := c.apply(ex); err != nil {
			slog.Error("query clause failed", "clause", i, "error", err)
			return nil, err
		}
	}
	return ex.relation, nil
}

// executor carries the mutable execution state across clauses.
type executor struct {
	graph    *graph.Graph
	relation Relation

	// placeholderSeq feeds synthesized join-variable names.
	placeholderSeq int
}

// nextPlaceholder returns a fresh internal variable name. The prefix is
// reserved, so synthesized names cannot collide with user variables.
func (ex *executor) nextPlaceholder() string {
	name := fmt.Sprintf("%s%d", typing.PlaceholderPrefix, ex.placeholderSeq)
	ex.placeholderSeq++
	return name
}

// validateUserVars rejects reserved variable names at build time.
func validateUserVars(path *pattern.PathPattern) error {
	for _, v := range path.Vars() {
		if err := typing.ValidateName(v); err != nil {
			return err
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
