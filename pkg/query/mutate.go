package query

import (
	"errors"
	"fmt"

	apperrors "github.com/duynguyendang/implica/pkg/common/errors"
	"github.com/duynguyendang/implica/pkg/graph"
	"github.com/duynguyendang/implica/pkg/props"
	"github.com/duynguyendang/implica/pkg/typing"
)

type setClause struct {
	variable  string
	entries   map[string]props.Value
	overwrite bool
}

// apply mutates the properties of the element bound under the variable in
// every row.
func (c *setClause) apply(ex *executor) error {
	for _, row := range ex.relation {
		b, ok := row[c.variable]
		if !ok {
			return apperrors.WithSuggestion(apperrors.ErrUnknownVariable, c.variable, ex.relation.Vars())
		}
		switch el := b.(type) {
		case *graph.Node:
			if err := ex.graph.SetNodeProperties(el.UID(), c.entries, c.overwrite); err != nil {
				return err
			}
		case *graph.Edge:
			if err := ex.graph.SetEdgeProperties(el.Key(), c.entries, c.overwrite); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %q is bound to a %T, not a graph element",
				apperrors.ErrUnsupportedTarget, c.variable, b)
		}
	}
	return nil
}

type removeClause struct {
	variables []string
}

// apply deletes the bound elements from the graph, drops the variables
// from every row, and deduplicates the relation. Node removal cascades to
// incident edges; rows referencing an element removed along the way drop
// that binding too.
func (c *removeClause) apply(ex *executor) error {
	if len(ex.relation) > 0 {
		bound := ex.relation.Vars()
		for _, v := range c.variables {
			if !contains(bound, v) {
				return apperrors.WithSuggestion(apperrors.ErrUnknownVariable, v, bound)
			}
		}
	}

	for _, row := range ex.relation {
		for _, v := range c.variables {
			b, ok := row[v]
			if !ok {
				continue
			}
			switch el := b.(type) {
			case *graph.Node:
				if err := ex.graph.RemoveNode(el.UID()); err != nil && !errors.Is(err, apperrors.ErrElementNotFound) {
					// Another row already removed it; anything else is real.
					return err
				}
			case *graph.Edge:
				if err := ex.graph.RemoveEdge(el.Key()); err != nil && !errors.Is(err, apperrors.ErrElementNotFound) {
					return err
				}
			default:
				return fmt.Errorf("%w: %q is bound to a %T, not a graph element",
					apperrors.ErrUnsupportedTarget, v, b)
			}
		}
	}

	// Strip the removed variables and any binding whose element is gone
	// (cascaded edges, shared nodes).
	out := make(Relation, 0, len(ex.relation))
	for _, row := range ex.relation {
		clean := make(Row, len(row))
		for name, b := range row {
			if contains(c.variables, name) {
				continue
			}
			switch el := b.(type) {
			case *graph.Node:
				if _, alive := ex.graph.Node(el.UID()); !alive {
					continue
				}
			case *graph.Edge:
				if _, alive := ex.graph.Edge(el.Key()); !alive {
					continue
				}
			}
			clean[name] = b
		}
		out = append(out, clean)
	}
	ex.relation = out.dedupe()
	return nil
}

type withClause struct {
	variables []string
}

// apply projects the relation to the listed variables and deduplicates.
func (c *withClause) apply(ex *executor) error {
	bound := ex.relation.Vars()
	for _, v := range c.variables {
		if !contains(bound, v) {
			return apperrors.WithSuggestion(apperrors.ErrUnknownVariable, v, bound)
		}
	}

	out := make(Relation, 0, len(ex.relation))
	for _, row := range ex.relation {
		projected := make(Row, len(c.variables))
		for _, v := range c.variables {
			if b, ok := row[v]; ok {
				projected[v] = b
			}
		}
		out = append(out, projected)
	}
	ex.relation = out.dedupe()
	return nil
}

type limitClause struct {
	n int
}

func (c *limitClause) apply(ex *executor) error {
	if len(ex.relation) > c.n {
		ex.relation = ex.relation[:c.n]
	}
	return nil
}

type skipClause struct {
	n int
}

func (c *skipClause) apply(ex *executor) error {
	if c.n >= len(ex.relation) {
		ex.relation = Relation{}
	} else {
		ex.relation = ex.relation[c.n:]
	}
	return nil
}

type addClause struct {
	variable string
	binding  typing.Binding
}

// apply binds a concrete type or term into every row. A conflicting
// existing binding fails.
func (c *addClause) apply(ex *executor) error {
	for i, row := range ex.relation {
		if existing, ok := row[c.variable]; ok {
			if existing.UID() == c.binding.UID() {
				continue
			}
			return fmt.Errorf("%w: %q", apperrors.ErrAlreadyBound, c.variable)
		}
		updated := row.Clone()
		updated[c.variable] = c.binding
		ex.relation[i] = updated
	}
	return nil
}
