package query

import (
	"fmt"

	apperrors "github.com/duynguyendang/implica/pkg/common/errors"
	"github.com/duynguyendang/implica/pkg/graph"
	"github.com/duynguyendang/implica/pkg/pattern"
	"github.com/duynguyendang/implica/pkg/typing"
)

type createClause struct {
	path *pattern.PathPattern
}

// apply elaborates the path once per row, inserting missing nodes and
// edges. Variables already bound in a row reuse their elements; everything
// else must be exactly specified. An empty relation still runs one
// creation pass with no prior bindings.
func (c *createClause) apply(ex *executor) error {
	relation := ex.relation
	if len(relation) == 0 {
		relation = Relation{Row{}}
	}

	out := make(Relation, 0, len(relation))
	for _, row := range relation {
		newRow, err := createPath(ex.graph, c.path, row)
		if err != nil {
			return err
		}
		out = append(out, newRow)
	}
	ex.relation = out
	return nil
}

func createPath(g *graph.Graph, path *pattern.PathPattern, row Row) (Row, error) {
	newRow := row.Clone()
	reg := g.Constants()

	// Elaborate every edge term first; its Arrow supplies the types of
	// adjacent nodes the pattern leaves unspecified.
	terms := make([]typing.Term, len(path.Edges))
	arrows := make([]*typing.Arrow, len(path.Edges))
	for i, ep := range path.Edges {
		if ep.Term == nil {
			return nil, fmt.Errorf("%w: edge needs an exact term to be created", apperrors.ErrAmbiguousCreate)
		}
		if !typing.TermSchemaIsExact(ep.Term) {
			return nil, fmt.Errorf("%w: edge term schema %q is not exact", apperrors.ErrAmbiguousCreate, ep.Term)
		}
		term, err := typing.Elaborate(ep.Term, reg)
		if err != nil {
			return nil, err
		}
		arrow, ok := term.Type().(*typing.Arrow)
		if !ok {
			return nil, fmt.Errorf("%w: edge term %s has atomic type %s",
				apperrors.ErrTypeMismatch, term, term.Type())
		}
		if ep.Type != nil {
			declared, exact := typing.SchemaIsExact(ep.Type)
			if !exact {
				return nil, fmt.Errorf("%w: edge type schema %q is not exact", apperrors.ErrAmbiguousCreate, ep.Type)
			}
			if !typing.TypesEqual(declared, arrow) {
				return nil, fmt.Errorf("%w: edge declares type %s but term has %s",
					apperrors.ErrTypeMismatch, declared, arrow)
			}
		}
		terms[i] = term
		arrows[i] = arrow
	}

	// Resolve or create every node.
	nodes := make([]*graph.Node, len(path.Nodes))
	for i, np := range path.Nodes {
		if np.Var != "" {
			if b, ok := newRow[np.Var]; ok {
				bound, isNode := b.(*graph.Node)
				if !isNode {
					return nil, fmt.Errorf("%w: variable %q is not bound to a node",
						apperrors.ErrUnsupportedTarget, np.Var)
				}
				nodes[i] = bound
				continue
			}
		}

		n, err := elaborateNode(g, np, inferredNodeType(path, arrows, i))
		if err != nil {
			return nil, err
		}
		uid, err := g.AddNode(n)
		if err != nil {
			return nil, err
		}
		stored, _ := g.Node(uid)
		nodes[i] = stored
		if np.Var != "" {
			newRow[np.Var] = stored
		}
	}

	// Create the edges between resolved endpoints.
	for i, ep := range path.Edges {
		start, end := nodes[i], nodes[i+1]
		if ep.Dir == pattern.Backward {
			start, end = end, start
		}
		e, err := graph.NewEdge(terms[i], start, end, ep.Props)
		if err != nil {
			return nil, err
		}
		key, err := g.AddEdge(e)
		if err != nil {
			return nil, err
		}
		stored, _ := g.Edge(key)
		if ep.Var != "" {
			newRow[ep.Var] = stored
		}
	}

	return newRow, nil
}

// inferredNodeType derives the type of node i from an adjacent elaborated
// edge arrow, honoring edge direction. Returns nil when no edge pins it.
func inferredNodeType(path *pattern.PathPattern, arrows []*typing.Arrow, i int) typing.Type {
	// Edge i-1 sits to the left of node i, edge i to its right.
	if i > 0 && arrows[i-1] != nil {
		if path.Edges[i-1].Dir == pattern.Forward {
			return arrows[i-1].Right
		}
		return arrows[i-1].Left
	}
	if i < len(arrows) && arrows[i] != nil {
		if path.Edges[i].Dir == pattern.Forward {
			return arrows[i].Left
		}
		return arrows[i].Right
	}
	return nil
}

// elaborateNode builds a concrete node from an exact node pattern,
// falling back to the type inferred from an adjacent edge.
func elaborateNode(g *graph.Graph, np *pattern.NodePattern, inferred typing.Type) (*graph.Node, error) {
	var typ typing.Type
	if np.Type != nil {
		exact, ok := typing.SchemaIsExact(np.Type)
		if !ok {
			return nil, fmt.Errorf("%w: node type schema %q is not exact", apperrors.ErrAmbiguousCreate, np.Type)
		}
		typ = exact
	}

	var term typing.Term
	if np.Term != nil {
		if !typing.TermSchemaIsExact(np.Term) {
			return nil, fmt.Errorf("%w: node term schema %q is not exact", apperrors.ErrAmbiguousCreate, np.Term)
		}
		elaborated, err := typing.Elaborate(np.Term, g.Constants())
		if err != nil {
			return nil, err
		}
		term = elaborated
		if typ == nil {
			typ = term.Type()
		}
	}

	if typ == nil {
		typ = inferred
	}
	if typ == nil {
		return nil, fmt.Errorf("%w: node needs an exact type to be created", apperrors.ErrAmbiguousCreate)
	}
	return graph.NewNode(typ, term, np.Props)
}
