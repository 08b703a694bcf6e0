// Package pattern implements the Cypher-inspired pattern surface: node,
// edge, and path patterns composing type/term schemas with binding
// variables, property predicates, and direction, plus the parser for the
// textual form.
package pattern

import (
	"errors"
	"fmt"

	apperrors "github.com/duynguyendang/implica/pkg/common/errors"
	"github.com/duynguyendang/implica/pkg/graph"
	"github.com/duynguyendang/implica/pkg/props"
	"github.com/duynguyendang/implica/pkg/typing"
)

// Direction orients an edge pattern relative to its surrounding nodes.
type Direction int

const (
	// Forward matches edges running left node -> right node.
	Forward Direction = iota
	// Backward matches edges running right node -> left node.
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// NodePattern matches a node against optional schemas and property
// predicates, binding it under Var on success.
type NodePattern struct {
	Var   string // empty for anonymous
	Type  typing.TypeSchema
	Term  typing.TermSchema
	Props map[string]props.Value
}

// Match tests the pattern against a node, extending ctx with the node
// binding and any schema captures. A binding conflict is a match failure,
// not an error; the caller discards the context clone of a failed attempt.
func (p *NodePattern) Match(n *graph.Node, ctx *typing.Context) (bool, error) {
	if p.Type != nil {
		ok, err := p.Type.Match(n.Type(), ctx)
		if err != nil || !ok {
			return ok, err
		}
	}
	if p.Term != nil {
		if n.Term() == nil {
			return false, nil
		}
		ok, err := p.Term.Match(n.Term(), ctx)
		if err != nil || !ok {
			return ok, err
		}
	}
	if len(p.Props) > 0 && !n.Properties().Contains(p.Props) {
		return false, nil
	}
	if p.Var != "" {
		if err := ctx.TryBind(p.Var, n); err != nil {
			if errors.Is(err, apperrors.ErrAlreadyBound) {
				return false, nil
			}
			return false, err
		}
	}
	return true, nil
}

func (p *NodePattern) String() string {
	return "(" + p.innerString() + ")"
}

func (p *NodePattern) innerString() string {
	s := p.Var
	if p.Type != nil {
		s += ":" + p.Type.String()
	}
	if p.Term != nil {
		if p.Type == nil {
			s += ":"
		}
		s += ":" + p.Term.String()
	}
	if len(p.Props) > 0 {
		s += " " + formatProps(p.Props)
	}
	return s
}

// EdgePattern matches an edge the same way a NodePattern matches a node,
// plus a direction that orients the endpoints at match time.
type EdgePattern struct {
	Var   string
	Type  typing.TypeSchema
	Term  typing.TermSchema
	Props map[string]props.Value
	Dir   Direction
}

// Match tests schemas and properties against an edge and binds it under
// Var. Endpoint conformance is the path matcher's concern.
func (p *EdgePattern) Match(e *graph.Edge, ctx *typing.Context) (bool, error) {
	if p.Type != nil {
		ok, err := p.Type.Match(e.Type(), ctx)
		if err != nil || !ok {
			return ok, err
		}
	}
	if p.Term != nil {
		ok, err := p.Term.Match(e.Term(), ctx)
		if err != nil || !ok {
			return ok, err
		}
	}
	if len(p.Props) > 0 && !e.Properties().Contains(p.Props) {
		return false, nil
	}
	if p.Var != "" {
		if err := ctx.TryBind(p.Var, e); err != nil {
			if errors.Is(err, apperrors.ErrAlreadyBound) {
				return false, nil
			}
			return false, err
		}
	}
	return true, nil
}

func (p *EdgePattern) String() string {
	inner := "[" + (&NodePattern{Var: p.Var, Type: p.Type, Term: p.Term, Props: p.Props}).innerString() + "]"
	if p.Dir == Backward {
		return "<-" + inner + "-"
	}
	return "-" + inner + "->"
}

// PathPattern is the alternating sequence node, edge, node, ..., node.
type PathPattern struct {
	Nodes []*NodePattern
	Edges []*EdgePattern
}

// NewPath builds a path pattern, enforcing the alternation invariant: n+1
// node patterns around n edge patterns, at least one node.
func NewPath(nodes []*NodePattern, edges []*EdgePattern) (*PathPattern, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: path needs at least one node pattern", apperrors.ErrInvalidQuery)
	}
	if len(nodes) != len(edges)+1 {
		return nil, fmt.Errorf("%w: path has %d node pattern(s) and %d edge pattern(s)",
			apperrors.ErrInvalidQuery, len(nodes), len(edges))
	}
	return &PathPattern{Nodes: nodes, Edges: edges}, nil
}

// Vars returns the user-supplied variable names in the path, in order of
// appearance.
func (p *PathPattern) Vars() []string {
	var vars []string
	for i, np := range p.Nodes {
		if np.Var != "" {
			vars = append(vars, np.Var)
		}
		if i < len(p.Edges) && p.Edges[i].Var != "" {
			vars = append(vars, p.Edges[i].Var)
		}
	}
	return vars
}

func (p *PathPattern) String() string {
	s := p.Nodes[0].String()
	for i, ep := range p.Edges {
		s += ep.String() + p.Nodes[i+1].String()
	}
	return s
}
