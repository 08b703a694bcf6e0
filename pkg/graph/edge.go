package graph

import (
	"fmt"

	"github.com/duynguyendang/implica/pkg/common/errors"
	"github.com/duynguyendang/implica/pkg/props"
	"github.com/duynguyendang/implica/pkg/typing"
)

// EdgeKey identifies an edge by its ordered endpoint pair. At most one edge
// exists per key.
type EdgeKey struct {
	Start string
	End   string
}

func (k EdgeKey) String() string { return k.Start + ":" + k.End }

// Edge is a directed, term-carrying connection between two nodes. Its type
// is always an Arrow whose arms equal the endpoint node types.
type Edge struct {
	typ   *typing.Arrow
	term  typing.Term
	start string
	end   string
	props *props.Map

	uid uidCache
}

// NewEdge creates an edge from start to end carrying term. The term's type
// must be an Arrow; the arms must structurally equal the endpoint types.
func NewEdge(term typing.Term, start, end *Node, properties map[string]props.Value) (*Edge, error) {
	if term == nil {
		return nil, fmt.Errorf("%w: edge needs a term", errors.ErrTypeMismatch)
	}
	arrow, ok := term.Type().(*typing.Arrow)
	if !ok {
		return nil, fmt.Errorf("%w: edge term %s has atomic type %s", errors.ErrTypeMismatch, term, term.Type())
	}
	if !typing.TypesEqual(arrow.Left, start.Type()) {
		return nil, fmt.Errorf("%w: edge expects start of type %s, node has %s",
			errors.ErrTypeMismatch, arrow.Left, start.Type())
	}
	if !typing.TypesEqual(arrow.Right, end.Type()) {
		return nil, fmt.Errorf("%w: edge expects end of type %s, node has %s",
			errors.ErrTypeMismatch, arrow.Right, end.Type())
	}
	return &Edge{
		typ:   arrow,
		term:  term,
		start: start.UID(),
		end:   end.UID(),
		props: props.NewMap(properties),
	}, nil
}

// UID returns the edge identity: the ordered endpoint pair.
func (e *Edge) UID() string {
	return e.uid.get(func() string { return e.start + ":" + e.end })
}

// Key returns the edge's map key.
func (e *Edge) Key() EdgeKey { return EdgeKey{Start: e.start, End: e.end} }

// Type returns the edge's Arrow type.
func (e *Edge) Type() *typing.Arrow { return e.typ }

// Term returns the edge's term.
func (e *Edge) Term() typing.Term { return e.term }

// StartUID returns the UID of the start node.
func (e *Edge) StartUID() string { return e.start }

// EndUID returns the UID of the end node.
func (e *Edge) EndUID() string { return e.end }

// Properties returns the edge's property map.
func (e *Edge) Properties() *props.Map { return e.props }

// Clone returns an independent edge with a deep-copied property map and a
// fresh UID cache.
func (e *Edge) Clone() *Edge {
	return &Edge{typ: e.typ, term: e.term, start: e.start, end: e.end, props: e.props.Clone()}
}

func (e *Edge) String() string {
	return fmt.Sprintf("Edge(%s: %s)", e.term, e.typ)
}
