package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/duynguyendang/implica/pkg/common/errors"
	"github.com/duynguyendang/implica/pkg/props"
	"github.com/duynguyendang/implica/pkg/typing"
)

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	worksAt, err := typing.NewConstant("worksAt", "Person -> Company")
	require.NoError(t, err)
	g, err := New(worksAt)
	require.NoError(t, err)
	return g
}

func addNode(t *testing.T, g *Graph, typeName string, properties map[string]props.Value) *Node {
	t.Helper()
	n, err := NewNode(typing.MustVariable(typeName), nil, properties)
	require.NoError(t, err)
	uid, err := g.AddNode(n)
	require.NoError(t, err)
	stored, ok := g.Node(uid)
	require.True(t, ok)
	return stored
}

func addWorksAtEdge(t *testing.T, g *Graph, start, end *Node) *Edge {
	t.Helper()
	term, err := g.Constants().Invoke("worksAt")
	require.NoError(t, err)
	e, err := NewEdge(term, start, end, nil)
	require.NoError(t, err)
	key, err := g.AddEdge(e)
	require.NoError(t, err)
	stored, ok := g.Edge(key)
	require.True(t, ok)
	return stored
}

func TestNodeUIDEquivalence(t *testing.T) {
	person := typing.MustVariable("Person")

	n1, err := NewNode(person, nil, map[string]props.Value{"a": int64(1)})
	require.NoError(t, err)
	n2, err := NewNode(typing.MustVariable("Person"), nil, nil)
	require.NoError(t, err)
	n3, err := NewNode(typing.MustVariable("Company"), nil, nil)
	require.NoError(t, err)

	// UID depends on type and term only, never on properties.
	assert.Equal(t, n1.UID(), n2.UID())
	assert.NotEqual(t, n1.UID(), n3.UID())
}

func TestAddNodeIdempotent(t *testing.T) {
	g := newTestGraph(t)

	first := addNode(t, g, "Person", map[string]props.Value{"a": int64(1)})
	second, err := NewNode(typing.MustVariable("Person"), nil, map[string]props.Value{"a": int64(99)})
	require.NoError(t, err)

	uid, err := g.AddNode(second)
	require.NoError(t, err)
	assert.Equal(t, first.UID(), uid)
	assert.Equal(t, 1, g.NodeCount())

	// The original's properties survive; callers wanting merge use SET.
	stored, _ := g.Node(uid)
	v, _ := stored.Properties().Get("a")
	assert.Equal(t, int64(1), v)
}

func TestAddEdgeRequiresEndpoints(t *testing.T) {
	g := newTestGraph(t)
	p := addNode(t, g, "Person", nil)
	c, err := NewNode(typing.MustVariable("Company"), nil, nil)
	require.NoError(t, err)

	term, err := g.Constants().Invoke("worksAt")
	require.NoError(t, err)
	e, err := NewEdge(term, p, c, nil)
	require.NoError(t, err)

	_, err = g.AddEdge(e)
	assert.ErrorIs(t, err, apperrors.ErrEndpointMissing)
}

func TestAddEdgeUniquePerEndpointPair(t *testing.T) {
	other, err := typing.NewConstant("contracts", "Person -> Company")
	require.NoError(t, err)
	worksAt, err := typing.NewConstant("worksAt", "Person -> Company")
	require.NoError(t, err)
	g, err := New(worksAt, other)
	require.NoError(t, err)

	p := addNode(t, g, "Person", nil)
	c := addNode(t, g, "Company", nil)
	addWorksAtEdge(t, g, p, c)

	// Re-adding the structurally equal edge is a no-op.
	term, err := g.Constants().Invoke("worksAt")
	require.NoError(t, err)
	dup, err := NewEdge(term, p, c, nil)
	require.NoError(t, err)
	_, err = g.AddEdge(dup)
	require.NoError(t, err)
	assert.Equal(t, 1, g.EdgeCount())

	// A different edge over the same ordered pair conflicts.
	contractTerm, err := g.Constants().Invoke("contracts")
	require.NoError(t, err)
	conflicting, err := NewEdge(contractTerm, p, c, nil)
	require.NoError(t, err)
	_, err = g.AddEdge(conflicting)
	assert.ErrorIs(t, err, apperrors.ErrEdgeAlreadyExists)
}

func TestEdgeWellTyping(t *testing.T) {
	g := newTestGraph(t)
	p := addNode(t, g, "Person", nil)
	c := addNode(t, g, "Company", nil)

	term, err := g.Constants().Invoke("worksAt")
	require.NoError(t, err)

	// Reversed endpoints violate the arrow arms.
	_, err = NewEdge(term, c, p, nil)
	assert.ErrorIs(t, err, apperrors.ErrTypeMismatch)
}

func TestRemoveNodeCascades(t *testing.T) {
	g := newTestGraph(t)
	p := addNode(t, g, "Person", nil)
	c := addNode(t, g, "Company", nil)
	addWorksAtEdge(t, g, p, c)

	require.NoError(t, g.RemoveNode(p.UID()))

	assert.Equal(t, 1, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())
	assert.Empty(t, g.OutEdges(p.UID()))
	assert.Empty(t, g.InEdges(c.UID()))
	assert.Empty(t, g.NodesByType(typing.MustVariable("Person")))
}

func TestIndexConsistency(t *testing.T) {
	g := newTestGraph(t)
	p := addNode(t, g, "Person", nil)
	c := addNode(t, g, "Company", nil)
	e := addWorksAtEdge(t, g, p, c)

	byType := g.NodesByType(typing.MustVariable("Person"))
	require.Len(t, byType, 1)
	assert.Equal(t, p.UID(), byType[0].UID())

	edges := g.EdgesByType(e.Type())
	require.Len(t, edges, 1)
	assert.Equal(t, e.UID(), edges[0].UID())

	out := g.OutEdges(p.UID())
	require.Len(t, out, 1)
	assert.Equal(t, e.UID(), out[0].UID())

	require.NoError(t, g.RemoveEdge(e.Key()))
	assert.Empty(t, g.EdgesByType(e.Type()))
	assert.Empty(t, g.OutEdges(p.UID()))
	assert.Empty(t, g.InEdges(c.UID()))
}

func TestSetNodeProperties(t *testing.T) {
	g := newTestGraph(t)
	p := addNode(t, g, "Person", map[string]props.Value{"a": int64(1), "b": int64(2)})

	require.NoError(t, g.SetNodeProperties(p.UID(), map[string]props.Value{"b": int64(5), "c": int64(7)}, false))
	assert.True(t, p.Properties().Contains(map[string]props.Value{"a": int64(1), "b": int64(5), "c": int64(7)}))

	require.NoError(t, g.SetNodeProperties(p.UID(), map[string]props.Value{"x": int64(1)}, true))
	assert.Equal(t, 1, p.Properties().Len())

	err := g.SetNodeProperties("missing", nil, true)
	assert.ErrorIs(t, err, apperrors.ErrElementNotFound)
}

func TestScanNodesSnapshot(t *testing.T) {
	g := newTestGraph(t)
	addNode(t, g, "Person", nil)
	addNode(t, g, "Company", nil)

	var count int
	for range g.ScanNodes(nil) {
		count++
	}
	assert.Equal(t, 2, count)

	var persons int
	person := typing.MustVariable("Person")
	for range g.ScanNodes(func(n *Node) bool { return typing.TypesEqual(n.Type(), person) }) {
		persons++
	}
	assert.Equal(t, 1, persons)
}

func TestNodeCloneIsIndependent(t *testing.T) {
	g := newTestGraph(t)
	p := addNode(t, g, "Person", map[string]props.Value{"a": int64(1)})

	clone := p.Clone()
	clone.Properties().Set("a", int64(2))

	v, _ := p.Properties().Get("a")
	assert.Equal(t, int64(1), v)
	assert.Equal(t, p.UID(), clone.UID())
}
