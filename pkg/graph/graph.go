package graph

import (
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"github.com/duynguyendang/implica/pkg/common/errors"
	"github.com/duynguyendang/implica/pkg/props"
	"github.com/duynguyendang/implica/pkg/typing"
)

// Graph is the shared, concurrent store of nodes and edges. Structural
// mutations hold the write lock for the whole existence-check-plus-insert
// so invariants never observe a torn state; property mutations go through
// the per-element locks.
type Graph struct {
	mu sync.RWMutex

	nodes map[string]*Node
	edges map[EdgeKey]*Edge

	nodesByType map[string]map[string]struct{}  // type UID -> node UIDs
	edgesByType map[string]map[EdgeKey]struct{} // type UID -> edge keys
	outEdges    map[string]map[EdgeKey]struct{} // node UID -> outgoing edges
	inEdges     map[string]map[EdgeKey]struct{} // node UID -> incoming edges

	constants *typing.Registry
}

// New creates an empty graph over the given constant declarations.
func New(constants ...typing.Constant) (*Graph, error) {
	reg, err := typing.NewRegistry(constants...)
	if err != nil {
		return nil, err
	}
	slog.Debug("graph initialized", "constants", reg.Len())
	return &Graph{
		nodes:       make(map[string]*Node),
		edges:       make(map[EdgeKey]*Edge),
		nodesByType: make(map[string]map[string]struct{}),
		edgesByType: make(map[string]map[EdgeKey]struct{}),
		outEdges:    make(map[string]map[EdgeKey]struct{}),
		inEdges:     make(map[string]map[EdgeKey]struct{}),
		constants:   reg,
	}, nil
}

// Constants returns the graph's constant registry.
func (g *Graph) Constants() *typing.Registry { return g.constants }

// AddNode inserts a node, idempotently by UID: adding a structurally equal
// node returns the existing UID and leaves its properties untouched.
func (g *Graph) AddNode(n *Node) (string, error) {
	uid := n.UID()

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[uid]; ok {
		return uid, nil
	}

	g.nodes[uid] = n
	typeUID := n.Type().UID()
	if g.nodesByType[typeUID] == nil {
		g.nodesByType[typeUID] = make(map[string]struct{})
	}
	g.nodesByType[typeUID][uid] = struct{}{}
	return uid, nil
}

// AddEdge inserts an edge. Both endpoints must already exist. At most one
// edge exists per ordered endpoint pair: re-adding a structurally equal
// edge is a no-op returning the existing key, while a different edge over
// the same pair fails.
func (g *Graph) AddEdge(e *Edge) (EdgeKey, error) {
	key := e.Key()

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[key.Start]; !ok {
		return EdgeKey{}, fmt.Errorf("%w: start node %s", errors.ErrEndpointMissing, key.Start)
	}
	if _, ok := g.nodes[key.End]; !ok {
		return EdgeKey{}, fmt.Errorf("%w: end node %s", errors.ErrEndpointMissing, key.End)
	}
	if existing, ok := g.edges[key]; ok {
		if typing.TermsEqual(existing.Term(), e.Term()) {
			return key, nil
		}
		return EdgeKey{}, fmt.Errorf("%w: %s already connects these endpoints",
			errors.ErrEdgeAlreadyExists, existing)
	}

	g.edges[key] = e
	typeUID := e.Type().UID()
	if g.edgesByType[typeUID] == nil {
		g.edgesByType[typeUID] = make(map[EdgeKey]struct{})
	}
	g.edgesByType[typeUID][key] = struct{}{}
	if g.outEdges[key.Start] == nil {
		g.outEdges[key.Start] = make(map[EdgeKey]struct{})
	}
	g.outEdges[key.Start][key] = struct{}{}
	if g.inEdges[key.End] == nil {
		g.inEdges[key.End] = make(map[EdgeKey]struct{})
	}
	g.inEdges[key.End][key] = struct{}{}
	return key, nil
}

// RemoveNode deletes a node and cascades to all incident edges.
func (g *Graph) RemoveNode(uid string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[uid]
	if !ok {
		return fmt.Errorf("%w: node %s", errors.ErrElementNotFound, uid)
	}

	for key := range g.outEdges[uid] {
		g.removeEdgeLocked(key)
	}
	for key := range g.inEdges[uid] {
		g.removeEdgeLocked(key)
	}
	delete(g.outEdges, uid)
	delete(g.inEdges, uid)

	typeUID := n.Type().UID()
	delete(g.nodesByType[typeUID], uid)
	if len(g.nodesByType[typeUID]) == 0 {
		delete(g.nodesByType, typeUID)
	}
	delete(g.nodes, uid)
	return nil
}

// RemoveEdge deletes an edge and its index memberships.
func (g *Graph) RemoveEdge(key EdgeKey) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.edges[key]; !ok {
		return fmt.Errorf("%w: edge %s", errors.ErrElementNotFound, key)
	}
	g.removeEdgeLocked(key)
	return nil
}

// removeEdgeLocked removes one edge from the primary store and every index.
// Callers hold the write lock.
func (g *Graph) removeEdgeLocked(key EdgeKey) {
	e, ok := g.edges[key]
	if !ok {
		return
	}
	typeUID := e.Type().UID()
	delete(g.edgesByType[typeUID], key)
	if len(g.edgesByType[typeUID]) == 0 {
		delete(g.edgesByType, typeUID)
	}
	delete(g.outEdges[key.Start], key)
	delete(g.inEdges[key.End], key)
	delete(g.edges, key)
}

// Node looks up a node by UID.
func (g *Graph) Node(uid string) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[uid]
	return n, ok
}

// Edge looks up an edge by key.
func (g *Graph) Edge(key EdgeKey) (*Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.edges[key]
	return e, ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// ScanNodes iterates over nodes satisfying pred (nil matches all). The set
// of visited UIDs is a snapshot taken at scan start; properties read
// through the yielded nodes reflect the latest committed state.
func (g *Graph) ScanNodes(pred func(*Node) bool) iter.Seq[*Node] {
	g.mu.RLock()
	uids := make([]string, 0, len(g.nodes))
	for uid := range g.nodes {
		uids = append(uids, uid)
	}
	g.mu.RUnlock()

	return func(yield func(*Node) bool) {
		for _, uid := range uids {
			n, ok := g.Node(uid)
			if !ok {
				continue
			}
			if pred != nil && !pred(n) {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

// ScanEdges iterates over edges satisfying pred (nil matches all), with the
// same snapshot semantics as ScanNodes.
func (g *Graph) ScanEdges(pred func(*Edge) bool) iter.Seq[*Edge] {
	g.mu.RLock()
	keys := make([]EdgeKey, 0, len(g.edges))
	for key := range g.edges {
		keys = append(keys, key)
	}
	g.mu.RUnlock()

	return func(yield func(*Edge) bool) {
		for _, key := range keys {
			e, ok := g.Edge(key)
			if !ok {
				continue
			}
			if pred != nil && !pred(e) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// NodesByType returns the nodes whose type structurally equals t, served
// from the type index.
func (g *Graph) NodesByType(t typing.Type) []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	uids := g.nodesByType[t.UID()]
	out := make([]*Node, 0, len(uids))
	for uid := range uids {
		out = append(out, g.nodes[uid])
	}
	return out
}

// EdgesByType returns the edges whose Arrow type structurally equals t.
func (g *Graph) EdgesByType(t typing.Type) []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	keys := g.edgesByType[t.UID()]
	out := make([]*Edge, 0, len(keys))
	for key := range keys {
		out = append(out, g.edges[key])
	}
	return out
}

// OutEdges returns the edges leaving the node.
func (g *Graph) OutEdges(nodeUID string) []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	keys := g.outEdges[nodeUID]
	out := make([]*Edge, 0, len(keys))
	for key := range keys {
		out = append(out, g.edges[key])
	}
	return out
}

// InEdges returns the edges arriving at the node.
func (g *Graph) InEdges(nodeUID string) []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	keys := g.inEdges[nodeUID]
	out := make([]*Edge, 0, len(keys))
	for key := range keys {
		out = append(out, g.edges[key])
	}
	return out
}

// SetNodeProperties mutates a node's properties: replace the whole map when
// overwrite is set, otherwise overlay the entries.
func (g *Graph) SetNodeProperties(uid string, entries map[string]props.Value, overwrite bool) error {
	n, ok := g.Node(uid)
	if !ok {
		return fmt.Errorf("%w: node %s", errors.ErrElementNotFound, uid)
	}
	if overwrite {
		n.Properties().Replace(entries)
	} else {
		n.Properties().Merge(entries)
	}
	return nil
}

// SetEdgeProperties mutates an edge's properties, with the same overwrite
// semantics as SetNodeProperties.
func (g *Graph) SetEdgeProperties(key EdgeKey, entries map[string]props.Value, overwrite bool) error {
	e, ok := g.Edge(key)
	if !ok {
		return fmt.Errorf("%w: edge %s", errors.ErrElementNotFound, key)
	}
	if overwrite {
		e.Properties().Replace(entries)
	} else {
		e.Properties().Merge(entries)
	}
	return nil
}
