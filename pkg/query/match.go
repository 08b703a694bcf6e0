package query

import (
	"strings"
	"sync"

	"github.com/duynguyendang/implica/pkg/graph"
	"github.com/duynguyendang/implica/pkg/pattern"
	"github.com/duynguyendang/implica/pkg/typing"
)

// parallelThreshold is the candidate-set size past which first-node
// matching fans out across workers.
const parallelThreshold = 64

// matchWorkers bounds the fan-out.
const matchWorkers = 8

type matchClause struct {
	path *pattern.PathPattern
}

// apply joins the relation with all bindings of the path against the
// graph: R' = { r ∪ b | r ∈ R, b extends r }.
func (c *matchClause) apply(ex *executor) error {
	path := c.withPlaceholders(ex)

	out := make(Relation, 0, len(ex.relation))
	for _, row := range ex.relation {
		rows, err := matchPath(ex.graph, path, row)
		if err != nil {
			return err
		}
		out = append(out, rows...)
	}
	ex.relation = out
	return nil
}

// withPlaceholders names every interior join node that the user left
// anonymous, so the two edges sharing it bind the same node. Placeholder
// bindings are stripped from the rows the clause produces.
func (c *matchClause) withPlaceholders(ex *executor) *pattern.PathPattern {
	needs := false
	for i := 1; i < len(c.path.Nodes)-1; i++ {
		if c.path.Nodes[i].Var == "" {
			needs = true
			break
		}
	}
	if !needs {
		return c.path
	}

	nodes := make([]*pattern.NodePattern, len(c.path.Nodes))
	copy(nodes, c.path.Nodes)
	for i := 1; i < len(nodes)-1; i++ {
		if nodes[i].Var == "" {
			clone := *nodes[i]
			clone.Var = ex.nextPlaceholder()
			nodes[i] = &clone
		}
	}
	return &pattern.PathPattern{Nodes: nodes, Edges: c.path.Edges}
}

// matchPath produces every extension of row by the path against the graph.
func matchPath(g *graph.Graph, path *pattern.PathPattern, row Row) ([]Row, error) {
	base := typing.NewContext()
	for name, b := range row {
		if err := base.TryBind(name, b); err != nil {
			return nil, err
		}
	}

	candidates := firstNodeCandidates(g, path, row)
	if len(candidates) < parallelThreshold {
		return matchCandidates(g, path, row, base, candidates)
	}

	// Fan out across candidate chunks; the relation is a set, so the
	// nondeterministic collection order is immaterial.
	chunks := chunkNodes(candidates, matchWorkers)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		out      []Row
		firstErr error
	)
	for _, chunk := range chunks {
		wg.Add(1)
		go func(nodes []*graph.Node) {
			defer wg.Done()
			rows, err := matchCandidates(g, path, row, base, nodes)
			mu.Lock()
			defer mu.Unlock()
			if err != nil && firstErr == nil {
				firstErr = err
				return
			}
			out = append(out, rows...)
		}(chunk)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func matchCandidates(g *graph.Graph, path *pattern.PathPattern, row Row, base *typing.Context, candidates []*graph.Node) ([]Row, error) {
	var out []Row
	for _, n := range candidates {
		ctx := base.Clone()
		ok, err := path.Nodes[0].Match(n, ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		rows, err := matchFrom(g, path, 0, n, ctx, row)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

// matchFrom extends a partial path match: path.Nodes[idx] is matched to
// node under ctx; walk edge idx and onward.
func matchFrom(g *graph.Graph, path *pattern.PathPattern, idx int, node *graph.Node, ctx *typing.Context, row Row) ([]Row, error) {
	if idx == len(path.Edges) {
		return []Row{materializeRow(row, ctx)}, nil
	}

	ep := path.Edges[idx]
	var candidates []*graph.Edge
	if ep.Dir == pattern.Forward {
		candidates = g.OutEdges(node.UID())
	} else {
		candidates = g.InEdges(node.UID())
	}

	var out []Row
	for _, e := range candidates {
		ctx2 := ctx.Clone()
		ok, err := ep.Match(e, ctx2)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		otherUID := e.EndUID()
		if ep.Dir == pattern.Backward {
			otherUID = e.StartUID()
		}
		other, found := g.Node(otherUID)
		if !found {
			continue
		}
		ok, err = path.Nodes[idx+1].Match(other, ctx2)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		rows, err := matchFrom(g, path, idx+1, other, ctx2, row)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

// firstNodeCandidates picks the candidate set for the path's first node:
// an existing row binding narrows it to one node, an exact type schema
// serves from the node type index, an exact first-edge type serves from
// the edge type index, anything else scans.
func firstNodeCandidates(g *graph.Graph, path *pattern.PathPattern, row Row) []*graph.Node {
	np := path.Nodes[0]
	if np.Var != "" {
		if b, ok := row[np.Var]; ok {
			if n, isNode := b.(*graph.Node); isNode {
				if current, found := g.Node(n.UID()); found {
					return []*graph.Node{current}
				}
				return nil
			}
			return nil
		}
	}
	if np.Type != nil {
		if t, exact := typing.SchemaIsExact(np.Type); exact {
			return g.NodesByType(t)
		}
	}
	if len(path.Edges) > 0 && path.Edges[0].Type != nil {
		if t, exact := typing.SchemaIsExact(path.Edges[0].Type); exact {
			var out []*graph.Node
			seen := make(map[string]struct{})
			for _, e := range g.EdgesByType(t) {
				uid := e.StartUID()
				if path.Edges[0].Dir == pattern.Backward {
					uid = e.EndUID()
				}
				if _, dup := seen[uid]; dup {
					continue
				}
				seen[uid] = struct{}{}
				if n, found := g.Node(uid); found {
					out = append(out, n)
				}
			}
			return out
		}
	}
	var all []*graph.Node
	for n := range g.ScanNodes(nil) {
		all = append(all, n)
	}
	return all
}

// materializeRow extends row with every non-placeholder binding the match
// added to ctx.
func materializeRow(row Row, ctx *typing.Context) Row {
	out := row.Clone()
	for _, name := range ctx.Names() {
		if strings.HasPrefix(name, typing.PlaceholderPrefix) {
			continue
		}
		if _, ok := out[name]; ok {
			continue
		}
		if b, ok := ctx.Get(name); ok {
			out[name] = b
		}
	}
	return out
}

func chunkNodes(nodes []*graph.Node, n int) [][]*graph.Node {
	if n < 1 {
		n = 1
	}
	size := (len(nodes) + n - 1) / n
	var chunks [][]*graph.Node
	for start := 0; start < len(nodes); start += size {
		end := start + size
		if end > len(nodes) {
			end = len(nodes)
		}
		chunks = append(chunks, nodes[start:end])
	}
	return chunks
}
