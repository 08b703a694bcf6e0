package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynguyendang/implica/pkg/graph"
	"github.com/duynguyendang/implica/pkg/props"
	"github.com/duynguyendang/implica/pkg/typing"
)

func buildGraph(t *testing.T) *graph.Graph {
	t.Helper()
	worksAt, err := typing.NewConstant("worksAt", "Person -> Company")
	require.NoError(t, err)
	g, err := graph.New(worksAt)
	require.NoError(t, err)

	p, err := graph.NewNode(typing.MustVariable("Person"), nil, map[string]props.Value{"name": "ada"})
	require.NoError(t, err)
	_, err = g.AddNode(p)
	require.NoError(t, err)

	c, err := graph.NewNode(typing.MustVariable("Company"), nil, nil)
	require.NoError(t, err)
	_, err = g.AddNode(c)
	require.NoError(t, err)

	term, err := g.Constants().Invoke("worksAt")
	require.NoError(t, err)
	e, err := graph.NewEdge(term, p, c, nil)
	require.NoError(t, err)
	_, err = g.AddEdge(e)
	require.NoError(t, err)
	return g
}

func TestFromGraph(t *testing.T) {
	g := buildGraph(t)
	d3 := FromGraph(g)

	require.Len(t, d3.Nodes, 2)
	require.Len(t, d3.Links, 1)

	link := d3.Links[0]
	assert.Equal(t, "worksAt", link.Relation)
	assert.Equal(t, "(Person -> Company)", link.Type)

	ids := map[string]bool{d3.Nodes[0].ID: true, d3.Nodes[1].ID: true}
	assert.True(t, ids[link.Source])
	assert.True(t, ids[link.Target])
}

func TestWriteFile(t *testing.T) {
	g := buildGraph(t)
	path := filepath.Join(t.TempDir(), "graph.json")

	require.NoError(t, FromGraph(g).WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded D3Graph
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded.Nodes, 2)
	assert.Len(t, decoded.Links, 1)
}
