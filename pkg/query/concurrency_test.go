package query

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynguyendang/implica/pkg/graph"
	"github.com/duynguyendang/implica/pkg/props"
	"github.com/duynguyendang/implica/pkg/typing"
)

// populate inserts n Person nodes with distinct term constants so each is
// a distinct graph element.
func populate(t *testing.T, g *graph.Graph, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		c, err := typing.NewConstant(fmt.Sprintf("p%d", i), "Person")
		require.NoError(t, err)
		require.NoError(t, g.Constants().Register(c))
		term, err := g.Constants().Invoke(c.Name)
		require.NoError(t, err)
		node, err := graph.NewNode(typing.MustVariable("Person"), term, map[string]props.Value{"i": int64(i)})
		require.NoError(t, err)
		_, err = g.AddNode(node)
		require.NoError(t, err)
	}
}

// Above the parallel threshold, matching fans out across workers; the
// result set must not depend on that.
func TestParallelMatchProducesFullSet(t *testing.T) {
	g := newGraph(t)
	const n = parallelThreshold * 3
	populate(t, g, n)

	count, err := New(g).Match("(p:Person)").ReturnCount()
	require.NoError(t, err)
	assert.Equal(t, n, count)

	rows, err := New(g).Match("(p:Person { i: 7 })").Return("p")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

// The set of bindings is independent of iteration order: repeated runs
// over the same graph agree.
func TestMatchDeterminism(t *testing.T) {
	g := newGraph(t)
	populate(t, g, parallelThreshold*2)

	collect := func() map[string]struct{} {
		rows, err := New(g).Match("(p:Person)").Return("p")
		require.NoError(t, err)
		set := make(map[string]struct{}, len(rows))
		for _, row := range rows {
			set[row["p"].UID()] = struct{}{}
		}
		return set
	}

	first := collect()
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, collect())
	}
}

// Concurrent readers and writers must not corrupt the store.
func TestConcurrentQueries(t *testing.T) {
	g := newGraph(t)
	populate(t, g, 32)

	var wg sync.WaitGroup
	errs := make(chan error, 64)

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 8; i++ {
				if worker%2 == 0 {
					if _, err := New(g).Match("(p:Person)").ReturnCount(); err != nil {
						errs <- err
					}
				} else {
					err := New(g).
						Match(fmt.Sprintf("(p:Person { i: %d })", i)).
						Set("p", map[string]props.Value{"seen": true}, false).
						Execute()
					if err != nil {
						errs <- err
					}
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent query failed: %v", err)
	}

	count, err := New(g).Match("(p:Person { seen: true })").ReturnCount()
	require.NoError(t, err)
	assert.Equal(t, 8, count)
}
