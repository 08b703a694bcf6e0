package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynguyendang/implica/internal/manager"
	"github.com/duynguyendang/implica/pkg/service"
)

func newTestSession(t *testing.T, input string) (*Session, *bytes.Buffer) {
	t.Helper()
	mgr := manager.NewGraphManager()
	svc := service.NewGraphService(mgr)
	require.NoError(t, svc.CreateGraph(manager.DefaultGraph, map[string]string{
		"worksAt": "Person -> Company",
	}))

	s := NewSession(svc)
	out := &bytes.Buffer{}
	s.in = strings.NewReader(input)
	s.out = out
	return s, out
}

func TestSessionCreateMatchQuit(t *testing.T) {
	s, out := newTestSession(t, strings.Join([]string{
		"create (:Person)-[::@worksAt()]->(:Company)",
		"match (p:Person)-[e]->(c:Company) return p e c",
		"match (n:Person) count",
		"quit",
	}, "\n"))

	require.NoError(t, s.Run())

	text := out.String()
	assert.Contains(t, text, "ok")
	assert.Contains(t, text, "p = Node(Person)")
	assert.Contains(t, text, "e = Edge(worksAt: (Person -> Company))")
	assert.Contains(t, text, "1 row(s)")
}

func TestSessionReportsErrors(t *testing.T) {
	s, out := newTestSession(t, "match (n:1Bad) count\nquit\n")
	require.NoError(t, s.Run())
	assert.Contains(t, out.String(), "error:")
}

func TestSessionUseUnknownGraph(t *testing.T) {
	s, out := newTestSession(t, "use nope\nquit\n")
	require.NoError(t, s.Run())
	assert.Contains(t, out.String(), "error:")
	assert.Equal(t, manager.DefaultGraph, s.current)
}

func TestSessionGraphsAndSummary(t *testing.T) {
	s, out := newTestSession(t, "graphs\nsummary\nquit\n")
	require.NoError(t, s.Run())
	text := out.String()
	assert.Contains(t, text, "default")
	assert.Contains(t, text, "constants: [worksAt]")
}
