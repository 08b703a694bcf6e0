package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynguyendang/implica/internal/manager"
	apperrors "github.com/duynguyendang/implica/pkg/common/errors"
)

func newService(t *testing.T) *GraphService {
	t.Helper()
	mgr := manager.NewGraphManager()
	svc := NewGraphService(mgr)
	require.NoError(t, svc.CreateGraph(manager.DefaultGraph, map[string]string{
		"worksAt": "Person -> Company",
		"alice":   "Person",
		"bob":     "Person",
	}))
	return svc
}

func TestExecuteCreateAndMatch(t *testing.T) {
	svc := newService(t)

	result, err := svc.ExecuteStatement("", "create (:Person)-[::@worksAt()]->(:Company)")
	require.NoError(t, err)
	assert.Nil(t, result.Rows)
	assert.Nil(t, result.Count)

	result, err = svc.ExecuteStatement("", "match (p:Person)-[e]->(c:Company) return p e c")
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	p, ok := result.Rows[0]["p"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "node", p["kind"])
	assert.Equal(t, "Person", p["type"])

	e, ok := result.Rows[0]["e"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "edge", e["kind"])
	assert.Equal(t, "worksAt", e["term"])
}

func TestExecuteCount(t *testing.T) {
	svc := newService(t)
	_, err := svc.ExecuteStatement("", `create (:Person:@alice() { age: 30 })`)
	require.NoError(t, err)
	_, err = svc.ExecuteStatement("", `create (:Person:@bob() { age: 40 })`)
	require.NoError(t, err)

	result, err := svc.ExecuteStatement("", "match (n:Person) count")
	require.NoError(t, err)
	require.NotNil(t, result.Count)
	assert.Equal(t, 2, *result.Count)
}

func TestExecuteSetAndOrderBy(t *testing.T) {
	svc := newService(t)
	_, err := svc.ExecuteStatement("", `create (:Person:@bob() { name: "b", age: 40 })`)
	require.NoError(t, err)
	_, err = svc.ExecuteStatement("", `create (:Person:@alice() { name: "a", age: 30 })`)
	require.NoError(t, err)

	_, err = svc.ExecuteStatement("", `match (n:Person { name: "a" }) set n {vip: true} merge`)
	require.NoError(t, err)

	result, err := svc.ExecuteStatement("", "match (n:Person) order by n.age return n")
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)

	first := result.Rows[0]["n"].(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, "a", first["name"])
	assert.Equal(t, true, first["vip"])
	assert.Equal(t, int64(30), first["age"])
}

func TestExecuteRemove(t *testing.T) {
	svc := newService(t)
	_, err := svc.ExecuteStatement("", "create (:Person)-[::@worksAt()]->(:Company)")
	require.NoError(t, err)

	_, err = svc.ExecuteStatement("", "match (p:Person) remove p")
	require.NoError(t, err)

	result, err := svc.ExecuteStatement("", "match ()-[]->() count")
	require.NoError(t, err)
	assert.Zero(t, *result.Count)
}

func TestStatementErrors(t *testing.T) {
	svc := newService(t)

	_, err := svc.ExecuteStatement("", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuery)

	_, err = svc.ExecuteStatement("", "(n:Person)")
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuery)

	_, err = svc.ExecuteStatement("", "frobnicate (n)")
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuery)

	_, err = svc.ExecuteStatement("", "match (n:Person) count extra")
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuery)

	_, err = svc.ExecuteStatement("nope", "match (n) count")
	assert.ErrorIs(t, err, apperrors.ErrElementNotFound)
}

func TestSplitStatementRespectsNesting(t *testing.T) {
	// Keywords inside patterns and strings must not split clauses.
	clauses, err := splitStatement(`match (n:Person { note: "create match" }) return n`)
	require.NoError(t, err)
	require.Len(t, clauses, 2)
	assert.Equal(t, verbMatch, clauses[0].verb)
	assert.Equal(t, verbReturn, clauses[1].verb)
	assert.Contains(t, clauses[0].arg, "create match")
}

func TestCreateGraphAndList(t *testing.T) {
	svc := newService(t)
	require.NoError(t, svc.CreateGraph("people", map[string]string{"knows": "Person -> Person"}))

	metas := svc.ListGraphs()
	require.Len(t, metas, 2)
	assert.Equal(t, "default", metas[0].Name)
	assert.Equal(t, "people", metas[1].Name)

	err := svc.CreateGraph("people", nil)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyBound)
}
