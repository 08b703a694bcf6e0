// Package service exposes graph querying to the outer surfaces (REST,
// REPL, MCP): it resolves named graphs, compiles textual statements, and
// renders relations into plain JSON-friendly values.
package service

import (
	"fmt"
	"log/slog"

	"github.com/duynguyendang/implica/internal/manager"
	"github.com/duynguyendang/implica/pkg/export"
	"github.com/duynguyendang/implica/pkg/graph"
	"github.com/duynguyendang/implica/pkg/query"
	"github.com/duynguyendang/implica/pkg/typing"
)

// GraphService handles statement execution and export over managed graphs.
type GraphService struct {
	manager *manager.GraphManager
}

// NewGraphService creates a service over the manager.
func NewGraphService(m *manager.GraphManager) *GraphService {
	return &GraphService{manager: m}
}

// ListGraphs returns metadata for every managed graph.
func (s *GraphService) ListGraphs() []manager.GraphMetadata {
	return s.manager.List()
}

// CreateGraph registers a new graph with constants declared as
// name/type-schema pairs.
func (s *GraphService) CreateGraph(name string, constants map[string]string) error {
	decls := make([]typing.Constant, 0, len(constants))
	for cname, schema := range constants {
		c, err := typing.NewConstant(cname, schema)
		if err != nil {
			return err
		}
		decls = append(decls, c)
	}
	return s.manager.Create(name, decls...)
}

// Result is the JSON-friendly outcome of a statement.
type Result struct {
	Rows  []map[string]any `json:"rows,omitempty"`
	Count *int             `json:"count,omitempty"`
}

// ExecuteStatement compiles and runs a statement against the named graph.
func (s *GraphService) ExecuteStatement(graphName, statement string) (*Result, error) {
	g, err := s.manager.Get(graphName)
	if err != nil {
		return nil, err
	}

	q, proj, err := Compile(g, statement)
	if err != nil {
		return nil, err
	}

	switch proj.Kind {
	case ProjectRows:
		rel, err := q.Return(proj.Vars...)
		if err != nil {
			return nil, err
		}
		rows := make([]map[string]any, 0, len(rel))
		for _, row := range rel {
			rows = append(rows, renderRow(row))
		}
		return &Result{Rows: rows}, nil
	case ProjectCount:
		count, err := q.ReturnCount()
		if err != nil {
			return nil, err
		}
		return &Result{Count: &count}, nil
	default:
		if err := q.Execute(); err != nil {
			return nil, err
		}
		slog.Debug("statement executed", "graph", graphName)
		return &Result{}, nil
	}
}

// Export renders the named graph as a D3 force-graph document.
func (s *GraphService) Export(graphName string) (*export.D3Graph, error) {
	g, err := s.manager.Get(graphName)
	if err != nil {
		return nil, err
	}
	return export.FromGraph(g), nil
}

// Summary reports the named graph's size and declared constants.
func (s *GraphService) Summary(graphName string) (map[string]any, error) {
	g, err := s.manager.Get(graphName)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"nodes":     g.NodeCount(),
		"edges":     g.EdgeCount(),
		"constants": g.Constants().Names(),
	}, nil
}

// renderRow flattens a relation row into JSON-friendly values.
func renderRow(row query.Row) map[string]any {
	out := make(map[string]any, len(row))
	for name, b := range row {
		out[name] = renderBinding(b)
	}
	return out
}

func renderBinding(b typing.Binding) map[string]any {
	switch el := b.(type) {
	case *graph.Node:
		m := map[string]any{
			"kind":       "node",
			"uid":        el.UID(),
			"type":       el.Type().String(),
			"properties": el.Properties().Snapshot(),
		}
		if el.Term() != nil {
			m["term"] = el.Term().String()
		}
		return m
	case *graph.Edge:
		return map[string]any{
			"kind":       "edge",
			"uid":        el.UID(),
			"type":       el.Type().String(),
			"term":       el.Term().String(),
			"start":      el.StartUID(),
			"end":        el.EndUID(),
			"properties": el.Properties().Snapshot(),
		}
	case typing.Type:
		return map[string]any{"kind": "type", "uid": el.UID(), "type": el.String()}
	case typing.Term:
		return map[string]any{
			"kind": "term",
			"uid":  el.UID(),
			"term": el.String(),
			"type": el.Type().String(),
		}
	}
	return map[string]any{"kind": fmt.Sprintf("%T", b), "uid": b.UID()}
}
