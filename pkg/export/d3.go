// Package export renders an implica graph into the D3 force-directed
// graph JSON shape consumed by visualization frontends.
package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/duynguyendang/implica/pkg/graph"
)

// D3Node represents a node in the D3 force-directed graph.
type D3Node struct {
	ID         string         `json:"id"`   // content-addressed UID
	Name       string         `json:"name"` // display name: term if present, else type
	Type       string         `json:"type"`
	Term       string         `json:"term,omitempty"`
	Group      string         `json:"group,omitempty"` // grouping for visualization (type)
	Properties map[string]any `json:"properties,omitempty"`
}

// D3Link represents a link/edge in the D3 force-directed graph.
type D3Link struct {
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Relation   string         `json:"relation"` // edge term rendering
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

// D3Graph represents the full graph structure for D3.js.
type D3Graph struct {
	Nodes []D3Node `json:"nodes"`
	Links []D3Link `json:"links"`
}

// FromGraph converts a graph into the D3 document. Scans are
// snapshot-consistent, so concurrent mutation yields a coherent view of
// some recent state.
func FromGraph(g *graph.Graph) *D3Graph {
	out := &D3Graph{
		Nodes: make([]D3Node, 0, g.NodeCount()),
		Links: make([]D3Link, 0, g.EdgeCount()),
	}

	for n := range g.ScanNodes(nil) {
		d3n := D3Node{
			ID:    n.UID(),
			Name:  n.Type().String(),
			Type:  n.Type().String(),
			Group: n.Type().String(),
		}
		if n.Term() != nil {
			d3n.Name = n.Term().String()
			d3n.Term = n.Term().String()
		}
		if n.Properties().Len() > 0 {
			d3n.Properties = n.Properties().Snapshot()
		}
		out.Nodes = append(out.Nodes, d3n)
	}

	for e := range g.ScanEdges(nil) {
		link := D3Link{
			Source:   e.StartUID(),
			Target:   e.EndUID(),
			Relation: e.Term().String(),
			Type:     e.Type().String(),
		}
		if e.Properties().Len() > 0 {
			link.Properties = e.Properties().Snapshot()
		}
		out.Links = append(out.Links, link)
	}
	return out
}

// WriteFile marshals the document to disk as indented JSON.
func (d *D3Graph) WriteFile(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
