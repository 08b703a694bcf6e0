// Package manager keeps the process's named in-memory graphs.
package manager

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	apperrors "github.com/duynguyendang/implica/pkg/common/errors"
	"github.com/duynguyendang/implica/pkg/graph"
	"github.com/duynguyendang/implica/pkg/typing"
)

// DefaultGraph is the graph used when a caller names none.
const DefaultGraph = "default"

// GraphMetadata describes a managed graph for the API surface.
type GraphMetadata struct {
	Name      string `json:"name"`
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`
	Constants int    `json:"constants"`
}

// GraphManager owns the named graphs of a process. Graphs live for the
// lifetime of the manager; there is no persistence.
type GraphManager struct {
	mu     sync.RWMutex
	graphs map[string]*graph.Graph
}

// NewGraphManager creates an empty manager. Callers typically register the
// default graph first.
func NewGraphManager() *GraphManager {
	return &GraphManager{graphs: make(map[string]*graph.Graph)}
}

// Create registers a new named graph.
func (m *GraphManager) Create(name string, constants ...typing.Constant) error {
	if name == "" {
		return fmt.Errorf("%w: graph name must not be empty", apperrors.ErrEmptyName)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.graphs[name]; ok {
		return fmt.Errorf("%w: graph %q", apperrors.ErrAlreadyBound, name)
	}
	g, err := graph.New(constants...)
	if err != nil {
		return err
	}
	m.graphs[name] = g
	slog.Info("graph created", "name", name, "constants", g.Constants().Len())
	return nil
}

// Get returns the named graph; an empty name resolves to the default.
func (m *GraphManager) Get(name string) (*graph.Graph, error) {
	if name == "" {
		name = DefaultGraph
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.graphs[name]
	if !ok {
		names := make([]string, 0, len(m.graphs))
		for n := range m.graphs {
			names = append(names, n)
		}
		return nil, apperrors.WithSuggestion(apperrors.ErrElementNotFound, name, names)
	}
	return g, nil
}

// List describes every managed graph, sorted by name.
func (m *GraphManager) List() []GraphMetadata {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]GraphMetadata, 0, len(m.graphs))
	for name, g := range m.graphs {
		out = append(out, GraphMetadata{
			Name:      name,
			Nodes:     g.NodeCount(),
			Edges:     g.EdgeCount(),
			Constants: g.Constants().Len(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
