// Package repl implements the interactive query shell.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/duynguyendang/implica/internal/manager"
	"github.com/duynguyendang/implica/pkg/service"
)

// Session is one interactive shell over the graph service.
type Session struct {
	id      string
	svc     *service.GraphService
	current string

	in  io.Reader
	out io.Writer
}

// NewSession creates a REPL session bound to the default graph.
func NewSession(svc *service.GraphService) *Session {
	return &Session{
		id:      uuid.NewString(),
		svc:     svc,
		current: manager.DefaultGraph,
		in:      os.Stdin,
		out:     os.Stdout,
	}
}

// Run reads statements until EOF or "quit".
func (s *Session) Run() error {
	fmt.Fprintf(s.out, "implica interactive shell (session %s)\n", s.id[:8])
	fmt.Fprintln(s.out, `Type "help" for commands, "quit" to exit.`)

	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprintf(s.out, "%s> ", s.current)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		s.dispatch(line)
	}
}

func (s *Session) dispatch(line string) {
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "help":
		s.printHelp()
	case "graphs":
		for _, meta := range s.svc.ListGraphs() {
			fmt.Fprintf(s.out, "  %s  (%d nodes, %d edges, %d constants)\n",
				meta.Name, meta.Nodes, meta.Edges, meta.Constants)
		}
	case "use":
		s.handleUse(strings.TrimSpace(arg))
	case "summary":
		s.handleSummary()
	case "export":
		s.handleExport(strings.TrimSpace(arg))
	default:
		// Everything else is a query statement.
		s.handleStatement(line)
	}
}

func (s *Session) printHelp() {
	fmt.Fprint(s.out, `Statements:
  create <pattern>
  match <pattern> [set <var> {props} [merge]] [remove <var>...]
                  [order by [desc] <var.key>...] [with <var>...]
                  [limit <n>] [skip <n>] [return <var>...| count]
Commands:
  graphs          list graphs
  use <name>      switch graph
  summary         show current graph summary
  export <file>   write the current graph as D3 JSON
  help, quit
`)
}

func (s *Session) handleUse(name string) {
	if name == "" {
		fmt.Fprintln(s.out, "usage: use <graph>")
		return
	}
	if _, err := s.svc.Summary(name); err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	s.current = name
}

func (s *Session) handleSummary() {
	summary, err := s.svc.Summary(s.current)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "nodes: %v\nedges: %v\nconstants: %v\n",
		summary["nodes"], summary["edges"], summary["constants"])
}

func (s *Session) handleExport(path string) {
	if path == "" {
		fmt.Fprintln(s.out, "usage: export <file>")
		return
	}
	d3, err := s.svc.Export(s.current)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	if err := d3.WriteFile(path); err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "wrote %d nodes and %d links to %s\n", len(d3.Nodes), len(d3.Links), path)
}

func (s *Session) handleStatement(statement string) {
	result, err := s.svc.ExecuteStatement(s.current, statement)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}

	switch {
	case result.Count != nil:
		fmt.Fprintf(s.out, "%d row(s)\n", *result.Count)
	case result.Rows != nil:
		for i, row := range result.Rows {
			fmt.Fprintf(s.out, "--- row %d ---\n", i+1)
			for name, binding := range row {
				fmt.Fprintf(s.out, "  %s = %s\n", name, formatBinding(binding))
			}
		}
		fmt.Fprintf(s.out, "%d row(s)\n", len(result.Rows))
	default:
		fmt.Fprintln(s.out, "ok")
	}
}

func formatBinding(b any) string {
	m, ok := b.(map[string]any)
	if !ok {
		return fmt.Sprintf("%v", b)
	}
	switch m["kind"] {
	case "node":
		if term, ok := m["term"]; ok {
			return fmt.Sprintf("Node(%v: %v)", term, m["type"])
		}
		return fmt.Sprintf("Node(%v)", m["type"])
	case "edge":
		return fmt.Sprintf("Edge(%v: %v)", m["term"], m["type"])
	case "type":
		return fmt.Sprintf("Type(%v)", m["type"])
	case "term":
		return fmt.Sprintf("Term(%v: %v)", m["term"], m["type"])
	}
	return fmt.Sprintf("%v", b)
}
