package service

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/duynguyendang/implica/pkg/common/errors"
	"github.com/duynguyendang/implica/pkg/graph"
	"github.com/duynguyendang/implica/pkg/pattern"
	"github.com/duynguyendang/implica/pkg/query"
)

// Statement verbs accepted by the textual query surface shared by the
// REPL, the REST API, and the MCP server.
const (
	verbMatch   = "match"
	verbCreate  = "create"
	verbSet     = "set"
	verbRemove  = "remove"
	verbOrderBy = "order"
	verbWith    = "with"
	verbLimit   = "limit"
	verbSkip    = "skip"
	verbReturn  = "return"
	verbCount   = "count"
)

// stmtClause is one "verb argument..." segment of a statement.
type stmtClause struct {
	verb string
	arg  string
}

// Compile translates a textual statement into an executable query plus its
// projection. Grammar, one clause after another:
//
//	match <pattern> | create <pattern>
//	set <var> <propMap> [merge]
//	remove <var> ...
//	order by [desc] <var.key> ...
//	with <var> ... | limit <n> | skip <n>
//	return <var> ... | count
func Compile(g *graph.Graph, statement string) (*query.Query, *Projection, error) {
	clauses, err := splitStatement(statement)
	if err != nil {
		return nil, nil, err
	}
	if len(clauses) == 0 {
		return nil, nil, fmt.Errorf("%w: empty statement", apperrors.ErrInvalidQuery)
	}

	q := query.New(g)
	proj := &Projection{}

	for i, c := range clauses {
		switch c.verb {
		case verbMatch:
			q = q.Match(c.arg)
		case verbCreate:
			q = q.Create(c.arg)
		case verbSet:
			variable, entries, overwrite, err := parseSetArg(c.arg)
			if err != nil {
				return nil, nil, err
			}
			q = q.Set(variable, entries, overwrite)
		case verbRemove:
			q = q.Remove(strings.Fields(c.arg)...)
		case verbOrderBy:
			arg := strings.TrimSpace(c.arg)
			if !strings.HasPrefix(arg, "by ") {
				return nil, nil, fmt.Errorf("%w: expected 'order by'", apperrors.ErrInvalidQuery)
			}
			keys := strings.Fields(strings.TrimPrefix(arg, "by "))
			if len(keys) > 0 && keys[0] == "desc" {
				q = q.OrderByDesc(keys[1:]...)
			} else {
				q = q.OrderBy(keys...)
			}
		case verbWith:
			q = q.With(strings.Fields(c.arg)...)
		case verbLimit:
			n, err := strconv.Atoi(strings.TrimSpace(c.arg))
			if err != nil {
				return nil, nil, fmt.Errorf("%w: limit wants a number, got %q", apperrors.ErrInvalidQuery, c.arg)
			}
			q = q.Limit(n)
		case verbSkip:
			n, err := strconv.Atoi(strings.TrimSpace(c.arg))
			if err != nil {
				return nil, nil, fmt.Errorf("%w: skip wants a number, got %q", apperrors.ErrInvalidQuery, c.arg)
			}
			q = q.Skip(n)
		case verbReturn:
			if i != len(clauses)-1 {
				return nil, nil, fmt.Errorf("%w: return must be the last clause", apperrors.ErrInvalidQuery)
			}
			proj.Vars = strings.Fields(c.arg)
			proj.Kind = ProjectRows
		case verbCount:
			if i != len(clauses)-1 || strings.TrimSpace(c.arg) != "" {
				return nil, nil, fmt.Errorf("%w: count must be the last clause", apperrors.ErrInvalidQuery)
			}
			proj.Kind = ProjectCount
		default:
			return nil, nil, fmt.Errorf("%w: unknown clause %q", apperrors.ErrInvalidQuery, c.verb)
		}
	}
	return q, proj, nil
}

// ProjectionKind selects what a statement yields.
type ProjectionKind int

const (
	// ProjectNone executes for effect only.
	ProjectNone ProjectionKind = iota
	// ProjectRows returns the projected relation.
	ProjectRows
	// ProjectCount returns the row count.
	ProjectCount
)

// Projection is the terminal clause of a compiled statement.
type Projection struct {
	Kind ProjectionKind
	Vars []string
}

// splitStatement chunks a statement at clause keywords that occur outside
// any bracket nesting.
func splitStatement(statement string) ([]stmtClause, error) {
	words, err := splitWords(statement)
	if err != nil {
		return nil, err
	}

	var clauses []stmtClause
	var current *stmtClause
	for _, w := range words {
		if isVerb(w.text) && w.depth == 0 {
			if current != nil {
				clauses = append(clauses, *current)
			}
			current = &stmtClause{verb: w.text}
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("%w: statement must start with a clause keyword, got %q",
				apperrors.ErrInvalidQuery, w.text)
		}
		if current.arg != "" {
			current.arg += " "
		}
		current.arg += w.text
	}
	if current != nil {
		clauses = append(clauses, *current)
	}
	return clauses, nil
}

func isVerb(w string) bool {
	switch w {
	case verbMatch, verbCreate, verbSet, verbRemove, verbOrderBy, verbWith, verbLimit, verbSkip, verbReturn, verbCount:
		return true
	}
	return false
}

// word is a whitespace-delimited chunk annotated with the bracket depth at
// which it starts, so keywords inside patterns and property maps are left
// alone.
type word struct {
	text  string
	depth int
}

func splitWords(s string) ([]word, error) {
	var words []word
	var current strings.Builder
	depth := 0
	startDepth := 0
	inString := false

	flush := func() {
		if current.Len() > 0 {
			words = append(words, word{text: current.String(), depth: startDepth})
			current.Reset()
		}
	}

	for _, r := range s {
		if inString {
			current.WriteRune(r)
			if r == '"' {
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
			current.WriteRune(r)
		case '(', '[', '{':
			if current.Len() == 0 {
				startDepth = depth
			}
			depth++
			current.WriteRune(r)
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced brackets in statement", apperrors.ErrSyntax)
			}
			current.WriteRune(r)
		case ' ', '\t', '\n', '\r':
			if depth > 0 {
				current.WriteRune(r)
			} else {
				flush()
			}
		default:
			if current.Len() == 0 {
				startDepth = depth
			}
			current.WriteRune(r)
		}
	}
	if inString {
		return nil, fmt.Errorf("%w: unterminated string in statement", apperrors.ErrSyntax)
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced brackets in statement", apperrors.ErrSyntax)
	}
	flush()
	return words, nil
}

// parseSetArg parses "var {props} [merge]".
func parseSetArg(arg string) (string, map[string]any, bool, error) {
	arg = strings.TrimSpace(arg)
	brace := strings.Index(arg, "{")
	if brace == -1 {
		return "", nil, false, fmt.Errorf("%w: set wants 'var {props}'", apperrors.ErrInvalidQuery)
	}
	variable := strings.TrimSpace(arg[:brace])

	rest := arg[brace:]
	overwrite := true
	if strings.HasSuffix(strings.TrimSpace(rest), "merge") {
		overwrite = false
		rest = strings.TrimSuffix(strings.TrimSpace(rest), "merge")
	}

	entries, err := pattern.ParsePropLiteral(strings.TrimSpace(rest))
	if err != nil {
		return "", nil, false, err
	}
	return variable, entries, overwrite, nil
}
