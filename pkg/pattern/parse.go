package pattern

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/duynguyendang/implica/pkg/common/errors"
	"github.com/duynguyendang/implica/pkg/typing"
)

// compiledPatterns caches parsed path patterns by source text. Compiled
// patterns are immutable, so sharing across queries is safe.
var compiledPatterns, _ = lru.New[string, *PathPattern](512)

// ParsePath parses the textual path pattern surface:
//
//	path    := nodePat (edgePat nodePat)*
//	nodePat := '(' ident? (':' typeSchema)? (':' termSchema)? propMap? ')'
//	edgePat := '-' '[' ...same... ']' '->'  |  '<-' '[' ...same... ']' '-'
func ParsePath(pattern string) (*PathPattern, error) {
	if cached, ok := compiledPatterns.Get(pattern); ok {
		return cached, nil
	}

	tokens, err := tokenizePath(pattern)
	if err != nil {
		return nil, err
	}

	var nodes []*NodePattern
	var edges []*EdgePattern
	for i, tok := range tokens {
		wantNode := i%2 == 0
		if wantNode != (tok.kind == tokenNode) {
			return nil, fmt.Errorf("%w: pattern must alternate nodes and edges at position %d",
				errors.ErrSyntax, tok.pos)
		}
		if tok.kind == tokenNode {
			np, err := parseNodeText(tok.text)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, np)
		} else {
			ep, err := parseEdgeText(tok.text)
			if err != nil {
				return nil, err
			}
			edges = append(edges, ep)
		}
	}

	path, err := NewPath(nodes, edges)
	if err != nil {
		return nil, err
	}
	compiledPatterns.Add(pattern, path)
	return path, nil
}

type pathTokenKind int

const (
	tokenNode pathTokenKind = iota
	tokenEdge
)

type pathToken struct {
	kind pathTokenKind
	text string
	pos  int
}

// tokenizePath chunks a pattern into node texts "(...)" and edge texts
// "-[...]->", tracking nesting so schemas and property maps inside the
// chunks pass through untouched.
func tokenizePath(pattern string) ([]pathToken, error) {
	var tokens []pathToken
	var current strings.Builder
	var edgeBuf strings.Builder
	parens, brackets := 0, 0
	start := 0

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch c {
		case '(':
			if brackets == 0 && parens == 0 {
				if edge := strings.TrimSpace(edgeBuf.String()); edge != "" {
					tokens = append(tokens, pathToken{tokenEdge, edge, start})
				}
				edgeBuf.Reset()
				current.Reset()
				start = i
			}
			if brackets == 0 {
				parens++
				current.WriteRune(c)
			} else {
				edgeBuf.WriteRune(c)
			}
		case ')':
			if brackets == 0 {
				current.WriteRune(c)
				parens--
				if parens < 0 {
					return nil, fmt.Errorf("%w: unmatched ')' at position %d", errors.ErrSyntax, i)
				}
				if parens == 0 {
					tokens = append(tokens, pathToken{tokenNode, current.String(), start})
					current.Reset()
					start = i + 1
				}
			} else {
				edgeBuf.WriteRune(c)
			}
		case '[':
			if parens == 0 {
				if brackets == 0 && edgeBuf.Len() == 0 {
					start = i
				}
				brackets++
				edgeBuf.WriteRune(c)
			} else {
				current.WriteRune(c)
			}
		case ']':
			if parens == 0 {
				brackets--
				if brackets < 0 {
					return nil, fmt.Errorf("%w: unmatched ']' at position %d", errors.ErrSyntax, i)
				}
				edgeBuf.WriteRune(c)
			} else {
				current.WriteRune(c)
			}
		case '-', '>', '<':
			if parens == 0 {
				if edgeBuf.Len() == 0 {
					start = i
				}
				edgeBuf.WriteRune(c)
			} else {
				current.WriteRune(c)
			}
		case ' ', '\t', '\n', '\r':
			if parens > 0 {
				current.WriteRune(c)
			} else if brackets > 0 {
				edgeBuf.WriteRune(c)
			}
		default:
			if parens > 0 {
				current.WriteRune(c)
			} else if brackets > 0 {
				edgeBuf.WriteRune(c)
			} else {
				return nil, fmt.Errorf("%w: unexpected character %q outside node or edge pattern at position %d",
					errors.ErrSyntax, c, i)
			}
		}
	}

	if parens != 0 {
		return nil, fmt.Errorf("%w: unmatched parentheses in pattern", errors.ErrSyntax)
	}
	if brackets != 0 {
		return nil, fmt.Errorf("%w: unmatched brackets in pattern", errors.ErrSyntax)
	}
	if strings.TrimSpace(edgeBuf.String()) != "" {
		return nil, fmt.Errorf("%w: pattern cannot end with an edge", errors.ErrSyntax)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty pattern", errors.ErrSyntax)
	}
	return tokens, nil
}

// parseNodeText parses the inside of "(...)" into a NodePattern.
func parseNodeText(s string) (*NodePattern, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("%w: node pattern must be enclosed in parentheses: %q", errors.ErrSyntax, s)
	}
	return parsePatternBody(strings.TrimSpace(s[1 : len(s)-1]), &NodePattern{})
}

// parseEdgeText parses "-[...]->" or "<-[...]-" into an EdgePattern.
func parseEdgeText(s string) (*EdgePattern, error) {
	s = strings.TrimSpace(s)

	// The direction is carried by the outer arrow only; "->" may also occur
	// inside the bracketed schema.
	var dir Direction
	switch {
	case strings.HasPrefix(s, "<-") && strings.HasSuffix(s, "->"):
		return nil, fmt.Errorf("%w: edge cannot point both ways: %q", errors.ErrSyntax, s)
	case strings.HasPrefix(s, "<-") && strings.HasSuffix(s, "-"):
		dir = Backward
	case strings.HasPrefix(s, "-") && strings.HasSuffix(s, "->"):
		dir = Forward
	default:
		return nil, fmt.Errorf("%w: edge needs a direction arrow: %q", errors.ErrSyntax, s)
	}

	open := strings.Index(s, "[")
	closing := strings.LastIndex(s, "]")
	if open == -1 || closing == -1 || closing < open {
		return nil, fmt.Errorf("%w: edge pattern needs brackets: %q", errors.ErrSyntax, s)
	}

	np, err := parsePatternBody(strings.TrimSpace(s[open+1:closing]), &NodePattern{})
	if err != nil {
		return nil, err
	}
	return &EdgePattern{Var: np.Var, Type: np.Type, Term: np.Term, Props: np.Props, Dir: dir}, nil
}

// parsePatternBody parses "ident? (':' typeSchema)? (':' termSchema)?
// propMap?" shared by node and edge interiors.
func parsePatternBody(body string, into *NodePattern) (*NodePattern, error) {
	if body == "" {
		return into, nil
	}

	// Peel a trailing property map first; braces never appear in schemas.
	if brace := indexTopLevel(body, '{'); brace != -1 {
		propSrc := strings.TrimSpace(body[brace:])
		parsed, err := parsePropMap(propSrc)
		if err != nil {
			return nil, err
		}
		into.Props = parsed
		body = strings.TrimSpace(body[:brace])
	}

	if body == "" {
		return into, nil
	}

	segments := splitTopLevel(body, ':')
	if len(segments) > 3 {
		return nil, fmt.Errorf("%w: too many ':' sections in pattern body %q", errors.ErrSyntax, body)
	}

	varPart := strings.TrimSpace(segments[0])
	if varPart != "" && varPart != typing.AnonymousName {
		if err := typing.ValidateName(varPart); err != nil {
			return nil, fmt.Errorf("pattern variable: %w", err)
		}
		into.Var = varPart
	}

	if len(segments) >= 2 {
		if ts := strings.TrimSpace(segments[1]); ts != "" {
			schema, err := typing.ParseTypeSchema(ts)
			if err != nil {
				return nil, err
			}
			into.Type = schema
		}
	}
	if len(segments) == 3 {
		if ts := strings.TrimSpace(segments[2]); ts != "" {
			schema, err := typing.ParseTermSchema(ts)
			if err != nil {
				return nil, err
			}
			into.Term = schema
		}
	}
	return into, nil
}

// indexTopLevel returns the index of the first occurrence of c outside any
// parentheses, or -1.
func indexTopLevel(s string, c byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		default:
			if s[i] == c && depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits s at occurrences of sep outside parentheses.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		default:
			if s[i] == sep && depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}
