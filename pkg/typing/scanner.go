package typing

import (
	"fmt"

	"github.com/duynguyendang/implica/pkg/common/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokArrow // ->
	tokLParen
	tokRParen
	tokColon
	tokComma
	tokAt
	tokStar
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokArrow:
		return "'->'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokColon:
		return "':'"
	case tokComma:
		return "','"
	case tokAt:
		return "'@'"
	case tokStar:
		return "'*'"
	}
	return "unknown token"
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

// scanner tokenizes type and term expressions.
type scanner struct {
	input  []rune
	pos    int
	tokens []token
}

func newScanner(input string) (*scanner, error) {
	s := &scanner{input: []rune(input)}
	if err := s.scan(); err != nil {
		return nil, err
	}
	return s, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func (s *scanner) scan() error {
	i := 0
	for i < len(s.input) {
		r := s.input[i]
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			i++
		case r == '-':
			if i+1 >= len(s.input) || s.input[i+1] != '>' {
				return fmt.Errorf("%w: expected '->' at position %d", errors.ErrSyntax, i)
			}
			s.tokens = append(s.tokens, token{tokArrow, "->", i})
			i += 2
		case r == '(':
			s.tokens = append(s.tokens, token{tokLParen, "(", i})
			i++
		case r == ')':
			s.tokens = append(s.tokens, token{tokRParen, ")", i})
			i++
		case r == ':':
			s.tokens = append(s.tokens, token{tokColon, ":", i})
			i++
		case r == ',':
			s.tokens = append(s.tokens, token{tokComma, ",", i})
			i++
		case r == '@':
			s.tokens = append(s.tokens, token{tokAt, "@", i})
			i++
		case r == '*':
			s.tokens = append(s.tokens, token{tokStar, "*", i})
			i++
		case isIdentStart(r):
			start := i
			for i < len(s.input) && isIdentPart(s.input[i]) {
				i++
			}
			s.tokens = append(s.tokens, token{tokIdent, string(s.input[start:i]), start})
		default:
			return fmt.Errorf("%w: unexpected character %q at position %d", errors.ErrSyntax, r, i)
		}
	}
	s.tokens = append(s.tokens, token{tokEOF, "", len(s.input)})
	return nil
}

func (s *scanner) peek() token { return s.tokens[s.pos] }

func (s *scanner) next() token {
	t := s.tokens[s.pos]
	if t.kind != tokEOF {
		s.pos++
	}
	return t
}

func (s *scanner) expect(kind tokenKind) (token, error) {
	t := s.next()
	if t.kind != kind {
		return t, fmt.Errorf("%w: expected %s, got %s at position %d",
			errors.ErrSyntax, kind, t.kind, t.pos)
	}
	return t, nil
}

func (s *scanner) done() bool { return s.peek().kind == tokEOF }
