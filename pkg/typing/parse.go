package typing

import (
	"fmt"

	"github.com/duynguyendang/implica/pkg/common/errors"
)

// ParseType parses a concrete type expression:
//
//	type := atom ('->' type)?
//	atom := IDENT | '(' type ')'
//
// Arrows are right-associative: "A -> B -> C" is Arrow(A, Arrow(B, C)).
func ParseType(input string) (Type, error) {
	s, err := newScanner(input)
	if err != nil {
		return nil, err
	}
	t, err := parseType(s)
	if err != nil {
		return nil, err
	}
	if !s.done() {
		return nil, fmt.Errorf("%w: trailing input at position %d", errors.ErrSyntax, s.peek().pos)
	}
	return t, nil
}

func parseType(s *scanner) (Type, error) {
	left, err := parseTypeAtom(s)
	if err != nil {
		return nil, err
	}
	if s.peek().kind == tokArrow {
		s.next()
		right, err := parseType(s)
		if err != nil {
			return nil, err
		}
		return NewArrow(left, right), nil
	}
	return left, nil
}

func parseTypeAtom(s *scanner) (Type, error) {
	switch t := s.next(); t.kind {
	case tokIdent:
		return NewVariable(t.text)
	case tokLParen:
		inner, err := parseType(s)
		if err != nil {
			return nil, err
		}
		if _, err := s.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, fmt.Errorf("%w: expected type, got %s at position %d", errors.ErrSyntax, t.kind, t.pos)
	}
}

// ParseTypeSchema parses a type schema:
//
//	schema := atom ('->' schema)?
//	atom   := '*' | IDENT | '(' IDENT ':' schema ')' | '(' schema ')'
//
// "(X:*)" is a capture binding X to whatever the inner schema matches.
func ParseTypeSchema(input string) (TypeSchema, error) {
	s, err := newScanner(input)
	if err != nil {
		return nil, err
	}
	schema, err := parseTypeSchema(s)
	if err != nil {
		return nil, err
	}
	if !s.done() {
		return nil, fmt.Errorf("%w: trailing input at position %d", errors.ErrSyntax, s.peek().pos)
	}
	return schema, nil
}

func parseTypeSchema(s *scanner) (TypeSchema, error) {
	left, err := parseTypeSchemaAtom(s)
	if err != nil {
		return nil, err
	}
	if s.peek().kind == tokArrow {
		s.next()
		right, err := parseTypeSchema(s)
		if err != nil {
			return nil, err
		}
		return &ArrowSchema{Left: left, Right: right}, nil
	}
	return left, nil
}

func parseTypeSchemaAtom(s *scanner) (TypeSchema, error) {
	switch t := s.next(); t.kind {
	case tokStar:
		return &WildcardSchema{}, nil
	case tokIdent:
		v, err := NewVariable(t.text)
		if err != nil {
			return nil, err
		}
		return &ExactSchema{Type: v}, nil
	case tokLParen:
		// Distinguish a capture "(X: schema)" from plain grouping.
		if s.peek().kind == tokIdent && s.tokens[s.pos+1].kind == tokColon {
			name := s.next().text
			s.next() // colon
			if err := ValidateName(name); err != nil {
				return nil, fmt.Errorf("capture: %w", err)
			}
			inner, err := parseTypeSchema(s)
			if err != nil {
				return nil, err
			}
			if _, err := s.expect(tokRParen); err != nil {
				return nil, err
			}
			return &CaptureSchema{Name: name, Inner: inner}, nil
		}
		inner, err := parseTypeSchema(s)
		if err != nil {
			return nil, err
		}
		if _, err := s.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, fmt.Errorf("%w: expected type schema, got %s at position %d", errors.ErrSyntax, t.kind, t.pos)
	}
}

// ParseTermSchema parses a term schema:
//
//	schema := atom atom*            -- application, left-associative
//	atom   := '*' | IDENT | '@' IDENT '(' (type (',' type)*)? ')'
//	        | '(' schema ')'
//
// A bare IDENT matches any term headed by that constant; "@f(...)" is the
// exact constant invocation.
func ParseTermSchema(input string) (TermSchema, error) {
	s, err := newScanner(input)
	if err != nil {
		return nil, err
	}
	schema, err := parseTermSchema(s)
	if err != nil {
		return nil, err
	}
	if !s.done() {
		return nil, fmt.Errorf("%w: trailing input at position %d", errors.ErrSyntax, s.peek().pos)
	}
	return schema, nil
}

func parseTermSchema(s *scanner) (TermSchema, error) {
	cur, err := parseTermSchemaAtom(s)
	if err != nil {
		return nil, err
	}
	for termSchemaAtomAhead(s) {
		arg, err := parseTermSchemaAtom(s)
		if err != nil {
			return nil, err
		}
		cur = &TermAppSchema{Fn: cur, Arg: arg}
	}
	return cur, nil
}

func termSchemaAtomAhead(s *scanner) bool {
	switch s.peek().kind {
	case tokStar, tokIdent, tokAt, tokLParen:
		return true
	}
	return false
}

func parseTermSchemaAtom(s *scanner) (TermSchema, error) {
	switch t := s.next(); t.kind {
	case tokStar:
		return &TermWildcard{}, nil
	case tokIdent:
		if err := ValidateName(t.text); err != nil {
			return nil, fmt.Errorf("constant name: %w", err)
		}
		return &TermDerived{Name: t.text}, nil
	case tokAt:
		name, err := s.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		if err := ValidateName(name.text); err != nil {
			return nil, fmt.Errorf("constant name: %w", err)
		}
		if _, err := s.expect(tokLParen); err != nil {
			return nil, err
		}
		var args []Type
		if s.peek().kind != tokRParen {
			for {
				arg, err := parseType(s)
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if s.peek().kind != tokComma {
					break
				}
				s.next()
			}
		}
		if _, err := s.expect(tokRParen); err != nil {
			return nil, err
		}
		return &TermExact{Name: name.text, Args: args}, nil
	case tokLParen:
		inner, err := parseTermSchema(s)
		if err != nil {
			return nil, err
		}
		if _, err := s.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, fmt.Errorf("%w: expected term schema, got %s at position %d", errors.ErrSyntax, t.kind, t.pos)
	}
}

// ParseTerm parses a concrete term expression and elaborates it against
// the registry. Atoms are constant invocations "@f(...)"; a bare name is
// accepted as shorthand for a zero-parameter invocation, so printed terms
// parse back to themselves.
func ParseTerm(input string, reg *Registry) (Term, error) {
	schema, err := ParseTermSchema(input)
	if err != nil {
		return nil, err
	}
	return elaborateLoose(schema, reg)
}
