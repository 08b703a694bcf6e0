package typing

import (
	"errors"
	"fmt"

	apperrors "github.com/duynguyendang/implica/pkg/common/errors"
)

// TypeSchema is a pattern over types. Matching a schema against a concrete
// type may extend the active Context with captured types.
type TypeSchema interface {
	// Match tests the schema against t, binding captures into ctx. A
	// capture conflict is a match failure (false, nil), not an error.
	// Bindings added by a failed match are the caller's responsibility to
	// discard; matchers clone the context per candidate attempt.
	Match(t Type, ctx *Context) (bool, error)
	String() string

	isTypeSchema()
}

// ExactSchema matches exactly one type.
type ExactSchema struct {
	Type Type
}

func (s *ExactSchema) Match(t Type, _ *Context) (bool, error) {
	return TypesEqual(s.Type, t), nil
}

func (s *ExactSchema) String() string { return s.Type.String() }
func (*ExactSchema) isTypeSchema()    {}

// WildcardSchema matches any type.
type WildcardSchema struct{}

func (*WildcardSchema) Match(Type, *Context) (bool, error) { return true, nil }
func (*WildcardSchema) String() string                     { return "*" }
func (*WildcardSchema) isTypeSchema()                      {}

// ArrowSchema matches an Arrow whose arms match the sub-schemas.
type ArrowSchema struct {
	Left  TypeSchema
	Right TypeSchema
}

func (s *ArrowSchema) Match(t Type, ctx *Context) (bool, error) {
	arrow, ok := t.(*Arrow)
	if !ok {
		return false, nil
	}
	ok, err := s.Left.Match(arrow.Left, ctx)
	if err != nil || !ok {
		return ok, err
	}
	return s.Right.Match(arrow.Right, ctx)
}

func (s *ArrowSchema) String() string {
	return fmt.Sprintf("%s -> %s", parenthesizeArrow(s.Left), s.Right)
}

func (*ArrowSchema) isTypeSchema() {}

// parenthesizeArrow wraps a nested arrow schema so printing stays
// right-associative on re-parse.
func parenthesizeArrow(s TypeSchema) string {
	if _, ok := s.(*ArrowSchema); ok {
		return "(" + s.String() + ")"
	}
	return s.String()
}

// CaptureSchema binds the matched type to Name iff the inner schema
// succeeds.
type CaptureSchema struct {
	Name  string
	Inner TypeSchema
}

func (s *CaptureSchema) Match(t Type, ctx *Context) (bool, error) {
	ok, err := s.Inner.Match(t, ctx)
	if err != nil || !ok {
		return ok, err
	}
	if err := ctx.TryBind(s.Name, t); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyBound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *CaptureSchema) String() string {
	return fmt.Sprintf("(%s:%s)", s.Name, s.Inner)
}

func (*CaptureSchema) isTypeSchema() {}

// SchemaIsExact reports whether the schema pins down exactly one type, and
// returns that type.
func SchemaIsExact(s TypeSchema) (Type, bool) {
	switch sc := s.(type) {
	case *ExactSchema:
		return sc.Type, true
	case *ArrowSchema:
		l, ok := SchemaIsExact(sc.Left)
		if !ok {
			return nil, false
		}
		r, ok := SchemaIsExact(sc.Right)
		if !ok {
			return nil, false
		}
		return NewArrow(l, r), true
	default:
		return nil, false
	}
}

// countCaptures returns the number of capture sites in declaration order.
// A capture nested inside another capture's schema is match-time only, not
// a parameter, so it does not count.
func countCaptures(s TypeSchema) int {
	switch sc := s.(type) {
	case *CaptureSchema:
		return 1
	case *ArrowSchema:
		return countCaptures(sc.Left) + countCaptures(sc.Right)
	default:
		return 0
	}
}

// instantiate fills the schema's capture sites positionally from args and
// returns the resulting concrete type. Wildcards outside a capture cannot
// be instantiated.
func instantiate(s TypeSchema, args []Type, next *int) (Type, error) {
	switch sc := s.(type) {
	case *ExactSchema:
		return sc.Type, nil
	case *WildcardSchema:
		return nil, fmt.Errorf("%w: wildcard outside a capture cannot be instantiated", apperrors.ErrTypeMismatch)
	case *ArrowSchema:
		left, err := instantiate(sc.Left, args, next)
		if err != nil {
			return nil, err
		}
		right, err := instantiate(sc.Right, args, next)
		if err != nil {
			return nil, err
		}
		return NewArrow(left, right), nil
	case *CaptureSchema:
		arg := args[*next]
		*next++
		ok, err := sc.Inner.Match(arg, NewContext())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: type %s does not satisfy capture %s",
				apperrors.ErrTypeMismatch, arg, sc)
		}
		return arg, nil
	default:
		return nil, fmt.Errorf("%w: unknown schema %T", apperrors.ErrInvalidQuery, s)
	}
}
