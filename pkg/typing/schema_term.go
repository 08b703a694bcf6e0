package typing

import (
	"fmt"
	"strings"

	apperrors "github.com/duynguyendang/implica/pkg/common/errors"
)

// TermSchema is a pattern over terms.
type TermSchema interface {
	Match(tm Term, ctx *Context) (bool, error)
	String() string

	isTermSchema()
}

// TermWildcard matches any term.
type TermWildcard struct{}

func (*TermWildcard) Match(Term, *Context) (bool, error) { return true, nil }
func (*TermWildcard) String() string                     { return "*" }
func (*TermWildcard) isTermSchema()                      {}

// TermDerived matches any term whose leftmost head is the constant Name:
// f, (f a), ((f a) b), and so on.
type TermDerived struct {
	Name string
}

func (s *TermDerived) Match(tm Term, _ *Context) (bool, error) {
	head := Head(tm)
	return head != nil && head.Name == s.Name, nil
}

func (s *TermDerived) String() string { return s.Name }
func (*TermDerived) isTermSchema()    {}

// TermExact matches only the basic term for the constant Name. Args carries
// the type arguments of the invocation surface form "@f(T1, ..., Tn)"; they
// participate in elaboration, not in matching.
type TermExact struct {
	Name string
	Args []Type
}

func (s *TermExact) Match(tm Term, _ *Context) (bool, error) {
	basic, ok := tm.(*Basic)
	return ok && basic.Name == s.Name, nil
}

func (s *TermExact) String() string {
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("@%s(%s)", s.Name, strings.Join(args, ", "))
}

func (*TermExact) isTermSchema() {}

// TermAppSchema matches an Application whose function and argument match
// the sub-schemas.
type TermAppSchema struct {
	Fn  TermSchema
	Arg TermSchema
}

func (s *TermAppSchema) Match(tm Term, ctx *Context) (bool, error) {
	app, ok := tm.(*Application)
	if !ok {
		return false, nil
	}
	ok, err := s.Fn.Match(app.Fn, ctx)
	if err != nil || !ok {
		return ok, err
	}
	return s.Arg.Match(app.Arg, ctx)
}

func (s *TermAppSchema) String() string {
	return fmt.Sprintf("%s %s", s.Fn, s.Arg)
}

func (*TermAppSchema) isTermSchema() {}

// Elaborate turns an exact term schema into a concrete term using the
// registry: constant invocations are instantiated, applications are built
// left-associatively. Wildcards and derived-constant schemas are ambiguous
// and cannot be elaborated.
func Elaborate(s TermSchema, reg *Registry) (Term, error) {
	switch sc := s.(type) {
	case *TermExact:
		return reg.Invoke(sc.Name, sc.Args...)
	case *TermAppSchema:
		fn, err := Elaborate(sc.Fn, reg)
		if err != nil {
			return nil, err
		}
		arg, err := Elaborate(sc.Arg, reg)
		if err != nil {
			return nil, err
		}
		return Apply(fn, arg)
	default:
		return nil, fmt.Errorf("%w: term schema %q is not exact", apperrors.ErrAmbiguousCreate, s)
	}
}

// elaborateLoose is Elaborate for rendered term expressions: a bare
// constant name resolves as a zero-parameter invocation, so the printed
// form "(f x)" parses back to the term it came from.
func elaborateLoose(s TermSchema, reg *Registry) (Term, error) {
	switch sc := s.(type) {
	case *TermDerived:
		return reg.Invoke(sc.Name)
	case *TermExact:
		return reg.Invoke(sc.Name, sc.Args...)
	case *TermAppSchema:
		fn, err := elaborateLoose(sc.Fn, reg)
		if err != nil {
			return nil, err
		}
		arg, err := elaborateLoose(sc.Arg, reg)
		if err != nil {
			return nil, err
		}
		return Apply(fn, arg)
	default:
		return nil, fmt.Errorf("%w: term schema %q is not exact", apperrors.ErrAmbiguousCreate, s)
	}
}

// TermSchemaIsExact reports whether the schema can be elaborated into
// exactly one term.
func TermSchemaIsExact(s TermSchema) bool {
	switch sc := s.(type) {
	case *TermExact:
		return true
	case *TermAppSchema:
		return TermSchemaIsExact(sc.Fn) && TermSchemaIsExact(sc.Arg)
	default:
		return false
	}
}
