package typing

import (
	"fmt"

	"github.com/duynguyendang/implica/pkg/common/errors"
)

// Term is a value inhabiting a Type: either a Basic term (a declared
// constant at a concrete type) or an Application of one term to another.
type Term interface {
	// UID returns the content-addressed identity of the term.
	UID() string
	// Type returns the type the term inhabits.
	Type() Type
	String() string

	isTerm()
}

// Basic is a named constant at a concrete type.
type Basic struct {
	Name string
	typ  Type

	uid uidCache
}

// NewBasic creates a basic term with the given name and type.
func NewBasic(name string, typ Type) (*Basic, error) {
	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("basic term: %w", err)
	}
	if typ == nil {
		return nil, fmt.Errorf("%w: basic term %q needs a type", errors.ErrTypeMismatch, name)
	}
	return &Basic{Name: name, typ: typ}, nil
}

func (b *Basic) UID() string {
	return b.uid.get(func() string { return hashUID("T:" + b.Name + ":" + b.typ.UID()) })
}

func (b *Basic) Type() Type     { return b.typ }
func (b *Basic) String() string { return b.Name }

func (*Basic) isTerm() {}

// Application is the left-associative application of Fn to Arg. It can only
// be built through Apply, which enforces well-typedness.
type Application struct {
	Fn  Term
	Arg Term
	typ Type

	uid uidCache
}

// Apply builds the application (fn arg). The function's type must be an
// Arrow whose left arm equals the argument's type; the result inhabits the
// Arrow's right arm.
func Apply(fn, arg Term) (*Application, error) {
	arrow, ok := fn.Type().(*Arrow)
	if !ok {
		return nil, fmt.Errorf("%w: cannot apply term of atomic type %s", errors.ErrTypeMismatch, fn.Type())
	}
	if !TypesEqual(arrow.Left, arg.Type()) {
		return nil, fmt.Errorf("%w: expected argument of type %s, got %s",
			errors.ErrTypeMismatch, arrow.Left, arg.Type())
	}
	return &Application{Fn: fn, Arg: arg, typ: arrow.Right}, nil
}

func (a *Application) UID() string {
	return a.uid.get(func() string { return hashUID("P:" + a.Fn.UID() + ":" + a.Arg.UID()) })
}

func (a *Application) Type() Type { return a.typ }

func (a *Application) String() string {
	return fmt.Sprintf("(%s %s)", a.Fn, a.Arg)
}

func (*Application) isTerm() {}

// TermsEqual reports structural equality of two terms.
func TermsEqual(a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.UID() == b.UID()
}

// Head walks the leftmost function spine of a term and returns the Basic
// term at its head.
func Head(tm Term) *Basic {
	for {
		switch t := tm.(type) {
		case *Basic:
			return t
		case *Application:
			tm = t.Fn
		default:
			return nil
		}
	}
}
