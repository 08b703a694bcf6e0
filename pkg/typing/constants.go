package typing

import (
	"fmt"
	"sort"
	"sync"

	apperrors "github.com/duynguyendang/implica/pkg/common/errors"
)

// Constant is a named term generator with a declared, possibly parametric
// type schema. Capture sites in the schema are the constant's type
// parameters; invocation fills them positionally and yields the basic term
// at the resulting monomorphic type.
type Constant struct {
	Name   string
	Schema TypeSchema

	arity int
}

// NewConstant declares a constant from its name and type-schema source,
// e.g. NewConstant("worksAt", "Person -> Company") or
// NewConstant("edge", "(A:*) -> (B:*)").
func NewConstant(name, schema string) (Constant, error) {
	if err := ValidateName(name); err != nil {
		return Constant{}, fmt.Errorf("constant: %w", err)
	}
	parsed, err := ParseTypeSchema(schema)
	if err != nil {
		return Constant{}, fmt.Errorf("constant %q: %w", name, err)
	}
	return Constant{Name: name, Schema: parsed, arity: countCaptures(parsed)}, nil
}

// Arity returns the number of type parameters of the constant.
func (c Constant) Arity() int { return c.arity }

// Invoke instantiates the constant with concrete type arguments and returns
// the basic term.
func (c Constant) Invoke(args ...Type) (Term, error) {
	if len(args) != c.arity {
		return nil, fmt.Errorf("%w: constant %q takes %d type argument(s), got %d",
			apperrors.ErrTypeArityMismatch, c.Name, c.arity, len(args))
	}
	next := 0
	typ, err := instantiate(c.Schema, args, &next)
	if err != nil {
		return nil, fmt.Errorf("constant %q: %w", c.Name, err)
	}
	return NewBasic(c.Name, typ)
}

// Registry holds the declared constants of a graph.
type Registry struct {
	mu     sync.RWMutex
	consts map[string]Constant
}

// NewRegistry creates a registry over the given constants.
func NewRegistry(constants ...Constant) (*Registry, error) {
	r := &Registry{consts: make(map[string]Constant, len(constants))}
	for _, c := range constants {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a constant. Redeclaring a name fails.
func (r *Registry) Register(c Constant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.consts[c.Name]; ok {
		return fmt.Errorf("%w: constant %q", apperrors.ErrAlreadyBound, c.Name)
	}
	r.consts[c.Name] = c
	return nil
}

// Get looks up a constant by name.
func (r *Registry) Get(name string) (Constant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.consts[name]
	return c, ok
}

// Invoke instantiates the named constant with concrete type arguments.
// Unknown names carry a did-you-mean hint when a close match exists.
func (r *Registry) Invoke(name string, args ...Type) (Term, error) {
	c, ok := r.Get(name)
	if !ok {
		return nil, apperrors.WithSuggestion(apperrors.ErrUnknownConstant, name, r.Names())
	}
	return c.Invoke(args...)
}

// Names returns the declared constant names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.consts))
	for name := range r.consts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of declared constants.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.consts)
}
