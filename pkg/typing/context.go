package typing

import (
	"fmt"

	"github.com/duynguyendang/implica/pkg/common/errors"
)

// Binding is any value a Context can hold under a variable name: a Type, a
// Term, or a graph element. Equality between bindings is UID equality.
type Binding interface {
	UID() string
}

// Context is the keyed store of variable bindings accumulated during a
// single match attempt. It is not safe for concurrent use; parallel match
// attempts each work on their own clone.
type Context struct {
	content map[string]Binding
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{content: make(map[string]Binding)}
}

// Clone returns an independent copy. Matchers snapshot the context before a
// candidate attempt and discard the clone on failure.
func (c *Context) Clone() *Context {
	clone := &Context{content: make(map[string]Binding, len(c.content))}
	for k, v := range c.content {
		clone.content[k] = v
	}
	return clone
}

// Get returns the binding under name, if any.
func (c *Context) Get(name string) (Binding, bool) {
	b, ok := c.content[name]
	return b, ok
}

// TryBind atomically inserts a binding: absent names are bound, an existing
// name succeeds only when the new binding is structurally equal to the old
// one. The anonymous sentinel "_" never binds.
func (c *Context) TryBind(name string, b Binding) error {
	if name == AnonymousName {
		return nil
	}
	if existing, ok := c.content[name]; ok {
		if existing.UID() == b.UID() {
			return nil
		}
		return fmt.Errorf("%w: %q", errors.ErrAlreadyBound, name)
	}
	c.content[name] = b
	return nil
}

// Len returns the number of bound names.
func (c *Context) Len() int { return len(c.content) }

// Names returns the bound names in unspecified order.
func (c *Context) Names() []string {
	names := make([]string, 0, len(c.content))
	for k := range c.content {
		names = append(names, k)
	}
	return names
}

// TypeOf returns the type bound under name, if the binding is a Type.
func (c *Context) TypeOf(name string) (Type, bool) {
	t, ok := c.content[name].(Type)
	return t, ok
}

// TermOf returns the term bound under name, if the binding is a Term.
func (c *Context) TermOf(name string) (Term, bool) {
	t, ok := c.content[name].(Term)
	return t, ok
}
