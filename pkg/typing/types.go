// Package typing implements the type and term algebra at the heart of the
// implica graph model: simply-typed lambda-calculus types over user-declared
// base names, first-order terms built from declared constants, schemas that
// pattern-match both, and the binding context used during a match.
//
// Types and terms are immutable once constructed and content-addressed:
// two values are equal iff their UIDs (SHA-256 over a canonical
// serialization) are equal.
package typing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// Type is a value in the type algebra: either a Variable (an atomic base
// type) or an Arrow (a function type between two types).
type Type interface {
	// UID returns the content-addressed identity of the type.
	UID() string
	String() string

	isType()
}

// hashUID hashes the canonical serialization of a value to its UID.
func hashUID(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// uidCache memoizes a UID per instance. Caches are never shared across
// clones.
type uidCache struct {
	mu  sync.Mutex
	val string
}

func (c *uidCache) get(compute func() string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.val == "" {
		c.val = compute()
	}
	return c.val
}

// Variable is an atomic base type such as "Person" or "A".
type Variable struct {
	Name string

	uid uidCache
}

// NewVariable creates an atomic type with the given name.
func NewVariable(name string) (*Variable, error) {
	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("type variable: %w", err)
	}
	return &Variable{Name: name}, nil
}

// MustVariable is NewVariable for statically known names; it panics on an
// invalid name.
func MustVariable(name string) *Variable {
	v, err := NewVariable(name)
	if err != nil {
		panic(err)
	}
	return v
}

func (v *Variable) UID() string {
	return v.uid.get(func() string { return hashUID("V:" + v.Name) })
}

func (v *Variable) String() string { return v.Name }

func (*Variable) isType() {}

// Arrow is the function type Left -> Right.
type Arrow struct {
	Left  Type
	Right Type

	uid uidCache
}

// NewArrow creates the function type left -> right.
func NewArrow(left, right Type) *Arrow {
	return &Arrow{Left: left, Right: right}
}

func (a *Arrow) UID() string {
	return a.uid.get(func() string {
		return hashUID("A:" + a.Left.UID() + ":" + a.Right.UID())
	})
}

func (a *Arrow) String() string {
	return fmt.Sprintf("(%s -> %s)", a.Left, a.Right)
}

func (*Arrow) isType() {}

// TypesEqual reports structural equality of two types.
func TypesEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.UID() == b.UID()
}
