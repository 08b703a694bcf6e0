package typing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/duynguyendang/implica/pkg/common/errors"
)

func TestConstantInvokeMonomorphic(t *testing.T) {
	c, err := NewConstant("worksAt", "Person -> Company")
	require.NoError(t, err)
	assert.Equal(t, 0, c.Arity())

	term, err := c.Invoke()
	require.NoError(t, err)
	assert.Equal(t, "worksAt", term.(*Basic).Name)
	assert.True(t, TypesEqual(mustParseType(t, "Person -> Company"), term.Type()))
}

func TestConstantInvokePolymorphic(t *testing.T) {
	c, err := NewConstant("edge", "(A:*) -> (B:*)")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Arity())

	term, err := c.Invoke(MustVariable("X"), MustVariable("Y"))
	require.NoError(t, err)
	assert.True(t, TypesEqual(mustParseType(t, "X -> Y"), term.Type()))
}

func TestConstantArityMismatch(t *testing.T) {
	c, err := NewConstant("edge", "(A:*) -> (B:*)")
	require.NoError(t, err)

	_, err = c.Invoke(MustVariable("X"))
	assert.ErrorIs(t, err, apperrors.ErrTypeArityMismatch)

	_, err = c.Invoke(MustVariable("X"), MustVariable("Y"), MustVariable("Z"))
	assert.ErrorIs(t, err, apperrors.ErrTypeArityMismatch)
}

func TestRegistryUnknownConstantSuggests(t *testing.T) {
	c, err := NewConstant("worksAt", "Person -> Company")
	require.NoError(t, err)
	reg, err := NewRegistry(c)
	require.NoError(t, err)

	_, err = reg.Invoke("worksat")
	require.ErrorIs(t, err, apperrors.ErrUnknownConstant)
	assert.Contains(t, err.Error(), "worksAt")
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	c1, _ := NewConstant("f", "A")
	c2, _ := NewConstant("f", "B")

	_, err := NewRegistry(c1, c2)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyBound)
}

func TestParseTermElaborates(t *testing.T) {
	worksAt, _ := NewConstant("worksAt", "Person -> Company")
	person, _ := NewConstant("alice", "Person")
	reg, err := NewRegistry(worksAt, person)
	require.NoError(t, err)

	term, err := ParseTerm("@worksAt() @alice()", reg)
	require.NoError(t, err)
	assert.True(t, TypesEqual(MustVariable("Company"), term.Type()))

	// Bare names act as zero-parameter invocations, so printed terms
	// parse back to themselves.
	reparsed, err := ParseTerm(term.String(), reg)
	require.NoError(t, err)
	assert.Equal(t, term.UID(), reparsed.UID())

	_, err = ParseTerm("*", reg)
	assert.ErrorIs(t, err, apperrors.ErrAmbiguousCreate)

	_, err = ParseTerm("@nope()", reg)
	assert.ErrorIs(t, err, apperrors.ErrUnknownConstant)
}

func TestContextTryBind(t *testing.T) {
	ctx := NewContext()
	a := MustVariable("A")

	require.NoError(t, ctx.TryBind("x", a))
	// Re-binding the same value succeeds.
	require.NoError(t, ctx.TryBind("x", MustVariable("A")))
	// A different value conflicts.
	assert.ErrorIs(t, ctx.TryBind("x", MustVariable("B")), apperrors.ErrAlreadyBound)

	// The anonymous sentinel never binds.
	require.NoError(t, ctx.TryBind("_", a))
	_, ok := ctx.Get("_")
	assert.False(t, ok)

	clone := ctx.Clone()
	require.NoError(t, clone.TryBind("y", a))
	_, ok = ctx.Get("y")
	assert.False(t, ok, "clone bindings must not leak into the original")
}
