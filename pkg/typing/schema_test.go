package typing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseType(t *testing.T, src string) Type {
	t.Helper()
	typ, err := ParseType(src)
	require.NoError(t, err)
	return typ
}

func TestTypeSchemaMatching(t *testing.T) {
	cases := []struct {
		schema string
		typ    string
		want   bool
	}{
		{"A", "A", true},
		{"A", "B", false},
		{"*", "A", true},
		{"*", "A -> B", true},
		{"A -> B", "A -> B", true},
		{"A -> B", "A -> C", false},
		{"A -> *", "A -> B", true},
		{"A -> *", "B -> B", false},
		{"* -> *", "A -> B", true},
		{"* -> *", "A", false},
		{"(X:*)", "A", true},
		{"(X:*) -> (Y:*)", "A -> B", true},
		{"(X:*) -> (Y:*)", "A", false},
	}
	for _, tc := range cases {
		schema, err := ParseTypeSchema(tc.schema)
		require.NoError(t, err, tc.schema)

		ok, err := schema.Match(mustParseType(t, tc.typ), NewContext())
		require.NoError(t, err)
		assert.Equal(t, tc.want, ok, "%s vs %s", tc.schema, tc.typ)
	}
}

func TestCaptureBindsType(t *testing.T) {
	schema, err := ParseTypeSchema("(X:*) -> (Y:*)")
	require.NoError(t, err)

	ctx := NewContext()
	ok, err := schema.Match(mustParseType(t, "A -> B"), ctx)
	require.NoError(t, err)
	require.True(t, ok)

	x, ok := ctx.TypeOf("X")
	require.True(t, ok)
	assert.Equal(t, "A", x.(*Variable).Name)

	y, ok := ctx.TypeOf("Y")
	require.True(t, ok)
	assert.Equal(t, "B", y.(*Variable).Name)
}

func TestCaptureConflictIsMatchFailure(t *testing.T) {
	// (X:*) -> (X:*) requires both arms to be the same type.
	schema, err := ParseTypeSchema("(X:*) -> (X:*)")
	require.NoError(t, err)

	ok, err := schema.Match(mustParseType(t, "A -> B"), NewContext())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = schema.Match(mustParseType(t, "A -> A"), NewContext())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCaptureAgainstBoundContext(t *testing.T) {
	schema, err := ParseTypeSchema("(X:*)")
	require.NoError(t, err)

	ctx := NewContext()
	require.NoError(t, ctx.TryBind("X", MustVariable("A")))

	ok, err := schema.Match(MustVariable("A"), ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = schema.Match(MustVariable("B"), ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSchemaIsExact(t *testing.T) {
	exact, err := ParseTypeSchema("A -> (B -> C)")
	require.NoError(t, err)
	typ, ok := SchemaIsExact(exact)
	require.True(t, ok)
	assert.True(t, TypesEqual(mustParseType(t, "A -> B -> C"), typ))

	for _, src := range []string{"*", "(X:*)", "A -> *"} {
		schema, err := ParseTypeSchema(src)
		require.NoError(t, err)
		_, ok := SchemaIsExact(schema)
		assert.False(t, ok, src)
	}
}

func TestTypeSchemaRoundTrip(t *testing.T) {
	for _, src := range []string{"A", "*", "A -> *", "(X:*) -> (Y:*)", "(A -> B) -> C", "(X:(A -> *))"} {
		schema, err := ParseTypeSchema(src)
		require.NoError(t, err, src)
		reparsed, err := ParseTypeSchema(schema.String())
		require.NoError(t, err, schema.String())
		assert.Equal(t, schema.String(), reparsed.String(), src)
	}
}

func TestTermSchemaMatching(t *testing.T) {
	a := MustVariable("A")
	b := MustVariable("B")
	f, _ := NewBasic("f", NewArrow(a, b))
	x, _ := NewBasic("x", a)
	fx, err := Apply(f, x)
	require.NoError(t, err)

	wildcard, err := ParseTermSchema("*")
	require.NoError(t, err)
	ok, _ := wildcard.Match(fx, NewContext())
	assert.True(t, ok)

	// Derived matches the whole application spine.
	derived, err := ParseTermSchema("f")
	require.NoError(t, err)
	ok, _ = derived.Match(fx, NewContext())
	assert.True(t, ok)
	ok, _ = derived.Match(f, NewContext())
	assert.True(t, ok)
	ok, _ = derived.Match(x, NewContext())
	assert.False(t, ok)

	// Exact matches only the basic constant.
	exact, err := ParseTermSchema("@f()")
	require.NoError(t, err)
	ok, _ = exact.Match(f, NewContext())
	assert.True(t, ok)
	ok, _ = exact.Match(fx, NewContext())
	assert.False(t, ok)

	// Application schemas recurse into both sides.
	appSchema, err := ParseTermSchema("@f() *")
	require.NoError(t, err)
	ok, _ = appSchema.Match(fx, NewContext())
	assert.True(t, ok)
	ok, _ = appSchema.Match(f, NewContext())
	assert.False(t, ok)
}

func TestTermSchemaLeftAssociativeApp(t *testing.T) {
	schema, err := ParseTermSchema("f x y")
	require.NoError(t, err)

	// f x y parses as ((f x) y).
	outer, ok := schema.(*TermAppSchema)
	require.True(t, ok)
	inner, ok := outer.Fn.(*TermAppSchema)
	require.True(t, ok)
	assert.Equal(t, "f", inner.Fn.(*TermDerived).Name)
	assert.Equal(t, "x", inner.Arg.(*TermDerived).Name)
	assert.Equal(t, "y", outer.Arg.(*TermDerived).Name)
}

func TestTermSchemaInvocationArgs(t *testing.T) {
	schema, err := ParseTermSchema("@edge(X, Y -> Z)")
	require.NoError(t, err)

	exact, ok := schema.(*TermExact)
	require.True(t, ok)
	assert.Equal(t, "edge", exact.Name)
	require.Len(t, exact.Args, 2)
	assert.Equal(t, "X", exact.Args[0].(*Variable).Name)
	_, isArrow := exact.Args[1].(*Arrow)
	assert.True(t, isArrow)
}
