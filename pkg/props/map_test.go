package props

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	cases := []struct {
		a, b Value
		want bool
	}{
		{nil, nil, true},
		{nil, "x", false},
		{"x", "x", true},
		{"x", "y", false},
		{int64(1), int64(1), true},
		{int64(1), float64(1), true},
		{int64(1), int64(2), false},
		{true, true, true},
		{true, false, false},
		{[]Value{int64(1), "a"}, []Value{int64(1), "a"}, true},
		{[]Value{int64(1)}, []Value{int64(1), int64(2)}, false},
		{map[string]Value{"a": int64(1)}, map[string]Value{"a": int64(1)}, true},
		{map[string]Value{"a": int64(1)}, map[string]Value{"a": int64(2)}, false},
		{map[string]Value{"a": int64(1)}, map[string]Value{"b": int64(1)}, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Equal(tc.a, tc.b), "%v vs %v", tc.a, tc.b)
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := map[string]Value{"list": []Value{int64(1)}, "nested": map[string]Value{"k": "v"}}
	cloned := Clone(original).(map[string]Value)

	cloned["nested"].(map[string]Value)["k"] = "changed"
	assert.Equal(t, "v", original["nested"].(map[string]Value)["k"])
}

func TestMapMergeAndReplace(t *testing.T) {
	m := NewMap(map[string]Value{"a": int64(1), "b": int64(2)})

	m.Merge(map[string]Value{"b": int64(5), "c": int64(7)})
	assert.True(t, m.Contains(map[string]Value{"a": int64(1), "b": int64(5), "c": int64(7)}))
	assert.Equal(t, 3, m.Len())

	m.Replace(map[string]Value{"x": int64(1)})
	assert.Equal(t, 1, m.Len())
	v, ok := m.Get("x")
	require.True(t, ok)
	assert.Equal(t, int64(1), v)
}

func TestMapCloneIndependent(t *testing.T) {
	m := NewMap(map[string]Value{"a": int64(1)})
	clone := m.Clone()

	clone.Set("a", int64(2))
	v, _ := m.Get("a")
	assert.Equal(t, int64(1), v)
}

func TestCompareOrdering(t *testing.T) {
	// nil < bool < number < string
	assert.Negative(t, Compare(nil, false))
	assert.Negative(t, Compare(false, true))
	assert.Negative(t, Compare(true, int64(0)))
	assert.Negative(t, Compare(int64(1), int64(2)))
	assert.Negative(t, Compare(int64(3), "a"))
	assert.Negative(t, Compare("a", "b"))
	assert.Zero(t, Compare(int64(1), float64(1)))
	assert.Positive(t, Compare("b", "a"))
}
