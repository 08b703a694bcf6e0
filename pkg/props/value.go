// Package props implements the JSON-like property values attached to graph
// nodes and edges: scalars (string, int64, float64, bool, nil), lists, and
// nested maps, plus a concurrent property map with merge and replace
// semantics.
package props

// Value is a property value: string, int64, float64, bool, nil, []Value,
// or map[string]Value.
type Value = any

// Equal reports deep equality of two property values. Integers and floats
// compare across representations when numerically equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case int:
		return numericEqual(float64(av), b)
	case int64:
		return numericEqual(float64(av), b)
	case float64:
		return numericEqual(av, b)
	case []Value:
		bv, ok := b.([]Value)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]Value:
		bv, ok := b.(map[string]Value)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !Equal(v, bvv) {
				return false
			}
		}
		return true
	}
	return false
}

func numericEqual(a float64, b Value) bool {
	switch bv := b.(type) {
	case int:
		return a == float64(bv)
	case int64:
		return a == float64(bv)
	case float64:
		return a == bv
	}
	return false
}

// Clone deep-copies a property value. Scalars are returned as-is.
func Clone(v Value) Value {
	switch vv := v.(type) {
	case []Value:
		out := make([]Value, len(vv))
		for i, e := range vv {
			out[i] = Clone(e)
		}
		return out
	case map[string]Value:
		out := make(map[string]Value, len(vv))
		for k, e := range vv {
			out[k] = Clone(e)
		}
		return out
	default:
		return v
	}
}

// Compare orders two scalar values for sorting: nil < bool < number <
// string < everything else; false < true. Non-scalars compare equal to
// each other and after scalars.
func Compare(a, b Value) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case 1: // bool
		av, bv := a.(bool), b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case 2: // number
		av, bv := toFloat(a), toFloat(b)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case 3: // string
		av, bv := a.(string), b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	}
	return 0
}

func rank(v Value) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int, int64, float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}

func toFloat(v Value) float64 {
	switch vv := v.(type) {
	case int:
		return float64(vv)
	case int64:
		return float64(vv)
	case float64:
		return vv
	}
	return 0
}
