package query

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/duynguyendang/implica/pkg/common/errors"
	"github.com/duynguyendang/implica/pkg/graph"
	"github.com/duynguyendang/implica/pkg/props"
	"github.com/duynguyendang/implica/pkg/typing"
)

// orderKey addresses a property through a row variable: "v.key" or deeper
// "v.key.sub".
type orderKey struct {
	variable string
	path     []string
}

func parseOrderKeys(keys []string) ([]orderKey, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: order by needs at least one key", apperrors.ErrInvalidQuery)
	}
	out := make([]orderKey, 0, len(keys))
	for _, key := range keys {
		parts := strings.Split(key, ".")
		if len(parts) < 2 {
			return nil, fmt.Errorf("%w: order key %q must have the form var.key", apperrors.ErrInvalidQuery, key)
		}
		if err := typing.ValidateName(parts[0]); err != nil {
			return nil, fmt.Errorf("order key %q: %w", key, err)
		}
		for _, p := range parts[1:] {
			if err := typing.ValidateName(p); err != nil {
				return nil, fmt.Errorf("order key %q: %w", key, err)
			}
		}
		out = append(out, orderKey{variable: parts[0], path: parts[1:]})
	}
	return out, nil
}

type orderByClause struct {
	keys      []orderKey
	ascending bool
}

// apply stably sorts the relation by the listed property paths. Rows
// missing a key sort before rows that have it, in both directions.
func (c *orderByClause) apply(ex *executor) error {
	rel := ex.relation
	sort.SliceStable(rel, func(i, j int) bool {
		for _, key := range c.keys {
			a, aok := lookupOrderValue(rel[i], key)
			b, bok := lookupOrderValue(rel[j], key)
			if aok != bok {
				return !aok // missing first, regardless of direction
			}
			if !aok {
				continue
			}
			cmp := props.Compare(a, b)
			if cmp == 0 {
				continue
			}
			if c.ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
	return nil
}

// lookupOrderValue resolves an order key against a row, walking nested
// maps. Bindings without properties (types, terms) count as missing.
func lookupOrderValue(row Row, key orderKey) (props.Value, bool) {
	b, ok := row[key.variable]
	if !ok {
		return nil, false
	}

	var m *props.Map
	switch el := b.(type) {
	case *graph.Node:
		m = el.Properties()
	case *graph.Edge:
		m = el.Properties()
	default:
		return nil, false
	}

	val, ok := m.Get(key.path[0])
	if !ok {
		return nil, false
	}
	for _, part := range key.path[1:] {
		nested, isMap := val.(map[string]props.Value)
		if !isMap {
			return nil, false
		}
		val, ok = nested[part]
		if !ok {
			return nil, false
		}
	}
	return val, true
}
