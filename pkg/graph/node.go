// Package graph implements the concurrent, in-memory property graph: typed
// nodes and edges with content-addressed UIDs, secondary indexes by type,
// and snapshot-consistent scans.
package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/duynguyendang/implica/pkg/common/errors"
	"github.com/duynguyendang/implica/pkg/props"
	"github.com/duynguyendang/implica/pkg/typing"
)

func hashUID(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// uidCache memoizes a UID per instance, never shared across clones.
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

// Node is a graph node: a type, an optional term inhabiting it, and a
// property map. Type and term are immutable; properties mutate behind
// their own lock.
type Node struct {
	typ   typing.Type
	term  typing.Term // nil when the node carries no term
	props *props.Map

	uid uidCache
}

// NewNode creates a node. When a term is present its type must equal the
// node type.
func NewNode(typ typing.Type, term typing.Term, properties map[string]props.Value) (*Node, error) {
	if typ == nil {
		return nil, fmt.Errorf("%w: node needs a type", errors.ErrTypeMismatch)
	}
	if term != nil && !typing.TypesEqual(term.Type(), typ) {
		return nil, fmt.Errorf("%w: term %s has type %s, node declares %s",
			errors.ErrTypeMismatch, term, term.Type(), typ)
	}
	return &Node{typ: typ, term: term, props: props.NewMap(properties)}, nil
}

// UID returns the content-addressed identity of the node, derived from its
// type and term.
func (n *Node) UID() string {
	return n.uid.get(func() string {
		termUID := ""
		if n.term != nil {
			termUID = n.term.UID()
		}
		return hashUID("N:" + n.typ.UID() + ":" + termUID)
	})
}

// Type returns the node's type.
func (n *Node) Type() typing.Type { return n.typ }

// Term returns the node's term, or nil.
func (n *Node) Term() typing.Term { return n.term }

// Properties returns the node's property map. The map is shared with the
// graph; mutations are visible to other readers.
func (n *Node) Properties() *props.Map { return n.props }

// Clone returns an independent node with a deep-copied property map and a
// fresh UID cache.
func (n *Node) Clone() *Node {
	return &Node{typ: n.typ, term: n.term, props: n.props.Clone()}
}

func (n *Node) String() string {
	if n.term != nil {
		return fmt.Sprintf("Node(%s: %s)", n.term, n.typ)
	}
	return fmt.Sprintf("Node(%s)", n.typ)
}
