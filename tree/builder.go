package tree

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrMalformedPath is returned for empty paths, unparsable arcs, and
	// paths outside the requested root.
	ErrMalformedPath = errors.New("malformed OID path")

	// ErrEmptySource is returned when neither MIB symbols nor walk results
	// were provided for the requested root.
	ErrEmptySource = errors.New("no symbols or walk results to convert")
)

// MibRecord is one symbol from the MIB-lookup collaborator.
type MibRecord struct {
	Path        Path
	Name        string
	Syntax      Syntax
	Access      Access
	Description string
	Units       string
	Enum        []EnumValue
	Binary      bool
	Kind        Kind
	RowIndex    []Path // index column paths, set on KindRow records
}

// WalkRecord is one (OID, value) pair from the SNMP-transport collaborator.
// Syntax is derived from the PDU type and only fills nodes the MIB left
// untyped.
type WalkRecord struct {
	Path   Path
	Value  string
	Syntax Syntax
	Binary bool
}

// Tree is the OID tree for one conversion run.
type Tree struct {
	root *Node
	base Path
}

// Base returns the root OID the tree was built under.
func (t *Tree) Base() Path { return t.base }

// Root returns the node at the base OID.
func (t *Tree) Root() *Node {
	node := t.root
	for _, arc := range t.base {
		node = node.Child(arc)
	}
	return node
}

// Node returns the node at the given path, or nil.
func (t *Tree) Node(p Path) *Node {
	node := t.root
	for _, arc := range p {
		if node = node.Child(arc); node == nil {
			return nil
		}
	}
	return node
}

// Walk visits every node at or below the base in depth-first insertion order.
func (t *Tree) Walk(fn func(*Node) bool) {
	if root := t.Root(); root != nil {
		root.Walk(fn)
	}
}

// Build normalizes MIB symbols and walk results into one OID tree rooted at
// base. Records are inserted in ascending path order; ancestors missing from
// the input are created without metadata so the tree has no gaps. When a path
// appears in both sources, MIB fields win for name, syntax, description and
// access, the walk wins for the sample value.
func Build(base Path, mib []MibRecord, walk []WalkRecord) (*Tree, error) {
	if len(mib) == 0 && len(walk) == 0 {
		return nil, fmt.Errorf("%w: root %s", ErrEmptySource, base)
	}

	t := &Tree{root: &Node{}, base: base}
	node := t.root
	for _, arc := range base {
		node = node.getOrCreateChild(arc)
	}

	mib = slices.Clone(mib)
	slices.SortStableFunc(mib, func(a, b MibRecord) int { return a.Path.Compare(b.Path) })
	walk = slices.Clone(walk)
	slices.SortStableFunc(walk, func(a, b WalkRecord) int { return a.Path.Compare(b.Path) })

	for _, rec := range mib {
		node, err := t.insert(rec.Path)
		if err != nil {
			return nil, err
		}
		mergeMib(node, rec)
	}
	for _, rec := range walk {
		node, err := t.insert(rec.Path)
		if err != nil {
			return nil, err
		}
		mergeWalk(node, rec)
	}

	inheritMetadata(t.Root())
	return t, nil
}

func (t *Tree) insert(p Path) (*Node, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrMalformedPath)
	}
	if !p.HasPrefix(t.base) {
		return nil, fmt.Errorf("%w: %s is outside root %s", ErrMalformedPath, p, t.base)
	}
	node := t.root
	for _, arc := range p {
		node = node.getOrCreateChild(arc)
	}
	return node, nil
}

// MIB metadata wins over anything a walk filled in; re-observing the same
// path only fills the fields the record actually carries.
func mergeMib(n *Node, rec MibRecord) {
	if rec.Name != "" {
		n.Name = rec.Name
	}
	if rec.Syntax != SyntaxUnknown {
		n.Syntax = rec.Syntax
	}
	if rec.Access != AccessUnknown {
		n.Access = rec.Access
	}
	if rec.Description != "" {
		n.Description = rec.Description
	}
	if rec.Units != "" {
		n.Units = rec.Units
	}
	if len(rec.Enum) > 0 {
		n.Enum = rec.Enum
	}
	if rec.Binary {
		n.Binary = true
	}
	if rec.Kind != KindNone {
		n.Kind = rec.Kind
	}
	if len(rec.RowIndex) > 0 {
		n.RowIndex = rec.RowIndex
	}
}

func mergeWalk(n *Node, rec WalkRecord) {
	n.Sample = rec.Value
	n.HasSample = true
	if n.Syntax == SyntaxUnknown {
		n.Syntax = rec.Syntax
	}
	if rec.Binary && n.Syntax == SyntaxOctetString {
		n.Binary = true
	}
}

// inheritMetadata pushes a declared scalar's or column's metadata down to its
// instance leaves, so a walk row like sysDescr.0 carries the name and syntax
// the MIB attached one level up.
func inheritMetadata(root *Node) {
	if root == nil {
		return
	}
	root.Walk(func(n *Node) bool {
		if n.Kind != KindScalar && n.Kind != KindColumn {
			return true
		}
		for _, inst := range n.Children() {
			inst.Walk(func(leaf *Node) bool {
				if !leaf.IsLeaf() {
					return true
				}
				if leaf.Name == "" {
					leaf.Name = n.Name
				}
				if leaf.Syntax == SyntaxUnknown {
					leaf.Syntax = n.Syntax
				}
				if leaf.Description == "" {
					leaf.Description = n.Description
				}
				if leaf.Access == AccessUnknown {
					leaf.Access = n.Access
				}
				if leaf.Units == "" {
					leaf.Units = n.Units
				}
				if len(leaf.Enum) == 0 {
					leaf.Enum = n.Enum
				}
				if n.Binary {
					leaf.Binary = true
				}
				return true
			})
		}
		return false
	})
}
