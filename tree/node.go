package tree

// Role is how the table detector classified a node.
type Role int

const (
	RoleNone Role = iota // structural node, or not yet classified
	RoleScalar
	RoleTableRoot
	RoleTableRow
	RoleTableColumn
	RoleIndexColumn
)

func (r Role) String() string {
	switch r {
	case RoleScalar:
		return "scalar"
	case RoleTableRoot:
		return "table-root"
	case RoleTableRow:
		return "table-row"
	case RoleTableColumn:
		return "table-column"
	case RoleIndexColumn:
		return "index-column"
	}
	return "none"
}

// Syntax is the semantic type hint of a node, from MIB metadata when
// available, otherwise from the PDU type observed during a walk.
type Syntax int

const (
	SyntaxUnknown Syntax = iota
	SyntaxInteger
	SyntaxCounter
	SyntaxGauge
	SyntaxUnsigned
	SyntaxTimeTicks
	SyntaxOctetString
	SyntaxBits
	SyntaxIPAddress
	SyntaxEnum
	SyntaxObjectIdentifier
)

// Access is the MAX-ACCESS of a MIB object.
type Access int

const (
	AccessUnknown Access = iota
	AccessNotAccessible
	AccessReadOnly
	AccessReadWrite
)

// Kind is the structural classification declared by MIB metadata.
// Walk-only nodes stay KindNone.
type Kind int

const (
	KindNone Kind = iota
	KindScalar
	KindTable
	KindRow
	KindColumn
)

// Node is one SNMP object in the OID tree. Children are keyed by the next
// arc and kept in insertion order, so a tree built from sorted input
// enumerates in ascending OID order.
type Node struct {
	arc      uint32
	parent   *Node
	children map[uint32]*Node
	order    []uint32

	Name        string
	Syntax      Syntax
	Access      Access
	Description string
	Units       string
	Enum        []EnumValue // value→label pairs when Syntax is SyntaxEnum
	Binary      bool        // octet-string declared or observed non-printable

	Sample    string
	HasSample bool

	Kind     Kind
	RowIndex []Path // declared index column paths, only on KindRow nodes

	Role Role
}

// EnumValue is one value→label pair of an enumerated integer.
type EnumValue struct {
	Value int64
	Label string
}

// Path returns the full numeric OID from the root to this node.
func (n *Node) Path() Path {
	if n == nil || n.parent == nil {
		return nil
	}
	var arcs Path
	for nd := n; nd.parent != nil; nd = nd.parent {
		arcs = append(arcs, nd.arc)
	}
	for i, j := 0, len(arcs)-1; i < j; i, j = i+1, j-1 {
		arcs[i], arcs[j] = arcs[j], arcs[i]
	}
	return arcs
}

// Arc returns the node's numeric arc relative to its parent.
func (n *Node) Arc() uint32 { return n.arc }

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Child returns the child at the given arc, or nil.
func (n *Node) Child(arc uint32) *Node {
	if n.children == nil {
		return nil
	}
	return n.children[arc]
}

// Children returns the direct children in insertion order.
func (n *Node) Children() []*Node {
	if len(n.order) == 0 {
		return nil
	}
	out := make([]*Node, 0, len(n.order))
	for _, arc := range n.order {
		out = append(out, n.children[arc])
	}
	return out
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.order) == 0 }

func (n *Node) getOrCreateChild(arc uint32) *Node {
	if n.children == nil {
		n.children = make(map[uint32]*Node)
	}
	if child, ok := n.children[arc]; ok {
		return child
	}
	child := &Node{arc: arc, parent: n}
	n.children[arc] = child
	n.order = append(n.order, arc)
	return child
}

// Walk visits the node and all descendants in depth-first insertion order.
// Returning false from fn stops descent below that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, arc := range n.order {
		n.children[arc].Walk(fn)
	}
}
