package tree

import "log"

// Classify tags every node in the tree with its role and returns the same
// tree for chaining. Conceptual tables are found either through MIB row
// declarations or, in walk-only data, through repeating sibling structure.
func Classify(t *Tree) *Tree {
	if root := t.Root(); root != nil {
		classify(root)
	}
	return t
}

func classify(n *Node) {
	if n.Kind == KindRow {
		if tagDeclaredRow(n) {
			return
		}
	} else if cols, ok := walkRowColumns(n); ok {
		tagRow(n, cols, nil)
		return
	}
	if n.IsLeaf() {
		n.Role = RoleScalar
		return
	}
	for _, c := range n.Children() {
		classify(c)
	}
}

// tagDeclaredRow handles a MIB-declared row. A declared row stands even with
// a single live instance. When a declared index column cannot be located
// among the row's children the whole subtree is demoted to scalars instead
// of failing the run.
func tagDeclaredRow(n *Node) bool {
	cols := n.Children()
	if len(cols) == 0 {
		log.Printf("row %s has no columns, demoting to scalar", n.Path())
		return false
	}
	var indexes []*Node
	for _, idx := range n.RowIndex {
		var found *Node
		for _, c := range cols {
			if c.Path().Equal(idx) {
				found = c
				break
			}
		}
		if found == nil {
			log.Printf("index column %s of row %s not found, demoting to scalar", idx, n.Path())
			n.RowIndex = nil
			return false
		}
		indexes = append(indexes, found)
	}
	tagRow(n, cols, indexes)
	return true
}

func tagRow(n *Node, cols, indexes []*Node) {
	n.Role = RoleTableRow
	if p := n.Parent(); p != nil {
		p.Role = RoleTableRoot
	}
	for _, c := range cols {
		c.Role = RoleTableColumn
	}
	if len(indexes) == 0 {
		// no declared index list: the first column drives discovery
		indexes = cols[:1]
	}
	for _, c := range indexes {
		c.Role = RoleIndexColumn
	}
}

// walkRowColumns decides whether n looks like a conceptual row in walk-only
// data: at least two non-leaf children that ALL share at least one instance
// suffix, with more than one instance in total. The ".0" suffix is the
// scalar instance convention and never counts as table evidence, so a group
// mixing plain scalars with a nested table (mib-2 system) is not swallowed
// as one row. Ragged rows are allowed; the column set is the union across
// all instances, so a column missing from one instance is treated as
// present but unset.
func walkRowColumns(n *Node) ([]*Node, bool) {
	if n.Kind != KindNone || len(n.order) < 2 {
		return nil, false
	}
	children := n.Children()
	var shared map[string]bool
	union := make(map[string]bool)
	for i, c := range children {
		if c.IsLeaf() {
			return nil, false
		}
		sig := instanceSignature(c)
		delete(sig, "0")
		if len(sig) == 0 {
			return nil, false
		}
		if i == 0 {
			shared = sig
		} else {
			shared = intersect(shared, sig)
		}
		for k := range sig {
			union[k] = true
		}
	}
	// every column must carry a common instance; a lone instance is a
	// scalar group (sysDescr.0 etc.), not a table
	if len(shared) == 0 || len(union) < 2 {
		return nil, false
	}
	return children, true
}

func intersect(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

// instanceSignature is the set of leaf paths below a column, relative to the
// column. Composite indexes keep their full multi-arc form.
func instanceSignature(c *Node) map[string]bool {
	depth := len(c.Path())
	sig := make(map[string]bool)
	c.Walk(func(leaf *Node) bool {
		if leaf.IsLeaf() {
			sig[leaf.Path()[depth:].String()] = true
		}
		return true
	})
	return sig
}
