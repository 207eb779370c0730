package domain

// NodeKind distinguishes file-system paths from virtual ordering points.
type NodeKind uint8

const (
	// NodeKindPath is an absolute file-system path.
	NodeKindPath NodeKind = iota
	// NodeKindVirtual is a named synchronization point with no file behind it.
	NodeKindVirtual
)

// Node is an input or output of a task. Nodes are interned by a BuildPlan, so two
// requests for the same identity yield the same *Node.
type Node struct {
	kind NodeKind
	name InternedString
}

type nodeKey struct {
	kind NodeKind
	name InternedString
}

// Kind returns the node kind.
func (n *Node) Kind() NodeKind {
	return n.kind
}

// Name returns the path or virtual name of the node.
func (n *Node) Name() string {
	return n.name.String()
}

// IsVirtual reports whether the node is a virtual ordering point.
func (n *Node) IsVirtual() bool {
	return n.kind == NodeKindVirtual
}

// String renders virtual nodes in angle brackets and paths as-is.
func (n *Node) String() string {
	if n.kind == NodeKindVirtual {
		return "<" + n.name.String() + ">"
	}
	return n.name.String()
}
