package filesystem

import (
	"fmt"
	"strings"

	"github.com/brettbedarf/dirtree"
)

// Node is one named directory in the tree.
//
// A Node owns its children; parent is a non-owning back reference used to
// detach the node during move and delete. Node does no locking of its own:
// [FileSystem] serializes every access to the tree.
type Node struct {
	name     string  // Name of the node (last part of the path); "" for root
	id       uint64  // Registry ID assigned by the FileSystem
	parent   *Node   // nil for root and detached nodes
	children []*Node // insertion order
}

// NewNode creates a detached Node.
//
// NOTE: Parent node is responsible for adding itself to the returned Node's
// parent ref when linking as its child
func NewNode(id uint64, name string) *Node {
	return &Node{
		id:   id,
		name: name,
	}
}

// ID returns the registry ID of the node
func (n *Node) ID() uint64 {
	return n.id
}

// Name returns the node's name
func (n *Node) Name() string {
	return n.name
}

// Parent returns the owning node, or nil for root and detached nodes
func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) IsRoot() bool {
	// cover detached nodes
	return n.parent == nil && n.id == RootID
}

// Children returns the child nodes in insertion order in a new slice
func (n *Node) Children() []*Node {
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	return children
}

// Len returns the number of direct children
func (n *Node) Len() int {
	return len(n.children)
}

// AddChild appends child to the node's children and sets the child's parent
// to this node. No uniqueness check is done here; the FileSystem never links
// two children with the same name.
func (n *Node) AddChild(child *Node) {
	n.children = append(n.children, child)
	child.parent = n
}

// GetChild returns the first child with exactly the given name
func (n *Node) GetChild(name string) (child *Node, ok bool) {
	for _, c := range n.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// RemoveChild detaches child by identity. Returns false if child is not one
// of this node's children.
func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Contains reports whether other is n itself or one of n's descendants
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}

// Path returns the path of the node relative from root.
// If the node is the root, returns ""
//
// Returns an error if the node or an ancestor is detached, along with the
// path up to the detached node
func (n *Node) Path() (string, error) {
	if n.IsRoot() {
		return "", nil
	}
	p := n.parent
	// handle detached node
	if p == nil {
		return n.name, fmt.Errorf("detached node: %s", n.name)
	}

	pPath, err := p.Path()
	if pPath == "" {
		// relative from root
		return pPath + n.name, err
	}
	return pPath + "/" + n.name, err
}

// Render returns this node's line followed by the lines of its subtree.
// Each line is prefixed with indent repeated once per depth level, starting
// at depth.
func (n *Node) Render(depth int, indent string) string {
	var b strings.Builder
	n.writeTo(&b, depth, indent)
	return b.String()
}

func (n *Node) writeTo(b *strings.Builder, depth int, indent string) {
	b.WriteString(strings.Repeat(indent, depth))
	b.WriteString(n.name)
	b.WriteByte('\n')
	for _, c := range n.children {
		c.writeTo(b, depth+1, indent)
	}
}

// walk calls fn on n and every descendant, parents before children
func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}

// entry snapshots the node. Path errors for detached nodes are ignored and
// the partial path is kept.
func (n *Node) entry() dirtree.Entry {
	path, _ := n.Path()
	return dirtree.Entry{
		ID:       n.id,
		Name:     n.name,
		Path:     path,
		Children: len(n.children),
	}
}
