package filesystem

import "github.com/brettbedarf/dirtree"

// NodeContext wraps a [Node] while the owning FileSystem's read lock is held.
// Calling NodeContext.Close() unwinds all unlocking/cleanup callbacks in reverse order.
// Do NOT call FileSystem methods from the same goroutine while this context
// is active; use only the snapshot helpers below.
//
// NOTE: NodeContext itself is **not** thread-safe meaning references
// to it should not be shared between goroutines
type NodeContext struct {
	node     *Node
	closeFns []func()
}

// ID returns the node's registry ID
func (ctx *NodeContext) ID() uint64 {
	return ctx.node.id
}

// Name returns the node's name
func (ctx *NodeContext) Name() string {
	return ctx.node.name
}

// Entry returns a snapshot of the node
func (ctx *NodeContext) Entry() dirtree.Entry {
	return ctx.node.entry()
}

// Children returns snapshots of the node's children in insertion order
func (ctx *NodeContext) Children() []dirtree.Entry {
	return childEntries(ctx.node)
}

// Child returns a snapshot of the named child
func (ctx *NodeContext) Child(name string) (dirtree.Entry, bool) {
	child, ok := ctx.node.GetChild(name)
	if !ok {
		return dirtree.Entry{}, false
	}
	return child.entry(), true
}

// AddClose pushes a cleanup callback (e.g., unlock) onto the end of the stack.
func (ctx *NodeContext) AddClose(fn func()) {
	ctx.closeFns = append(ctx.closeFns, fn)
}

// Close unwinds all cleanup callbacks in reverse order.
// Safe to call even if ctx is nil or no locks were acquired; it is
// a no-op in those cases, so you can `defer ctx.Close()` unconditionally.
// Make sure to call this when you're done with the context!
//
// Example:
//
//	ctx := fs.GetNodeCtx(id)
//	defer ctx.Close()
func (ctx *NodeContext) Close() {
	if ctx == nil {
		return
	}
	for i := len(ctx.closeFns) - 1; i >= 0; i-- {
		ctx.closeFns[i]()
	}
	ctx.closeFns = nil
}
