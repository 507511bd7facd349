package filesystem

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/brettbedarf/dirtree"
	"github.com/brettbedarf/dirtree/config"
	"github.com/brettbedarf/dirtree/internal/util"
	"github.com/puzpuzpuz/xsync/v4"
)

// RootID is the registry ID of the root node. It doubles as the FUSE root inode.
const RootID uint64 = 1

// FileSystem owns the directory tree and implements [dirtree.FileSystemOperator].
//
// Every operation runs under mu: mutations take the write lock, queries and
// [NodeContext] views take the read lock. The resolve-then-mutate sequences
// (move in particular) are therefore atomic with respect to other callers.
type FileSystem struct {
	cfg      *config.Config
	root     *Node                     // Root of node tree; never moved or deleted
	lastID   atomic.Uint64             // Last registry ID assigned
	registry *xsync.Map[uint64, *Node] // maps registry IDs to live Nodes
	mu       sync.RWMutex              // Protects the tree shape
}

var _ dirtree.FileSystemOperator = (*FileSystem)(nil)

func NewFS(cfg *config.Config) *FileSystem {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	rootNode := NewNode(RootID, "")

	fs := FileSystem{cfg: cfg, root: rootNode}
	fs.lastID.Store(RootID)
	fs.registry = xsync.NewMap[uint64, *Node]()
	fs.registry.Store(RootID, rootNode)
	return &fs
}

// CreateDirectory walks path from root and creates every missing segment.
// It is equivalent to calling `mkdir -p` from a shell: existing directories
// are reused and an existing leaf is not an error.
func (fs *FileSystem) CreateDirectory(path string) {
	logger := util.GetLogger("FS.CreateDirectory")

	fs.mu.Lock()
	defer fs.mu.Unlock()

	_, newCnt := fs.resolveOrCreateLocked(path)
	if newCnt > 0 {
		logger.Info().Str("path", path).Int("created", newCnt).Msg("Created new dir(s)")
	} else {
		logger.Debug().Str("path", path).Msg("Directory already exists")
	}
}

// MoveDirectory detaches the directory at source and appends it to the
// children of dest, creating any missing segments of dest first.
//
// Fails without changing the tree when source does not resolve
// ([dirtree.ErrNotFound]), when source is root ([dirtree.ErrMoveRoot]), when
// dest is source itself or inside it ([dirtree.ErrMoveIntoDescendant]), or
// when dest already holds a different directory with source's name
// ([dirtree.ErrNameConflict]). Moving a directory to its current parent is a
// no-op.
func (fs *FileSystem) MoveDirectory(source, dest string) error {
	logger := util.GetLogger("FS.MoveDirectory")

	fs.mu.Lock()
	defer fs.mu.Unlock()

	node, err := fs.resolveLocked(source)
	if err != nil {
		err = fmt.Errorf("cannot move %s: %w", source, err)
		logger.Error().Err(err).Str("source", source).Str("dest", dest).Msg("Failed to move directory")
		return err
	}
	if node.IsRoot() {
		err = fmt.Errorf("cannot move %q: %w", source, dirtree.ErrMoveRoot)
		logger.Error().Err(err).Str("source", source).Str("dest", dest).Msg("Failed to move directory")
		return err
	}
	// Validate against the existing part of dest before creating anything so
	// a rejected move leaves no new directories behind
	if err := fs.checkMoveLocked(node, dest); err != nil {
		err = fmt.Errorf("cannot move %s to %s: %w", source, dest, err)
		logger.Error().Err(err).Str("source", source).Str("dest", dest).Msg("Failed to move directory")
		return err
	}

	destNode, newCnt := fs.resolveOrCreateLocked(dest)
	if destNode == node.parent {
		logger.Debug().Str("source", source).Str("dest", dest).Msg("Directory already in destination")
		return nil
	}
	node.parent.RemoveChild(node)
	destNode.AddChild(node)

	logger.Info().
		Str("source", source).
		Str("dest", dest).
		Int("created", newCnt).
		Msg("Moved directory")
	return nil
}

// checkMoveLocked walks the existing prefix of dest and rejects moves that
// would make node its own ancestor or duplicate a sibling name
func (fs *FileSystem) checkMoveLocked(node *Node, dest string) error {
	cur := fs.root
	complete := true
	for _, name := range splitPath(dest) {
		child, ok := cur.GetChild(name)
		if !ok {
			complete = false
			break
		}
		cur = child
	}
	// Anything created below cur stays inside cur's subtree, so checking the
	// deepest existing node covers the whole destination
	if node.Contains(cur) {
		return dirtree.ErrMoveIntoDescendant
	}
	if complete && cur != node.parent {
		if _, ok := cur.GetChild(node.name); ok {
			return dirtree.ErrNameConflict
		}
	}
	return nil
}

// DeleteDirectory detaches the directory at path and discards its subtree.
//
// Deletion is best-effort: a path that does not resolve, or that resolves to
// root, is logged and reported by returning false. The tree is left unchanged
// in that case.
func (fs *FileSystem) DeleteDirectory(path string) bool {
	logger := util.GetLogger("FS.DeleteDirectory")

	fs.mu.Lock()
	defer fs.mu.Unlock()

	node, err := fs.resolveLocked(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Cannot delete directory")
		return false
	}
	if node.IsRoot() {
		logger.Warn().Str("path", path).Msg("Cannot delete root directory")
		return false
	}

	node.parent.RemoveChild(node)
	delCnt := 0
	node.walk(func(n *Node) {
		fs.registry.Delete(n.id)
		delCnt++
	})
	logger.Info().Str("path", path).Int("deleted", delCnt).Msg("Deleted directory")
	return true
}

// ListDirectories renders the whole tree from root, one directory per line
// in insertion order, with the trailing newline trimmed. The root's empty
// name yields a blank first line, so top-level directories sit one indent
// unit deep and each nested level adds one more.
func (fs *FileSystem) ListDirectories() string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return strings.TrimSuffix(fs.root.Render(0, fs.cfg.Indent), "\n")
}

// Stat returns a snapshot of the directory at path
func (fs *FileSystem) Stat(path string) (dirtree.Entry, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	node, err := fs.resolveLocked(path)
	if err != nil {
		return dirtree.Entry{}, err
	}
	return node.entry(), nil
}

// ReadDir returns snapshots of the children of the directory at path
func (fs *FileSystem) ReadDir(path string) ([]dirtree.Entry, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	node, err := fs.resolveLocked(path)
	if err != nil {
		return nil, err
	}
	return childEntries(node), nil
}

// Len returns the number of live nodes, root included
func (fs *FileSystem) Len() int {
	return fs.registry.Size()
}

/* NodeContext views */

// RootCtx returns a read-locked NodeContext for root.
// Caller is responsible for closing the context when done `defer ctx.Close()`.
func (fs *FileSystem) RootCtx() *NodeContext {
	return fs.GetNodeCtx(RootID)
}

// GetNodeCtx returns a read-locked NodeContext with its Close() wired up.
// If the node does not exist, returns nil
//
// Caller is responsible for closing the context when done `defer ctx.Close()`.
func (fs *FileSystem) GetNodeCtx(id uint64) *NodeContext {
	logger := util.GetLogger("FS.GetNodeCtx")
	logger.Trace().Uint64("id", id).Msg("GetNodeCtx called")

	// unknown IDs are answered from the registry without waiting on writers
	if _, ok := fs.registry.Load(id); !ok {
		logger.Debug().Uint64("id", id).Msg("No node found")
		return nil
	}

	fs.mu.RLock()
	// reload: a writer may have removed it before we got the lock
	node, ok := fs.registry.Load(id)
	if !ok {
		fs.mu.RUnlock()
		logger.Debug().Uint64("id", id).Msg("Node removed before lock")
		return nil
	}
	ctx := &NodeContext{node: node}
	ctx.AddClose(fs.mu.RUnlock)
	return ctx
}

/* path resolution; callers hold mu */

// resolveLocked walks path strictly. Any missing segment aborts the walk
// with a [dirtree.NotFoundError] naming that segment.
func (fs *FileSystem) resolveLocked(path string) (*Node, error) {
	cur := fs.root
	for _, name := range splitPath(path) {
		child, ok := cur.GetChild(name)
		if !ok {
			return nil, &dirtree.NotFoundError{Path: path, Segment: name}
		}
		cur = child
	}
	return cur, nil
}

// resolveOrCreateLocked walks path and creates missing segments in place.
// Returns the leaf and the number of directories created.
func (fs *FileSystem) resolveOrCreateLocked(path string) (*Node, int) {
	cur := fs.root
	newCnt := 0
	for _, name := range splitPath(path) {
		if child, ok := cur.GetChild(name); ok {
			cur = child
			continue
		}
		node := NewNode(fs.lastID.Add(1), name)
		fs.registry.Store(node.id, node)
		cur.AddChild(node)
		newCnt++
		cur = node
	}
	return cur, newCnt
}

// splitPath splits a slash-delimited path into segments, skipping empty ones
// from leading, trailing, or doubled slashes
func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}

func childEntries(n *Node) []dirtree.Entry {
	entries := make([]dirtree.Entry, 0, len(n.children))
	for _, c := range n.children {
		entries = append(entries, c.entry())
	}
	return entries
}
