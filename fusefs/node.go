// Package fusefs serves a read-only FUSE view of a [filesystem.FileSystem].
// Every directory is exposed with its registry ID as the inode number.
package fusefs

import (
	"context"
	"os"
	"syscall"

	"github.com/brettbedarf/dirtree"
	"github.com/brettbedarf/dirtree/filesystem"
	"github.com/brettbedarf/dirtree/internal/util"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// dirMode is the mode reported for every directory. The view is read-only.
const dirMode = fuse.S_IFDIR | 0o555

// dirNode is the FUSE inode for one directory of the tree
type dirNode struct {
	fs.Inode
	tree *filesystem.FileSystem
	id   uint64
}

var (
	_ fs.NodeGetattrer = (*dirNode)(nil)
	_ fs.NodeLookuper  = (*dirNode)(nil)
	_ fs.NodeReaddirer = (*dirNode)(nil)
)

func newDirNode(tree *filesystem.FileSystem, id uint64) *dirNode {
	return &dirNode{tree: tree, id: id}
}

func (n *dirNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	nodeCtx := n.tree.GetNodeCtx(n.id)
	if nodeCtx == nil {
		// deleted while the kernel still held the inode
		return syscall.ENOENT
	}
	defer nodeCtx.Close()

	fillAttr(&out.Attr, nodeCtx.Entry())
	return fs.OK
}

func (n *dirNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	logger := util.GetLogger("Fuse.Lookup")

	nodeCtx := n.tree.GetNodeCtx(n.id)
	if nodeCtx == nil {
		return nil, syscall.ENOENT
	}
	child, ok := nodeCtx.Child(name)
	nodeCtx.Close()
	if !ok {
		logger.Trace().Uint64("parent", n.id).Str("name", name).Msg("No such child")
		return nil, syscall.ENOENT
	}

	fillAttr(&out.Attr, child)
	inode := n.NewInode(ctx, newDirNode(n.tree, child.ID), fs.StableAttr{Mode: fuse.S_IFDIR, Ino: child.ID})
	return inode, fs.OK
}

func (n *dirNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	nodeCtx := n.tree.GetNodeCtx(n.id)
	if nodeCtx == nil {
		return nil, syscall.ENOENT
	}
	defer nodeCtx.Close()

	return fs.NewListDirStream(dirEntries(nodeCtx.Children())), fs.OK
}

// fillAttr sets the directory attributes for e. Link count follows the
// usual convention of two plus one per subdirectory.
func fillAttr(attr *fuse.Attr, e dirtree.Entry) {
	attr.Ino = e.ID
	attr.Mode = dirMode
	attr.Nlink = uint32(2 + e.Children)
	attr.Owner = fuse.Owner{
		Uid: uint32(os.Getuid()),
		Gid: uint32(os.Getgid()),
	}
}

func dirEntries(entries []dirtree.Entry) []fuse.DirEntry {
	out := make([]fuse.DirEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, fuse.DirEntry{
			Name: e.Name,
			Ino:  e.ID,
			Mode: fuse.S_IFDIR,
		})
	}
	return out
}
