package fusefs

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/brettbedarf/dirtree/config"
	"github.com/brettbedarf/dirtree/filesystem"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirNode_Getattr(t *testing.T) {
	t.Parallel()

	tree := filesystem.NewFS(nil)
	tree.CreateDirectory("a/b")
	tree.CreateDirectory("a/c")
	entry, err := tree.Stat("a")
	require.NoError(t, err)

	var out fuse.AttrOut
	errno := newDirNode(tree, entry.ID).Getattr(context.Background(), nil, &out)

	require.Equal(t, fs.OK, errno)
	assert.Equal(t, entry.ID, out.Ino)
	assert.Equal(t, uint32(fuse.S_IFDIR|0o555), out.Mode)
	assert.Equal(t, uint32(4), out.Nlink)
}

func TestDirNode_Getattr_Deleted(t *testing.T) {
	t.Parallel()

	tree := filesystem.NewFS(nil)
	tree.CreateDirectory("gone")
	entry, err := tree.Stat("gone")
	require.NoError(t, err)
	require.True(t, tree.DeleteDirectory("gone"))

	var out fuse.AttrOut
	errno := newDirNode(tree, entry.ID).Getattr(context.Background(), nil, &out)

	assert.Equal(t, syscall.ENOENT, errno)
}

func TestDirNode_Readdir(t *testing.T) {
	t.Parallel()

	tree := filesystem.NewFS(nil)
	tree.CreateDirectory("fruits")
	tree.CreateDirectory("vegetables")
	tree.CreateDirectory("grains")

	stream, errno := newDirNode(tree, filesystem.RootID).Readdir(context.Background())
	require.Equal(t, fs.OK, errno)

	var names []string
	for stream.HasNext() {
		e, errno := stream.Next()
		require.Equal(t, fs.OK, errno)
		assert.Equal(t, uint32(fuse.S_IFDIR), e.Mode)
		assert.NotZero(t, e.Ino)
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"fruits", "vegetables", "grains"}, names, "insertion order")
}

func TestDirNode_Readdir_Deleted(t *testing.T) {
	t.Parallel()

	tree := filesystem.NewFS(nil)
	_, errno := newDirNode(tree, 999).Readdir(context.Background())

	assert.Equal(t, syscall.ENOENT, errno)
}

func TestNewOptions(t *testing.T) {
	t.Parallel()

	cfg := config.NewDefaultConfig()
	cfg.AttrTimeout = 0.5
	cfg.EntryTimeout = 2
	cfg.Debug = true
	cfg.FsName = "tree"

	opts := newOptions(cfg)

	require.NotNil(t, opts.AttrTimeout)
	require.NotNil(t, opts.EntryTimeout)
	assert.Equal(t, 500*time.Millisecond, *opts.AttrTimeout)
	assert.Equal(t, 2*time.Second, *opts.EntryTimeout)
	assert.Equal(t, filesystem.RootID, opts.RootStableAttr.Ino)
	assert.True(t, opts.Debug)
	assert.Equal(t, "tree", opts.FsName)
	assert.Equal(t, config.DefaultName, opts.Name)
	assert.Contains(t, opts.Options, "ro")
	assert.NotNil(t, opts.Logger)
	assert.NotNil(t, opts.MountOptions.Logger)
}
