package fusefs

import (
	"time"

	"github.com/brettbedarf/dirtree/config"
	"github.com/brettbedarf/dirtree/filesystem"
	"github.com/brettbedarf/dirtree/internal/util"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// Mount mounts a read-only view of tree at mountPoint and starts serving it.
// The returned server is already serving; call Unmount() when done.
func Mount(tree *filesystem.FileSystem, mountPoint string, cfg *config.Config) (*fuse.Server, error) {
	logger := util.GetLogger("Fuse.Mount")
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	opts := newOptions(cfg)
	root := newDirNode(tree, filesystem.RootID)
	srv, err := fs.Mount(mountPoint, root, opts)
	if err != nil {
		logger.Error().Err(err).Str("mountPoint", mountPoint).Msg("Failed to mount")
		return nil, err
	}
	logger.Info().Str("mountPoint", mountPoint).Msg("Mounted")
	return srv, nil
}

func newOptions(cfg *config.Config) *fs.Options {
	stdLogger := util.NewLogLogger("FuseServer", util.TraceLevel)
	return &fs.Options{
		Logger:       stdLogger,
		AttrTimeout:  util.Pointer(seconds(cfg.AttrTimeout)),
		EntryTimeout: util.Pointer(seconds(cfg.EntryTimeout)),
		RootStableAttr: &fs.StableAttr{
			Mode: fuse.S_IFDIR,
			Ino:  filesystem.RootID,
		},
		MountOptions: fuse.MountOptions{
			FsName:  cfg.FsName,
			Name:    cfg.Name,
			Debug:   cfg.Debug,
			Options: []string{"ro"},
			Logger:  stdLogger,
		},
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
