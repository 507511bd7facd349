// Package server composes the directory tree with its outer surfaces: the
// read-only FUSE mount and the HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/brettbedarf/dirtree/api"
	"github.com/brettbedarf/dirtree/config"
	"github.com/brettbedarf/dirtree/filesystem"
	"github.com/brettbedarf/dirtree/fusefs"
	"github.com/brettbedarf/dirtree/internal/util"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/labstack/echo/v4"
)

// DirFS contains the directory tree plus the servers exposing it
type DirFS struct {
	*filesystem.FileSystem
	cfg  *config.Config
	echo *echo.Echo

	mu         sync.Mutex // guards fuseServer
	fuseServer *fuse.Server
}

// New creates a DirFS instance given your config.
func New(cfg *config.Config) *DirFS {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	return &DirFS{
		FileSystem: filesystem.NewFS(cfg),
		cfg:        cfg,
	}
}

// Serve mounts the read-only view at mountPoint and returns once the mount
// is ready.
func (d *DirFS) Serve(mountPoint string) error {
	srv, err := fusefs.Mount(d.FileSystem, mountPoint, d.cfg)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.fuseServer = srv
	d.mu.Unlock()
	return nil
}

// ServeAsync mounts in the background. The returned channel yields the
// result of the mount (nil once it is ready) and is then closed.
func (d *DirFS) ServeAsync(mountPoint string) <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- d.Serve(mountPoint)
		close(done)
	}()

	return done
}

// Wait blocks until the FUSE mount is unmounted. Returns immediately when
// nothing is mounted.
func (d *DirFS) Wait() {
	if srv := d.mounted(); srv != nil {
		srv.Wait()
	}
}

func (d *DirFS) mounted() *fuse.Server {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fuseServer
}

// Handler returns the HTTP handler for the API, creating it on first use
func (d *DirFS) Handler() http.Handler {
	if d.echo == nil {
		d.echo = api.SetupRouter(api.NewHandler(d.FileSystem))
	}
	return d.echo
}

// ListenHTTP starts the HTTP API on addr in the background. The returned
// channel yields the listener's terminal error and is closed afterwards; a
// clean Shutdown yields nothing.
func (d *DirFS) ListenHTTP(addr string) <-chan error {
	logger := util.GetLogger("HTTP")
	d.Handler()
	done := make(chan error, 1)

	go func() {
		defer close(done)
		logger.Info().Str("addr", addr).Msg("HTTP API listening")
		if err := d.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("HTTP API stopped")
			done <- err
		}
	}()

	return done
}

// Unmount cleanly unmounts the filesystem.
func (d *DirFS) Unmount() error {
	srv := d.mounted()
	if srv == nil {
		return nil
	}
	return srv.Unmount()
}

// Shutdown stops the HTTP API and unmounts the filesystem
func (d *DirFS) Shutdown(ctx context.Context) error {
	var errs []error
	if d.echo != nil {
		if err := d.echo.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := d.Unmount(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
