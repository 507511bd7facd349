// Package api exposes a [dirtree.FileSystemOperator] over HTTP.
package api

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/brettbedarf/dirtree"
	"github.com/labstack/echo/v4"
)

// Handler contains the HTTP handlers for the directory API.
type Handler struct {
	fs dirtree.FileSystemOperator
}

// NewHandler creates a new handler serving fs.
func NewHandler(fs dirtree.FileSystemOperator) *Handler {
	return &Handler{fs: fs}
}

// CreateRequest is the body of POST /api/dirs
type CreateRequest struct {
	Path string `json:"path"`
}

// MoveRequest is the body of POST /api/move
type MoveRequest struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

// DirResponse is a directory snapshot together with its children
type DirResponse struct {
	dirtree.Entry
	Entries []dirtree.Entry `json:"entries"`
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "healthy"})
}

// HandleTree handles GET /api/tree.
// Returns the same indented listing as the LIST command.
func (h *Handler) HandleTree(c echo.Context) error {
	return c.String(http.StatusOK, h.fs.ListDirectories())
}

// HandleStat handles GET /api/dirs?path=.
// An empty path addresses root.
func (h *Handler) HandleStat(c echo.Context) error {
	return h.respondDir(c, http.StatusOK, c.QueryParam("path"))
}

// HandleCreate handles POST /api/dirs.
// Creates every missing segment and returns the leaf.
func (h *Handler) HandleCreate(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if isRootPath(req.Path) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "path is required"})
	}

	h.fs.CreateDirectory(req.Path)
	return h.respondDir(c, http.StatusCreated, req.Path)
}

// HandleMove handles POST /api/move.
// Returns the moved directory at its new location.
func (h *Handler) HandleMove(c echo.Context) error {
	var req MoveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Source == "" || req.Dest == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "source and dest are required"})
	}

	if err := h.fs.MoveDirectory(req.Source, req.Dest); err != nil {
		return mapError(c, err)
	}
	moved := path.Join(req.Dest, path.Base(strings.TrimRight(req.Source, "/")))
	return h.respondDir(c, http.StatusOK, moved)
}

// HandleDelete handles DELETE /api/dirs?path=.
func (h *Handler) HandleDelete(c echo.Context) error {
	p := c.QueryParam("path")
	if isRootPath(p) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "path is required"})
	}
	if !h.fs.DeleteDirectory(p) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "directory not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) respondDir(c echo.Context, status int, p string) error {
	entry, err := h.fs.Stat(p)
	if err != nil {
		return mapError(c, err)
	}
	children, err := h.fs.ReadDir(p)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(status, DirResponse{Entry: entry, Entries: children})
}

// mapError translates manager errors into HTTP responses.
func mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, dirtree.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, dirtree.ErrMoveRoot),
		errors.Is(err, dirtree.ErrMoveIntoDescendant),
		errors.Is(err, dirtree.ErrNameConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, dirtree.ErrInvalidCommand):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}

func isRootPath(p string) bool {
	return strings.Trim(p, "/") == ""
}
