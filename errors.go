package dirtree

import (
	"errors"
	"fmt"
)

// Lookup errors
var (
	// ErrNotFound indicates that a path segment does not resolve to an existing child.
	ErrNotFound = errors.New("directory not found")
)

// Move policy errors
var (
	// ErrMoveRoot indicates an attempt to move the root directory.
	ErrMoveRoot = errors.New("cannot move root directory")

	// ErrMoveIntoDescendant indicates a move whose destination is the source
	// itself or lies inside the source's subtree.
	ErrMoveIntoDescendant = errors.New("cannot move a directory into itself or its descendant")

	// ErrNameConflict indicates the destination already has a child with the
	// source's name.
	ErrNameConflict = errors.New("destination already contains a directory with that name")
)

// Command errors
var (
	// ErrInvalidCommand indicates an unrecognized or malformed command.
	ErrInvalidCommand = errors.New("invalid command")
)

// NotFoundError names the path being resolved and the first segment that
// does not exist
type NotFoundError struct {
	Path    string
	Segment string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cannot find %s - %s does not exist", e.Path, e.Segment)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
