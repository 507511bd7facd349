// Package dirtree contains core domain types and interfaces for an in-memory
// namespace of named directories addressed by slash-delimited paths.
package dirtree

// Manager defines the operations over the directory namespace.
//
// Failure signaling is deliberately asymmetric: create never fails, delete is
// best-effort and only reports whether anything was removed, and move returns
// an error when its source does not resolve.
type Manager interface {
	// CreateDirectory ensures every segment of path exists ("mkdir -p")
	CreateDirectory(path string)

	// MoveDirectory re-parents the directory at source under dest, creating
	// any missing segments of dest
	MoveDirectory(source, dest string) error

	// DeleteDirectory detaches the directory at path along with its subtree.
	// Returns false when path does not resolve; the miss is logged, not returned.
	DeleteDirectory(path string) bool

	// ListDirectories renders the tree as indented text in insertion order
	ListDirectories() string
}

// FileSystemOperator is the Manager plus the read-only lookups that the
// outer surfaces (HTTP, FUSE) need
type FileSystemOperator interface {
	Manager

	// Stat returns a snapshot of the directory at path
	Stat(path string) (Entry, error)

	// ReadDir returns snapshots of the children of path in insertion order
	ReadDir(path string) ([]Entry, error)
}

// Entry is a point-in-time snapshot of a directory node
type Entry struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`     // "" for root
	Children int    `json:"children"` // number of direct children
}
