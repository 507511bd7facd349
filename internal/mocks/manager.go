package mocks

import (
	"github.com/brettbedarf/dirtree"
	"github.com/stretchr/testify/mock"
)

// MockManager implements dirtree.FileSystemOperator for testing across packages
type MockManager struct {
	mock.Mock
}

func (m *MockManager) CreateDirectory(path string) {
	m.Called(path)
}

func (m *MockManager) MoveDirectory(source, dest string) error {
	args := m.Called(source, dest)
	return args.Error(0)
}

func (m *MockManager) DeleteDirectory(path string) bool {
	args := m.Called(path)
	return args.Bool(0)
}

func (m *MockManager) ListDirectories() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockManager) Stat(path string) (dirtree.Entry, error) {
	args := m.Called(path)

	// Handle function return types (for complex tests)
	if fn, ok := args.Get(0).(func(string) dirtree.Entry); ok {
		return fn(path), args.Error(1)
	}

	if args.Get(0) == nil {
		return dirtree.Entry{}, args.Error(1)
	}
	return args.Get(0).(dirtree.Entry), args.Error(1)
}

func (m *MockManager) ReadDir(path string) ([]dirtree.Entry, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dirtree.Entry), args.Error(1)
}

var _ dirtree.FileSystemOperator = (*MockManager)(nil)
