package filesystem

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Exported variables.
var (
	ErrIsDirectory = errors.New("is a directory")
	ErrNotEmpty    = errors.New("directory not empty")
)

// MockFileSystem is an in-memory filesystem implementation for testing.
// Faults can be injected per path to exercise failure handling.
type MockFileSystem struct {
	mu     sync.RWMutex
	files  map[string]*mockFile
	faults map[faultKey]error
}

// NewMockFileSystem creates a new in-memory filesystem containing only "/".
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files: map[string]*mockFile{
			"/": {path: "/", isDir: true, perm: 0o755, modTime: time.Now()},
		},
		faults: make(map[faultKey]error),
	}
}

// Operation names a fault injection point.
type Operation string

// Fault injection points.
const (
	OpOpen    Operation = "open"
	OpCreate  Operation = "create"
	OpWrite   Operation = "write"
	OpRemove  Operation = "remove"
	OpReadDir Operation = "readdir"
	OpChtimes Operation = "chtimes"
	OpChmod   Operation = "chmod"
	OpMkdir   Operation = "mkdir"
)

// AddDir adds a directory (and its parents) to the mock filesystem.
func (fs *MockFileSystem) AddDir(path string, modTime time.Time) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path = filepath.Clean(path)
	fs.mkdirAllLocked(path, 0o755)
	fs.files[path].modTime = modTime
}

// AddFile adds a file to the mock filesystem with the given content and modtime.
func (fs *MockFileSystem) AddFile(path string, content []byte, modTime time.Time) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path = filepath.Clean(path)
	fs.mkdirAllLocked(filepath.Dir(path), 0o755)

	fs.files[path] = &mockFile{
		path:    path,
		data:    append([]byte(nil), content...),
		modTime: modTime,
		perm:    0o644,
	}
}

// AddSymlink adds a symbolic link at path pointing to target.
func (fs *MockFileSystem) AddSymlink(path, target string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path = filepath.Clean(path)
	fs.mkdirAllLocked(filepath.Dir(path), 0o755)

	fs.files[path] = &mockFile{
		path:    path,
		target:  filepath.Clean(target),
		modTime: time.Now(),
		perm:    0o777,
	}
}

// Chmod changes the permission bits of a file.
func (fs *MockFileSystem) Chmod(path string, mode os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path = filepath.Clean(path)
	if err := fs.faultLocked(OpChmod, path); err != nil {
		return err
	}

	file, exists := fs.files[path]
	if !exists {
		return pathError("chmod", path, os.ErrNotExist)
	}

	file.perm = mode.Perm()

	return nil
}

// Chtimes changes the access and modification times of a file.
func (fs *MockFileSystem) Chtimes(path string, _, mtime time.Time) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path = filepath.Clean(path)
	if err := fs.faultLocked(OpChtimes, path); err != nil {
		return err
	}

	file, exists := fs.files[path]
	if !exists {
		return pathError("chtimes", path, os.ErrNotExist)
	}

	file.modTime = mtime

	return nil
}

// Create creates a file for writing. Missing parent directories are an error,
// matching os.Create.
func (fs *MockFileSystem) Create(path string) (File, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path = filepath.Clean(path)
	if err := fs.faultLocked(OpCreate, path); err != nil {
		return nil, err
	}

	parent, exists := fs.files[filepath.Dir(path)]
	if !exists || !parent.isDir {
		return nil, pathError("open", path, os.ErrNotExist)
	}

	if existing, ok := fs.files[path]; ok && existing.isDir {
		return nil, pathError("open", path, ErrIsDirectory)
	}

	fs.files[path] = &mockFile{
		path:    path,
		data:    []byte{},
		modTime: time.Now(),
		perm:    0o644,
	}

	return &mockFileHandle{
		fs:       fs,
		path:     path,
		writer:   &bytes.Buffer{},
		writeErr: fs.faults[faultKey{op: OpWrite, path: path}],
	}, nil
}

// Exists checks if a path exists in the mock filesystem.
func (fs *MockFileSystem) Exists(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	_, exists := fs.files[filepath.Clean(path)]

	return exists
}

// Fail makes every subsequent op on path return err. A nil err clears the fault.
func (fs *MockFileSystem) Fail(op Operation, path string, err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	key := faultKey{op: op, path: filepath.Clean(path)}
	if err == nil {
		delete(fs.faults, key)
		return
	}

	fs.faults[key] = err
}

// GetFile retrieves a file's content and modification time.
func (fs *MockFileSystem) GetFile(path string) ([]byte, time.Time, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	file, exists := fs.files[filepath.Clean(path)]
	if !exists {
		return nil, time.Time{}, os.ErrNotExist
	}

	if file.isDir {
		return nil, time.Time{}, ErrIsDirectory
	}

	return append([]byte(nil), file.data...), file.modTime, nil
}

// Join joins path elements.
func (fs *MockFileSystem) Join(elem ...string) string {
	return filepath.Join(elem...)
}

// ListFiles returns all paths in the mock filesystem, sorted.
func (fs *MockFileSystem) ListFiles() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	paths := make([]string, 0, len(fs.files))
	for p := range fs.files {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	return paths
}

// Lstat returns file information without following symbolic links.
func (fs *MockFileSystem) Lstat(path string) (os.FileInfo, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	path = filepath.Clean(path)

	file, exists := fs.files[path]
	if !exists {
		return nil, pathError("lstat", path, os.ErrNotExist)
	}

	return file.info(), nil
}

// MkdirAll creates a directory and all necessary parents.
func (fs *MockFileSystem) MkdirAll(path string, perm os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path = filepath.Clean(path)
	if err := fs.faultLocked(OpMkdir, path); err != nil {
		return err
	}

	for dir := path; dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		if file, exists := fs.files[dir]; exists && !file.isDir {
			return pathError("mkdir", dir, errors.New("not a directory"))
		}
	}

	fs.mkdirAllLocked(path, perm)

	return nil
}

// Open opens a file for reading.
func (fs *MockFileSystem) Open(path string) (File, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	path = filepath.Clean(path)
	if err := fs.faultLocked(OpOpen, path); err != nil {
		return nil, err
	}

	file, exists := fs.resolveLocked(path)
	if !exists {
		return nil, pathError("open", path, os.ErrNotExist)
	}

	if file.isDir {
		return nil, pathError("read", path, ErrIsDirectory)
	}

	return &mockFileHandle{
		fs:     fs,
		path:   file.path,
		reader: bytes.NewReader(append([]byte(nil), file.data...)),
	}, nil
}

// ReadDir returns the entries of a directory sorted by name.
func (fs *MockFileSystem) ReadDir(path string) ([]os.FileInfo, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	path = filepath.Clean(path)
	if err := fs.faultLocked(OpReadDir, path); err != nil {
		return nil, err
	}

	dir, exists := fs.files[path]
	if !exists {
		return nil, pathError("open", path, os.ErrNotExist)
	}

	if !dir.isDir {
		return nil, pathError("readdirent", path, errors.New("not a directory"))
	}

	infos := make([]os.FileInfo, 0)

	for p, file := range fs.files {
		if p != path && filepath.Dir(p) == path {
			infos = append(infos, file.info())
		}
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	return infos, nil
}

// Remove removes a file or empty directory.
func (fs *MockFileSystem) Remove(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path = filepath.Clean(path)
	if err := fs.faultLocked(OpRemove, path); err != nil {
		return err
	}

	file, exists := fs.files[path]
	if !exists {
		return pathError("remove", path, os.ErrNotExist)
	}

	if file.isDir {
		for p := range fs.files {
			if strings.HasPrefix(p, path+"/") {
				return pathError("remove", path, ErrNotEmpty)
			}
		}
	}

	delete(fs.files, path)

	return nil
}

// Stat returns file information, following symbolic links.
func (fs *MockFileSystem) Stat(path string) (os.FileInfo, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	path = filepath.Clean(path)

	file, exists := fs.resolveLocked(path)
	if !exists {
		return nil, pathError("stat", path, os.ErrNotExist)
	}

	return file.info(), nil
}

type faultKey struct {
	op   Operation
	path string
}

// mockFile represents a file, directory or symlink in the mock filesystem.
type mockFile struct {
	path    string
	data    []byte
	modTime time.Time
	isDir   bool
	target  string
	perm    os.FileMode
}

func (f *mockFile) info() *mockFileInfo {
	mode := f.perm
	switch {
	case f.isDir:
		mode |= os.ModeDir
	case f.target != "":
		mode |= os.ModeSymlink
	}

	return &mockFileInfo{
		name:    filepath.Base(f.path),
		size:    int64(len(f.data)),
		modTime: f.modTime,
		mode:    mode,
	}
}

// mockFileHandle implements the File interface for reading/writing.
type mockFileHandle struct {
	fs       *MockFileSystem
	path     string
	reader   *bytes.Reader
	writer   *bytes.Buffer
	writeErr error
	closed   bool
}

func (f *mockFileHandle) Close() error {
	if f.closed {
		return os.ErrClosed
	}

	f.closed = true

	if f.writer != nil {
		f.fs.mu.Lock()
		defer f.fs.mu.Unlock()

		if file, exists := f.fs.files[f.path]; exists {
			file.data = f.writer.Bytes()
		}
	}

	return nil
}

func (f *mockFileHandle) Read(p []byte) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}

	if f.reader == nil {
		return 0, io.EOF
	}

	return f.reader.Read(p) //nolint:wrapcheck // bytes.Reader errors are io.EOF only
}

func (f *mockFileHandle) Stat() (os.FileInfo, error) {
	if f.closed {
		return nil, os.ErrClosed
	}

	return f.fs.Stat(f.path)
}

func (f *mockFileHandle) Write(p []byte) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}

	if f.writeErr != nil {
		return 0, pathError("write", f.path, f.writeErr)
	}

	if f.writer == nil {
		f.writer = &bytes.Buffer{}
	}

	return f.writer.Write(p) //nolint:wrapcheck // bytes.Buffer never fails
}

// mockFileInfo implements os.FileInfo for mock files.
type mockFileInfo struct {
	name    string
	size    int64
	modTime time.Time
	mode    os.FileMode
}

func (fi *mockFileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *mockFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *mockFileInfo) Mode() os.FileMode  { return fi.mode }
func (fi *mockFileInfo) Name() string       { return fi.name }
func (fi *mockFileInfo) Size() int64        { return fi.size }
func (fi *mockFileInfo) Sys() interface{}   { return nil }

func (fs *MockFileSystem) faultLocked(op Operation, path string) error {
	if err, ok := fs.faults[faultKey{op: op, path: path}]; ok {
		return pathError(string(op), path, err)
	}

	return nil
}

// mkdirAllLocked assumes the lock is held and that no path component is a file.
func (fs *MockFileSystem) mkdirAllLocked(path string, perm os.FileMode) {
	if path == "." || path == "/" {
		return
	}

	fs.mkdirAllLocked(filepath.Dir(path), perm)

	if _, exists := fs.files[path]; !exists {
		fs.files[path] = &mockFile{
			path:    path,
			modTime: time.Now(),
			isDir:   true,
			perm:    perm.Perm(),
		}
	}
}

// resolveLocked follows at most one level of symbolic link.
func (fs *MockFileSystem) resolveLocked(path string) (*mockFile, bool) {
	file, exists := fs.files[path]
	if !exists {
		return nil, false
	}

	if file.target != "" {
		file, exists = fs.files[file.target]
	}

	return file, exists
}

func pathError(op, path string, err error) error {
	return fmt.Errorf("%s %s: %w", op, path, err)
}
