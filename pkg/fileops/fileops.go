// Package fileops copies single files in fixed-size blocks with progress reporting.
package fileops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joe/dual-pane/pkg/filesystem"
)

// Exported constants.
const (
	// BlockSize is the default size of each read/write block (1 MiB)
	BlockSize = 1024 * 1024
	// MinBlockSize is the smallest block size accepted by NewFileOps (4 KiB)
	MinBlockSize = 4 * 1024
	// DefaultDirPermissions is the permission mode for created directories
	DefaultDirPermissions = 0o750
)

// Exported variables.
var (
	ErrCopyCancelled = errors.New("copy cancelled")
	ErrNotRegular    = errors.New("not a regular file")
	ErrSameFile      = errors.New("source and destination are the same file")
)

// CopyError identifies the path and step at which a copy failed.
type CopyError struct {
	Op   string // "open", "stat", "mkdir", "create", "read", "write", "close"
	Path string
	Err  error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// FailedPath returns the path the failing step was working on.
func (e *CopyError) FailedPath() string {
	return e.Path
}

// CopyStats contains timing information about a copy operation
type CopyStats struct {
	BytesCopied int64
	ReadTime    time.Duration
	WriteTime   time.Duration
	// MetadataErr records a failure to carry over mtime or permission bits.
	// It never fails the copy.
	MetadataErr error
}

// FileOps copies files through a FileSystem so tests can run without disk I/O.
type FileOps struct {
	FS        filesystem.FileSystem
	BlockSize int
}

// NewFileOps creates a FileOps over fs. blockSize <= 0 selects BlockSize;
// values below MinBlockSize are raised to it.
func NewFileOps(fs filesystem.FileSystem, blockSize int) *FileOps {
	switch {
	case blockSize <= 0:
		blockSize = BlockSize
	case blockSize < MinBlockSize:
		blockSize = MinBlockSize
	}

	return &FileOps{FS: fs, BlockSize: blockSize}
}

// NewRealFileOps creates a FileOps over the real filesystem with the default block size.
func NewRealFileOps() *FileOps {
	return NewFileOps(filesystem.NewRealFileSystem(), BlockSize)
}

// ProgressCallback is called after each block with the bytes written so far
// for the current file and the file's size at open time.
type ProgressCallback func(bytesTransferred int64, totalBytes int64, currentFile string)

// CopyFile copies exactly one regular file from src to dst, creating dst's
// parent directories first. progress is called after every block; a
// zero-length source reports (0, 0) once. If cancelChan is closed between
// blocks the copy stops with ErrCopyCancelled.
//
// On failure the partially written destination is left in place.
//
//nolint:funlen // Linear open/stat/create/copy/finalize sequence
func (fo *FileOps) CopyFile(src, dst string, progress ProgressCallback, cancelChan <-chan struct{}) (*CopyStats, error) {
	stats := &CopyStats{}

	err := checkCancellation(cancelChan)
	if err != nil {
		return stats, err
	}

	sourceFile, err := fo.FS.Open(src)
	if err != nil {
		return stats, &CopyError{Op: "open", Path: src, Err: err}
	}

	defer func() {
		_ = sourceFile.Close()
	}()

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return stats, &CopyError{Op: "stat", Path: src, Err: err}
	}

	if !sourceInfo.Mode().IsRegular() {
		return stats, &CopyError{Op: "open", Path: src, Err: ErrNotRegular}
	}

	if fo.sameFile(src, dst, sourceInfo) {
		return stats, &CopyError{Op: "create", Path: dst, Err: ErrSameFile}
	}

	dstDir := filepath.Dir(dst)

	err = fo.FS.MkdirAll(dstDir, DefaultDirPermissions)
	if err != nil {
		return stats, &CopyError{Op: "mkdir", Path: dstDir, Err: err}
	}

	destFile, err := fo.createDestination(dst)
	if err != nil {
		return stats, &CopyError{Op: "create", Path: dst, Err: err}
	}

	written, err := fo.copyLoop(sourceFile, destFile, stats, sourceInfo.Size(), src, dst, progress, cancelChan)
	stats.BytesCopied = written

	if err != nil {
		_ = destFile.Close()
		return stats, err
	}

	if written == 0 && progress != nil {
		progress(0, 0, src)
	}

	// Close before touching metadata; some filesystems reset mtime on close.
	err = destFile.Close()
	if err != nil {
		return stats, &CopyError{Op: "close", Path: dst, Err: err}
	}

	stats.MetadataErr = fo.preserveMetadata(dst, sourceInfo)

	return stats, nil
}

// Remove removes a file.
func (fo *FileOps) Remove(path string) error {
	err := fo.FS.Remove(path)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	return nil
}

// checkCancellation checks if the copy operation has been cancelled.
func checkCancellation(cancelChan <-chan struct{}) error {
	if cancelChan == nil {
		return nil
	}

	select {
	case <-cancelChan:
		return ErrCopyCancelled
	default:
		return nil
	}
}

// copyLoop streams source into dest one block at a time.
//
//nolint:lll // Long function signature with many parameters including channel
func (fo *FileOps) copyLoop(sourceFile, destFile filesystem.File, stats *CopyStats, sourceSize int64, srcPath, dstPath string, progress ProgressCallback, cancelChan <-chan struct{}) (int64, error) {
	var written int64

	buf := make([]byte, fo.BlockSize)

	for {
		err := checkCancellation(cancelChan)
		if err != nil {
			return written, err
		}

		readStart := time.Now()
		nr, readErr := io.ReadFull(sourceFile, buf) //nolint:varnamelen // nr is idiomatic for bytes read
		stats.ReadTime += time.Since(readStart)

		if nr > 0 {
			writeStart := time.Now()
			nw, err := destFile.Write(buf[:nr]) //nolint:varnamelen // nw is idiomatic for bytes written
			stats.WriteTime += time.Since(writeStart)

			if err != nil {
				return written, &CopyError{Op: "write", Path: dstPath, Err: err}
			}

			if nr != nw {
				return written, &CopyError{Op: "write", Path: dstPath, Err: io.ErrShortWrite}
			}

			written += int64(nw)

			if progress != nil {
				progress(written, sourceSize, srcPath)
			}
		}

		if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
			return written, nil
		}

		if readErr != nil {
			return written, &CopyError{Op: "read", Path: srcPath, Err: readErr}
		}
	}
}

// createDestination truncates or creates dst. An existing regular file that
// refuses writes, such as an earlier copy of a read-only source, is removed
// and created again.
func (fo *FileOps) createDestination(dst string) (filesystem.File, error) {
	file, err := fo.FS.Create(dst)
	if err == nil || !errors.Is(err, os.ErrPermission) {
		return file, err
	}

	info, statErr := fo.FS.Lstat(dst)
	if statErr != nil || !info.Mode().IsRegular() {
		return nil, err
	}

	removeErr := fo.FS.Remove(dst)
	if removeErr != nil {
		return nil, errors.Join(err, removeErr)
	}

	return fo.FS.Create(dst)
}

// preserveMetadata copies permission bits and modification time to dst.
func (fo *FileOps) preserveMetadata(dst string, sourceInfo os.FileInfo) error {
	chmodErr := fo.FS.Chmod(dst, sourceInfo.Mode().Perm())
	chtimesErr := fo.FS.Chtimes(dst, sourceInfo.ModTime(), sourceInfo.ModTime())

	return errors.Join(chmodErr, chtimesErr)
}

// sameFile reports whether writing dst would overwrite src itself.
func (fo *FileOps) sameFile(src, dst string, sourceInfo os.FileInfo) bool {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return true
	}

	destInfo, err := fo.FS.Stat(dst)
	if err != nil {
		return false
	}

	return os.SameFile(sourceInfo, destInfo)
}
