//nolint:varnamelen // Test files use idiomatic short variable names (t, g, etc.)
package fileops_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/dual-pane/pkg/fileops"
	"github.com/joe/dual-pane/pkg/filesystem"
)

type progressCall struct {
	transferred int64
	total       int64
}

func TestNewFileOps_BlockSizeDefaults(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()

	g.Expect(fileops.BlockSize).To(Equal(1024 * 1024))
	g.Expect(fileops.NewFileOps(fs, 0).BlockSize).To(Equal(fileops.BlockSize))
	g.Expect(fileops.NewFileOps(fs, 10).BlockSize).To(Equal(fileops.MinBlockSize))
	g.Expect(fileops.NewFileOps(fs, 64*1024).BlockSize).To(Equal(64 * 1024))
}

func TestCopyFile_RealFileSystem(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "source.bin")
	dst := filepath.Join(dir, "nested", "deeper", "dest.bin")

	content := bytes.Repeat([]byte("0123456789"), 1000)
	g.Expect(os.WriteFile(src, content, 0o640)).To(Succeed())

	modTime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	g.Expect(os.Chtimes(src, modTime, modTime)).To(Succeed())

	var calls []progressCall

	ops := fileops.NewFileOps(filesystem.NewRealFileSystem(), fileops.MinBlockSize)
	stats, err := ops.CopyFile(src, dst, func(transferred, total int64, _ string) {
		calls = append(calls, progressCall{transferred, total})
	}, nil)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(stats.BytesCopied).To(Equal(int64(len(content))))
	g.Expect(stats.MetadataErr).ShouldNot(HaveOccurred())

	copied, err := os.ReadFile(dst)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(copied).To(Equal(content))

	info, err := os.Stat(dst)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(info.ModTime().Equal(modTime)).To(BeTrue())
	g.Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o640)))

	// 10000 bytes in 4 KiB blocks: 4096, 8192, 10000
	g.Expect(calls).To(Equal([]progressCall{
		{4096, 10000},
		{8192, 10000},
		{10000, 10000},
	}))
}

func TestCopyFile_ZeroLengthReportsOnce(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/src/empty", nil, time.Now())

	var calls []progressCall

	stats, err := fileops.NewFileOps(fs, 0).CopyFile("/src/empty", "/dst/empty", func(transferred, total int64, _ string) {
		calls = append(calls, progressCall{transferred, total})
	}, nil)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(stats.BytesCopied).To(BeZero())
	g.Expect(calls).To(Equal([]progressCall{{0, 0}}))

	data, _, err := fs.GetFile("/dst/empty")
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(data).To(BeEmpty())
}

func TestCopyFile_MissingSourceIdentifiesPath(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()

	_, err := fileops.NewFileOps(fs, 0).CopyFile("/src/gone.txt", "/dst/gone.txt", nil, nil)

	var copyErr *fileops.CopyError
	g.Expect(errors.As(err, &copyErr)).To(BeTrue())
	g.Expect(copyErr.Op).To(Equal("open"))
	g.Expect(copyErr.Path).To(Equal("/src/gone.txt"))
	g.Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
	g.Expect(fs.Exists("/dst/gone.txt")).To(BeFalse())
}

func TestCopyFile_WriteFailureLeavesPartialDestination(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/src/a.txt", []byte("hello"), time.Now())
	fs.AddDir("/dst", time.Now())

	diskFull := errors.New("no space left on device")
	fs.Fail(filesystem.OpWrite, "/dst/a.txt", diskFull)

	_, err := fileops.NewFileOps(fs, 0).CopyFile("/src/a.txt", "/dst/a.txt", nil, nil)

	var copyErr *fileops.CopyError
	g.Expect(errors.As(err, &copyErr)).To(BeTrue())
	g.Expect(copyErr.Op).To(Equal("write"))
	g.Expect(copyErr.Path).To(Equal("/dst/a.txt"))
	g.Expect(errors.Is(err, diskFull)).To(BeTrue())
	g.Expect(fs.Exists("/dst/a.txt")).To(BeTrue(), "no rollback of the partial destination")
}

func TestCopyFile_MetadataFailureIsNotACopyFailure(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/src/a.txt", []byte("hello"), time.Now())
	fs.AddDir("/dst", time.Now())
	fs.Fail(filesystem.OpChtimes, "/dst/a.txt", errors.New("operation not permitted"))

	stats, err := fileops.NewFileOps(fs, 0).CopyFile("/src/a.txt", "/dst/a.txt", nil, nil)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(stats.MetadataErr).To(HaveOccurred())

	data, _, err := fs.GetFile("/dst/a.txt")
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(string(data)).To(Equal("hello"))
}

func TestCopyFile_RefusesSameFile(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	g.Expect(os.WriteFile(src, []byte("keep me"), 0o600)).To(Succeed())

	_, err := fileops.NewRealFileOps().CopyFile(src, filepath.Join(dir, ".", "a.txt"), nil, nil)
	g.Expect(errors.Is(err, fileops.ErrSameFile)).To(BeTrue())

	link := filepath.Join(dir, "b.txt")
	g.Expect(os.Link(src, link)).To(Succeed())

	_, err = fileops.NewRealFileOps().CopyFile(src, link, nil, nil)
	g.Expect(errors.Is(err, fileops.ErrSameFile)).To(BeTrue())

	content, err := os.ReadFile(src)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(string(content)).To(Equal("keep me"))
}

func TestCopyFile_ReadOnlySourceCopiesTwice(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "readonly.txt")
	dst := filepath.Join(dir, "out", "readonly.txt")
	ops := fileops.NewRealFileOps()

	for _, content := range []string{"first", "second"} {
		g.Expect(os.WriteFile(src, []byte(content), 0o600)).To(Succeed())
		g.Expect(os.Chmod(src, 0o444)).To(Succeed())

		_, err := ops.CopyFile(src, dst, nil, nil)
		g.Expect(err).ShouldNot(HaveOccurred(), content)

		copied, err := os.ReadFile(dst)
		g.Expect(err).ShouldNot(HaveOccurred())
		g.Expect(string(copied)).To(Equal(content))

		info, err := os.Stat(dst)
		g.Expect(err).ShouldNot(HaveOccurred())
		g.Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o444)))

		g.Expect(os.Chmod(src, 0o600)).To(Succeed())
	}
}

func TestCopyFile_Cancelled(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/src/a.txt", []byte("hello"), time.Now())

	cancelChan := make(chan struct{})
	close(cancelChan)

	_, err := fileops.NewFileOps(fs, 0).CopyFile("/src/a.txt", "/dst/a.txt", nil, cancelChan)
	g.Expect(errors.Is(err, fileops.ErrCopyCancelled)).To(BeTrue())
	g.Expect(fs.Exists("/dst/a.txt")).To(BeFalse())
}

func TestCopyFile_RejectsDirectorySource(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := t.TempDir()

	_, err := fileops.NewRealFileOps().CopyFile(dir, filepath.Join(t.TempDir(), "x"), nil, nil)
	g.Expect(err).To(HaveOccurred())
}

func TestRemove(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/a.txt", []byte("a"), time.Now())

	ops := fileops.NewFileOps(fs, 0)
	g.Expect(ops.Remove("/a.txt")).To(Succeed())
	g.Expect(fs.Exists("/a.txt")).To(BeFalse())
	g.Expect(ops.Remove("/a.txt")).ToNot(Succeed())
}
