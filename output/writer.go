// Package output provides the destinations stage outputs are written to.
package output

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/m-lab/go/uploader"
)

// minFreeRatio is the fraction of free blocks and inodes required on the
// output filesystem before writing.
const minFreeRatio = 0.01

var errLowDiskSpace = errors.New("not enough free space on the output filesystem")

// GCSWriter provides Write operations to a GCS bucket.
type GCSWriter struct {
	up *uploader.Uploader
}

// NewGCSWriter creates a new GCSWriter from the given uploader.Uploader.
func NewGCSWriter(up *uploader.Uploader) *GCSWriter {
	return &GCSWriter{up: up}
}

// Write creates or replaces the object at path with content.
func (u *GCSWriter) Write(ctx context.Context, path string, content []byte) error {
	_, err := u.up.Upload(ctx, path, content)
	return err
}

// LocalWriter provides Write operations to a local directory. The directory
// itself must exist; directories inside it are created as needed.
type LocalWriter struct {
	dir string
}

// NewLocalWriter creates a new LocalWriter for the given output directory.
func NewLocalWriter(dir string) *LocalWriter {
	return &LocalWriter{dir: dir}
}

// checkFreeSpace fails when the filesystem holding the output directory is
// (almost) out of blocks or inodes.
func (lw *LocalWriter) checkFreeSpace() error {
	stat := syscall.Statfs_t{}
	err := syscall.Statfs(lw.dir, &stat)
	if err != nil {
		return err
	}
	if stat.Blocks > 0 && float64(stat.Bavail)/float64(stat.Blocks) < minFreeRatio {
		return errLowDiskSpace
	}
	if stat.Files > 0 && float64(stat.Ffree)/float64(stat.Files) < minFreeRatio {
		return errLowDiskSpace
	}
	return nil
}

// Write creates the file at path containing content, replacing any existing
// file.
func (lw *LocalWriter) Write(ctx context.Context, path string, content []byte) error {
	info, err := os.Stat(lw.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("output location %s is not a directory", lw.dir)
	}
	if err := lw.checkFreeSpace(); err != nil {
		return err
	}
	p := filepath.Join(lw.dir, path)
	d := filepath.Dir(p) // path may include additional directory elements.
	err = os.MkdirAll(d, os.ModePerm)
	if err != nil {
		return err
	}
	return os.WriteFile(p, content, 0664)
}
