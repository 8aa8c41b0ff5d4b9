// Package acquire obtains the dataset file processed by the pipeline. The
// file is downloaded once into a directory and found back by scanning it.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoFile is returned when the directory holds no file with the expected
// extension.
var ErrNoFile = errors.New("no matching file found")

// Downloader causes a single file with extension ext to appear in dir,
// fetched from url.
type Downloader interface {
	Download(ctx context.Context, url, dir, ext string) error
}

// Locate returns the path of the first regular file in dir, in lexical
// order, whose extension is ext (case insensitive).
func Locate(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ext) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: *%s in %s", ErrNoFile, ext, dir)
}

// Acquire returns the path of the dataset file in dir. The download is
// skipped when such a file already exists.
func Acquire(ctx context.Context, d Downloader, url, dir, ext string) (string, error) {
	if p, err := Locate(dir, ext); err == nil {
		log.Printf("Found %s, skipping download", p)
		return p, nil
	}
	if d == nil || url == "" {
		return "", fmt.Errorf("%w: *%s in %s and no source to download from", ErrNoFile, ext, dir)
	}
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", err
	}
	log.Printf("Downloading %s to %s...", url, dir)
	err = d.Download(ctx, url, dir, ext)
	if err != nil {
		return "", fmt.Errorf("download from %s failed: %w", url, err)
	}
	return Locate(dir, ext)
}
