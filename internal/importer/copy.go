// internal/importer/copy.go
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// maxNameAttempts bounds the numeric suffixes tried by claimFile.
const maxNameAttempts = 1000

var videoExts = map[string]bool{
	".mp4": true, ".m4v": true, ".mov": true, ".webm": true, ".mkv": true, ".3gp": true,
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true, ".heic": true,
}

// IsVideoFile reports whether name has a video extension.
func IsVideoFile(name string) bool {
	return videoExts[strings.ToLower(filepath.Ext(name))]
}

// IsImageFile reports whether name has an image extension.
func IsImageFile(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// CopyFile copies a file from src to dst.
// Creates destination directory if it doesn't exist.
// Returns ErrDestinationExists if dst already exists.
func CopyFile(ctx context.Context, src, dst string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, fmt.Errorf("%w: create directory: %v", ErrCopyFailed, err)
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, os.ErrExist) {
		return 0, ErrDestinationExists
	}
	if err != nil {
		return 0, fmt.Errorf("%w: create destination: %v", ErrCopyFailed, err)
	}

	size, err := copyInto(ctx, dstFile, src)
	if err != nil {
		_ = os.Remove(dst)
		return 0, err
	}
	return size, nil
}

// claimFile copies src into dir under name, or under name_2, name_3, ...
// when earlier candidates exist. Existing files are never overwritten.
func claimFile(ctx context.Context, src, dir, name string) (string, int64, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for n := 1; n <= maxNameAttempts; n++ {
		candidate := name
		if n > 1 {
			candidate = stem + "_" + strconv.Itoa(n) + ext
		}
		dst := filepath.Join(dir, candidate)

		size, err := CopyFile(ctx, src, dst)
		if errors.Is(err, ErrDestinationExists) {
			continue
		}
		if err != nil {
			return "", 0, err
		}
		return dst, size, nil
	}
	return "", 0, fmt.Errorf("%w for %s in %s", ErrNoFreeName, name, dir)
}

func copyInto(ctx context.Context, dstFile *os.File, src string) (int64, error) {
	defer func() { _ = dstFile.Close() }()

	srcFile, err := os.Open(src)
	if errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("%w: %s", ErrSourceMissing, src)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: open source: %v", ErrCopyFailed, err)
	}
	defer func() { _ = srcFile.Close() }()

	size, err := io.Copy(dstFile, ctxReader{ctx: ctx, r: srcFile})
	if err != nil {
		return 0, fmt.Errorf("%w: copy content: %v", ErrCopyFailed, err)
	}

	if err := dstFile.Sync(); err != nil {
		return 0, fmt.Errorf("%w: sync: %v", ErrCopyFailed, err)
	}
	return size, nil
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
