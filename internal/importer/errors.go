// internal/importer/errors.go
package importer

import "errors"

var (
	// ErrSourceMissing indicates the file to import does not exist.
	ErrSourceMissing = errors.New("source file not found")

	// ErrCopyFailed indicates the file copy operation failed.
	ErrCopyFailed = errors.New("failed to copy file")

	// ErrDestinationExists indicates the destination file already exists.
	ErrDestinationExists = errors.New("destination file already exists")

	// ErrPathTraversal indicates a path traversal attack was detected.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrUnsupportedMedia indicates the file is neither a video nor an image.
	ErrUnsupportedMedia = errors.New("unsupported media type")

	// ErrNoFreeName indicates every candidate filename was taken.
	ErrNoFreeName = errors.New("no free filename")
)
