package permission

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirPlatform treats a gallery root directory as the media library.
// Access exists when the directory is writable.
type DirPlatform struct {
	Root string
}

func (p DirPlatform) Supported() bool {
	return p.Root != ""
}

func (p DirPlatform) Check(ctx context.Context) (bool, error) {
	info, err := os.Stat(p.Root)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%s is not a directory", p.Root)
	}

	f, err := os.CreateTemp(p.Root, ".reelmate-access-*")
	if err != nil {
		return false, nil
	}
	f.Close()
	os.Remove(f.Name())
	return true, nil
}

func (p DirPlatform) Prepare(ctx context.Context) error {
	return os.MkdirAll(filepath.Clean(p.Root), 0755)
}

// AutoPrompter answers every question with a fixed value.
type AutoPrompter bool

func (a AutoPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	return bool(a), nil
}
