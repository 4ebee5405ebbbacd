package metrics

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/maikgreubel/sourcetree/pkg/lang"
)

// defaultMaxFileSize caps file reads when no limit is configured; anything
// larger is treated as unreadable rather than loaded into memory.
const defaultMaxFileSize = 10 << 20 // 10 MB

// DirLister is the default filesystem Lister backed by the OS. It excludes
// directories, symbolic links, VCS metadata and vendored paths, satisfying
// the Lister contract so the aggregator never has to.
type DirLister struct {
	// MaxFileSize caps file reads in bytes. Zero or negative uses the
	// 10 MB default.
	MaxFileSize int64
}

// List returns every regular file under root as a relative slash path.
func (DirLister) List(_ context.Context, root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, root)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotFound, root)
	}

	var paths []string

	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil // Unreadable subtrees are skipped, not fatal.
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}

		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if entry.Name() == ".git" || entry.Name() == ".svn" {
				return filepath.SkipDir
			}

			return nil
		}

		if !entry.Type().IsRegular() {
			return nil // Symlinks and specials are excluded by contract.
		}

		if strings.HasPrefix(rel, ".") || lang.IsVendored(rel) {
			return nil
		}

		paths = append(paths, rel)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return paths, nil
}

// Read returns the content of one listed file.
func (l DirLister) Read(_ context.Context, root, path string) ([]byte, error) {
	full := filepath.Join(root, filepath.FromSlash(path))

	info, err := os.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	limit := l.MaxFileSize
	if limit <= 0 {
		limit = defaultMaxFileSize
	}

	if info.Size() > limit {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrUnreadable, limit)
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	return content, nil
}
