package knowledge

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// LocalContentSource serves file content from the analyzed workspace on
// local disk. All paths are relative to Root; anything escaping it or
// matching an ignore glob is refused.
type LocalContentSource struct {
	Root         string
	IgnoreGlobs  []string
	MaxFileBytes int
}

func NewLocalContentSource(root string, ignoreGlobs []string, maxFileBytes int) *LocalContentSource {
	if maxFileBytes <= 0 {
		maxFileBytes = 256 * 1024
	}
	if len(ignoreGlobs) == 0 {
		ignoreGlobs = []string{"**/.git/**", "**/node_modules/**", "**/vendor/**"}
	}
	return &LocalContentSource{
		Root:         root,
		IgnoreGlobs:  ignoreGlobs,
		MaxFileBytes: maxFileBytes,
	}
}

func (s *LocalContentSource) resolve(path string) (string, error) {
	cleaned := filepath.Clean("/" + path)
	full := filepath.Join(s.Root, cleaned)
	if !strings.HasPrefix(full, filepath.Clean(s.Root)) {
		return "", fmt.Errorf("path escapes workspace root: %s", path)
	}
	return full, nil
}

func (s *LocalContentSource) ignored(relPath string) bool {
	for _, glob := range s.IgnoreGlobs {
		if ok, _ := doublestar.Match(glob, relPath); ok {
			return true
		}
	}
	return false
}

func (s *LocalContentSource) ReadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("failed to read file '%s': %w", path, err)
	}
	if len(data) > s.MaxFileBytes {
		data = data[:s.MaxFileBytes]
	}
	return string(data), nil
}

func (s *LocalContentSource) ListDirectory(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory '%s': %w", path, err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	return names, nil
}

func (s *LocalContentSource) SearchFiles(ctx context.Context, pattern, root string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base, err := s.resolve(root)
	if err != nil {
		return nil, err
	}

	var paths []string
	walkErr := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, relErr := filepath.Rel(s.Root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if s.ignored(rel + "/") {
				return fs.SkipDir
			}
			return nil
		}
		if s.ignored(rel) {
			return nil
		}
		ok, matchErr := doublestar.Match(pattern, rel)
		if matchErr != nil {
			return matchErr
		}
		if !ok {
			// Also match against the bare filename so patterns like
			// "*Service*" work without a ** prefix.
			ok, _ = doublestar.Match(pattern, filepath.Base(rel))
		}
		if ok {
			paths = append(paths, rel)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return paths, nil
}
