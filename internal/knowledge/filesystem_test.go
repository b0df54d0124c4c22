package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"internal/order/service.go": "package order",
		"internal/order/handler.go": "package order",
		"vendor/dep/dep.go":         "package dep",
		"README.md":                 "# readme",
	}
	for path, content := range files {
		full := filepath.Join(root, path)
		assert.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		assert.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func TestReadFile(t *testing.T) {
	s := NewLocalContentSource(testWorkspace(t), nil, 0)

	content, err := s.ReadFile(context.Background(), "internal/order/service.go")
	assert.NoError(t, err)
	assert.Equal(t, "package order", content)

	_, err = s.ReadFile(context.Background(), "internal/order/missing.go")
	assert.Error(t, err)
}

func TestReadFileTruncatesAtLimit(t *testing.T) {
	s := NewLocalContentSource(testWorkspace(t), nil, 7)

	content, err := s.ReadFile(context.Background(), "README.md")
	assert.NoError(t, err)
	assert.Equal(t, "# readm", content)
}

func TestReadFileRefusesEscape(t *testing.T) {
	s := NewLocalContentSource(testWorkspace(t), nil, 0)

	content, err := s.ReadFile(context.Background(), "../../etc/passwd")
	// The leading segments are stripped by cleaning, so either the resolve
	// refuses it or the read misses inside the root. It must never leave it.
	if err == nil {
		assert.NotContains(t, content, "root:")
	}
}

func TestListDirectory(t *testing.T) {
	s := NewLocalContentSource(testWorkspace(t), nil, 0)

	entries, err := s.ListDirectory(context.Background(), "internal/order")
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"service.go", "handler.go"}, entries)

	entries, err = s.ListDirectory(context.Background(), ".")
	assert.NoError(t, err)
	assert.Contains(t, entries, "internal/")
}

func TestSearchFiles(t *testing.T) {
	s := NewLocalContentSource(testWorkspace(t), nil, 0)

	paths, err := s.SearchFiles(context.Background(), "**/*.go", "")
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"internal/order/service.go", "internal/order/handler.go"}, paths)
}

func TestSearchFilesMatchesBasename(t *testing.T) {
	s := NewLocalContentSource(testWorkspace(t), nil, 0)

	paths, err := s.SearchFiles(context.Background(), "service.go", "")
	assert.NoError(t, err)
	assert.Equal(t, []string{"internal/order/service.go"}, paths)
}

func TestSearchFilesHonorsIgnoreGlobs(t *testing.T) {
	s := NewLocalContentSource(testWorkspace(t), []string{"**/order/**"}, 0)

	paths, err := s.SearchFiles(context.Background(), "**/*.go", "")
	assert.NoError(t, err)
	assert.Equal(t, []string{"vendor/dep/dep.go"}, paths)
}

func TestSearchFilesCancellation(t *testing.T) {
	s := NewLocalContentSource(testWorkspace(t), nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SearchFiles(ctx, "**/*.go", "")
	assert.Error(t, err)
}
