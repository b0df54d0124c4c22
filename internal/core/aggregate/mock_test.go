package aggregate

import (
	"context"
	"errors"

	"github.com/agenthands/blueprint/internal/knowledge"
)

type MockStructure struct {
	Structure *knowledge.Structure
	Deps      map[string]*knowledge.Dependencies
	Matches   []knowledge.SimilarMatch
	Err       error
}

func (m *MockStructure) QueryStructure(ctx context.Context, scope []string) (*knowledge.Structure, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Structure == nil {
		return &knowledge.Structure{}, nil
	}
	return m.Structure, nil
}

func (m *MockStructure) GetDependencies(ctx context.Context, component string) (*knowledge.Dependencies, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if deps, ok := m.Deps[component]; ok {
		return deps, nil
	}
	return &knowledge.Dependencies{}, nil
}

func (m *MockStructure) SearchSimilar(ctx context.Context, text string, limit int) ([]knowledge.SimilarMatch, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Matches, nil
}

type MockContent struct {
	Files map[string]string
	Err   error
}

func (m *MockContent) ReadFile(ctx context.Context, path string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if content, ok := m.Files[path]; ok {
		return content, nil
	}
	return "", errors.New("no such file")
}

func (m *MockContent) ListDirectory(ctx context.Context, path string) ([]string, error) {
	return nil, m.Err
}

func (m *MockContent) SearchFiles(ctx context.Context, pattern, root string) ([]string, error) {
	return nil, m.Err
}

type MockReranker struct {
	Indices []int
	Err     error
}

func (m *MockReranker) Rank(ctx context.Context, query string, documents []string) ([]int, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Indices, nil
}
