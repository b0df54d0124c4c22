package verify

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

	LastScope []string
}

func (m *MockStructure) QueryStructure(ctx context.Context, scope []string) (*knowledge.Structure, error) {
	m.LastScope = scope
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
	Files      map[string]string
	SearchHits []string
	Err        error
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
	if m.Err != nil {
		return nil, m.Err
	}
	var out []string
	for p := range m.Files {
		out = append(out, p)
	}
	return out, nil
}

func (m *MockContent) SearchFiles(ctx context.Context, pattern, root string) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.SearchHits, nil
}
