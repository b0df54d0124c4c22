package knowledge

import (
	"context"
)

type Relationship struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"` // DEPENDS_ON, EXPOSES, CONTAINS
}

type Component struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Path        string `json:"path"`
	Description string `json:"description,omitempty"`
}

type Structure struct {
	Components    []Component    `json:"components"`
	Relationships []Relationship `json:"relationships"`
}

type Dependencies struct {
	Upstream   []string `json:"upstream"`
	Downstream []string `json:"downstream"`
}

type SimilarMatch struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// StructureSource answers questions about the codebase's structural graph.
// Implementations must be safe for concurrent use and must tolerate
// abandoned in-flight calls; callers treat errors as degradable.
type StructureSource interface {
	QueryStructure(ctx context.Context, scope []string) (*Structure, error)
	GetDependencies(ctx context.Context, component string) (*Dependencies, error)
	SearchSimilar(ctx context.Context, text string, limit int) ([]SimilarMatch, error)
}

// ContentSource reads raw file content from the analyzed workspace.
type ContentSource interface {
	ReadFile(ctx context.Context, path string) (string, error)
	ListDirectory(ctx context.Context, path string) ([]string, error)
	SearchFiles(ctx context.Context, pattern, root string) ([]string, error)
}
