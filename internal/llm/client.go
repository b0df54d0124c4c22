package llm

import (
	"context"
)

type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Reranker interface {
	Rank(ctx context.Context, query string, documents []string) ([]int, error)
}
