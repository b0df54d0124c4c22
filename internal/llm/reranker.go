package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

// SimpleLLMReranker orders candidate file snippets by relevance to a feature
// request. The aggregator uses it to decide which files survive compression.
type SimpleLLMReranker struct {
	LLM Client
}

func NewSimpleLLMReranker(client Client) *SimpleLLMReranker {
	return &SimpleLLMReranker{LLM: client}
}

func (r *SimpleLLMReranker) Rank(ctx context.Context, query string, docs []string) ([]int, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if len(docs) == 1 {
		return []int{0}, nil
	}

	docList := ""
	for i, d := range docs {
		content := d
		if len(content) > 200 {
			content = content[:200] + "..."
		}
		docList += fmt.Sprintf("[%d] %s\n", i, content)
	}

	prompt := fmt.Sprintf(`You are a search relevance optimization system.
Query: %s

Documents:
%s

Rank the documents above based on their relevance to the query.
Output ONLY the indices of the documents in order of relevance, separated by commas.
Example: 0, 2, 1
Do not output any other text.`, query, docList)

	resp, err := r.LLM.Generate(ctx, prompt)
	if err != nil {
		// Fallback to original order on error
		indices := make([]int, len(docs))
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	return parseIndices(resp, len(docs)), nil
}

func parseIndices(s string, n int) []int {
	re := regexp.MustCompile(`\d+`)
	matches := re.FindAllString(s, -1)
	seen := make(map[int]bool)
	var indices []int
	for _, m := range matches {
		if i, err := strconv.Atoi(m); err == nil && i < n && !seen[i] {
			seen[i] = true
			indices = append(indices, i)
		}
	}
	// Any index the model dropped keeps its original position at the tail.
	for i := 0; i < n; i++ {
		if !seen[i] {
			indices = append(indices, i)
		}
	}
	return indices
}
