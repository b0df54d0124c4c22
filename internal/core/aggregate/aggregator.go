// Package aggregate builds the per-request context snapshot that the
// generator drafts from: an architecture view from the structural graph, an
// implementation view from file content, and optional similar-feature
// matches. A knowledge-source failure degrades to an empty view, never to a
// request failure.
package aggregate

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"

	"github.com/agenthands/blueprint/internal/core/model"
	"github.com/agenthands/blueprint/internal/knowledge"
	"github.com/agenthands/blueprint/internal/llm"
)

var ErrEmptyRequest = errors.New("request text is empty")

type Aggregator struct {
	Structure knowledge.StructureSource
	Content   knowledge.ContentSource
	Reranker  llm.Reranker // optional; heuristic scoring when nil

	MaxTokens int
	MaxFiles  int
}

func NewAggregator(structure knowledge.StructureSource, content knowledge.ContentSource, reranker llm.Reranker, maxTokens, maxFiles int) *Aggregator {
	if maxTokens <= 0 {
		maxTokens = 24000
	}
	if maxFiles <= 0 {
		maxFiles = 12
	}
	return &Aggregator{
		Structure: structure,
		Content:   content,
		Reranker:  reranker,
		MaxTokens: maxTokens,
		MaxFiles:  maxFiles,
	}
}

// BuildContext assembles the snapshot for one generation attempt. It fails
// only on structurally invalid input; source errors leave the affected view
// empty and the pipeline proceeds.
func (a *Aggregator) BuildContext(ctx context.Context, requestText string, affectedComponents []string, includeSimilar bool) (*model.AggregatedContext, error) {
	if strings.TrimSpace(requestText) == "" {
		return nil, ErrEmptyRequest
	}

	agg := &model.AggregatedContext{
		Request: requestText,
		Architecture: model.ArchitectureContext{
			Dependencies: map[string][]string{},
		},
	}

	a.buildArchitecture(ctx, agg, affectedComponents)
	a.buildImplementation(ctx, agg)

	if includeSimilar {
		a.findSimilar(ctx, agg)
	}

	a.Compress(agg)
	return agg, nil
}

func (a *Aggregator) buildArchitecture(ctx context.Context, agg *model.AggregatedContext, scope []string) {
	structure, err := a.Structure.QueryStructure(ctx, scope)
	if err != nil {
		log.Printf("Warning: structure query failed, continuing with empty architecture: %v", err)
		return
	}

	for _, c := range structure.Components {
		agg.Architecture.Components = append(agg.Architecture.Components, model.ComponentInfo{
			Name:        c.Name,
			Type:        c.Type,
			Path:        c.Path,
			Description: c.Description,
		})
	}

	for _, rel := range structure.Relationships {
		if rel.Type == "DEPENDS_ON" {
			agg.Architecture.Dependencies[rel.From] = append(agg.Architecture.Dependencies[rel.From], rel.To)
		}
	}

	// Enrich top components with upstream/downstream views. Failures here
	// degrade per component.
	for i, comp := range agg.Architecture.Components {
		if i >= 10 {
			break
		}
		deps, err := a.Structure.GetDependencies(ctx, comp.Name)
		if err != nil {
			log.Printf("Warning: dependency lookup failed for %s: %v", comp.Name, err)
			continue
		}
		agg.Architecture.Components[i].Dependencies = deps.Upstream
		agg.Architecture.Components[i].Dependents = deps.Downstream
	}
}

func (a *Aggregator) buildImplementation(ctx context.Context, agg *model.AggregatedContext) {
	var files []model.FileContext
	seen := make(map[string]bool)

	for _, comp := range agg.Architecture.Components {
		if comp.Path == "" || seen[comp.Path] {
			continue
		}
		seen[comp.Path] = true

		content, err := a.Content.ReadFile(ctx, comp.Path)
		if err != nil {
			log.Printf("Warning: could not read %s: %v", comp.Path, err)
			continue
		}
		files = append(files, model.FileContext{
			Path:           comp.Path,
			Content:        content,
			RelevanceScore: relevanceScore(agg.Request, comp.Path, content),
		})
	}

	a.rerank(ctx, agg.Request, files)

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].RelevanceScore > files[j].RelevanceScore
	})

	agg.Implementation.KeyFiles = files
	agg.Implementation.Patterns = detectPatterns(files)
}

// rerank refines the heuristic scores with an LLM ordering when a reranker
// is configured. A reranker failure keeps the heuristic scores.
func (a *Aggregator) rerank(ctx context.Context, request string, files []model.FileContext) {
	if a.Reranker == nil || len(files) < 2 {
		return
	}

	docs := make([]string, len(files))
	for i, f := range files {
		docs[i] = f.Path + "\n" + f.Content
	}

	indices, err := a.Reranker.Rank(ctx, request, docs)
	if err != nil || len(indices) != len(files) {
		return
	}

	for rank, idx := range indices {
		files[idx].RelevanceScore = 1.0 - float64(rank)/float64(len(files))
	}
}

func (a *Aggregator) findSimilar(ctx context.Context, agg *model.AggregatedContext) {
	matches, err := a.Structure.SearchSimilar(ctx, agg.Request, 5)
	if err != nil {
		log.Printf("Warning: similar-feature search failed: %v", err)
		return
	}
	for _, m := range matches {
		agg.SimilarFeatures = append(agg.SimilarFeatures, model.SimilarFeature{
			Name:        m.Name,
			Description: m.Description,
			Score:       m.Score,
		})
	}
}

// relevanceScore counts request keywords appearing in the file path or
// content, normalized to [0,1].
func relevanceScore(request, path, content string) float64 {
	words := strings.Fields(strings.ToLower(request))
	if len(words) == 0 {
		return 0
	}
	haystack := strings.ToLower(path + " " + content)
	hits := 0
	total := 0
	for _, w := range words {
		w = strings.Trim(w, ".,:;\"'()")
		if len(w) <= 3 {
			continue
		}
		total++
		if strings.Contains(haystack, w) {
			hits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

func detectPatterns(files []model.FileContext) []string {
	markers := map[string]string{
		"http.Handler":    "http-handlers",
		"gin.Context":     "gin-handlers",
		"sql.DB":          "sql-storage",
		"neo4j.":          "graph-storage",
		"context.Context": "context-aware-apis",
	}
	found := make(map[string]bool)
	for _, f := range files {
		for marker, pattern := range markers {
			if strings.Contains(f.Content, marker) {
				found[pattern] = true
			}
		}
	}
	var out []string
	for p := range found {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
