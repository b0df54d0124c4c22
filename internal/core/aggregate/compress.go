package aggregate

import (
	"sort"
	"unicode/utf8"

	"github.com/agenthands/blueprint/internal/core/model"
)

const truncateKeep = 500 // bytes kept from each end of a truncated file

// Compress shrinks the context to the token budget. Lowest-relevance file
// contents go first; architecture data and the request text are never
// dropped. Compressing an already-compressed context is a no-op.
func (a *Aggregator) Compress(agg *model.AggregatedContext) {
	if agg.Compressed {
		return
	}
	agg.Compressed = true

	if agg.EstimatedTokens() <= a.MaxTokens {
		return
	}

	// Keep only the most relevant files.
	files := agg.Implementation.KeyFiles
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].RelevanceScore > files[j].RelevanceScore
	})
	if len(files) > a.MaxFiles {
		files = files[:a.MaxFiles]
	}
	agg.Implementation.KeyFiles = files

	// Truncate file contents starting from the least relevant until the
	// budget holds or nothing is left to cut.
	for i := len(agg.Implementation.KeyFiles) - 1; i >= 0; i-- {
		if agg.EstimatedTokens() <= a.MaxTokens {
			break
		}
		f := &agg.Implementation.KeyFiles[i]
		if len(f.Content) > 2*truncateKeep {
			f.Content = headRunes(f.Content, truncateKeep) + "\n... [truncated] ...\n" + tailRunes(f.Content, truncateKeep)
			f.Truncated = true
		}
	}

	// Similar features go last.
	if agg.EstimatedTokens() > a.MaxTokens {
		agg.SimilarFeatures = nil
	}
}

// headRunes cuts s to at most n bytes without splitting a rune.
func headRunes(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// tailRunes keeps at most the last n bytes of s without splitting a rune.
func tailRunes(s string, n int) string {
	if n >= len(s) {
		return s
	}
	i := len(s) - n
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return s[i:]
}
