package model

import "encoding/json"

type ComponentInfo struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"` // service, module, class
	Path         string   `json:"path"`
	Description  string   `json:"description,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Dependents   []string `json:"dependents,omitempty"`
}

type APIContract struct {
	Endpoint   string            `json:"endpoint"`
	Method     string            `json:"method"`
	Service    string            `json:"service"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

type FileContext struct {
	Path           string  `json:"path"`
	Content        string  `json:"content"`
	RelevanceScore float64 `json:"relevance_score"`
	Truncated      bool    `json:"truncated,omitempty"`
}

type ArchitectureContext struct {
	Components   []ComponentInfo     `json:"components"`
	Dependencies map[string][]string `json:"dependencies"`
	APIContracts []APIContract       `json:"api_contracts,omitempty"`
}

type ImplementationContext struct {
	KeyFiles []FileContext `json:"key_files"`
	Patterns []string      `json:"patterns,omitempty"`
}

type SimilarFeature struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// AggregatedContext is the per-request snapshot of everything the generator
// sees. It is built once per generation attempt; revision feedback lands in
// AdvisoryNotes, the context itself is never rewritten.
type AggregatedContext struct {
	Request         string                `json:"request"`
	Architecture    ArchitectureContext   `json:"architecture"`
	Implementation  ImplementationContext `json:"implementation"`
	SimilarFeatures []SimilarFeature      `json:"similar_features,omitempty"`
	AdvisoryNotes   []string              `json:"advisory_notes,omitempty"`
	Compressed      bool                  `json:"compressed,omitempty"`
}

// EstimatedTokens approximates the serialized size at ~4 chars per token.
func (c *AggregatedContext) EstimatedTokens() int {
	data, err := json.Marshal(c)
	if err != nil {
		return 0
	}
	return len(data) / 4
}
