package model

import "fmt"

type EvidenceType string

const (
	EvidenceSupports     EvidenceType = "supports"
	EvidenceContradicts  EvidenceType = "contradicts"
	EvidenceInconclusive EvidenceType = "inconclusive"
	EvidenceNotFound     EvidenceType = "not_found"
)

// CodeReference is a located fact in the codebase: a file region, or a node
// or edge in the structural graph.
type CodeReference struct {
	FilePath  string `json:"file_path,omitempty"`
	StartLine int    `json:"start_line,omitempty"`
	EndLine   int    `json:"end_line,omitempty"`
	GraphID   string `json:"graph_id,omitempty"` // node name or "a->b" edge
}

func (r CodeReference) String() string {
	if r.FilePath != "" {
		if r.StartLine > 0 {
			return fmt.Sprintf("%s:%d-%d", r.FilePath, r.StartLine, r.EndLine)
		}
		return r.FilePath
	}
	return r.GraphID
}

// EvidenceItem is one piece of support or contradiction for a claim. Ref is
// nil for inconclusive items.
type EvidenceItem struct {
	Type       EvidenceType   `json:"type"`
	Ref        *CodeReference `json:"ref,omitempty"`
	Confidence float64        `json:"confidence"`
	Source     string         `json:"source"` // structure, content
	Note       string         `json:"note,omitempty"`
}

// EvidenceBundle is everything gathered for one claim during a single
// verification pass. It is discarded after the pass; only the folded-in
// scores and references survive in the section result.
type EvidenceBundle struct {
	ClaimID string         `json:"claim_id"`
	Items   []EvidenceItem `json:"items"`
}

func (b *EvidenceBundle) Supporting() []EvidenceItem {
	return b.filter(EvidenceSupports)
}

func (b *EvidenceBundle) Contradicting() []EvidenceItem {
	return b.filter(EvidenceContradicts)
}

func (b *EvidenceBundle) filter(t EvidenceType) []EvidenceItem {
	var out []EvidenceItem
	for _, item := range b.Items {
		if item.Type == t {
			out = append(out, item)
		}
	}
	return out
}
