package model

type DocumentKind string

const (
	KindBRD     DocumentKind = "brd"
	KindEpics   DocumentKind = "epics"
	KindBacklog DocumentKind = "backlog"
)

type Section struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Document is a structured planning artifact (BRD, epic set, backlog).
// Notes holds raw model output when parsing had to fall back.
type Document struct {
	Kind     DocumentKind `json:"kind"`
	Title    string       `json:"title"`
	Sections []Section    `json:"sections"`
	Notes    string       `json:"notes,omitempty"`
}

func (d *Document) Section(name string) (Section, bool) {
	for _, s := range d.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// GenerationResult makes the fallback path visible in the type: Degraded is
// set when the model call failed or its output could not be parsed and a
// minimal document was substituted.
type GenerationResult struct {
	Document Document `json:"document"`
	Degraded bool     `json:"degraded"`
	Reason   string   `json:"reason,omitempty"`
}

// Metrics accumulates per-request orchestration counters.
type Metrics struct {
	ClaimsVerified      int   `json:"claims_verified"`
	ClaimsFailed        int   `json:"claims_failed"`
	SectionsRegenerated int   `json:"sections_regenerated"`
	ElapsedMS           int64 `json:"elapsed_ms"`
}

// GenerationOutput is what the orchestrator hands back to the caller. Only
// this survives the request; claims and evidence bundles are discarded.
type GenerationOutput struct {
	Document        Document          `json:"document"`
	IsVerified      bool              `json:"is_verified"`
	ConfidenceScore float64           `json:"confidence_score"`
	Risk            HallucinationRisk `json:"hallucination_risk"`
	IterationsUsed  int               `json:"iterations_used"`
	Degraded        bool              `json:"degraded"`
	Evidence        string            `json:"evidence,omitempty"`
	Metrics         Metrics           `json:"metrics"`
}
