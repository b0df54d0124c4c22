package model

type VerificationStatus string

const (
	StatusVerified          VerificationStatus = "verified"
	StatusPartiallyVerified VerificationStatus = "partially_verified"
	StatusUnverified        VerificationStatus = "unverified"
	StatusContradicted      VerificationStatus = "contradicted"
)

type HallucinationRisk string

const (
	RiskLow    HallucinationRisk = "low"
	RiskMedium HallucinationRisk = "medium"
	RiskHigh   HallucinationRisk = "high"
)

// ClaimResult is the folded-down outcome of one claim's evidence bundle.
type ClaimResult struct {
	Claim         Claim              `json:"claim"`
	Status        VerificationStatus `json:"status"`
	Confidence    float64            `json:"confidence"`
	Supporting    []CodeReference    `json:"supporting,omitempty"`
	Contradicting []CodeReference    `json:"contradicting,omitempty"`
	Issue         string             `json:"issue,omitempty"`
}

type SectionVerificationResult struct {
	Section       string             `json:"section"`
	Status        VerificationStatus `json:"status"`
	Confidence    float64            `json:"confidence"`
	Claims        []ClaimResult      `json:"claims"`
	Supporting    []CodeReference    `json:"supporting,omitempty"`
	Contradicting []CodeReference    `json:"contradicting,omitempty"`
}

// VerificationResult is a whole-document verdict for one verification pass.
type VerificationResult struct {
	Sections        []SectionVerificationResult `json:"sections"`
	ConfidenceScore float64                     `json:"confidence_score"`
	Risk            HallucinationRisk           `json:"hallucination_risk"`
	TotalClaims     int                         `json:"total_claims"`
	VerifiedClaims  int                         `json:"verified_claims"`
}

// Accepted reports whether the document clears the confidence bar with no
// contradicted section.
func (r *VerificationResult) Accepted(minConfidence float64) bool {
	if r.ConfidenceScore < minConfidence {
		return false
	}
	for _, s := range r.Sections {
		if s.Status == StatusContradicted {
			return false
		}
	}
	return true
}

// FailedSections returns the sections that should drive a revision.
func (r *VerificationResult) FailedSections() []SectionVerificationResult {
	var out []SectionVerificationResult
	for _, s := range r.Sections {
		if s.Status == StatusContradicted || s.Status == StatusUnverified || s.Status == StatusPartiallyVerified {
			out = append(out, s)
		}
	}
	return out
}

// SectionFeedback is the revisable unit handed back to the generator.
type SectionFeedback struct {
	Section string             `json:"section"`
	Status  VerificationStatus `json:"status"`
	Issues  []string           `json:"issues"`
}

// RevisionFeedback summarizes which claims failed and why. It references
// only failed sections so a revision leaves verified content alone.
type RevisionFeedback struct {
	Sections []SectionFeedback `json:"sections"`
}

// FlaggedSections lists the section names a revision should change.
func (f *RevisionFeedback) FlaggedSections() map[string]bool {
	out := make(map[string]bool, len(f.Sections))
	for _, s := range f.Sections {
		out[s.Section] = true
	}
	return out
}

// Revision pairs revision feedback with the draft it applies to, so the
// generator can carry unflagged sections forward verbatim.
type Revision struct {
	Feedback RevisionFeedback `json:"feedback"`
	Previous Document         `json:"previous"`
}

// VerificationRunConfig carries per-request verification policy. Supplied
// once, immutable for the request's lifetime.
type VerificationRunConfig struct {
	MinConfidence   float64 `json:"min_confidence"`
	MaxIterations   int     `json:"max_iterations"`
	IncludeEvidence bool    `json:"include_evidence"`
}
