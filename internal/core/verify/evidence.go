package verify

import (
	"context"
	"log"
	"math"
	"path"
	"strings"

	"github.com/agenthands/blueprint/internal/core/model"
)

// inconclusiveConfidence is the fixed score for claims that cannot be
// mechanically checked. They are never silently verified.
const inconclusiveConfidence = 0.5

// VerifyClaim gathers evidence for one claim, dispatching by claim type.
// Source failures degrade to not-found evidence with a log line; they never
// fail the verification pass.
func (v *Verifier) VerifyClaim(ctx context.Context, claim model.Claim) model.EvidenceBundle {
	bundle := model.EvidenceBundle{ClaimID: claim.ID}

	switch claim.Type {
	case model.ClaimComponentExistence:
		bundle.Items = v.collectComponentEvidence(ctx, claim)
	case model.ClaimDependency:
		bundle.Items = v.collectDependencyEvidence(ctx, claim)
	case model.ClaimFileReference:
		bundle.Items = v.collectFileEvidence(ctx, claim)
	case model.ClaimBehavioral, model.ClaimRequirementDerivation:
		// Not mechanically checkable against structure or content.
		bundle.Items = []model.EvidenceItem{{
			Type:       model.EvidenceInconclusive,
			Confidence: inconclusiveConfidence,
			Source:     "policy",
			Note:       "behavioral and derivation claims require human review",
		}}
	}

	return bundle
}

func (v *Verifier) collectComponentEvidence(ctx context.Context, claim model.Claim) []model.EvidenceItem {
	if claim.Subject == "" {
		return nil
	}

	structure, err := v.Structure.QueryStructure(ctx, []string{claim.Subject})
	if err != nil {
		log.Printf("Warning: structure query failed for claim %s: %v", claim.ID, err)
		return []model.EvidenceItem{{
			Type:       model.EvidenceNotFound,
			Confidence: 0,
			Source:     "structure",
			Note:       "structure source unavailable",
		}}
	}

	for _, comp := range structure.Components {
		if strings.EqualFold(comp.Name, claim.Subject) {
			item := model.EvidenceItem{
				Type:       model.EvidenceSupports,
				Confidence: 0.9,
				Source:     "structure",
				Ref:        &model.CodeReference{GraphID: comp.Name, FilePath: comp.Path},
			}
			return []model.EvidenceItem{item}
		}
	}

	return []model.EvidenceItem{{
		Type:       model.EvidenceNotFound,
		Confidence: 0,
		Source:     "structure",
		Note:       "no component node named " + claim.Subject,
	}}
}

func (v *Verifier) collectDependencyEvidence(ctx context.Context, claim model.Claim) []model.EvidenceItem {
	deps, err := v.Structure.GetDependencies(ctx, claim.Subject)
	if err != nil {
		log.Printf("Warning: dependency query failed for claim %s: %v", claim.ID, err)
		return []model.EvidenceItem{{
			Type:       model.EvidenceNotFound,
			Confidence: 0,
			Source:     "structure",
			Note:       "structure source unavailable",
		}}
	}

	edge := &model.CodeReference{GraphID: claim.Subject + "->" + claim.Object}

	for _, up := range deps.Upstream {
		if strings.EqualFold(up, claim.Object) {
			return []model.EvidenceItem{{
				Type:       model.EvidenceSupports,
				Confidence: 0.9,
				Source:     "structure",
				Ref:        edge,
			}}
		}
	}

	// The graph knows the subject but records the edge in the opposite
	// direction: the claim states a reversed dependency.
	for _, down := range deps.Downstream {
		if strings.EqualFold(down, claim.Object) {
			return []model.EvidenceItem{{
				Type:       model.EvidenceContradicts,
				Confidence: 0.8,
				Source:     "structure",
				Ref:        &model.CodeReference{GraphID: claim.Object + "->" + claim.Subject},
				Note:       "dependency direction is reversed in the code graph",
			}}
		}
	}

	// Subject is known to the graph and the edge is absent.
	if len(deps.Upstream) > 0 || len(deps.Downstream) > 0 {
		return []model.EvidenceItem{{
			Type:       model.EvidenceContradicts,
			Confidence: 0.6,
			Source:     "structure",
			Ref:        edge,
			Note:       "no DEPENDS_ON edge between the named components",
		}}
	}

	return []model.EvidenceItem{{
		Type:       model.EvidenceNotFound,
		Confidence: 0,
		Source:     "structure",
		Note:       "component not present in the code graph",
	}}
}

func (v *Verifier) collectFileEvidence(ctx context.Context, claim model.Claim) []model.EvidenceItem {
	if _, err := v.Content.ReadFile(ctx, claim.Subject); err == nil {
		return []model.EvidenceItem{{
			Type:       model.EvidenceSupports,
			Confidence: 0.95,
			Source:     "content",
			Ref:        &model.CodeReference{FilePath: claim.Subject},
		}}
	}

	// The exact path is missing; a file with the same name elsewhere is
	// inconclusive, a complete miss is not-found.
	matches, err := v.Content.SearchFiles(ctx, "**/"+path.Base(claim.Subject), "")
	if err != nil {
		log.Printf("Warning: content search failed for claim %s: %v", claim.ID, err)
		return []model.EvidenceItem{{
			Type:       model.EvidenceNotFound,
			Confidence: 0,
			Source:     "content",
			Note:       "content source unavailable",
		}}
	}

	if len(matches) > 0 {
		return []model.EvidenceItem{{
			Type:       model.EvidenceInconclusive,
			Confidence: inconclusiveConfidence,
			Source:     "content",
			Ref:        &model.CodeReference{FilePath: matches[0]},
			Note:       "referenced path missing; same filename exists at " + matches[0],
		}}
	}

	return []model.EvidenceItem{{
		Type:       model.EvidenceNotFound,
		Confidence: 0,
		Source:     "content",
		Note:       "no such file in the workspace",
	}}
}

// scoreClaim folds an evidence bundle into a claim result. Supporting items
// accumulate (each raises confidence in proportion to its own confidence);
// any contradiction caps the result below the pass's acceptance threshold no
// matter how much support exists; zero evidence scores 0, never drops the
// claim.
func (v *Verifier) scoreClaim(claim model.Claim, bundle model.EvidenceBundle, minConfidence float64) model.ClaimResult {
	result := model.ClaimResult{Claim: claim}

	supporting := bundle.Supporting()
	contradicting := bundle.Contradicting()

	if len(bundle.Items) == 0 {
		result.Status = model.StatusUnverified
		result.Confidence = 0
		result.Issue = "no evidence gathered"
		return result
	}

	confidence := 0.0
	for _, item := range supporting {
		confidence = 1 - (1-confidence)*(1-item.Confidence)
		if item.Ref != nil {
			result.Supporting = append(result.Supporting, *item.Ref)
		}
	}

	if confidence == 0 {
		for _, item := range bundle.Items {
			if item.Type == model.EvidenceInconclusive {
				confidence = math.Max(confidence, item.Confidence)
			}
		}
	}

	if len(contradicting) > 0 {
		// Contradiction dominates.
		confidence = math.Min(confidence, minConfidence/2)
		result.Status = model.StatusContradicted
		result.Confidence = confidence
		for _, item := range contradicting {
			if item.Ref != nil {
				result.Contradicting = append(result.Contradicting, *item.Ref)
			}
			if result.Issue == "" {
				result.Issue = item.Note
			}
		}
		if result.Issue == "" {
			result.Issue = "contradicting evidence found"
		}
		return result
	}

	result.Confidence = confidence
	switch {
	case confidence >= minConfidence:
		result.Status = model.StatusVerified
	case confidence > 0:
		result.Status = model.StatusPartiallyVerified
		result.Issue = firstNote(bundle.Items, "insufficient evidence")
	default:
		result.Status = model.StatusUnverified
		result.Issue = firstNote(bundle.Items, "no supporting evidence")
	}
	return result
}

func firstNote(items []model.EvidenceItem, fallback string) string {
	for _, item := range items {
		if item.Note != "" {
			return item.Note
		}
	}
	return fallback
}
