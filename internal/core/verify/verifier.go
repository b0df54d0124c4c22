package verify

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/blueprint/internal/core/model"
	"github.com/agenthands/blueprint/internal/knowledge"
)

// Verifier checks a generated document against the knowledge sources. One
// Verifier may serve many concurrent requests; all per-pass state lives in
// locals.
type Verifier struct {
	Structure knowledge.StructureSource
	Content   knowledge.ContentSource
	Extractor *Extractor

	// MinConfidence is the claim-level acceptance threshold used when a
	// pass does not carry its own.
	MinConfidence float64
	// Workers bounds concurrent evidence lookups per pass.
	Workers int
}

func NewVerifier(structure knowledge.StructureSource, content knowledge.ContentSource, minConfidence float64, workers int) *Verifier {
	if minConfidence <= 0 {
		minConfidence = 0.7
	}
	if workers <= 0 {
		workers = 4
	}
	return &Verifier{
		Structure:     structure,
		Content:       content,
		Extractor:     NewExtractor(),
		MinConfidence: minConfidence,
		Workers:       workers,
	}
}

// VerifyDocument runs one verification pass: extract claims, collect
// evidence concurrently, and aggregate per section. Claims are independent,
// so their lookups run in parallel up to Workers; cancellation abandons
// in-flight lookups. minConfidence is the caller's acceptance threshold for
// this pass; zero falls back to the verifier's default.
func (v *Verifier) VerifyDocument(ctx context.Context, doc *model.Document, minConfidence float64) model.VerificationResult {
	if minConfidence <= 0 {
		minConfidence = v.MinConfidence
	}

	claims := v.Extractor.ExtractClaims(doc)

	results := make([]model.ClaimResult, len(claims))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.Workers)
	for i, claim := range claims {
		// Seed every slot so a claim abandoned by cancellation still
		// shows up in the aggregate as unverified rather than vanishing.
		results[i] = model.ClaimResult{
			Claim:  claim,
			Status: model.StatusUnverified,
			Issue:  "verification incomplete",
		}
		g.Go(func() error {
			bundle := v.VerifyClaim(gctx, claim)
			results[i] = v.scoreClaim(claim, bundle, minConfidence)
			return gctx.Err()
		})
	}
	// Lookup errors never fail a pass; the only error out of the group is
	// cancellation, and cancelled claims score as unverified.
	_ = g.Wait()

	return v.aggregate(doc, results, minConfidence)
}

// aggregate groups claim results by source section and computes the
// document-level verdict per the verification policy.
func (v *Verifier) aggregate(doc *model.Document, results []model.ClaimResult, minConfidence float64) model.VerificationResult {
	bySection := make(map[string][]model.ClaimResult)
	for _, r := range results {
		bySection[r.Claim.Section] = append(bySection[r.Claim.Section], r)
	}

	var out model.VerificationResult
	confidenceSum := 0.0

	for _, section := range doc.Sections {
		claims := bySection[section.Name]
		if len(claims) == 0 {
			continue
		}

		sr := model.SectionVerificationResult{
			Section: section.Name,
			Claims:  claims,
		}

		verified := 0
		contradicted := 0
		sectionSum := 0.0
		for _, c := range claims {
			sectionSum += c.Confidence
			confidenceSum += c.Confidence
			switch c.Status {
			case model.StatusVerified:
				verified++
			case model.StatusContradicted:
				contradicted++
			}
			sr.Supporting = append(sr.Supporting, c.Supporting...)
			sr.Contradicting = append(sr.Contradicting, c.Contradicting...)
		}
		sr.Confidence = sectionSum / float64(len(claims))

		switch {
		case contradicted > 0:
			sr.Status = model.StatusContradicted
		case verified == len(claims):
			sr.Status = model.StatusVerified
		case verified > 0:
			sr.Status = model.StatusPartiallyVerified
		default:
			sr.Status = model.StatusUnverified
		}

		out.Sections = append(out.Sections, sr)
		out.TotalClaims += len(claims)
		out.VerifiedClaims += verified
	}

	if out.TotalClaims > 0 {
		// Claim-count weighting: the mean over all claims, so sections
		// weigh in proportion to how many claims they contain.
		out.ConfidenceScore = confidenceSum / float64(out.TotalClaims)
	}

	out.Risk = classifyRisk(&out, minConfidence)
	return out
}

func classifyRisk(r *model.VerificationResult, minConfidence float64) model.HallucinationRisk {
	for _, s := range r.Sections {
		if s.Status == model.StatusContradicted {
			return model.RiskHigh
		}
	}
	switch {
	case r.ConfidenceScore < 0.4:
		return model.RiskHigh
	case r.ConfidenceScore < minConfidence:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// BuildFeedback compiles revision feedback from the failed sections only,
// so the generator leaves verified sections untouched.
func (v *Verifier) BuildFeedback(result model.VerificationResult) model.RevisionFeedback {
	var feedback model.RevisionFeedback

	for _, section := range result.FailedSections() {
		sf := model.SectionFeedback{
			Section: section.Section,
			Status:  section.Status,
		}
		for _, c := range section.Claims {
			if c.Status == model.StatusVerified {
				continue
			}
			issue := c.Issue
			if issue == "" {
				issue = "insufficient evidence"
			}
			sf.Issues = append(sf.Issues, fmt.Sprintf("%q: %s (%s)", c.Claim.Text, issue, c.Status))
		}
		feedback.Sections = append(feedback.Sections, sf)
	}

	return feedback
}
