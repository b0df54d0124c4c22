// Package core drives the multi-agent generation loop: aggregate codebase
// context once, then draft, verify, and revise until the draft clears the
// confidence bar or the iteration budget runs out. The loop always returns
// a document; internal failures degrade instead of propagating.
package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agenthands/blueprint/internal/core/model"
	"github.com/agenthands/blueprint/internal/core/plan"
	"github.com/agenthands/blueprint/internal/core/verify"
)

// LoopState names the orchestrator's position in the generate/verify cycle.
type LoopState string

const (
	StateDrafting  LoopState = "DRAFTING"
	StateVerifying LoopState = "VERIFYING"
	StateAccepted  LoopState = "ACCEPTED"
	StateRevising  LoopState = "REVISING"
	StateExhausted LoopState = "EXHAUSTED"
)

// ContextBuilder assembles the per-request codebase snapshot.
type ContextBuilder interface {
	BuildContext(ctx context.Context, requestText string, affectedComponents []string, includeSimilar bool) (*model.AggregatedContext, error)
}

// DraftAgent produces document drafts. Drafting never fails; a degraded
// draft carries the flag in the result.
type DraftAgent interface {
	Generate(ctx context.Context, agg *model.AggregatedContext, kind model.DocumentKind, revision *model.Revision) model.GenerationResult
}

// VerifyAgent checks a draft against the knowledge sources and compiles
// revision feedback from the sections that failed.
type VerifyAgent interface {
	VerifyDocument(ctx context.Context, doc *model.Document, minConfidence float64) model.VerificationResult
	BuildFeedback(result model.VerificationResult) model.RevisionFeedback
}

// Orchestrator owns the request-level control flow. It is stateless across
// requests; everything per-request lives in locals so concurrent requests
// share nothing but the injected collaborators.
type Orchestrator struct {
	Aggregator ContextBuilder
	Drafter    DraftAgent
	Verifier   VerifyAgent
	Planner    *plan.Planner

	// Defaults applied when the caller's config leaves a knob unset.
	Defaults model.VerificationRunConfig

	// Injectable for deterministic tests.
	NewID func() string
	Now   func() time.Time
}

func NewOrchestrator(aggregator ContextBuilder, drafter DraftAgent, verifier VerifyAgent, planner *plan.Planner, defaults model.VerificationRunConfig) *Orchestrator {
	return &Orchestrator{
		Aggregator: aggregator,
		Drafter:    drafter,
		Verifier:   verifier,
		Planner:    planner,
		Defaults:   defaults,
		NewID:      uuid.NewString,
		Now:        time.Now,
	}
}

// Generate runs the full loop for one request. Only structurally invalid
// input is rejected; every internal failure degrades into the output.
func (o *Orchestrator) Generate(ctx context.Context, requestText string, affectedComponents []string, cfg model.VerificationRunConfig) (*model.GenerationOutput, error) {
	if strings.TrimSpace(requestText) == "" {
		return nil, fmt.Errorf("request text must not be empty")
	}
	cfg = o.applyDefaults(cfg)

	requestID := o.NewID()
	start := o.Now()
	trace := &transcript{requestID: requestID, newID: o.NewID, now: o.Now}

	agg, err := o.Aggregator.BuildContext(ctx, requestText, affectedComponents, true)
	if err != nil {
		return nil, fmt.Errorf("build context: %w", err)
	}

	var (
		state      = StateDrafting
		revision   *model.Revision
		best       model.Document
		bestResult model.VerificationResult
		bestConf   = -1.0
		iterations int
		degraded   bool
		metrics    model.Metrics
	)

	for state == StateDrafting {
		iterations++

		trace.record(model.RoleOrchestrator, model.MessageRequest,
			model.DraftRequestPayload{Kind: model.KindBRD, Revision: revision})
		draft := o.Drafter.Generate(ctx, agg, model.KindBRD, revision)
		trace.record(model.RoleGenerator, model.MessageResult,
			model.DraftResultPayload{Result: draft})
		degraded = degraded || draft.Degraded

		state = StateVerifying
		trace.record(model.RoleOrchestrator, model.MessageRequest,
			model.VerifyRequestPayload{Document: draft.Document})
		result := o.Verifier.VerifyDocument(ctx, &draft.Document, cfg.MinConfidence)
		trace.record(model.RoleVerifier, model.MessageResult,
			model.VerifyResultPayload{Result: result})

		metrics.ClaimsVerified += result.VerifiedClaims
		metrics.ClaimsFailed += result.TotalClaims - result.VerifiedClaims

		if result.ConfidenceScore > bestConf {
			best = draft.Document
			bestResult = result
			bestConf = result.ConfidenceScore
		}

		switch {
		case result.Accepted(cfg.MinConfidence):
			state = StateAccepted
		case iterations >= cfg.MaxIterations:
			state = StateExhausted
		default:
			state = StateRevising
			feedback := o.Verifier.BuildFeedback(result)
			revision = &model.Revision{Feedback: feedback, Previous: draft.Document}
			trace.record(model.RoleVerifier, model.MessageRevisionRequest,
				model.DraftRequestPayload{Kind: model.KindBRD, Revision: revision})
			metrics.SectionsRegenerated += len(feedback.Sections)
			state = StateDrafting
		}
	}

	metrics.ElapsedMS = o.Now().Sub(start).Milliseconds()
	trace.close(state, iterations)

	out := &model.GenerationOutput{
		Document:        best,
		IsVerified:      state == StateAccepted,
		ConfidenceScore: bestResult.ConfidenceScore,
		Risk:            bestResult.Risk,
		IterationsUsed:  iterations,
		Degraded:        degraded,
		Metrics:         metrics,
	}
	if cfg.IncludeEvidence {
		out.Evidence = verify.EvidenceTrail(bestResult)
	}
	return out, nil
}

// GenerateEpics derives epics from an approved document. No verification
// pass runs here; verification applies to the primary document only.
func (o *Orchestrator) GenerateEpics(ctx context.Context, approved *model.Document) (*model.EpicsOutput, error) {
	return o.Planner.DeriveEpics(ctx, approved)
}

// GenerateBacklogs expands approved epics into backlog stories.
func (o *Orchestrator) GenerateBacklogs(ctx context.Context, approved *model.EpicsOutput) (*model.BacklogOutput, error) {
	return o.Planner.DeriveBacklog(ctx, approved)
}

func (o *Orchestrator) applyDefaults(cfg model.VerificationRunConfig) model.VerificationRunConfig {
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = o.Defaults.MinConfidence
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = o.Defaults.MaxIterations
	}
	return cfg
}

// transcript is the per-request agent message log. Messages are append-only
// and discarded with the request; only the summary line survives.
type transcript struct {
	requestID string
	newID     func() string
	now       func() time.Time
	messages  []model.AgentMessage
}

func (t *transcript) record(sender model.AgentRole, kind model.MessageType, payload model.MessagePayload) {
	t.messages = append(t.messages, model.AgentMessage{
		ID:      t.newID(),
		Sender:  sender,
		Type:    kind,
		SentAt:  t.now(),
		Payload: payload,
	})
}

func (t *transcript) close(state LoopState, iterations int) {
	log.Printf("request %s: %s after %d iteration(s), %d agent messages (%s)",
		t.requestID, state, iterations, len(t.messages), t.summary())
}

func (t *transcript) summary() string {
	var parts []string
	for _, m := range t.messages {
		switch p := m.Payload.(type) {
		case model.DraftRequestPayload:
			if p.Revision != nil {
				parts = append(parts, "revise")
			} else {
				parts = append(parts, "draft")
			}
		case model.DraftResultPayload:
			if p.Result.Degraded {
				parts = append(parts, "draft-degraded")
			}
		case model.VerifyRequestPayload:
			parts = append(parts, "verify")
		case model.VerifyResultPayload:
			parts = append(parts, fmt.Sprintf("conf=%.2f", p.Result.ConfidenceScore))
		case model.ErrorPayload:
			parts = append(parts, "error: "+p.Reason)
		}
	}
	return strings.Join(parts, " ")
}
