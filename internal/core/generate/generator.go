// Package generate wraps the drafting model. A failed or unparseable model
// call never surfaces as an error: the result carries a minimal valid
// document with the Degraded flag set, and the raw output preserved in the
// document notes.
package generate

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agenthands/blueprint/internal/core/common"
	"github.com/agenthands/blueprint/internal/core/model"
	"github.com/agenthands/blueprint/internal/llm"
)

type Generator struct {
	LLM llm.Client
}

func NewGenerator(client llm.Client) *Generator {
	return &Generator{LLM: client}
}

type draftDocument struct {
	Title    string `json:"title"`
	Sections []struct {
		Name    string `json:"name"`
		Content string `json:"content"`
	} `json:"sections"`
}

// Generate produces a draft of the requested kind. When revision is non-nil
// the previous draft's unflagged sections are carried forward verbatim and
// the model only redrafts the flagged ones.
func (g *Generator) Generate(ctx context.Context, agg *model.AggregatedContext, kind model.DocumentKind, revision *model.Revision) model.GenerationResult {
	prompt := g.buildPrompt(agg, kind, revision)

	response, err := g.LLM.Generate(ctx, prompt)
	if err != nil {
		return g.fallback(agg, kind, "", fmt.Sprintf("llm call failed: %v", err))
	}

	draft, err := common.ParseJSON[draftDocument](response)
	if err != nil {
		return g.fallback(agg, kind, response, fmt.Sprintf("malformed document: %v", err))
	}

	doc := model.Document{
		Kind:  kind,
		Title: draft.Title,
	}
	for _, s := range draft.Sections {
		doc.Sections = append(doc.Sections, model.Section{Name: s.Name, Content: s.Content})
	}

	if doc.Title == "" || len(doc.Sections) == 0 {
		return g.fallback(agg, kind, response, "model returned an empty document")
	}

	if revision != nil {
		doc = mergeRevision(revision, doc)
	}

	return model.GenerationResult{Document: doc}
}

// mergeRevision keeps every unflagged section from the previous draft and
// takes flagged sections from the new one. New sections the model invented
// for unflagged names are discarded to preserve verified content.
func mergeRevision(revision *model.Revision, redraft model.Document) model.Document {
	flagged := revision.Feedback.FlaggedSections()

	merged := model.Document{
		Kind:  redraft.Kind,
		Title: revision.Previous.Title,
		Notes: redraft.Notes,
	}
	if merged.Title == "" {
		merged.Title = redraft.Title
	}

	for _, prev := range revision.Previous.Sections {
		if !flagged[prev.Name] {
			merged.Sections = append(merged.Sections, prev)
			continue
		}
		if next, ok := redraft.Section(prev.Name); ok {
			merged.Sections = append(merged.Sections, next)
		} else {
			merged.Sections = append(merged.Sections, prev)
		}
	}
	return merged
}

func (g *Generator) fallback(agg *model.AggregatedContext, kind model.DocumentKind, raw, reason string) model.GenerationResult {
	title := agg.Request
	if utf8.RuneCountInString(title) > 60 {
		title = string([]rune(title)[:60])
	}
	doc := model.Document{
		Kind:  kind,
		Title: fmt.Sprintf("Draft: %s", title),
		Sections: []model.Section{
			{Name: "Business Context", Content: agg.Request},
			{Name: "Objectives", Content: "Automatic generation degraded; review manually."},
		},
		Notes: raw,
	}
	return model.GenerationResult{Document: doc, Degraded: true, Reason: reason}
}

func (g *Generator) buildPrompt(agg *model.AggregatedContext, kind model.DocumentKind, revision *model.Revision) string {
	var b strings.Builder

	switch kind {
	case model.KindBRD:
		b.WriteString("Draft a Business Requirements Document for the feature request below.\n")
	case model.KindEpics:
		b.WriteString("Derive implementation epics from the approved document below.\n")
	case model.KindBacklog:
		b.WriteString("Derive backlog user stories from the approved epics below.\n")
	}

	b.WriteString("Ground every statement in the provided codebase context. ")
	b.WriteString("Do not invent components, dependencies, or files that are not listed.\n\n")

	fmt.Fprintf(&b, "## Feature Request\n%s\n\n", agg.Request)

	if len(agg.Architecture.Components) > 0 {
		b.WriteString("## Components\n")
		for _, c := range agg.Architecture.Components {
			fmt.Fprintf(&b, "- %s (%s) at %s", c.Name, c.Type, c.Path)
			if len(c.Dependencies) > 0 {
				fmt.Fprintf(&b, "; depends on %s", strings.Join(c.Dependencies, ", "))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(agg.Implementation.KeyFiles) > 0 {
		b.WriteString("## Key Files\n")
		for _, f := range agg.Implementation.KeyFiles {
			fmt.Fprintf(&b, "### %s\n%s\n\n", f.Path, f.Content)
		}
	}

	if len(agg.SimilarFeatures) > 0 {
		b.WriteString("## Similar Existing Features\n")
		for _, s := range agg.SimilarFeatures {
			fmt.Fprintf(&b, "- %s: %s\n", s.Name, s.Description)
		}
		b.WriteString("\n")
	}

	for _, note := range agg.AdvisoryNotes {
		fmt.Fprintf(&b, "Note: %s\n", note)
	}

	if revision != nil {
		b.WriteString("\n## Revision Request\n")
		b.WriteString("This is a revision, not a fresh draft. Redraft ONLY the sections listed below; all other sections are already verified and must be returned unchanged.\n")
		for _, sf := range revision.Feedback.Sections {
			fmt.Fprintf(&b, "\n### Section: %s (%s)\n", sf.Section, sf.Status)
			for _, issue := range sf.Issues {
				fmt.Fprintf(&b, "- %s\n", issue)
			}
		}
		b.WriteString("\n## Previous Draft\n")
		for _, s := range revision.Previous.Sections {
			fmt.Fprintf(&b, "### %s\n%s\n\n", s.Name, s.Content)
		}
	}

	b.WriteString("\nReturn a JSON object: {\"title\": string, \"sections\": [{\"name\": string, \"content\": string}]}. No other text.\n")
	return b.String()
}
