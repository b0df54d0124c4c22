// Package plan derives implementation epics and backlog stories from an
// approved requirements document, and orders them by their blocked_by
// dependencies. Dependency cycles are rejected outright rather than broken
// arbitrarily.
package plan

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/agenthands/blueprint/internal/core/generate"
	"github.com/agenthands/blueprint/internal/core/model"
)

type Planner struct {
	Generator *generate.Generator
}

func NewPlanner(g *generate.Generator) *Planner {
	return &Planner{Generator: g}
}

// DeriveEpics turns an approved document into a set of epics with a
// deterministic implementation order. The model output is positional:
// section n becomes EPIC-n, and blockers are referenced by that ID.
func (p *Planner) DeriveEpics(ctx context.Context, brd *model.Document) (*model.EpicsOutput, error) {
	if brd == nil || len(brd.Sections) == 0 {
		return nil, fmt.Errorf("cannot derive epics from an empty document")
	}

	agg := &model.AggregatedContext{
		Request: renderDocument(brd),
		AdvisoryNotes: []string{
			"One section per epic, named after the epic title.",
			"Reference blockers inside a section as a line 'Blocked by: EPIC-n' where n is the 1-based position of the blocking epic in your list.",
		},
	}

	result := p.Generator.Generate(ctx, agg, model.KindEpics, nil)

	out := &model.EpicsOutput{
		BRDTitle: brd.Title,
		Degraded: result.Degraded,
	}
	for i, section := range result.Document.Sections {
		body, blockedBy, _, _ := parseItemBody(section.Content)
		out.Epics = append(out.Epics, model.Epic{
			ID:          fmt.Sprintf("EPIC-%d", i+1),
			Title:       section.Name,
			Description: body,
			BlockedBy:   blockedBy,
		})
	}

	graph := newDepGraph()
	for i := range out.Epics {
		epic := &out.Epics[i]
		epic.BlockedBy = pruneUnknown(epic.ID, epic.BlockedBy, epicIDs(out.Epics))
		graph.add(epic.ID, epic.BlockedBy)
	}
	if err := graph.validate(); err != nil {
		return nil, fmt.Errorf("epic dependencies invalid: %w", err)
	}
	out.ImplementationOrder = graph.order()

	return out, nil
}

// DeriveBacklog expands epics into user stories, again positionally:
// section n becomes STORY-n. Stories may block each other and must name
// their parent epic.
func (p *Planner) DeriveBacklog(ctx context.Context, epics *model.EpicsOutput) (*model.BacklogOutput, error) {
	if epics == nil || len(epics.Epics) == 0 {
		return nil, fmt.Errorf("cannot derive a backlog from an empty epic set")
	}

	agg := &model.AggregatedContext{
		Request: renderEpics(epics),
		AdvisoryNotes: []string{
			"One section per story, named after the story title.",
			"Each section must contain a line 'Epic: EPIC-n' naming its parent epic.",
			"Estimate effort with a line 'Points: n' (1, 2, 3, 5, or 8).",
			"Reference blocking stories as a line 'Blocked by: STORY-n' where n is the 1-based position of the blocking story in your list.",
		},
	}

	result := p.Generator.Generate(ctx, agg, model.KindBacklog, nil)

	out := &model.BacklogOutput{
		Epics:    epics.Epics,
		Degraded: epics.Degraded || result.Degraded,
	}

	knownEpics := epicIDs(epics.Epics)
	for i, section := range result.Document.Sections {
		body, blockedBy, epicID, points := parseItemBody(section.Content)
		if !knownEpics[epicID] {
			log.Printf("Warning: story %q references unknown epic %q", section.Name, epicID)
			epicID = ""
		}
		out.Stories = append(out.Stories, model.Story{
			ID:              fmt.Sprintf("STORY-%d", i+1),
			EpicID:          epicID,
			Title:           section.Name,
			Description:     body,
			EstimatedPoints: points,
			BlockedBy:       blockedBy,
		})
		out.TotalPoints += points
	}

	known := make(map[string]bool, len(out.Stories))
	for _, s := range out.Stories {
		known[s.ID] = true
	}
	graph := newDepGraph()
	for i := range out.Stories {
		story := &out.Stories[i]
		story.BlockedBy = pruneUnknown(story.ID, story.BlockedBy, known)
		graph.add(story.ID, story.BlockedBy)
	}
	if err := graph.validate(); err != nil {
		return nil, fmt.Errorf("story dependencies invalid: %w", err)
	}
	out.ImplementationOrder = graph.order()

	return out, nil
}

// parseItemBody splits the structured trailer lines out of a section body,
// returning the remaining description text.
func parseItemBody(content string) (body string, blockedBy []string, epicID string, points int) {
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lower, "blocked by:"):
			for _, ref := range strings.Split(trimmed[len("blocked by:"):], ",") {
				if ref = strings.TrimSpace(ref); ref != "" {
					blockedBy = append(blockedBy, strings.ToUpper(ref))
				}
			}
		case strings.HasPrefix(lower, "epic:"):
			epicID = strings.ToUpper(strings.TrimSpace(trimmed[len("epic:"):]))
		case strings.HasPrefix(lower, "points:"):
			if n, err := strconv.Atoi(strings.TrimSpace(trimmed[len("points:"):])); err == nil && n > 0 {
				points = n
			}
		default:
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n")), blockedBy, epicID, points
}

// pruneUnknown drops references to IDs that do not exist. Model output is
// untrusted; a dangling blocker is logged and ignored rather than failing
// the whole derivation. Cycles among real items still fail it.
func pruneUnknown(id string, refs []string, known map[string]bool) []string {
	var kept []string
	for _, ref := range refs {
		if !known[ref] {
			log.Printf("Warning: %s is blocked by unknown item %s, ignoring", id, ref)
			continue
		}
		kept = append(kept, ref)
	}
	return kept
}

func epicIDs(epics []model.Epic) map[string]bool {
	out := make(map[string]bool, len(epics))
	for _, e := range epics {
		out[e.ID] = true
	}
	return out
}

func renderDocument(doc *model.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	for _, s := range doc.Sections {
		fmt.Fprintf(&b, "## %s\n%s\n\n", s.Name, s.Content)
	}
	return b.String()
}

func renderEpics(epics *model.EpicsOutput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Epics for: %s\n\n", epics.BRDTitle)
	for _, e := range epics.Epics {
		fmt.Fprintf(&b, "## %s: %s\n%s\n", e.ID, e.Title, e.Description)
		if len(e.BlockedBy) > 0 {
			fmt.Fprintf(&b, "Blocked by: %s\n", strings.Join(e.BlockedBy, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
