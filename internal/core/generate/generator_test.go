package generate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/blueprint/internal/core/model"
)

type MockLLM struct {
	Response      string
	ResponseQueue []string
	Err           error
	LastPrompt    string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.LastPrompt = prompt
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

func testContext() *model.AggregatedContext {
	return &model.AggregatedContext{
		Request: "add refunds to checkout",
		Architecture: model.ArchitectureContext{
			Components: []model.ComponentInfo{
				{Name: "OrderService", Type: "service", Path: "internal/order/service.go", Dependencies: []string{"PaymentService"}},
			},
		},
	}
}

func TestGenerateParsesDraft(t *testing.T) {
	mock := &MockLLM{Response: `{
		"title": "Refunds in Checkout",
		"sections": [
			{"name": "Business Context", "content": "Refunds are requested often."},
			{"name": "Dependencies", "content": "OrderService depends on PaymentService."}
		]
	}`}
	g := NewGenerator(mock)

	result := g.Generate(context.Background(), testContext(), model.KindBRD, nil)

	assert.False(t, result.Degraded)
	assert.Equal(t, "Refunds in Checkout", result.Document.Title)
	assert.Len(t, result.Document.Sections, 2)
	assert.Equal(t, model.KindBRD, result.Document.Kind)
	assert.Contains(t, mock.LastPrompt, "OrderService")
	assert.Contains(t, mock.LastPrompt, "add refunds to checkout")
}

func TestGenerateFallbackOnLLMError(t *testing.T) {
	g := NewGenerator(&MockLLM{Err: errors.New("timeout")})

	result := g.Generate(context.Background(), testContext(), model.KindBRD, nil)

	assert.True(t, result.Degraded)
	assert.Contains(t, result.Reason, "llm call failed")
	assert.NotEmpty(t, result.Document.Title)
	assert.NotEmpty(t, result.Document.Sections)
}

// Unparseable output degrades to the minimal document with the raw text
// kept in the notes, never an error.
func TestGenerateFallbackOnMalformedOutput(t *testing.T) {
	g := NewGenerator(&MockLLM{Response: "Sure! Here is a BRD without any JSON."})

	result := g.Generate(context.Background(), testContext(), model.KindBRD, nil)

	assert.True(t, result.Degraded)
	assert.Equal(t, "Sure! Here is a BRD without any JSON.", result.Document.Notes)
	if _, ok := result.Document.Section("Business Context"); !ok {
		t.Fatal("fallback document must carry a Business Context section")
	}
}

func TestGenerateRevisionPreservesUnflaggedSections(t *testing.T) {
	previous := model.Document{
		Kind:  model.KindBRD,
		Title: "Refunds in Checkout",
		Sections: []model.Section{
			{Name: "Business Context", Content: "verified context"},
			{Name: "Dependencies", Content: "OrderService depends on EmailService."},
			{Name: "Objectives", Content: "verified objectives"},
		},
	}
	revision := &model.Revision{
		Feedback: model.RevisionFeedback{Sections: []model.SectionFeedback{
			{Section: "Dependencies", Status: model.StatusContradicted, Issues: []string{"no such edge"}},
		}},
		Previous: previous,
	}

	// The model rewrites everything; only the flagged section may land.
	mock := &MockLLM{Response: `{
		"title": "Totally Renamed",
		"sections": [
			{"name": "Business Context", "content": "rewritten context"},
			{"name": "Dependencies", "content": "OrderService depends on PaymentService."},
			{"name": "Objectives", "content": "rewritten objectives"}
		]
	}`}
	g := NewGenerator(mock)

	result := g.Generate(context.Background(), testContext(), model.KindBRD, revision)

	assert.False(t, result.Degraded)
	assert.Equal(t, "Refunds in Checkout", result.Document.Title)

	ctxSection, _ := result.Document.Section("Business Context")
	assert.Equal(t, "verified context", ctxSection.Content)
	objSection, _ := result.Document.Section("Objectives")
	assert.Equal(t, "verified objectives", objSection.Content)
	depSection, _ := result.Document.Section("Dependencies")
	assert.Equal(t, "OrderService depends on PaymentService.", depSection.Content)

	assert.Contains(t, mock.LastPrompt, "Revision Request")
	assert.Contains(t, mock.LastPrompt, "no such edge")
}

func TestGenerateRevisionKeepsFlaggedWhenModelDropsIt(t *testing.T) {
	previous := model.Document{
		Title: "Draft",
		Sections: []model.Section{
			{Name: "Dependencies", Content: "old content"},
		},
	}
	revision := &model.Revision{
		Feedback: model.RevisionFeedback{Sections: []model.SectionFeedback{
			{Section: "Dependencies", Status: model.StatusUnverified},
		}},
		Previous: previous,
	}
	mock := &MockLLM{Response: `{"title": "Draft", "sections": [{"name": "Unrelated", "content": "noise"}]}`}
	g := NewGenerator(mock)

	result := g.Generate(context.Background(), testContext(), model.KindBRD, revision)

	dep, ok := result.Document.Section("Dependencies")
	assert.True(t, ok)
	assert.Equal(t, "old content", dep.Content)
	if _, ok := result.Document.Section("Unrelated"); ok {
		t.Fatal("sections invented for unflagged names must be discarded")
	}
}

func TestGenerateKindHeaders(t *testing.T) {
	mock := &MockLLM{Response: `{"title": "T", "sections": [{"name": "S", "content": "c"}]}`}
	g := NewGenerator(mock)

	g.Generate(context.Background(), testContext(), model.KindEpics, nil)
	assert.True(t, strings.HasPrefix(mock.LastPrompt, "Derive implementation epics"))

	g.Generate(context.Background(), testContext(), model.KindBacklog, nil)
	assert.True(t, strings.HasPrefix(mock.LastPrompt, "Derive backlog user stories"))
}

// A long multi-byte request truncates the fallback title on a rune
// boundary, never mid-sequence.
func TestGenerateFallbackTitleMultibyte(t *testing.T) {
	g := NewGenerator(&MockLLM{Err: errors.New("timeout")})
	agg := testContext()
	agg.Request = strings.Repeat("支払", 50)

	result := g.Generate(context.Background(), agg, model.KindBRD, nil)

	assert.True(t, result.Degraded)
	assert.True(t, utf8.ValidString(result.Document.Title))
	assert.Equal(t, 67, utf8.RuneCountInString(result.Document.Title))
}
