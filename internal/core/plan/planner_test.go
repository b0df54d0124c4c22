package plan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/blueprint/internal/core/generate"
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

func approvedBRD() *model.Document {
	return &model.Document{
		Kind:  model.KindBRD,
		Title: "Refunds in Checkout",
		Sections: []model.Section{
			{Name: "Business Context", Content: "Customers ask for refunds."},
			{Name: "Objectives", Content: "Support partial refunds."},
		},
	}
}

func TestDeriveEpicsOrdersByBlockers(t *testing.T) {
	mock := &MockLLM{Response: `{
		"title": "Refund Epics",
		"sections": [
			{"name": "Refund API", "content": "Expose refund endpoints.\nBlocked by: EPIC-2"},
			{"name": "Refund Data Model", "content": "Persist refund records."}
		]
	}`}
	p := NewPlanner(generate.NewGenerator(mock))

	out, err := p.DeriveEpics(context.Background(), approvedBRD())

	assert.NoError(t, err)
	assert.Equal(t, "Refunds in Checkout", out.BRDTitle)
	assert.Len(t, out.Epics, 2)
	assert.Equal(t, "EPIC-1", out.Epics[0].ID)
	assert.Equal(t, "Refund API", out.Epics[0].Title)
	assert.Equal(t, []string{"EPIC-2"}, out.Epics[0].BlockedBy)
	assert.Equal(t, "Expose refund endpoints.", out.Epics[0].Description)
	assert.Equal(t, []string{"EPIC-2", "EPIC-1"}, out.ImplementationOrder)
	assert.False(t, out.Degraded)

	assert.Contains(t, mock.LastPrompt, "Refunds in Checkout")
	assert.Contains(t, mock.LastPrompt, "Customers ask for refunds.")
}

func TestDeriveEpicsRejectsCycle(t *testing.T) {
	mock := &MockLLM{Response: `{
		"title": "Refund Epics",
		"sections": [
			{"name": "A", "content": "a\nBlocked by: EPIC-2"},
			{"name": "B", "content": "b\nBlocked by: EPIC-1"}
		]
	}`}
	p := NewPlanner(generate.NewGenerator(mock))

	_, err := p.DeriveEpics(context.Background(), approvedBRD())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "dependency cycle")
}

func TestDeriveEpicsPrunesUnknownBlockers(t *testing.T) {
	mock := &MockLLM{Response: `{
		"title": "Refund Epics",
		"sections": [
			{"name": "A", "content": "a\nBlocked by: EPIC-7"}
		]
	}`}
	p := NewPlanner(generate.NewGenerator(mock))

	out, err := p.DeriveEpics(context.Background(), approvedBRD())

	assert.NoError(t, err)
	assert.Empty(t, out.Epics[0].BlockedBy)
	assert.Equal(t, []string{"EPIC-1"}, out.ImplementationOrder)
}

func TestDeriveEpicsEmptyDocument(t *testing.T) {
	p := NewPlanner(generate.NewGenerator(&MockLLM{}))

	_, err := p.DeriveEpics(context.Background(), &model.Document{})

	assert.Error(t, err)
}

func TestDeriveEpicsDegradedFallback(t *testing.T) {
	p := NewPlanner(generate.NewGenerator(&MockLLM{Err: errors.New("timeout")}))

	out, err := p.DeriveEpics(context.Background(), approvedBRD())

	assert.NoError(t, err)
	assert.True(t, out.Degraded)
	assert.NotEmpty(t, out.Epics)
}

func TestDeriveBacklogParsesStories(t *testing.T) {
	mock := &MockLLM{Response: `{
		"title": "Refund Backlog",
		"sections": [
			{"name": "Add refund endpoint", "content": "Epic: EPIC-1\nPoints: 3\nImplement POST /refunds."},
			{"name": "Record refunds", "content": "Epic: EPIC-1\nPoints: 5\nBlocked by: STORY-1\nPersist refund rows."}
		]
	}`}
	p := NewPlanner(generate.NewGenerator(mock))

	epics := &model.EpicsOutput{
		BRDTitle: "Refunds in Checkout",
		Epics: []model.Epic{
			{ID: "EPIC-1", Title: "Refund API", Description: "Expose refund endpoints."},
		},
	}

	out, err := p.DeriveBacklog(context.Background(), epics)

	assert.NoError(t, err)
	assert.Len(t, out.Stories, 2)
	assert.Equal(t, "STORY-1", out.Stories[0].ID)
	assert.Equal(t, "EPIC-1", out.Stories[0].EpicID)
	assert.Equal(t, 3, out.Stories[0].EstimatedPoints)
	assert.Equal(t, "Implement POST /refunds.", out.Stories[0].Description)
	assert.Equal(t, []string{"STORY-1"}, out.Stories[1].BlockedBy)
	assert.Equal(t, []string{"STORY-1", "STORY-2"}, out.ImplementationOrder)
	assert.Equal(t, 8, out.TotalPoints)
}

func TestDeriveBacklogUnknownEpicReference(t *testing.T) {
	mock := &MockLLM{Response: `{
		"title": "Backlog",
		"sections": [
			{"name": "Orphan story", "content": "Epic: EPIC-9\nPoints: 2\nWork."}
		]
	}`}
	p := NewPlanner(generate.NewGenerator(mock))

	epics := &model.EpicsOutput{Epics: []model.Epic{{ID: "EPIC-1", Title: "A"}}}
	out, err := p.DeriveBacklog(context.Background(), epics)

	assert.NoError(t, err)
	assert.Empty(t, out.Stories[0].EpicID)
}

func TestDeriveBacklogEmptyEpics(t *testing.T) {
	p := NewPlanner(generate.NewGenerator(&MockLLM{}))

	_, err := p.DeriveBacklog(context.Background(), &model.EpicsOutput{})

	assert.Error(t, err)
}
