package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDepGraphOrderBlockersFirst(t *testing.T) {
	g := newDepGraph()
	g.add("EPIC-1", []string{"EPIC-3"})
	g.add("EPIC-2", nil)
	g.add("EPIC-3", []string{"EPIC-2"})

	assert.NoError(t, g.validate())
	assert.Equal(t, []string{"EPIC-2", "EPIC-3", "EPIC-1"}, g.order())
}

// Ties break by ID so the order is stable across runs.
func TestDepGraphOrderDeterministicTieBreak(t *testing.T) {
	g := newDepGraph()
	g.add("STORY-3", nil)
	g.add("STORY-1", nil)
	g.add("STORY-2", nil)

	assert.Equal(t, []string{"STORY-1", "STORY-2", "STORY-3"}, g.order())
}

func TestDepGraphValidateRejectsCycle(t *testing.T) {
	g := newDepGraph()
	g.add("EPIC-1", []string{"EPIC-2"})
	g.add("EPIC-2", []string{"EPIC-3"})
	g.add("EPIC-3", []string{"EPIC-1"})

	err := g.validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "dependency cycle")
	assert.Contains(t, err.Error(), "EPIC-1")
	assert.Contains(t, err.Error(), "EPIC-2")
	assert.Contains(t, err.Error(), "EPIC-3")
}

func TestDepGraphValidateRejectsSelfLoop(t *testing.T) {
	g := newDepGraph()
	g.add("EPIC-1", []string{"EPIC-1"})

	assert.Error(t, g.validate())
}

func TestDepGraphValidateRejectsUnknownReference(t *testing.T) {
	g := newDepGraph()
	g.add("EPIC-1", []string{"EPIC-9"})

	err := g.validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "EPIC-9")
}
