package plan

import (
	"fmt"
	"sort"
	"strings"
)

// depGraph is a blocked_by adjacency over work-item IDs. An edge A -> B
// means A is blocked by B, so B must come first in implementation order.
type depGraph struct {
	ids       []string
	blockedBy map[string][]string
}

func newDepGraph() *depGraph {
	return &depGraph{blockedBy: make(map[string][]string)}
}

func (g *depGraph) add(id string, blockedBy []string) {
	g.ids = append(g.ids, id)
	g.blockedBy[id] = blockedBy
}

// validate rejects unknown blocked_by references and cycles. A rejected
// graph never reaches ordering; the error names the offending reference or
// the full cycle.
func (g *depGraph) validate() error {
	known := make(map[string]bool, len(g.ids))
	for _, id := range g.ids {
		known[id] = true
	}
	for _, id := range g.ids {
		for _, dep := range g.blockedBy[id] {
			if !known[dep] {
				return fmt.Errorf("%s is blocked by unknown item %s", id, dep)
			}
		}
	}

	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(g.ids))
	var stack []string

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case done:
			return nil
		case inStack:
			// Trim the stack to the cycle itself.
			start := 0
			for i, s := range stack {
				if s == id {
					start = i
					break
				}
			}
			cycle := append(append([]string{}, stack[start:]...), id)
			return fmt.Errorf("dependency cycle: %s", strings.Join(cycle, " -> "))
		}
		state[id] = inStack
		stack = append(stack, id)
		for _, dep := range g.blockedBy[id] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
		return nil
	}

	for _, id := range g.ids {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// order returns a topological implementation order: blockers before the
// items they block, ties broken by ID so the order is deterministic. The
// graph must have been validated first.
func (g *depGraph) order() []string {
	blocking := make(map[string][]string, len(g.ids))
	indegree := make(map[string]int, len(g.ids))
	for _, id := range g.ids {
		indegree[id] = len(g.blockedBy[id])
		for _, dep := range g.blockedBy[id] {
			blocking[dep] = append(blocking[dep], id)
		}
	}

	var ready []string
	for _, id := range g.ids {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	out := make([]string, 0, len(g.ids))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		out = append(out, id)

		unblocked := false
		for _, next := range blocking[id] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
				unblocked = true
			}
		}
		if unblocked {
			sort.Strings(ready)
		}
	}
	return out
}
