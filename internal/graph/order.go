package graph

import "fmt"

// dependents maps each node to the nodes its outputs feed, in connection
// insertion order.
func (g *Graph) dependents() map[int32][]int32 {
	out := make(map[int32][]int32, len(g.entries))
	for _, c := range g.data {
		out[c.FromNode] = append(out[c.FromNode], c.ToNode)
	}
	return out
}

// reachable reports whether to can be reached from from by following data
// connections downstream. A node reaches itself.
func (g *Graph) reachable(from, to int32) bool {
	deps := g.dependents()
	seen := make(map[int32]bool)
	stack := []int32{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, deps[id]...)
	}
	return false
}

// DetectCycles checks the data connections for cycles. It returns a non-nil
// error naming the first node found on a cycle.
func (g *Graph) DetectCycles() error {
	deps := g.dependents()

	// Classic depth-first search with three sets of nodes:
	// permanent: fully visited and not part of a cycle.
	// temporary: on the recursion stack of the current traversal.
	// unvisited: everything else.
	permanent := make(map[int32]bool)
	temporary := make(map[int32]bool)

	var visit func(id int32) error
	visit = func(id int32) error {
		if permanent[id] {
			return nil
		}
		if temporary[id] {
			return fmt.Errorf("cycle detected involving node %d", id)
		}

		temporary[id] = true
		for _, dependent := range deps[id] {
			if err := visit(dependent); err != nil {
				return err
			}
		}
		delete(temporary, id)
		permanent[id] = true
		return nil
	}

	for _, e := range g.entries {
		if err := visit(e.ID); err != nil {
			return err
		}
	}
	return nil
}

// TopologicalOrder returns the node identifiers ordered so that every node
// comes after all nodes feeding it data. Ties keep insertion order.
func (g *Graph) TopologicalOrder() ([]int32, error) {
	ids := make([]int32, len(g.entries))
	for i, e := range g.entries {
		ids[i] = e.ID
	}
	return TopologicalSort(ids, g.data)
}

// TopologicalSort orders ids so that the source of every edge precedes its
// target, keeping the given order among independent nodes. Edges touching
// unknown ids are ignored. On a cycle it returns the nodes it could order
// together with an error.
func TopologicalSort(ids []int32, edges []Connection) ([]int32, error) {
	indegree := make(map[int32]int, len(ids))
	for _, id := range ids {
		indegree[id] = 0
	}
	deps := make(map[int32][]int32)
	for _, c := range edges {
		if _, ok := indegree[c.ToNode]; !ok {
			continue
		}
		if _, ok := indegree[c.FromNode]; !ok {
			continue
		}
		deps[c.FromNode] = append(deps[c.FromNode], c.ToNode)
		indegree[c.ToNode]++
	}

	order := make([]int32, 0, len(ids))
	done := make(map[int32]bool, len(ids))
	for len(order) < len(ids) {
		progressed := false
		for _, id := range ids {
			if done[id] || indegree[id] > 0 {
				continue
			}
			done[id] = true
			order = append(order, id)
			for _, d := range deps[id] {
				indegree[d]--
			}
			progressed = true
		}
		if !progressed {
			return order, fmt.Errorf("data connections contain a cycle")
		}
	}
	return order, nil
}
