package dag

import (
	"sort"

	"github.com/foundryhq/foundry/internal/ferrors"
)

// detectCycle runs Tarjan's strongly-connected-components algorithm over
// g's downstream adjacency and returns the first non-trivial SCC it finds
// (by ascending order of the SCC's smallest member name), sorted name
// ascending, or nil if the graph is acyclic (spec.md §4.4 construction
// step 5).
func (g *Graph) detectCycle() []string {
	names := g.NodeNames()
	sort.Strings(names)

	index := make(map[string]int)
	lowlink := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	counter := 0
	var sccs [][]string

	var strongconnect func(v string)
	strongconnect = func(v string) {
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		neighbors := make([]string, 0, len(g.downstream[v]))
		for n := range g.downstream[v] {
			neighbors = append(neighbors, n)
		}
		sort.Strings(neighbors)

		for _, w := range neighbors {
			if _, visited := index[w]; !visited {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
		}

		if lowlink[v] == index[v] {
			var scc []string
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, name := range names {
		if _, visited := index[name]; !visited {
			strongconnect(name)
		}
	}

	var nonTrivial [][]string
	for _, scc := range sccs {
		if len(scc) > 1 {
			nonTrivial = append(nonTrivial, scc)
			continue
		}
		// a single-node SCC is still a cycle if it has a self-edge
		n := scc[0]
		if g.downstream[n][n] {
			nonTrivial = append(nonTrivial, scc)
		}
	}
	if len(nonTrivial) == 0 {
		return nil
	}
	for i := range nonTrivial {
		sort.Strings(nonTrivial[i])
	}
	sort.Slice(nonTrivial, func(i, j int) bool { return nonTrivial[i][0] < nonTrivial[j][0] })
	return nonTrivial[0]
}

func cycleError(nodes []string) error {
	return ferrors.NewCycleDetected(nodes)
}
