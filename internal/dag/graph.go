package dag

import (
	"sort"

	"github.com/foundryhq/foundry/internal/ferrors"
)

// Graph is the resolved, cycle-checked dependency graph. It is built once
// per compile and is read-only for the remainder of the invocation.
type Graph struct {
	nodes        map[string]*Node
	insertOrder  []string
	downstream   map[string]map[string]bool // upstream -> set of downstream names
	upstream     map[string]map[string]bool // downstream -> set of upstream names
	modelBareNames map[string]string          // bare model name -> qualified "schema.name"
}

func newGraph() *Graph {
	return &Graph{
		nodes:          make(map[string]*Node),
		downstream:     make(map[string]map[string]bool),
		upstream:       make(map[string]map[string]bool),
		modelBareNames: make(map[string]string),
	}
}

// ResolveModelRef maps a `ref(model_name)` argument (a model's bare name, as
// written in SQL) to its DAG node's qualified "schema.name" form. Returns
// false if the bare name is unknown or ambiguous across schemas.
func (g *Graph) ResolveModelRef(bareName string) (string, bool) {
	qualified, ok := g.modelBareNames[bareName]
	if !ok || qualified == "" {
		return "", false
	}
	return qualified, true
}

func (g *Graph) addNode(n *Node) error {
	if _, exists := g.nodes[n.Name]; exists {
		return ferrors.NewDuplicate("dag node", n.Name)
	}
	g.nodes[n.Name] = n
	g.insertOrder = append(g.insertOrder, n.Name)
	g.downstream[n.Name] = make(map[string]bool)
	g.upstream[n.Name] = make(map[string]bool)
	return nil
}

// addEdge is idempotent: introducing the same (upstream, downstream) pair
// twice is a no-op, not an error (spec.md §3 "Edge").
func (g *Graph) addEdge(upstream, downstream string) {
	g.downstream[upstream][downstream] = true
	g.upstream[downstream][upstream] = true
}

func (g *Graph) Node(name string) (*Node, error) {
	n, ok := g.nodes[name]
	if !ok {
		return nil, ferrors.NewNotFound("dag node", name)
	}
	return n, nil
}

func (g *Graph) Has(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// NodeNames returns every node name in insertion order.
func (g *Graph) NodeNames() []string {
	return append([]string(nil), g.insertOrder...)
}

// TopologicalOrder returns every node in a valid topological order, ties
// broken by name ascending (spec.md §4.4, testable property 5).
func (g *Graph) TopologicalOrder() []*Node {
	inDegree := make(map[string]int, len(g.nodes))
	for name := range g.nodes {
		inDegree[name] = len(g.upstream[name])
	}

	var ready []string
	for name, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	var order []*Node
	for len(ready) > 0 {
		sort.Strings(ready)
		name := ready[0]
		ready = ready[1:]
		order = append(order, g.nodes[name])

		downstreamNames := make([]string, 0, len(g.downstream[name]))
		for d := range g.downstream[name] {
			downstreamNames = append(downstreamNames, d)
		}
		sort.Strings(downstreamNames)
		for _, d := range downstreamNames {
			inDegree[d]--
			if inDegree[d] == 0 {
				ready = append(ready, d)
			}
		}
	}
	return order
}

// Direction selects which side of a seed node TransitiveClosure walks.
type Direction int

const (
	Incoming Direction = iota
	Outgoing
)

// TransitiveClosure returns every node reachable from name in the given
// direction, including the seed, order unspecified beyond determinism of
// the underlying BFS (callers typically re-sort via TopologicalOrder).
func (g *Graph) TransitiveClosure(name string, dir Direction) ([]string, error) {
	if !g.Has(name) {
		return nil, ferrors.NewNotFound("dag node", name)
	}
	visited := map[string]bool{name: true}
	queue := []string{name}
	var order []string
	adjacency := g.downstream
	if dir == Incoming {
		adjacency = g.upstream
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		neighbors := make([]string, 0, len(adjacency[cur]))
		for n := range adjacency[cur] {
			neighbors = append(neighbors, n)
		}
		sort.Strings(neighbors)
		for _, n := range neighbors {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return order, nil
}

// IncludedNodes returns every executable node in topological order
// (spec.md §4.4 `included_nodes`).
func (g *Graph) IncludedNodes() []*Node {
	var out []*Node
	for _, n := range g.TopologicalOrder() {
		if n.IsExecutable {
			out = append(out, n)
		}
	}
	return out
}

// DependsOn returns the sorted list of direct upstream names for manifest emission.
func (g *Graph) DependsOn(name string) []string {
	names := make([]string, 0, len(g.upstream[name]))
	for n := range g.upstream[name] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Edges returns every (upstream, downstream) pair, sorted for deterministic output.
func (g *Graph) Edges() [][2]string {
	var out [][2]string
	for u, downs := range g.downstream {
		for d := range downs {
			out = append(out, [2]string{u, d})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}
