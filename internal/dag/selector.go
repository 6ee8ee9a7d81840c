package dag

import (
	"strings"

	"github.com/foundryhq/foundry/internal/ferrors"
)

// parseSelector recognizes the four selector forms of spec.md §4.4, each
// distinguished by its exact bracket count (not merely bracket presence):
//
//	"<name>"    single-node execution
//	"<<name>"   all upstreams of name, including name
//	"<name>>"   all downstreams of name, including name
//	"<<name>>"  both, deduplicated
//
// Returns the bare node name and which direction(s) to include.
type selectorForm struct {
	name              string
	includeUpstream   bool
	includeDownstream bool
}

func parseSelector(selector string) (selectorForm, error) {
	s := selector

	leading := leadingAngleCount(s)
	trailing := trailingAngleCount(s)
	if leading == 0 || leading > 2 || trailing == 0 || trailing > 2 {
		return selectorForm{}, ferrors.NewInvalidDirection(selector)
	}

	name := s[leading : len(s)-trailing]
	if name == "" || strings.ContainsAny(name, "<>") {
		return selectorForm{}, ferrors.NewInvalidDirection(selector)
	}

	switch {
	case leading == 2 && trailing == 2:
		return selectorForm{name: name, includeUpstream: true, includeDownstream: true}, nil
	case leading == 2 && trailing == 1:
		return selectorForm{name: name, includeUpstream: true}, nil
	case leading == 1 && trailing == 2:
		return selectorForm{name: name, includeDownstream: true}, nil
	default: // leading == 1 && trailing == 1
		return selectorForm{name: name}, nil
	}
}

func leadingAngleCount(s string) int {
	n := 0
	for n < len(s) && s[n] == '<' {
		n++
	}
	return n
}

func trailingAngleCount(s string) int {
	n := 0
	for n < len(s) && s[len(s)-1-n] == '>' {
		n++
	}
	return n
}

// ExecutionOrder resolves selector against g and returns the matching nodes
// in topological order (spec.md §4.4 `execution_order`).
func (g *Graph) ExecutionOrder(selector string) ([]*Node, error) {
	form, err := parseSelector(selector)
	if err != nil {
		return nil, err
	}
	if !g.Has(form.name) {
		return nil, ferrors.NewNotFound("dag node", form.name)
	}

	if !form.includeUpstream && !form.includeDownstream {
		n, _ := g.Node(form.name)
		if !n.IsExecutable {
			return nil, ferrors.NewUnsupported("node " + form.name + " is not executable")
		}
		return []*Node{n}, nil
	}

	included := map[string]bool{}
	if form.includeUpstream {
		names, err := g.TransitiveClosure(form.name, Incoming)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			included[n] = true
		}
	}
	if form.includeDownstream {
		names, err := g.TransitiveClosure(form.name, Outgoing)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			included[n] = true
		}
	}

	var out []*Node
	for _, n := range g.TopologicalOrder() {
		if included[n.Name] {
			out = append(out, n)
		}
	}
	return out, nil
}
