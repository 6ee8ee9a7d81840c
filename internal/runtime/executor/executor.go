// Package executor dispatches a resolved node set in topological order,
// generalizing the teacher's internal/engine level-by-level fan-out
// (goroutines per level, sync.Once capturing the first error, cancel on
// failure) from the teacher's flat step list to a DAG whose nodes may be
// Models, Python jobs, connectors, or passive infrastructure nodes
// (SourceDb/WarehouseDb/KafkaTopic/KafkaPipeline/KafkaSmt/KafkaPredicate)
// that carry no runtime work of their own. Levels aren't precomputed here
// the way the teacher's flat step list allows: an arbitrary selector subset
// of a heterogeneous DAG has no single "level" field to read off a plan, so
// the frontier (the next batch of zero-remaining-dependency nodes) is
// recomputed after each round instead.
package executor

import (
	"context"
	"sync"

	"github.com/foundryhq/foundry/internal/dag"
	"github.com/foundryhq/foundry/internal/ferrors"
)

// NodeRunner executes one node kind's runtime work.
type NodeRunner interface {
	Run(ctx context.Context, n *dag.Node) error
}

// Dispatcher fans work out to the runner registered for each node's kind.
// Nodes with no registered runner (infrastructure nodes the selector swept
// in for ordering purposes only) complete immediately without doing work.
type Dispatcher struct {
	Runners map[dag.Kind]NodeRunner
}

// Run executes nodes, already in a valid topological order (as returned by
// Graph.ExecutionOrder), in rounds: each round concurrently starts every node
// whose upstream nodes within the set have all finished successfully, and the
// next round is computed once the whole round has finished. First
// failure cancels ctx; in-flight nodes finish naturally; no new node starts;
// the first error encountered is returned (spec.md §5 "Resource discipline").
func (d *Dispatcher) Run(ctx context.Context, g *dag.Graph, nodes []*dag.Node) error {
	if len(nodes) == 0 {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	byName := make(map[string]*dag.Node, len(nodes))
	included := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		byName[n.Name] = n
		included[n.Name] = true
	}

	remaining := make(map[string]int, len(nodes))
	downstreamWithin := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		count := 0
		for _, up := range g.DependsOn(n.Name) {
			if included[up] {
				count++
				downstreamWithin[up] = append(downstreamWithin[up], n.Name)
			}
		}
		remaining[n.Name] = count
	}

	var mu sync.Mutex
	var once sync.Once
	var firstErr error
	dispatched := make(map[string]bool, len(nodes))

	frontier := nextFrontier(nodes, remaining, dispatched)
	for len(frontier) > 0 {
		for _, n := range frontier {
			dispatched[n.Name] = true
		}

		var wg sync.WaitGroup
		completedThisRound := make([]string, 0, len(frontier))
		var completedMu sync.Mutex

		for _, n := range frontier {
			wg.Add(1)
			go func(n *dag.Node) {
				defer wg.Done()
				err := d.execute(runCtx, n)
				if err != nil {
					once.Do(func() {
						mu.Lock()
						firstErr = err
						mu.Unlock()
						cancel()
					})
					return
				}
				completedMu.Lock()
				completedThisRound = append(completedThisRound, n.Name)
				completedMu.Unlock()
			}(n)
		}
		wg.Wait()

		mu.Lock()
		err := firstErr
		mu.Unlock()
		if err != nil {
			return err
		}

		for _, name := range completedThisRound {
			for _, down := range downstreamWithin[name] {
				remaining[down]--
			}
		}

		frontier = nextFrontier(nodes, remaining, dispatched)
		_ = byName
	}

	return nil
}

// nextFrontier returns every not-yet-dispatched node whose dependency count
// has reached zero.
func nextFrontier(nodes []*dag.Node, remaining map[string]int, dispatched map[string]bool) []*dag.Node {
	var next []*dag.Node
	for _, n := range nodes {
		if dispatched[n.Name] {
			continue
		}
		if remaining[n.Name] == 0 {
			next = append(next, n)
		}
	}
	return next
}

func (d *Dispatcher) execute(ctx context.Context, n *dag.Node) error {
	if ctx.Err() != nil {
		return ferrors.NewExecution(n.Name, ctx.Err())
	}
	if !n.IsExecutable {
		return nil
	}
	runner, ok := d.Runners[n.Kind]
	if !ok {
		return nil
	}
	return runner.Run(ctx, n)
}
