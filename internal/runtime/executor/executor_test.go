package executor

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foundryhq/foundry/internal/catalog"
	"github.com/foundryhq/foundry/internal/dag"
	"github.com/foundryhq/foundry/internal/kafka/connector"
)

type nopResolver struct{}

func (nopResolver) ResolveCluster(string) (connector.ClusterInfo, error) { return connector.ClusterInfo{}, nil }
func (nopResolver) ResolveConnection(string) (connector.ConnectionInfo, error) {
	return connector.ConnectionInfo{}, nil
}
func (nopResolver) ResolveSourceSchemas(string) ([]connector.SchemaConfig, error) { return nil, nil }
func (nopResolver) ResolveSinkSchema(string) (connector.SchemaConfig, error) {
	return connector.SchemaConfig{}, nil
}

func buildChainGraph(t *testing.T) (*dag.Graph, []*dag.Node) {
	t.Helper()
	cat := catalog.New()
	require.NoError(t, cat.RegisterModel(catalog.ModelDecl{Schema: "staging", Name: "orders"}))
	require.NoError(t, cat.RegisterModel(catalog.ModelDecl{Schema: "public", Name: "final_orders", Refs: []string{"orders"}}))
	g, err := dag.Build(cat, nopResolver{})
	require.NoError(t, err)
	return g, g.IncludedNodes()
}

type recordingRunner struct {
	mu    sync.Mutex
	order []string
}

func (r *recordingRunner) Run(ctx context.Context, n *dag.Node) error {
	r.mu.Lock()
	r.order = append(r.order, n.Name)
	r.mu.Unlock()
	return nil
}

type failingRunner struct {
	failName string
}

func (r *failingRunner) Run(ctx context.Context, n *dag.Node) error {
	if n.Name == r.failName {
		return fmt.Errorf("boom on %s", n.Name)
	}
	return nil
}

func TestRunExecutesInDependencyOrder(t *testing.T) {
	t.Parallel()

	g, nodes := buildChainGraph(t)
	runner := &recordingRunner{}
	d := &Dispatcher{Runners: map[dag.Kind]NodeRunner{dag.Model: runner}}

	err := d.Run(context.Background(), g, nodes)
	require.NoError(t, err)
	require.Equal(t, []string{"staging.orders", "public.final_orders"}, runner.order)
}

func TestRunPropagatesRunnerFailure(t *testing.T) {
	t.Parallel()

	g, nodes := buildChainGraph(t)
	runner := &failingRunner{failName: "staging.orders"}
	d := &Dispatcher{Runners: map[dag.Kind]NodeRunner{dag.Model: runner}}

	err := d.Run(context.Background(), g, nodes)
	require.Error(t, err)
}

func TestRunSkipsNodesWithNoRegisteredRunner(t *testing.T) {
	t.Parallel()

	g, nodes := buildChainGraph(t)
	d := &Dispatcher{Runners: map[dag.Kind]NodeRunner{}}

	err := d.Run(context.Background(), g, nodes)
	require.NoError(t, err)
}

func TestRunWithEmptyNodeSetIsNoop(t *testing.T) {
	t.Parallel()

	d := &Dispatcher{}
	err := d.Run(context.Background(), nil, nil)
	require.NoError(t, err)
}
