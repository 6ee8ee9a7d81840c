package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
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

func buildTwoModelGraph(t *testing.T) *dag.Graph {
	t.Helper()
	cat := catalog.New()
	require.NoError(t, cat.RegisterModel(catalog.ModelDecl{Schema: "staging", Name: "orders"}))
	require.NoError(t, cat.RegisterModel(catalog.ModelDecl{Schema: "public", Name: "final_orders", Refs: []string{"orders"}}))
	g, err := dag.Build(cat, nopResolver{})
	require.NoError(t, err)
	return g
}

func TestBuildOrdersNodesTopologicallyWithDependsOn(t *testing.T) {
	t.Parallel()

	g := buildTwoModelGraph(t)
	m := Build(g)
	require.Len(t, m.Nodes, 2)
	require.Equal(t, "staging.orders", m.Nodes[0].Name)
	require.Equal(t, "public.final_orders", m.Nodes[1].Name)
	require.Equal(t, []string{"staging.orders"}, m.Nodes[1].DependsOn)
	require.Nil(t, m.Nodes[0].DependsOn)
	require.True(t, m.Nodes[0].Executable)
	require.Equal(t, DPF, m.Nodes[0].NodeType)
}

func TestRenderDotContainsNodesAndEdges(t *testing.T) {
	t.Parallel()

	g := buildTwoModelGraph(t)
	dot := RenderDot(g)
	require.Contains(t, dot, "digraph foundry {")
	require.Contains(t, dot, `"staging.orders"`)
	require.Contains(t, dot, `"public.final_orders"`)
	require.Contains(t, dot, `"staging.orders" -> "public.final_orders"`)
}

func TestStagingCommitPublishesAtomically(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	compilePath := filepath.Join(tmp, "compiled")

	g := buildTwoModelGraph(t)
	staging, err := Begin(compilePath)
	require.NoError(t, err)
	defer staging.Abort()

	require.NoError(t, staging.WriteManifest(g))
	require.NoError(t, staging.WriteFile(filepath.Join("models", "staging", "orders.sql"), []byte("SELECT 1")))
	require.NoError(t, staging.Commit())

	manifestBytes, err := os.ReadFile(filepath.Join(compilePath, "manifest.json"))
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(manifestBytes, &m))
	require.Len(t, m.Nodes, 2)

	_, err = os.ReadFile(filepath.Join(compilePath, "dag.dot"))
	require.NoError(t, err)
	_, err = os.ReadFile(filepath.Join(compilePath, "models", "staging", "orders.sql"))
	require.NoError(t, err)
}

func TestStagingAbortLeavesExistingCompilePathUntouched(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	compilePath := filepath.Join(tmp, "compiled")
	require.NoError(t, os.MkdirAll(compilePath, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(compilePath, "manifest.json"), []byte(`{"nodes":[]}`), 0o644))

	g := buildTwoModelGraph(t)
	staging, err := Begin(compilePath)
	require.NoError(t, err)
	require.NoError(t, staging.WriteManifest(g))

	staging.Abort()

	_, err = os.Stat(staging.Dir)
	require.True(t, os.IsNotExist(err))

	manifestBytes, err := os.ReadFile(filepath.Join(compilePath, "manifest.json"))
	require.NoError(t, err)
	require.Equal(t, `{"nodes":[]}`, string(manifestBytes))
}

func TestStagingAbortAfterCommitIsNoop(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	compilePath := filepath.Join(tmp, "compiled")

	g := buildTwoModelGraph(t)
	staging, err := Begin(compilePath)
	require.NoError(t, err)
	require.NoError(t, staging.WriteManifest(g))
	require.NoError(t, staging.Commit())

	staging.Abort()

	_, err = os.Stat(filepath.Join(compilePath, "manifest.json"))
	require.NoError(t, err)
}
