package template

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foundryhq/foundry/internal/ast"
	"github.com/foundryhq/foundry/internal/catalog"
	"github.com/foundryhq/foundry/internal/dag"
	"github.com/foundryhq/foundry/internal/kafka/connector"
)

type stubSourceResolver struct {
	resolved string
	err      error
}

func (s stubSourceResolver) Resolve(sourceName, table string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.resolved, nil
}

type nopResolver struct{}

func (nopResolver) ResolveCluster(string) (connector.ClusterInfo, error)       { return connector.ClusterInfo{}, nil }
func (nopResolver) ResolveConnection(string) (connector.ConnectionInfo, error) { return connector.ConnectionInfo{}, nil }
func (nopResolver) ResolveSourceSchemas(string) ([]connector.SchemaConfig, error) {
	return nil, nil
}
func (nopResolver) ResolveSinkSchema(string) (connector.SchemaConfig, error) {
	return connector.SchemaConfig{}, nil
}

func buildGraphWithModel(t *testing.T, schema, name string) *dag.Graph {
	t.Helper()
	cat := catalog.New()
	require.NoError(t, cat.RegisterModel(catalog.ModelDecl{Schema: schema, Name: name}))
	g, err := dag.Build(cat, nopResolver{})
	require.NoError(t, err)
	return g
}

func TestRenderWrapsStatementInMaterializationHeader(t *testing.T) {
	t.Parallel()

	g := buildGraphWithModel(t, "public", "orders")
	env := &Environment{Graph: g}

	out, err := env.Render(ast.ModelAST{
		Schema:      "public",
		Name:        "orders",
		Materialize: ast.Table,
		SQLPath:     "models/orders.sql",
		RawSQL:      "SELECT * FROM raw_orders",
	})
	require.NoError(t, err)
	require.Equal(t, "CREATE TABLE public.orders AS SELECT * FROM raw_orders", out)
}

func TestRenderRefResolvesQualifiedName(t *testing.T) {
	t.Parallel()

	cat := catalog.New()
	require.NoError(t, cat.RegisterModel(catalog.ModelDecl{Schema: "staging", Name: "orders"}))
	require.NoError(t, cat.RegisterModel(catalog.ModelDecl{Schema: "public", Name: "final_orders", Refs: []string{"orders"}}))
	g, err := dag.Build(cat, nopResolver{})
	require.NoError(t, err)

	env := &Environment{Graph: g}
	out, err := env.Render(ast.ModelAST{
		Schema:      "public",
		Name:        "final_orders",
		Materialize: ast.View,
		SQLPath:     "models/final_orders.sql",
		RawSQL:      `SELECT * FROM {{ ref "orders" }}`,
	})
	require.NoError(t, err)
	require.Equal(t, "CREATE VIEW public.final_orders AS SELECT * FROM staging.orders", out)
}

func TestRenderRefMissFails(t *testing.T) {
	t.Parallel()

	g := buildGraphWithModel(t, "public", "orders")
	env := &Environment{Graph: g}

	_, err := env.Render(ast.ModelAST{
		Schema:  "public",
		Name:    "orders",
		SQLPath: "models/orders.sql",
		RawSQL:  `SELECT * FROM {{ ref "nope" }}`,
	})
	require.Error(t, err)
}

func TestRenderSourceResolvesDatabaseQualifiedName(t *testing.T) {
	t.Parallel()

	g := buildGraphWithModel(t, "public", "orders")
	env := &Environment{
		Graph:   g,
		Sources: stubSourceResolver{resolved: "analytics.public.orders"},
	}

	out, err := env.Render(ast.ModelAST{
		Schema:  "public",
		Name:    "orders",
		SQLPath: "models/orders.sql",
		RawSQL:  `SELECT * FROM {{ source "pg_src" "orders" }}`,
	})
	require.NoError(t, err)
	require.Equal(t, "CREATE VIEW public.orders AS SELECT * FROM analytics.public.orders", out)
}

func TestRenderSourceMissFails(t *testing.T) {
	t.Parallel()

	g := buildGraphWithModel(t, "public", "orders")
	env := &Environment{Graph: g, Sources: nil}

	_, err := env.Render(ast.ModelAST{
		Schema:  "public",
		Name:    "orders",
		SQLPath: "models/orders.sql",
		RawSQL:  `SELECT * FROM {{ source "pg_src" "orders" }}`,
	})
	require.Error(t, err)
}

func TestRenderInvalidTemplateSyntaxFails(t *testing.T) {
	t.Parallel()

	g := buildGraphWithModel(t, "public", "orders")
	env := &Environment{Graph: g}

	_, err := env.Render(ast.ModelAST{
		Schema:  "public",
		Name:    "orders",
		SQLPath: "models/orders.sql",
		RawSQL:  `SELECT * FROM {{ ref "orders" `,
	})
	require.Error(t, err)
}
