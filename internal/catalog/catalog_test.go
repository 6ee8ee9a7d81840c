package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foundryhq/foundry/internal/ast"
)

func TestRegisterPredicateAndTransform(t *testing.T) {
	t.Parallel()

	c := New()
	require.NoError(t, c.RegisterPredicate(PredicateDecl{Name: "is_insert", Kind: "TopicNameMatches"}))

	id, err := c.RegisterTransform("mask_email", nil, ast.SmtAST{Name: "mask_email", Preset: "HeaderToValue"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	decl, err := c.GetTransform("mask_email")
	require.NoError(t, err)
	require.Equal(t, id, decl.ID)

	byID, err := c.GetTransformByID(id)
	require.NoError(t, err)
	require.Equal(t, "mask_email", byID.Name)
}

func TestRegisterTransformDuplicateNameRejected(t *testing.T) {
	t.Parallel()

	c := New()
	_, err := c.RegisterTransform("dup", nil, ast.SmtAST{Name: "dup"})
	require.NoError(t, err)

	_, err = c.RegisterTransform("dup", nil, ast.SmtAST{Name: "dup"})
	require.Error(t, err)
}

func TestRegisterPipelineRequiresRegisteredTransform(t *testing.T) {
	t.Parallel()

	c := New()
	err := c.RegisterPipeline("p1", []string{"missing_transform"}, "", ast.PipelineAST{Name: "p1"})
	require.Error(t, err)

	_, err = c.RegisterTransform("t1", nil, ast.SmtAST{Name: "t1"})
	require.NoError(t, err)

	err = c.RegisterPipeline("p1", []string{"t1"}, "", ast.PipelineAST{Name: "p1"})
	require.NoError(t, err)

	pipeline, err := c.GetPipeline("p1")
	require.NoError(t, err)
	require.Len(t, pipeline.TransformIDs, 1)
}

func TestRegisterPipelineRequiresRegisteredPredicate(t *testing.T) {
	t.Parallel()

	c := New()
	_, err := c.RegisterTransform("t1", nil, ast.SmtAST{Name: "t1"})
	require.NoError(t, err)

	err = c.RegisterPipeline("p1", []string{"t1"}, "missing_predicate", ast.PipelineAST{})
	require.Error(t, err)
}

func TestRegisterConnectorRequiresRegisteredPipeline(t *testing.T) {
	t.Parallel()

	c := New()
	err := c.RegisterConnector(ConnectorDecl{Name: "conn1", PipelineNames: []string{"missing_pipeline"}})
	require.Error(t, err)

	err = c.RegisterConnector(ConnectorDecl{Name: "conn1"})
	require.NoError(t, err)

	got, err := c.GetConnector("conn1")
	require.NoError(t, err)
	require.Equal(t, "conn1", got.Name)
}

func TestRegisterModelQualifiedNameAndExecutionTarget(t *testing.T) {
	t.Parallel()

	c := New()
	decl := ModelDecl{
		Schema:  "public",
		Name:    "orders",
		Sources: []ast.SourceRef{{SourceName: "pg_src", Table: "orders"}},
	}
	require.NoError(t, c.RegisterModel(decl))

	got, err := c.GetModel("public.orders")
	require.NoError(t, err)
	require.Equal(t, "public.orders", got.QualifiedName())

	target, err := got.ExecutionTarget()
	require.NoError(t, err)
	require.Equal(t, "pg_src", target)
}

func TestModelExecutionTargetRejectsMultipleSourceProfiles(t *testing.T) {
	t.Parallel()

	m := ModelDecl{
		Schema: "public",
		Name:   "mixed",
		Sources: []ast.SourceRef{
			{SourceName: "a", Table: "x"},
			{SourceName: "b", Table: "y"},
		},
	}
	_, err := m.ExecutionTarget()
	require.Error(t, err)
}

func TestModelExecutionTargetRequiresAtLeastOneSource(t *testing.T) {
	t.Parallel()

	m := ModelDecl{Schema: "public", Name: "no_sources"}
	_, err := m.ExecutionTarget()
	require.Error(t, err)
}

func TestNamesAreGloballyUnique(t *testing.T) {
	t.Parallel()

	c := New()
	require.NoError(t, c.RegisterPredicate(PredicateDecl{Name: "shared"}))
	err := c.RegisterConnector(ConnectorDecl{Name: "shared"})
	require.Error(t, err)
}

func TestAllModelsAndAllConnectorsSortedDeterministically(t *testing.T) {
	t.Parallel()

	c := New()
	require.NoError(t, c.RegisterModel(ModelDecl{Schema: "public", Name: "z_model"}))
	require.NoError(t, c.RegisterModel(ModelDecl{Schema: "public", Name: "a_model"}))
	require.NoError(t, c.RegisterConnector(ConnectorDecl{Name: "z_conn"}))
	require.NoError(t, c.RegisterConnector(ConnectorDecl{Name: "a_conn"}))

	models := c.AllModels()
	require.Equal(t, []string{"public.a_model", "public.z_model"}, []string{models[0].QualifiedName(), models[1].QualifiedName()})

	connectors := c.AllConnectors()
	require.Equal(t, []string{"a_conn", "z_conn"}, []string{connectors[0].Name, connectors[1].Name})
}

func TestRegisterPythonJob(t *testing.T) {
	t.Parallel()

	c := New()
	require.NoError(t, c.RegisterPythonJob(PythonJobDecl{Name: "enrich", ScriptPath: "python/enrich.py"}))

	got, err := c.GetPythonJob("enrich")
	require.NoError(t, err)
	require.Equal(t, "python/enrich.py", got.ScriptPath)

	_, err = c.GetPythonJob("missing")
	require.Error(t, err)
}

func TestResourceRefKinds(t *testing.T) {
	t.Parallel()

	require.Equal(t, "SourceTable", NewSourceTableRef("public.orders").Kind())
	require.Equal(t, "WarehouseTable", NewWarehouseTableRef("public.orders").Kind())
	require.Equal(t, "KafkaTopic", NewKafkaTopicRef("orders.public.orders").Kind())
}
