package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	full := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	return full
}

func TestLoadProjectValidatesRequiredFields(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "foundry.yml", `
name: analytics
version: "1.0"
compile_path: compiled
connection_profile:
  profile: dev
  path: connections.yml
models:
  dir: models
sources: sources
`)

	p, err := LoadProject(path)
	require.NoError(t, err)
	require.Equal(t, "analytics", p.Name)
	require.Equal(t, "dev", p.ConnectionProfile.Profile)
	require.Nil(t, p.Python)
}

func TestLoadProjectRejectsMissingRequiredField(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "foundry.yml", `
name: analytics
compile_path: compiled
connection_profile:
  profile: dev
  path: connections.yml
models:
  dir: models
sources: sources
`)

	_, err := LoadProject(path)
	require.Error(t, err)
}

func TestLoadProjectRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "foundry.yml", "name: [unterminated")

	_, err := LoadProject(path)
	require.Error(t, err)
}

func TestConnectionUnmarshalResolvesEnvPassword(t *testing.T) {
	t.Parallel()

	require.NoError(t, os.Setenv("FOUNDRY_TEST_DB_PASSWORD", "s3cret"))
	defer os.Unsetenv("FOUNDRY_TEST_DB_PASSWORD")

	var c Connection
	err := yaml.Unmarshal([]byte(`
host: db.internal
port: 5432
user: svc
password: "env:FOUNDRY_TEST_DB_PASSWORD"
database: orders
adapter_type: postgres
`), &c)
	require.NoError(t, err)
	require.Equal(t, "s3cret", c.Password)
}

func TestConnectionUnmarshalMissingEnvVarFails(t *testing.T) {
	t.Parallel()

	var c Connection
	err := yaml.Unmarshal([]byte(`
host: db.internal
port: 5432
user: svc
password: "env:FOUNDRY_TEST_DOES_NOT_EXIST"
database: orders
adapter_type: postgres
`), &c)
	require.Error(t, err)
}

func TestConnectionUnmarshalLiteralPasswordPassesThrough(t *testing.T) {
	t.Parallel()

	var c Connection
	err := yaml.Unmarshal([]byte(`
host: db.internal
port: 5432
user: svc
password: "plain-text"
database: orders
adapter_type: postgres
`), &c)
	require.NoError(t, err)
	require.Equal(t, "plain-text", c.Password)
}

func TestLoadConnectionsValidatesEachEntry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "connections.yml", `
dev:
  orders_db:
    host: db.internal
    port: 5432
    user: svc
    password: secret
    database: orders
    adapter_type: postgres
`)

	conns, err := LoadConnections(path)
	require.NoError(t, err)
	require.Equal(t, "db.internal", conns["dev"]["orders_db"].Host)
}

func TestLoadConnectionsRejectsInvalidAdapterType(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "connections.yml", `
dev:
  orders_db:
    host: db.internal
    port: 5432
    user: svc
    password: secret
    database: orders
    adapter_type: mysql
`)

	_, err := LoadConnections(path)
	require.Error(t, err)
}

func TestLoadSourcesDecodesPolymorphicKinds(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a_warehouse.yml", `
kind: warehouse
name: analytics_wh
connection: orders_db
schemas:
  - schema: public
    tables:
      - table: orders
        columns: [id, email]
`)
	writeFile(t, dir, "b_kafka.yml", `
kind: kafka
name: orders_stream
bootstrap: localhost:9092
connect: http://localhost:8083
`)

	sources, err := LoadSources(dir)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	require.Equal(t, KindWarehouse, sources[0].Kind)
	require.Equal(t, "analytics_wh", sources[0].Name())
	require.Equal(t, KindKafka, sources[1].Kind)
	require.Equal(t, "orders_stream", sources[1].Name())
}

func TestLoadSourcesRejectsDuplicateNameWithinKind(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.yml", `
kind: warehouse
name: analytics_wh
connection: orders_db
`)
	writeFile(t, dir, "b.yml", `
kind: warehouse
name: analytics_wh
connection: other_db
`)

	_, err := LoadSources(dir)
	require.Error(t, err)
}

func TestLoadSourcesIgnoresNonYMLFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.yml", `
kind: warehouse
name: analytics_wh
connection: orders_db
`)
	writeFile(t, dir, "README.md", "not a source")

	sources, err := LoadSources(dir)
	require.NoError(t, err)
	require.Len(t, sources, 1)
}
