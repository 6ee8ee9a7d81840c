package connector

import "github.com/foundryhq/foundry/internal/version"

// FieldSchema is one typed field of a connector kind, carrying its
// version-compatibility spec (spec.md §4.1, §4.3 stage 1).
type FieldSchema struct {
	Name    string
	Support version.Support
}

// Schema enumerates the typed fields of one connector kind (e.g.
// "postgres.source", "jdbc.sink"). Strict schemas reject unknown keys;
// non-strict ("custom") schemas pass them through in CustomProps
// (spec.md §4.3 stage 1: "permissive for custom ones").
type Schema struct {
	ConnectorClass string
	Strict         bool
	Fields         []FieldSchema
}

func (s Schema) fieldNames() map[string]bool {
	m := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		m[f.Name] = true
	}
	return m
}

func (s Schema) matrix() *version.Matrix {
	m := version.NewMatrix()
	for _, f := range s.Fields {
		m.Field(f.Name, f.Support)
	}
	return m
}

// Schemas is the registry of connector kinds known to the compiler, keyed by
// the ast-level "kind" string carried on a ConnectorDecl (populated by the
// parser collaborator from the `KIND <kind>` clause of `CREATE KAFKA
// CONNECTOR`).
var Schemas = map[string]Schema{
	"postgres.source": {
		ConnectorClass: "io.debezium.connector.postgresql.PostgresConnector",
		Strict:         false,
		Fields: []FieldSchema{
			{Name: "tasks.max", Support: version.AlwaysSupported()},
			{Name: "database.hostname", Support: version.AlwaysSupported()},
			{Name: "database.port", Support: version.AlwaysSupported()},
			{Name: "database.user", Support: version.AlwaysSupported()},
			{Name: "database.password", Support: version.AlwaysSupported()},
			{Name: "database.dbname", Support: version.AlwaysSupported()},
			{Name: "topic.prefix", Support: version.AlwaysSupported()},
			{Name: "plugin.name", Support: version.AlwaysSupported()},
			{Name: "slot.name", Support: version.AlwaysSupported()},
			{Name: "table.include.list", Support: version.AlwaysSupported()},
			{Name: "column.include.list", Support: version.AlwaysSupported()},
		},
	},
	"jdbc.sink": {
		ConnectorClass: "io.confluent.connect.jdbc.JdbcSinkConnector",
		Strict:         false,
		Fields: []FieldSchema{
			{Name: "tasks.max", Support: version.AlwaysSupported()},
			{Name: "connection.url", Support: version.AlwaysSupported()},
			{Name: "connection.username", Support: version.AlwaysSupported()},
			{Name: "connection.password", Support: version.AlwaysSupported()},
			{Name: "topics", Support: version.AlwaysSupported()},
			{Name: "topics.regex", Support: version.AlwaysSupported()},
			{Name: "insert.mode", Support: version.AlwaysSupported()},
			{Name: "pk.mode", Support: version.AlwaysSupported()},
			{Name: "collection.name.format", Support: version.AlwaysSupported()},
			{Name: "field.include.list", Support: version.AlwaysSupported()},
			{Name: "auto.create", Support: version.AlwaysSupported()},
			{Name: "auto.evolve", Support: version.AlwaysSupported()},
		},
	},
}
