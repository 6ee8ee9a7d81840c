// Package ast defines opaque handles for the parsed SQL objects the core
// consumes. The actual SQL dialect parser is an external collaborator
// (spec.md §1 Non-goals); this package only carries the shapes the core
// needs to hold, copy by value, and hand to the catalog/DAG/compiler.
package ast

// ModelAST is the parsed body of a `CREATE MODEL` statement.
type ModelAST struct {
	Schema       string
	Name         string
	Refs         []string
	Sources      []SourceRef
	Materialize  Materialization
	SQLPath      string
	RawSQL       string
}

// SourceRef names a (source, table) pair referenced via `source(...)`.
type SourceRef struct {
	SourceName string
	Table      string
}

// Materialization is the DDL form a model renders as.
type Materialization int

const (
	View Materialization = iota
	Table
	MaterializedView
)

func (m Materialization) String() string {
	switch m {
	case View:
		return "VIEW"
	case Table:
		return "TABLE"
	case MaterializedView:
		return "MATERIALIZED VIEW"
	default:
		return "VIEW"
	}
}

// ConnectorAST is the parsed body of a `CREATE KAFKA CONNECTOR` statement.
type ConnectorAST struct {
	Name             string
	Kind             ConnectorKind
	SchemaKey        string // e.g. "postgres.source", "jdbc.sink" — selects the compiler's field schema
	ClusterName      string
	ConnectorVersion string
	PipelineNames    []string
	SourceDatabase   string
	WarehouseDatabase string
	Schema           string
	RawProps         []KV
}

// ConnectorKind distinguishes source from sink connectors.
type ConnectorKind int

const (
	Source ConnectorKind = iota
	Sink
)

func (k ConnectorKind) String() string {
	if k == Sink {
		return "Sink"
	}
	return "Source"
}

// KV preserves declaration order for raw connector properties.
type KV struct {
	Key   string
	Value string
}

// SmtAST is the parsed body of a `CREATE KAFKA SIMPLE MESSAGE TRANSFORM` statement.
type SmtAST struct {
	Name          string
	Preset        string
	Extend        []KV
	PredicateName string
	Negate        bool
}

// PipelineAST is the parsed body of a `CREATE KAFKA SIMPLE MESSAGE TRANSFORM PIPELINE` statement.
type PipelineAST struct {
	Name           string
	TransformRefs  []TransformRef
	PredicateName  string // legacy shorthand, see spec.md §9 design notes; not authoritative
}

// TransformRef is one entry in a pipeline's ordered transform list, with an optional alias.
type TransformRef struct {
	TransformName string
	Alias         string
}

// PredicateAST is the parsed body of a `CREATE KAFKA SIMPLE MESSAGE TRANSFORM PREDICATE` statement.
type PredicateAST struct {
	Name    string
	Kind    string
	Pattern string
	Props   []KV
}
