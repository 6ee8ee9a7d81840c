// Package dag builds and queries the typed dependency graph spanning every
// node kind a project declares (spec.md §3, §4.4).
package dag

// Kind is the tagged variant over a DAG node's role.
type Kind string

const (
	Model                Kind = "Model"
	KafkaSourceConnector  Kind = "KafkaSourceConnector"
	KafkaSinkConnector    Kind = "KafkaSinkConnector"
	KafkaSmt              Kind = "KafkaSmt"
	KafkaPipeline          Kind = "KafkaPipeline"
	KafkaPredicate          Kind = "KafkaPredicate"
	KafkaTopic              Kind = "KafkaTopic"
	SourceDb                Kind = "SourceDb"
	WarehouseDb              Kind = "WarehouseDb"
	PythonJob                 Kind = "PythonJob"
)

// Node is one vertex of the graph. Relations are upstream node names as
// declared; they are resolved into edges once, in the graph layer, where
// cycles are also detected — nodes never hold pointers to each other
// (spec.md §9 "Cyclic reference prevention").
type Node struct {
	Name             string
	Kind             Kind
	IsExecutable     bool
	Target           string // connection-profile key, empty if none
	CompiledArtifact string // rendered SQL / serialized JSON path, empty if none
	Relations        []string
	AST              interface{} // opaque: catalog.ModelDecl, ast.SmtAST, catalog.PipelineDecl, catalog.PredicateDecl, catalog.ConnectorDecl, catalog.PythonJobDecl; nil for auto-inserted DB/topic nodes
}
