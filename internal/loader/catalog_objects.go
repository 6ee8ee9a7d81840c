// Package loader turns a project's on-disk declarations into catalog
// registrations. The SQL dialect grammar described informally in spec.md §6
// ("CREATE KAFKA CONNECTOR ... WITH CONNECTOR VERSION ...") is explicitly an
// external parser collaborator out of the core's scope (spec.md §1
// Non-goals: "The SQL parser itself"); this package is the concrete
// already-parsed-AST surface the core consumes, expressed as YAML documents
// that carry the exact same fields the opaque ast.* handles expect,
// decoded with gopkg.in/yaml.v3 as internal/config is; unlike internal/config,
// these documents are not run through the struct validator.
package loader

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/foundryhq/foundry/internal/ast"
	"github.com/foundryhq/foundry/internal/catalog"
	"github.com/foundryhq/foundry/internal/ferrors"
)

// kvDoc preserves declaration order for a raw key/value list, the same
// concern ast.KV exists for (gopkg.in/yaml.v3 decodes a struct list in
// document order, unlike a Go map).
type kvDoc struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

func (d kvDoc) toKV() ast.KV { return ast.KV{Key: d.Key, Value: d.Value} }

type predicateDoc struct {
	Name    string  `yaml:"name"`
	Kind    string  `yaml:"kind"`
	Pattern string  `yaml:"pattern"`
	Props   []kvDoc `yaml:"props"`
}

type transformDoc struct {
	Name      string  `yaml:"name"`
	Preset    string  `yaml:"preset"`
	Extend    []kvDoc `yaml:"extend"`
	Predicate string  `yaml:"predicate"`
	Negate    bool    `yaml:"negate"`
}

type transformRefDoc struct {
	Name  string `yaml:"name"`
	Alias string `yaml:"alias"`
}

type pipelineDoc struct {
	Name       string            `yaml:"name"`
	Transforms []transformRefDoc `yaml:"transforms"`
	Predicate  string            `yaml:"predicate"` // legacy shorthand, see ast.PipelineAST
}

type connectorDoc struct {
	Name              string   `yaml:"name"`
	Kind              string   `yaml:"kind"` // "source" | "sink"
	SchemaKey         string   `yaml:"schema_key"`
	Cluster           string   `yaml:"cluster"`
	Version           string   `yaml:"version"`
	Pipelines         []string `yaml:"pipelines"`
	SourceDatabase    string   `yaml:"source_database"`
	WarehouseDatabase string   `yaml:"warehouse_database"`
	Schema            string   `yaml:"schema"`
	Props             []kvDoc  `yaml:"props"`
}

// catalogDoc is the whole-project declaration document: one file listing
// every predicate, transform, pipeline and connector. Catalog insertion
// order below (predicates, transforms, pipelines, connectors) matches the
// forward-reference discipline spec.md §4.2 requires (a pipeline's
// transforms must already be registered, a connector's pipelines must
// already be registered). Python jobs are loaded separately by
// LoadPythonJobs, one file per job under the project's python directory
// (SPEC_FULL.md §4.11).
type catalogDoc struct {
	Predicates []predicateDoc `yaml:"predicates"`
	Transforms []transformDoc `yaml:"transforms"`
	Pipelines  []pipelineDoc  `yaml:"pipelines"`
	Connectors []connectorDoc `yaml:"connectors"`
}

// LoadCatalogObjects reads path (the project's catalog declaration file) and
// registers every object into cat in the required order.
func LoadCatalogObjects(path string, cat *catalog.Catalog) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return ferrors.NewIO(path, err)
	}

	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ferrors.NewAstSyntax("parsing "+path, err)
	}

	for _, p := range doc.Predicates {
		props := make([]ast.KV, 0, len(p.Props))
		for _, kv := range p.Props {
			props = append(props, kv.toKV())
		}
		if p.Pattern != "" {
			props = append(props, ast.KV{Key: "pattern", Value: p.Pattern})
		}
		if err := cat.RegisterPredicate(catalog.PredicateDecl{Name: p.Name, Kind: p.Kind, Props: props}); err != nil {
			return err
		}
	}

	for _, t := range doc.Transforms {
		extend := make([]ast.KV, 0, len(t.Extend))
		for _, kv := range t.Extend {
			extend = append(extend, kv.toKV())
		}
		body := ast.SmtAST{
			Name:          t.Name,
			Preset:        t.Preset,
			Extend:        extend,
			PredicateName: t.Predicate,
			Negate:        t.Negate,
		}
		if _, err := cat.RegisterTransform(t.Name, extend, body); err != nil {
			return err
		}
	}

	for _, p := range doc.Pipelines {
		names := make([]string, 0, len(p.Transforms))
		refs := make([]ast.TransformRef, 0, len(p.Transforms))
		for _, tr := range p.Transforms {
			names = append(names, tr.Name)
			refs = append(refs, ast.TransformRef{TransformName: tr.Name, Alias: tr.Alias})
		}
		body := ast.PipelineAST{Name: p.Name, TransformRefs: refs, PredicateName: p.Predicate}
		if err := cat.RegisterPipeline(p.Name, names, p.Predicate, body); err != nil {
			return err
		}
	}

	for _, c := range doc.Connectors {
		kind := ast.Source
		if c.Kind == "sink" {
			kind = ast.Sink
		}
		props := make([]ast.KV, 0, len(c.Props))
		for _, kv := range c.Props {
			props = append(props, kv.toKV())
		}
		decl := catalog.ConnectorDecl{
			Name:              c.Name,
			Kind:              kind,
			SchemaKey:         c.SchemaKey,
			ClusterName:       c.Cluster,
			RawProps:          props,
			PipelineNames:     c.Pipelines,
			Version:           c.Version,
			TargetDatabase:    pickTarget(c),
			TargetSchema:      c.Schema,
		}
		if err := cat.RegisterConnector(decl); err != nil {
			return err
		}
	}

	return nil
}

func pickTarget(c connectorDoc) string {
	if c.Kind == "sink" {
		return c.WarehouseDatabase
	}
	return c.SourceDatabase
}
