// Package connector implements the three-stage connector compiler: a
// connector declaration's raw properties are parsed into an intermediate
// typed struct (stage 1), composed with resolved cluster/connection/schema
// data plus its pipelines' transforms and predicates (stage 2), and
// validated against the version matrix and structural rules (stage 3),
// producing a deterministic flat property map (spec.md §4.3).
package connector

import (
	"strings"

	"github.com/foundryhq/foundry/internal/catalog"
	"github.com/foundryhq/foundry/internal/ferrors"
	"github.com/foundryhq/foundry/internal/version"
)

// CompiledConnector is the compiler's final output, ready for
// `PUT /connectors/<name>/config`.
type CompiledConnector struct {
	Name      string
	ClassName string
	Cluster   ClusterInfo
	FlatProps *OrderedProps
}

// Compile lowers decl into a CompiledConnector, following the three stages
// of spec.md §4.3 in order and failing on the first stage that errors
// (stage 3 itself collects all of its own violations before failing once).
func Compile(decl *catalog.ConnectorDecl, cat *catalog.Catalog, resolver Resolver) (*CompiledConnector, error) {
	schema, ok := Schemas[decl.SchemaKey]
	if !ok {
		return nil, ferrors.NewUnsupported("connector schema " + decl.SchemaKey)
	}
	targetVersion, err := version.Parse(decl.Version)
	if err != nil {
		return nil, ferrors.NewMissingConfig("connector " + decl.Name + " version")
	}

	inter := buildIntermediate(schema, decl.RawProps)

	composed, err := compose(decl, inter, cat, resolver)
	if err != nil {
		return nil, err
	}

	if err := validate(decl, inter, composed, targetVersion); err != nil {
		return nil, err
	}

	props := composed.Props

	if len(composed.Transforms) > 0 {
		aliases := make([]string, 0, len(composed.Transforms))
		for _, t := range composed.Transforms {
			aliases = append(aliases, t.Alias)
		}
		props.Set("transforms", strings.Join(aliases, ","))
		for _, t := range composed.Transforms {
			entries, err := t.Flatten()
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				props.Set(e.Key, e.Value)
			}
		}
	}

	if len(composed.Predicates) > 0 {
		names := make([]string, 0, len(composed.Predicates))
		for _, p := range composed.Predicates {
			names = append(names, p.Name)
		}
		props.Set("predicates", strings.Join(names, ","))
		for _, p := range composed.Predicates {
			entries, err := p.Flatten()
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				props.Set(e.Key, e.Value)
			}
		}
	}

	return &CompiledConnector{
		Name:      decl.Name,
		ClassName: schema.ConnectorClass,
		Cluster:   composed.Cluster,
		FlatProps: props,
	}, nil
}
