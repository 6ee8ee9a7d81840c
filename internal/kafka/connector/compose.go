package connector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/foundryhq/foundry/internal/ast"
	"github.com/foundryhq/foundry/internal/catalog"
	"github.com/foundryhq/foundry/internal/kafka/predicate"
	"github.com/foundryhq/foundry/internal/kafka/smt"
)

// Composed is stage 2's output: the flat property map so far (header,
// connection, and include/format keys), plus the resolved transform and
// predicate sets awaiting stage 3 validation.
type Composed struct {
	Props      *OrderedProps
	Cluster    ClusterInfo
	Transforms []smt.Transform
	Predicates []predicate.Predicate
}

func compose(decl *catalog.ConnectorDecl, inter *Intermediate, cat *catalog.Catalog, resolver Resolver) (*Composed, error) {
	props := NewOrderedProps()
	props.Set("connector.class", inter.Schema.ConnectorClass)
	if v, ok := inter.Known.Get("tasks.max"); ok {
		props.Set("tasks.max", v)
	} else {
		props.Set("tasks.max", "1")
	}

	cluster, err := resolver.ResolveCluster(decl.ClusterName)
	if err != nil {
		return nil, err
	}

	if decl.TargetDatabase != "" {
		conn, err := resolver.ResolveConnection(decl.TargetDatabase)
		if err != nil {
			return nil, err
		}
		if decl.Kind == ast.Sink {
			// jdbc:<adapter>://<host>:<port>/<db> — port included, fixing the
			// portless form original_source composed (spec.md §9 Open Questions).
			url := fmt.Sprintf("jdbc:%s://%s:%d/%s", conn.AdapterType, conn.Host, conn.Port, conn.Database)
			props.Set("connection.url", url)
			props.Set("connection.username", conn.User)
			props.Set("connection.password", conn.Password)
		} else {
			props.Set("database.hostname", conn.Host)
			props.Set("database.port", strconv.Itoa(conn.Port))
			props.Set("database.user", conn.User)
			props.Set("database.password", conn.Password)
			props.Set("database.dbname", conn.Database)
		}
	}

	// Replay user-supplied known props in their original declaration order.
	// Keys already set above are overwritten in place, not re-appended
	// (OrderedProps.Set preserves first-seen position).
	for _, key := range inter.KnownOrder {
		v, _ := inter.Known.Get(key)
		props.Set(key, v)
	}

	if decl.Kind == ast.Source {
		schemas, err := resolver.ResolveSourceSchemas(decl.Name)
		if err != nil {
			return nil, err
		}
		var tableEntries, columnEntries []string
		for _, s := range schemas {
			for _, t := range s.Tables {
				tableEntries = append(tableEntries, s.Schema+"."+t.Table)
				for _, c := range t.Columns {
					columnEntries = append(columnEntries, s.Schema+"."+t.Table+"."+c)
				}
			}
		}
		if len(tableEntries) > 0 {
			props.Set("table.include.list", strings.Join(tableEntries, ","))
		}
		if len(columnEntries) > 0 {
			props.Set("column.include.list", strings.Join(columnEntries, ","))
		}
	} else {
		sinkSchema, err := resolver.ResolveSinkSchema(decl.Name)
		if err != nil {
			return nil, err
		}
		props.Set("collection.name.format", sinkSchema.Schema+".${source.table}")
		var columns []string
		for _, t := range sinkSchema.Tables {
			columns = append(columns, t.Columns...)
		}
		props.Set("field.include.list", strings.Join(columns, ","))
	}

	transforms, predicates, err := walkPipelines(decl, cat)
	if err != nil {
		return nil, err
	}

	return &Composed{Props: props, Cluster: cluster, Transforms: transforms, Predicates: predicates}, nil
}

// walkPipelines resolves every pipeline referenced by decl into its ordered
// transform list, synthesizing each transform's alias as
// "<pipeline_name>_<transform_name>" (spec.md §4.3 stage 2), and collects
// the unique set of predicates referenced along the way, first-use order.
func walkPipelines(decl *catalog.ConnectorDecl, cat *catalog.Catalog) ([]smt.Transform, []predicate.Predicate, error) {
	var transforms []smt.Transform
	seenPredicates := make(map[string]bool)
	var predicates []predicate.Predicate

	for _, pipelineName := range decl.PipelineNames {
		pipeline, err := cat.GetPipeline(pipelineName)
		if err != nil {
			return nil, nil, err
		}
		for _, id := range pipeline.TransformIDs {
			transformDecl, err := cat.GetTransformByID(id)
			if err != nil {
				return nil, nil, err
			}
			alias := pipelineName + "_" + transformDecl.Name
			kind := smt.Kind(transformDecl.AST.Preset)
			props := make(map[string]string, len(transformDecl.AST.Extend))
			for _, kv := range transformDecl.AST.Extend {
				props[kv.Key] = kv.Value
			}
			class := ""
			if kind == smt.Custom {
				class = props["class"]
			}
			t := smt.Transform{
				Alias:         alias,
				Kind:          kind,
				Class:         class,
				Props:         props,
				PredicateName: transformDecl.AST.PredicateName,
				Negate:        transformDecl.AST.Negate,
			}
			transforms = append(transforms, t)

			if t.PredicateName != "" && !seenPredicates[t.PredicateName] {
				predicateDecl, err := cat.GetPredicate(t.PredicateName)
				if err != nil {
					return nil, nil, err
				}
				predicates = append(predicates, toPredicate(predicateDecl))
				seenPredicates[t.PredicateName] = true
			}
		}
	}
	return transforms, predicates, nil
}

func toPredicate(decl *catalog.PredicateDecl) predicate.Predicate {
	props := make(map[string]string, len(decl.Props))
	for _, kv := range decl.Props {
		props[kv.Key] = kv.Value
	}
	p := predicate.Predicate{Name: decl.Name, Kind: predicate.Kind(decl.Kind), Props: props}
	switch p.Kind {
	case predicate.TopicNameMatches:
		p.Pattern = props["pattern"]
	case predicate.HasHeaderKey:
		p.Header = props["name"]
	case predicate.Custom:
		p.Class = props["class"]
	}
	return p
}
