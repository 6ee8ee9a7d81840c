package dag

import (
	"sort"
	"strings"

	"github.com/foundryhq/foundry/internal/ast"
	"github.com/foundryhq/foundry/internal/catalog"
	"github.com/foundryhq/foundry/internal/ferrors"
	"github.com/foundryhq/foundry/internal/kafka/connector"
)

// Build constructs the DAG from a fully-populated catalog, following the
// five steps of spec.md §4.4: models, then connectors (auto-inserting the
// SourceDb/WarehouseDb/KafkaTopic nodes they imply), then Python jobs, then
// relation resolution, then cycle detection.
//
// resolver supplies the schema trees needed to derive a source connector's
// captured-table set (the same Resolver the connector compiler itself uses),
// so topic auto-insertion matches the names the compiler would compute.
func Build(cat *catalog.Catalog, resolver connector.Resolver) (*Graph, error) {
	g := newGraph()

	for _, m := range cat.AllModels() {
		relations := append([]string(nil), m.Refs...)
		for _, s := range m.Sources {
			getOrInsertDbNode(g, s.SourceName, SourceDb)
			relations = append(relations, s.SourceName)
		}
		target, _ := m.ExecutionTarget()
		if err := g.addNode(&Node{
			Name:         m.QualifiedName(),
			Kind:         Model,
			IsExecutable: true,
			Target:       target,
			Relations:    relations,
			AST:          *m,
		}); err != nil {
			return nil, err
		}
		if _, seen := g.modelBareNames[m.Name]; seen {
			g.modelBareNames[m.Name] = "" // ambiguous across schemas: ref() by bare name cannot disambiguate
		} else {
			g.modelBareNames[m.Name] = m.QualifiedName()
		}
	}

	// Model refs are written as bare names; once every model is known, map
	// each one to its qualified node name. Unknown or ambiguous refs stay as
	// written and fail relation resolution below.
	for _, m := range cat.AllModels() {
		n := g.nodes[m.QualifiedName()]
		for i, ref := range m.Refs {
			if qualified, ok := g.ResolveModelRef(ref); ok {
				n.Relations[i] = qualified
			}
		}
	}

	for _, c := range cat.AllConnectors() {
		if err := addConnectorNode(g, c, cat, resolver); err != nil {
			return nil, err
		}
	}

	for _, j := range cat.AllPythonJobs() {
		if err := g.addNode(&Node{
			Name:         j.Name,
			Kind:         PythonJob,
			IsExecutable: true,
			Target:       j.Target,
			Relations:    append([]string(nil), j.DependsOn...),
			AST:          *j,
		}); err != nil {
			return nil, err
		}
	}

	// Step 4: resolve every declared relation into an edge.
	for _, name := range g.NodeNames() {
		n := g.nodes[name]
		for _, rel := range n.Relations {
			if !g.Has(rel) {
				return nil, ferrors.NewRefNotFound("dag node", rel)
			}
			g.addEdge(rel, name)
		}
	}

	// Step 5: cycle detection.
	if cycle := g.detectCycle(); cycle != nil {
		return nil, cycleError(cycle)
	}

	return g, nil
}

func getOrInsertDbNode(g *Graph, name string, kind Kind) *Node {
	if n, ok := g.nodes[name]; ok {
		return n
	}
	n := &Node{Name: name, Kind: kind, IsExecutable: false}
	_ = g.addNode(n)
	return n
}

func getOrInsertTopicNode(g *Graph, name string) *Node {
	if n, ok := g.nodes[name]; ok {
		return n
	}
	n := &Node{Name: name, Kind: KafkaTopic, IsExecutable: false}
	_ = g.addNode(n)
	return n
}

func topicPrefix(c *catalog.ConnectorDecl) string {
	for _, kv := range c.RawProps {
		if kv.Key == "topic.prefix" {
			return kv.Value
		}
	}
	return c.Name
}

func addConnectorNode(g *Graph, c *catalog.ConnectorDecl, cat *catalog.Catalog, resolver connector.Resolver) error {
	kind := KafkaSourceConnector
	if c.Kind == ast.Sink {
		kind = KafkaSinkConnector
	}

	var relations []string
	var topicNames []string

	if c.Kind == ast.Source {
		if c.TargetDatabase != "" {
			dbNode := getOrInsertDbNode(g, c.TargetDatabase, SourceDb)
			relations = append(relations, dbNode.Name)
		}
		prefix := topicPrefix(c)
		if resolver != nil {
			schemas, err := resolver.ResolveSourceSchemas(c.Name)
			if err == nil {
				for _, s := range schemas {
					for _, t := range s.Tables {
						topicNames = append(topicNames, prefix+"."+s.Schema+"."+t.Table)
					}
				}
			}
		}
	} else {
		if c.TargetDatabase != "" {
			dbNode := getOrInsertDbNode(g, c.TargetDatabase, WarehouseDb)
			_ = dbNode
		}
		for _, kv := range c.RawProps {
			if kv.Key == "topics" {
				for _, t := range strings.Split(kv.Value, ",") {
					t = strings.TrimSpace(t)
					if t != "" {
						topicNames = append(topicNames, t)
					}
				}
			}
		}
		relations = append(relations, topicNames...)
	}

	for _, pn := range c.PipelineNames {
		relations = append(relations, pn)
	}

	sort.Strings(relations)

	if err := g.addNode(&Node{
		Name:         c.Name,
		Kind:         kind,
		IsExecutable: true,
		Target:       c.ClusterName,
		Relations:    relations,
		AST:          *c,
	}); err != nil {
		return err
	}

	if c.Kind == ast.Source {
		for _, topicName := range topicNames {
			getOrInsertTopicNode(g, topicName)
			g.addEdge(c.Name, topicName)
		}
		if c.TargetDatabase != "" {
			g.addEdge(c.TargetDatabase, c.Name)
		}
	} else {
		if c.TargetDatabase != "" {
			g.addEdge(c.Name, c.TargetDatabase)
		}
		for _, topicName := range topicNames {
			getOrInsertTopicNode(g, topicName)
		}
	}

	for _, pn := range c.PipelineNames {
		if err := insertPipelineSubgraph(g, pn, cat); err != nil {
			return err
		}
		g.addEdge(pn, c.Name)
	}

	return nil
}

// insertPipelineSubgraph lazily inserts the KafkaPipeline node for
// pipelineName plus the KafkaSmt node for each transform it uses and the
// KafkaPredicate node for each predicate a transform references, wiring
// predicate -> transform -> pipeline edges (spec.md §3 invariant 6:
// "A connector node depends on ... every pipeline it uses, every transform
// each pipeline uses, every predicate each transform references"). Safe to
// call once per pipeline reference; already-inserted nodes are reused.
func insertPipelineSubgraph(g *Graph, pipelineName string, cat *catalog.Catalog) error {
	if g.Has(pipelineName) {
		return nil
	}
	pipeline, err := cat.GetPipeline(pipelineName)
	if err != nil {
		return err
	}
	if err := g.addNode(&Node{Name: pipelineName, Kind: KafkaPipeline, AST: *pipeline}); err != nil {
		return err
	}
	for _, id := range pipeline.TransformIDs {
		transform, err := cat.GetTransformByID(id)
		if err != nil {
			return err
		}
		if !g.Has(transform.Name) {
			if err := g.addNode(&Node{Name: transform.Name, Kind: KafkaSmt, AST: transform.AST}); err != nil {
				return err
			}
		}
		g.addEdge(transform.Name, pipelineName)

		if transform.AST.PredicateName != "" {
			predicateName := transform.AST.PredicateName
			if !g.Has(predicateName) {
				pred, err := cat.GetPredicate(predicateName)
				if err != nil {
					return err
				}
				if err := g.addNode(&Node{Name: predicateName, Kind: KafkaPredicate, AST: *pred}); err != nil {
					return err
				}
			}
			g.addEdge(predicateName, transform.Name)
		}
	}
	return nil
}
