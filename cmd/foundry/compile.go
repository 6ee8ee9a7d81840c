package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/foundryhq/foundry/internal/ast"
	"github.com/foundryhq/foundry/internal/catalog"
	"github.com/foundryhq/foundry/internal/config"
	"github.com/foundryhq/foundry/internal/dag"
	"github.com/foundryhq/foundry/internal/ferrors"
	"github.com/foundryhq/foundry/internal/kafka/connector"
	"github.com/foundryhq/foundry/internal/loader"
	"github.com/foundryhq/foundry/internal/logger"
	"github.com/foundryhq/foundry/internal/manifest"
	"github.com/foundryhq/foundry/internal/runtime/kafkabootstrap"
	"github.com/foundryhq/foundry/internal/template"
)

func newCompileCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "compile",
		Short: "Parse the project, build the DAG, compile connectors, and render models",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(root)
		},
	}
}

// compileContext is the fully-loaded state one compile invocation shares
// explicitly (spec.md §9 "Global state: None").
type compileContext struct {
	project     *config.Project
	connections config.Connections
	sources     []config.Source
	catalog     *catalog.Catalog
	resolver    *loader.ConfigResolver
	graph       *dag.Graph
}

func loadCompileContext(projectDir string) (*compileContext, error) {
	project, err := config.LoadProject(filepath.Join(projectDir, "foundry.yml"))
	if err != nil {
		return nil, err
	}

	connections, err := config.LoadConnections(filepath.Join(projectDir, project.ConnectionProfile.Path))
	if err != nil {
		return nil, err
	}

	sources, err := config.LoadSources(filepath.Join(projectDir, project.SourcesPath))
	if err != nil {
		return nil, err
	}

	cat := catalog.New()
	if err := loader.LoadCatalogObjects(filepath.Join(projectDir, "catalog.yml"), cat); err != nil {
		return nil, err
	}
	if err := loader.LoadModels(filepath.Join(projectDir, project.Models.Dir), cat); err != nil {
		return nil, err
	}
	if project.Python != nil && project.Python.Dir != "" {
		if err := loader.LoadPythonJobs(filepath.Join(projectDir, project.Python.Dir), cat); err != nil {
			return nil, err
		}
	}

	resolver := &loader.ConfigResolver{
		Connections: connections,
		Profile:     project.ConnectionProfile.Profile,
		Sources:     sources,
		Catalog:     cat,
	}

	if err := validateClusters(cat, resolver); err != nil {
		return nil, err
	}

	graph, err := dag.Build(cat, resolver)
	if err != nil {
		return nil, err
	}

	return &compileContext{
		project:     project,
		connections: connections,
		sources:     sources,
		catalog:     cat,
		resolver:    resolver,
		graph:       graph,
	}, nil
}

// validateClusters fails fast on a malformed broker list for every cluster a
// connector references, before any compilation work begins (SPEC_FULL.md
// §4.10: "compilation performs no network I/O, only shape validation").
func validateClusters(cat *catalog.Catalog, resolver *loader.ConfigResolver) error {
	seen := make(map[string]bool)
	for _, c := range cat.AllConnectors() {
		if c.ClusterName == "" || seen[c.ClusterName] {
			continue
		}
		seen[c.ClusterName] = true
		cluster, err := resolver.ResolveCluster(c.ClusterName)
		if err != nil {
			return err
		}
		brokers := strings.Split(cluster.BootstrapServers, ",")
		if err := kafkabootstrap.ValidateBrokers(cluster.Name, brokers); err != nil {
			return err
		}
	}
	return nil
}

func runCompile(root *rootFlags) error {
	log := logger.New(os.Stdout, root.verbose)

	cc, err := loadCompileContext(root.configPath)
	if err != nil {
		return err
	}

	staging, err := manifest.Begin(filepath.Join(root.configPath, cc.project.CompilePath))
	if err != nil {
		return err
	}
	defer staging.Abort()

	if err := compileConnectors(cc, staging); err != nil {
		return err
	}
	if err := renderModels(cc, staging); err != nil {
		return err
	}
	if err := staging.WriteManifest(cc.graph); err != nil {
		return err
	}
	if err := staging.Commit(); err != nil {
		return err
	}

	log.Info().Int("nodes", len(cc.graph.NodeNames())).Msg("compile finished")
	return nil
}

func compileConnectors(cc *compileContext, staging *manifest.Staging) error {
	for _, decl := range cc.catalog.AllConnectors() {
		compiled, err := connector.Compile(decl, cc.catalog, cc.resolver)
		if err != nil {
			return err
		}

		payload := map[string]interface{}{
			"name":   compiled.Name,
			"config": compiled.FlatProps,
		}
		body, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return ferrors.NewIO(decl.Name+".json", err)
		}

		relPath := filepath.Join("connectors", decl.Name+".json")
		if err := staging.WriteFile(relPath, body); err != nil {
			return err
		}

		n, err := cc.graph.Node(decl.Name)
		if err != nil {
			return err
		}
		n.CompiledArtifact = relPath
	}
	return nil
}

func renderModels(cc *compileContext, staging *manifest.Staging) error {
	sourceResolver := &loader.TemplateSourceResolver{
		Sources:     cc.sources,
		Connections: cc.connections,
		Profile:     cc.project.ConnectionProfile.Profile,
	}
	env := &template.Environment{Graph: cc.graph, Sources: sourceResolver}

	for _, m := range cc.catalog.AllModels() {
		rawSQL, err := os.ReadFile(m.SQLPath)
		if err != nil {
			return ferrors.NewIO(m.SQLPath, err)
		}

		body := ast.ModelAST{
			Schema:      m.Schema,
			Name:        m.Name,
			Refs:        m.Refs,
			Sources:     m.Sources,
			Materialize: m.Materialize,
			SQLPath:     m.SQLPath,
			RawSQL:      string(rawSQL),
		}

		rendered, err := env.Render(body)
		if err != nil {
			return err
		}

		relPath := filepath.Join("models", m.Schema, m.Name+".sql")
		if err := staging.WriteFile(relPath, []byte(rendered)); err != nil {
			return err
		}

		n, err := cc.graph.Node(m.QualifiedName())
		if err != nil {
			return err
		}
		n.CompiledArtifact = relPath
	}
	return nil
}
