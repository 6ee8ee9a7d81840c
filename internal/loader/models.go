package loader

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/foundryhq/foundry/internal/ast"
	"github.com/foundryhq/foundry/internal/catalog"
	"github.com/foundryhq/foundry/internal/ferrors"
)

type sourceRefDoc struct {
	Source string `yaml:"source"`
	Table  string `yaml:"table"`
}

// modelConfigDoc is the optional `<name>.yml` sibling of a model's SQL file
// (spec.md §6 "Model files: <name>.sql (templated) + optional sibling
// <name>.yml (config)").
type modelConfigDoc struct {
	Schema      string         `yaml:"schema"`
	Refs        []string       `yaml:"refs"`
	Sources     []sourceRefDoc `yaml:"sources"`
	Materialize string         `yaml:"materialize"` // view|table|materialized_view, default view
}

// LoadModels walks every `*.sql` file directly under dir and registers one
// ModelDecl per file, reading its sibling `.yml` config when present.
func LoadModels(dir string, cat *catalog.Catalog) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ferrors.NewIO(dir, err)
	}

	var filenames []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".sql" {
			continue
		}
		filenames = append(filenames, e.Name())
	}
	sort.Strings(filenames)

	for _, filename := range filenames {
		sqlPath := filepath.Join(dir, filename)
		name := strings.TrimSuffix(filename, ".sql")
		cfg, err := readModelConfig(dir, name)
		if err != nil {
			return err
		}

		decl := catalog.ModelDecl{
			Schema:      cfg.Schema,
			Name:        name,
			Refs:        cfg.Refs,
			Materialize: materializationFromString(cfg.Materialize),
			SQLPath:     sqlPath,
		}
		for _, s := range cfg.Sources {
			decl.Sources = append(decl.Sources, ast.SourceRef{SourceName: s.Source, Table: s.Table})
		}

		if err := cat.RegisterModel(decl); err != nil {
			return err
		}
	}

	return nil
}

func readModelConfig(dir, name string) (modelConfigDoc, error) {
	ymlPath := filepath.Join(dir, name+".yml")
	data, err := os.ReadFile(ymlPath)
	if err != nil {
		if os.IsNotExist(err) {
			return modelConfigDoc{Schema: "public"}, nil
		}
		return modelConfigDoc{}, ferrors.NewIO(ymlPath, err)
	}
	var cfg modelConfigDoc
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return modelConfigDoc{}, ferrors.NewAstSyntax("parsing "+ymlPath, err)
	}
	if cfg.Schema == "" {
		cfg.Schema = "public"
	}
	return cfg, nil
}

func materializationFromString(s string) ast.Materialization {
	switch s {
	case "table":
		return ast.Table
	case "materialized_view":
		return ast.MaterializedView
	default:
		return ast.View
	}
}
