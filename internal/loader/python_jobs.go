package loader

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/foundryhq/foundry/internal/catalog"
	"github.com/foundryhq/foundry/internal/ferrors"
)

// pythonJobFileDoc is one `<name>.yml` entry under the project's python
// directory (SPEC_FULL.md §4.11: "parsed from a <name>.yml sibling-free
// manifest entry"; the job name is the filename stem, not a field).
type pythonJobFileDoc struct {
	ScriptPath string            `yaml:"script_path"`
	DependsOn  []string          `yaml:"depends_on"`
	Target     string            `yaml:"target"`
	Env        map[string]string `yaml:"env"`
}

// LoadPythonJobs walks every `*.yml` file directly under dir and registers
// one PythonJobDecl per file.
func LoadPythonJobs(dir string, cat *catalog.Catalog) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ferrors.NewIO(dir, err)
	}

	var filenames []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yml" {
			continue
		}
		filenames = append(filenames, e.Name())
	}
	sort.Strings(filenames)

	for _, filename := range filenames {
		full := filepath.Join(dir, filename)
		data, err := os.ReadFile(full)
		if err != nil {
			return ferrors.NewIO(full, err)
		}
		var doc pythonJobFileDoc
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return ferrors.NewAstSyntax("parsing "+full, err)
		}
		name := strings.TrimSuffix(filename, ".yml")
		if err := cat.RegisterPythonJob(catalog.PythonJobDecl{
			Name:       name,
			ScriptPath: doc.ScriptPath,
			DependsOn:  doc.DependsOn,
			Target:     doc.Target,
			Env:        doc.Env,
		}); err != nil {
			return err
		}
	}
	return nil
}
