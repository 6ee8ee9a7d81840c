package main

import (
	"fmt"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/spf13/cobra"

	"github.com/foundryhq/foundry/internal/ferrors"
)

type initOptions struct {
	dir          string
	projectName  string
	flowArch     string
	fromTemplate string
}

func newInitCmd() *cobra.Command {
	opts := initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold an empty Foundry project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", ".", "Directory to scaffold the project into")
	cmd.Flags().StringVar(&opts.projectName, "project-name", "foundry_project", "Project name")
	cmd.Flags().StringVar(&opts.flowArch, "flow-arch", "medallion", "Modelling architecture label")
	cmd.Flags().StringVar(&opts.fromTemplate, "from-template", "", "Clone a git repository into --dir instead of writing the built-in static scaffold")

	return cmd
}

const projectManifestTemplate = `name: %s
version: "0.1.0"
compile_path: compiled
modelling_architecture: %s
connection_profile:
  profile: default
  path: connections.yml
models:
  dir: models
sources: sources
`

const connectionsTemplate = `default: {}
`

const catalogTemplate = `predicates: []
transforms: []
pipelines: []
connectors: []
`

func runInit(cmd *cobra.Command, opts initOptions) error {
	if opts.fromTemplate != "" {
		return cloneTemplate(cmd, opts)
	}

	dirs := []string{
		opts.dir,
		filepath.Join(opts.dir, "models"),
		filepath.Join(opts.dir, "sources"),
		filepath.Join(opts.dir, "python"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return ferrors.NewIO(d, err)
		}
	}

	files := map[string]string{
		filepath.Join(opts.dir, "foundry.yml"):     fmt.Sprintf(projectManifestTemplate, opts.projectName, opts.flowArch),
		filepath.Join(opts.dir, "connections.yml"): connectionsTemplate,
		filepath.Join(opts.dir, "catalog.yml"):     catalogTemplate,
	}
	for path, content := range files {
		if _, err := os.Stat(path); err == nil {
			continue // never clobber an existing project file
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return ferrors.NewIO(path, err)
		}
	}

	return nil
}

// cloneTemplate scaffolds a project by cloning a git repository into --dir,
// rather than writing the built-in static template. --dir must not already
// exist: go-git's PlainClone refuses to clone into a non-empty directory, and
// the resulting error surfaces directly to the user.
func cloneTemplate(cmd *cobra.Command, opts initOptions) error {
	_, err := git.PlainCloneContext(cmd.Context(), opts.dir, false, &git.CloneOptions{
		URL:      opts.fromTemplate,
		Depth:    1,
		Progress: nil,
	})
	if err != nil {
		return ferrors.NewExecution("init --from-template", fmt.Errorf("cloning %s: %w", opts.fromTemplate, err))
	}
	return nil
}
