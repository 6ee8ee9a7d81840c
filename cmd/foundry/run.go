package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/foundryhq/foundry/internal/catalog"
	"github.com/foundryhq/foundry/internal/config"
	"github.com/foundryhq/foundry/internal/dag"
	"github.com/foundryhq/foundry/internal/ferrors"
	"github.com/foundryhq/foundry/internal/logger"
	"github.com/foundryhq/foundry/internal/runtime/database"
	"github.com/foundryhq/foundry/internal/runtime/executor"
	"github.com/foundryhq/foundry/internal/runtime/python"
)

type runOptions struct {
	selector    string
	interpreter string
}

func newRunCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the nodes matched by a selector, in dependency order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.selector, "select", "", "Node selector: \"<name>\" (single), \"<<name>\" (upstream), \"<name>>\" (downstream), or \"<<name>>\" (both) (required)")
	cmd.Flags().StringVar(&opts.interpreter, "python-interpreter", "python3", "Python interpreter used for PythonJob nodes")
	cmd.MarkFlagRequired("select")

	return cmd
}

func runRun(cmd *cobra.Command, root *rootFlags, opts runOptions) error {
	log := logger.New(os.Stdout, root.verbose)

	cc, err := loadCompileContext(root.configPath)
	if err != nil {
		return err
	}

	nodes, err := cc.graph.ExecutionOrder(opts.selector)
	if err != nil {
		return err
	}

	executors, closeAll, err := openModelExecutors(cmd.Context(), cc, nodes, log)
	if err != nil {
		return err
	}
	defer closeAll()

	dispatcher := &executor.Dispatcher{
		Runners: map[dag.Kind]executor.NodeRunner{
			dag.Model:     &modelRunner{executors: executors, compiledRoot: filepath.Join(root.configPath, cc.project.CompilePath)},
			dag.PythonJob: &pythonJobRunner{runner: python.New(opts.interpreter), catalog: cc.catalog},
		},
	}

	if err := dispatcher.Run(cmd.Context(), cc.graph, nodes); err != nil {
		return err
	}

	log.Info().Int("nodes", len(nodes)).Str("selector", opts.selector).Msg("run finished")
	return nil
}

// openModelExecutors opens one *database.Executor per distinct connection
// target the selected Model nodes execute against, so a run touching several
// warehouses shares one pool per target rather than reconnecting per model.
func openModelExecutors(ctx context.Context, cc *compileContext, nodes []*dag.Node, log zerolog.Logger) (map[string]*database.Executor, func(), error) {
	executors := make(map[string]*database.Executor)

	closeAll := func() {
		for _, e := range executors {
			_ = e.Close()
		}
	}

	for _, n := range nodes {
		if n.Kind != dag.Model || n.Target == "" {
			continue
		}
		if _, ok := executors[n.Target]; ok {
			continue
		}

		dsn, err := resolveDSN(cc, n.Target)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}

		exec, err := database.Open(ctx, dsn, log)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		executors[n.Target] = exec
	}

	return executors, closeAll, nil
}

// resolveDSN follows the same source-name -> connection-name -> connection
// chain loader.ConfigResolver resolves for connectors, here for a model's
// declared execution target (spec.md §9 "ExecutionTarget").
func resolveDSN(cc *compileContext, sourceName string) (string, error) {
	var db *config.DBSourceConfig
	for _, s := range cc.sources {
		switch s.Kind {
		case config.KindSourceDB:
			if s.SourceDB != nil && s.SourceDB.Name == sourceName {
				db = s.SourceDB
			}
		case config.KindWarehouse:
			if s.Warehouse != nil && s.Warehouse.Name == sourceName {
				db = s.Warehouse
			}
		}
	}
	if db == nil {
		return "", ferrors.NewNotFound("source database", sourceName)
	}

	conn, err := cc.resolver.ResolveConnection(db.Connection)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		conn.User, conn.Password, conn.Host, conn.Port, conn.Database), nil
}

// modelRunner executes a Model node's rendered statement against its
// resolved target connection pool. It reads the statement back from the
// compiled artifact rather than re-rendering, so run always executes
// exactly what compile wrote to disk.
type modelRunner struct {
	executors    map[string]*database.Executor
	compiledRoot string
}

func (r *modelRunner) Run(ctx context.Context, n *dag.Node) error {
	if _, ok := n.AST.(catalog.ModelDecl); !ok {
		return ferrors.NewExecution(n.Name, fmt.Errorf("node %q carries no model body", n.Name))
	}
	if n.CompiledArtifact == "" {
		return ferrors.NewExecution(n.Name, fmt.Errorf("model %q has not been compiled", n.Name))
	}
	exec, ok := r.executors[n.Target]
	if !ok {
		return ferrors.NewExecution(n.Name, fmt.Errorf("no database connection resolved for target %q", n.Target))
	}

	statement, err := os.ReadFile(filepath.Join(r.compiledRoot, n.CompiledArtifact))
	if err != nil {
		return ferrors.NewExecution(n.Name, err)
	}

	return exec.ExecuteModel(ctx, n.Name, string(statement))
}

// pythonJobRunner executes a PythonJob node by shelling out to its declared script.
type pythonJobRunner struct {
	runner  *python.Runner
	catalog *catalog.Catalog
}

func (r *pythonJobRunner) Run(ctx context.Context, n *dag.Node) error {
	job, err := r.catalog.GetPythonJob(n.Name)
	if err != nil {
		return err
	}
	return r.runner.Run(ctx, n.Name, job.ScriptPath, job.Env)
}
