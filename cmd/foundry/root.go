package main

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	verbose    bool
}

// envDefaults lets an operator pin the project directory and default log
// verbosity through the environment (FOUNDRY_CONFIG_PATH, FOUNDRY_VERBOSE)
// instead of repeating flags on every invocation, the same envconfig.Process
// pattern glassflow-clickhouse-etl's cmd/main.go uses for its own runtime config.
type envDefaults struct {
	ConfigPath string `envconfig:"config_path" default:"."`
	Verbose    bool   `envconfig:"verbose" default:"false"`
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	var env envDefaults
	_ = envconfig.Process("foundry", &env) // malformed overrides fall back to defaults rather than blocking startup

	cmd := &cobra.Command{
		Use:           "foundry",
		Short:         "Foundry compiles and schedules declarative data pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config-path", env.ConfigPath, "Path to the project directory containing foundry.yml")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", env.Verbose, "Enable verbose logging")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newCompileCmd(flags))
	cmd.AddCommand(newKafkaCmd(flags))
	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
