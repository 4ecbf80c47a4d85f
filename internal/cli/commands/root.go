// Package commands implements the restgen command line.
package commands

import (
	"errors"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/restgen/internal/cli/ui"
	"github.com/conduit-lang/restgen/internal/config"
)

var (
	// Version information, set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// globalFlags are shared by every command
type globalFlags struct {
	configPath string
	noColor    bool
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "restgen",
		Short: "Serve declarative REST CRUD APIs",
		Long: `restgen serves list, get by ids, create, alter and delete routes for
every resource declared in restgen.yaml.

Resources are described by their fields (type, visibility, defaults,
aliases) and mounted below a route prefix that may bind parent ids,
e.g. /v/1/model/:modelId/submodel.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (default ./restgen.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(NewServeCommand(flags))
	rootCmd.AddCommand(NewRoutesCommand(flags))
	rootCmd.AddCommand(NewMigrateCommand(flags))
	rootCmd.AddCommand(NewTokenCommand(flags))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			kv := ui.NewKeyValueTable(cmd.OutOrStdout(), color.NoColor)
			kv.AddRow("restgen version", Version)
			kv.AddRow("Git commit", GitCommit)
			kv.AddRow("Build date", BuildDate)
			kv.AddRow("Go version", runtime.Version())
			kv.Render()
		},
	}
}

// errReported is returned by commands that already printed their error
var errReported = errors.New("error reported")

// load reads the configuration and reports a failure on stderr
func (f *globalFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		ui.ConfigError(err, f.noColor).Write(cmd.ErrOrStderr())
		return nil, errReported
	}
	return cfg, nil
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errReported) {
			return err
		}
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
