package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/restgen/internal/app"
	"github.com/conduit-lang/restgen/internal/cli/ui"
	"github.com/conduit-lang/restgen/internal/logging"
	"github.com/conduit-lang/restgen/internal/orm/crud"
	"github.com/conduit-lang/restgen/internal/orm/migrate"
)

// NewMigrateCommand creates the migrate command
func NewMigrateCommand(flags *globalFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables of the configured resources",
		Long: `Create a table for every configured resource that does not have one yet.
Existing tables are not altered. References between resources become
foreign keys when the parent is identified by id alone.

Examples:
  restgen migrate --dry-run
  RESTGEN_DATABASE_DRIVER=sqlite3 RESTGEN_DATABASE_URL=app.db restgen migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}

			dialect, err := crud.DialectFor(cfg.Database.Driver)
			if err != nil {
				ui.Message{
					Level:       ui.LevelError,
					Context:     "migrate",
					Problem:     fmt.Sprintf("driver %q has no tables to create", cfg.Database.Driver),
					Suggestions: []string{"set database.driver to pgx, postgres or sqlite3"},
					NoColor:     flags.noColor,
				}.Write(cmd.ErrOrStderr())
				return errReported
			}

			registry, err := app.BuildRegistry(cfg.Resources)
			if err != nil {
				return err
			}
			stmts, err := migrate.Plan(registry, dialect, app.References(cfg.References))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				for _, s := range stmts {
					fmt.Fprintf(out, "%s;\n\n", s.SQL)
				}
				return nil
			}

			logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			_, db, err := app.OpenStore(cfg.Database, cfg.References)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := migrate.NewRunner(db, logger).Apply(cmd.Context(), stmts); err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("%d table(s) ensured", len(stmts)), flags.noColor))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the statements instead of executing them")
	return cmd
}
