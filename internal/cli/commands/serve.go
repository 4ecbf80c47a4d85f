package commands

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/restgen/internal/app"
	"github.com/conduit-lang/restgen/internal/cli/ui"
	"github.com/conduit-lang/restgen/internal/logging"
	"github.com/conduit-lang/restgen/internal/web/profiling"
	"github.com/conduit-lang/restgen/internal/web/server"
)

// NewServeCommand creates the serve command
func NewServeCommand(flags *globalFlags) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured resources",
		Long: `Load restgen.yaml, open the store and serve the generated routes until
SIGINT or SIGTERM.

Examples:
  restgen serve
  restgen serve --port 8080
  RESTGEN_DATABASE_DRIVER=pgx RESTGEN_DATABASE_URL=postgres://... restgen serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if len(cfg.Resources) == 0 {
				ui.Message{Level: ui.LevelWarning, Problem: "no resources configured", NoColor: flags.noColor}.
					Write(cmd.ErrOrStderr())
			}

			a, err := app.New(cfg, logger)
			if err != nil {
				return err
			}

			srvConfig := server.DefaultConfig(a.Router)
			srvConfig.Address = cfg.Server.Address()
			srvConfig.ReadTimeout = cfg.Server.ReadTimeout
			srvConfig.WriteTimeout = cfg.Server.WriteTimeout
			srvConfig.Logger = logger
			if cfg.Server.TLSCert != "" && cfg.Server.TLSKey != "" {
				srvConfig.TLS = &server.TLSConfig{CertFile: cfg.Server.TLSCert, KeyFile: cfg.Server.TLSKey}
			}
			if a.DB != nil {
				srvConfig.Database = &server.DatabaseConfig{
					DB:              a.DB,
					MaxOpenConns:    cfg.Database.MaxOpenConns,
					MaxIdleConns:    cfg.Database.MaxIdleConns,
					ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
				}
			}

			srv, err := server.New(srvConfig)
			if err != nil {
				_ = a.Close(context.Background())
				return err
			}

			logger.Info("serving resources",
				zap.Int("resources", len(cfg.Resources)),
				zap.Int("routes", len(a.Router.GetRoutes())),
				zap.String("driver", cfg.Database.Driver),
			)

			gs := server.NewGracefulShutdown(srv, &server.ShutdownConfig{
				Timeout: cfg.Server.ShutdownTimeout,
				Logger:  logger,
			})
			if cfg.Server.PprofAddr != "" {
				psrv, err := startProfiling(cfg.Server.PprofAddr, logger)
				if err != nil {
					_ = a.Close(context.Background())
					return err
				}
				gs.RegisterHook(psrv.Shutdown)
			}
			gs.RegisterHook(a.Close)
			return gs.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides server.port)")
	return cmd
}

// startProfiling serves pprof on addr in the background
func startProfiling(addr string, logger *zap.Logger) (*server.Server, error) {
	config := server.DefaultConfig(profiling.Handler(profiling.Config{}))
	config.Address = addr
	// CPU profiles and traces stream for longer than a normal response
	config.WriteTimeout = 0
	config.Logger = logger.Named("pprof")

	srv, err := server.New(config)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("profiling server failed", zap.Error(err))
		}
	}()
	return srv, nil
}
