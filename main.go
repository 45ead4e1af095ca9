package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource/mssql"
	_ "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource/mysql"
	_ "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource/postgres"
	_ "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource/sqlite"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/audit"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/config"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/crypto"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/handlers"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/history"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/llm"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/logging"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/middleware"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/playground"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/preferences"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/retry"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/services"
	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

// Version is set at build time via ldflags
var Version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "sqlsage",
		Short:         "Natural-language SQL assistant and playground",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigFile, "path to the YAML config file")

	load := func() (*config.Config, error) {
		return config.LoadFile(Version, configPath)
	}

	root.AddCommand(
		newServeCmd(load),
		newValidateCmd(),
		newConvertCmd(),
		newSuggestCmd(),
		newClassifyCmd(),
		newHistoryCmd(load),
	)
	return root
}

func newServeCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

// openStores opens the history and preferences documents, sealing profile
// passwords when a credentials key is configured.
func openStores(cfg *config.Config, logger *zap.Logger) (*history.Store, *preferences.Store, error) {
	var sealer preferences.Sealer
	if cfg.CredentialsKey != "" {
		s, err := crypto.NewPasswordSealer(cfg.CredentialsKey)
		if err != nil {
			return nil, nil, fmt.Errorf("credentials key: %w", err)
		}
		sealer = s
	}
	return history.Open(cfg.Storage.HistoryFile, logger), preferences.Open(cfg.Storage.PreferencesFile, sealer, logger), nil
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("execution_dialect", cfg.Database.Dialect),
		zap.String("database", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)),
		zap.String("generation_provider", cfg.Generation.Provider),
		zap.Bool("credentials_sealed", cfg.CredentialsKey != ""))

	historyStore, prefs, err := openStores(cfg, logger)
	if err != nil {
		return err
	}
	session := services.NewSession(prefs, logger)

	generator, err := llm.NewGenerator(cfg.Generation, logger)
	if err != nil {
		// The rest of the API stays usable without a provider.
		logger.Warn("Generation disabled", logging.Error(err))
		generator = nil
	} else if cfg.Generation.MaxRetries > 0 {
		rc := retry.DefaultConfig()
		rc.MaxRetries = cfg.Generation.MaxRetries
		generator = llm.NewRetryingGenerator(generator, rc, logger)
	}

	dialect, err := sqlpkg.ParseDialect(cfg.Database.Dialect)
	if err != nil {
		return err
	}
	factory := services.NewExecutorFactory(dialect, playground.Options{
		RowLimit:         cfg.Playground.RowLimit,
		PreviewLimit:     cfg.Playground.PreviewLimit,
		StatementTimeout: cfg.Playground.StatementTimeout,
	}, logger)
	pg, err := services.NewPlaygroundService(factory, services.ConnectionFromConfig(cfg.Database), session, prefs, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewSQLHandler(session, logger).RegisterRoutes(mux)
	handlers.NewPlaygroundHandler(pg, audit.NewSecurityAuditor(logger), logger).RegisterRoutes(mux)
	handlers.NewHistoryHandler(historyStore, logger).RegisterRoutes(mux)
	handlers.NewPreferencesHandler(prefs, historyStore, session, logger).RegisterRoutes(mux)
	handlers.NewSchemaHandler(session, logger).RegisterRoutes(mux)
	if generator != nil {
		assistant := services.NewAssistantService(generator, session, historyStore, prefs, cfg.Generation.Timeout, logger)
		handlers.NewGenerateHandler(assistant, logger).RegisterRoutes(mux)
	}

	var handler http.Handler = mux
	handler = middleware.APIRequestLogger(logger)(handler)
	handler = middleware.RequestLogger(logger)(handler)
	handler = middleware.Recover(logger)(handler)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting sqlsage",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
