// Package main is the entry point for the git access gateway.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vyrodovalexey/avgitgw/internal/auth"
	"github.com/vyrodovalexey/avgitgw/internal/auth/password"
	"github.com/vyrodovalexey/avgitgw/internal/authz"
	"github.com/vyrodovalexey/avgitgw/internal/cache"
	"github.com/vyrodovalexey/avgitgw/internal/config"
	"github.com/vyrodovalexey/avgitgw/internal/health"
	"github.com/vyrodovalexey/avgitgw/internal/observability"
	"github.com/vyrodovalexey/avgitgw/internal/server"
	"github.com/vyrodovalexey/avgitgw/internal/signature"
	"github.com/vyrodovalexey/avgitgw/internal/store/postgres"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		printVersion()
		return
	}

	logger := initLogger(flags)
	defer func() { _ = logger.Sync() }()

	cfg := loadAndValidateConfig(flags.configPath, logger)
	app := initApplication(cfg, logger)

	runGateway(app, flags.configPath, logger)
}

// parseFlags parses command line flags.
func parseFlags() cliFlags {
	configPath := flag.String("config", getEnvOrDefault("GATEWAY_CONFIG_PATH", "configs/gateway.yaml"),
		"Path to configuration file")
	logLevel := flag.String("log-level", getEnvOrDefault("GATEWAY_LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", getEnvOrDefault("GATEWAY_LOG_FORMAT", "json"),
		"Log format (json, console)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	return cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		showVersion: *showVersion,
	}
}

// printVersion prints version information and exits.
func printVersion() {
	fmt.Printf("avgitgw version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// initLogger initializes the logger.
func initLogger(flags cliFlags) observability.Logger {
	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  flags.logLevel,
		Format: flags.logFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	observability.SetGlobalLogger(logger)
	return logger
}

// loadAndValidateConfig loads and validates the configuration.
func loadAndValidateConfig(configPath string, logger observability.Logger) *config.GatewayConfig {
	logger.Info("starting avgitgw",
		observability.String("version", version),
		observability.String("config", configPath),
	)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", observability.Error(err))
	}

	if err := config.ValidateConfig(cfg); err != nil {
		logger.Fatal("invalid configuration", observability.Error(err))
	}

	logger.Info("configuration loaded",
		observability.String("address", cfg.Server.Address),
		observability.Int("port", cfg.Server.Port),
		observability.String("realm", cfg.Auth.Realm),
		observability.Bool("cacheEnabled", cfg.Cache.Enabled),
	)

	return cfg
}

// application holds all application components.
type application struct {
	server *server.Server
	users  *postgres.Store
	cache  cache.Cache
	config *config.GatewayConfig
}

// initApplication initializes all application components.
func initApplication(cfg *config.GatewayConfig, logger observability.Logger) *application {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users, err := postgres.New(ctx, postgres.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime.Duration(),
	})
	if err != nil {
		logger.Fatal("failed to connect to database", observability.Error(err))
	}

	registry := prometheus.NewRegistry()
	authMetrics := auth.NewMetricsWithRegisterer("gateway", registry)
	cacheMetrics := cache.NewMetricsWithRegisterer("gateway", registry)

	attributionCache, err := cache.New(&cfg.Cache, logger, cache.WithMetrics(cacheMetrics))
	if err != nil {
		logger.Fatal("failed to initialize cache", observability.Error(err))
	}

	realm := cfg.Auth.Realm
	if realm == "" {
		realm = auth.DefaultRealm
	}

	verifier := auth.NewVerifier(users, password.NewArgon2Verifier(password.DefaultParams()),
		auth.WithVerifierLogger(logger))
	gate := auth.NewGate(verifier, realm,
		auth.WithGateLogger(logger),
		auth.WithGateMetrics(authMetrics))
	access := authz.NewAccess(gate, authz.WithAccessLogger(logger))

	attributor := signature.NewDisambiguator(users,
		signature.WithAttributionCache(attributionCache),
		signature.WithDisambiguatorLogger(logger))

	checker := health.NewChecker(version)
	checker.RegisterCheck("database", health.DatabaseCheck(users))
	checker.RegisterCheck("cache", health.CacheCheck(attributionCache))

	srv := server.New(&cfg.Server, access, users,
		server.WithServerLogger(logger),
		server.WithDisambiguator(attributor),
		server.WithHealthChecker(checker),
		server.WithMetricsRegistry(registry))

	return &application{
		server: srv,
		users:  users,
		cache:  attributionCache,
		config: cfg,
	}
}

// runGateway runs the gateway and handles shutdown.
func runGateway(app *application, configPath string, logger observability.Logger) {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.server.Start(context.Background())
	}()

	watcher := startConfigWatcher(configPath, logger)

	waitForShutdown(app, watcher, errCh, logger)
}

// startConfigWatcher starts the configuration watcher. Most settings
// require a restart; changes are surfaced in the log so operators notice
// stale processes.
func startConfigWatcher(configPath string, logger observability.Logger) *config.Watcher {
	watcher, err := config.NewWatcher(configPath, func(_ *config.GatewayConfig) {
		logger.Warn("configuration file changed, restart to apply")
	}, config.WithLogger(logger))

	if err != nil {
		logger.Warn("failed to create config watcher", observability.Error(err))
		return nil
	}

	if err := watcher.Start(context.Background()); err != nil {
		logger.Warn("failed to start config watcher", observability.Error(err))
	}

	return watcher
}

// waitForShutdown waits for a shutdown signal or a server failure and
// performs graceful shutdown.
func waitForShutdown(
	app *application,
	watcher *config.Watcher,
	errCh <-chan error,
	logger observability.Logger,
) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", observability.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", observability.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if watcher != nil {
		_ = watcher.Stop()
	}

	if err := app.server.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop server gracefully", observability.Error(err))
	}

	if err := app.cache.Close(); err != nil {
		logger.Error("failed to close cache", observability.Error(err))
	}

	app.users.Close()

	logger.Info("gateway stopped")
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
