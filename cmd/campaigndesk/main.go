package main

//	@title						campaigndesk API
//	@version					0.1.0
//	@description				Campaign toolkit API: generation tools, campaign data and settings.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/HerbHall/campaigndesk/api/swagger"
	"github.com/HerbHall/campaigndesk/internal/auth"
	"github.com/HerbHall/campaigndesk/internal/campaign"
	"github.com/HerbHall/campaigndesk/internal/config"
	genclient "github.com/HerbHall/campaigndesk/internal/generation"
	"github.com/HerbHall/campaigndesk/internal/kv"
	"github.com/HerbHall/campaigndesk/internal/mcp"
	"github.com/HerbHall/campaigndesk/internal/server"
	"github.com/HerbHall/campaigndesk/internal/settings"
	"github.com/HerbHall/campaigndesk/internal/store"
	"github.com/HerbHall/campaigndesk/internal/tools"
	"github.com/HerbHall/campaigndesk/internal/version"
	"github.com/HerbHall/campaigndesk/internal/ws"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	// Subcommand dispatch (before flag.Parse).
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			runServe(os.Args[2:])
			return
		case "generate":
			runGenerate(os.Args[2:])
			return
		case "diag":
			runDiag(os.Args[2:])
			return
		case "backup":
			runBackup(os.Args[2:])
			return
		case "restore":
			runRestore(os.Args[2:])
			return
		case "mcp":
			runMCP(os.Args[2:])
			return
		case "version":
			fmt.Println(version.Get().Text())
			return
		}
	}
	runServe(os.Args[1:])
}

// loadConfig parses the shared -config flag, loads configuration and builds
// the logger. Failures exit the process.
func loadConfig(fs *flag.FlagSet, args []string) (*viper.Viper, *config.ViperConfig, *zap.Logger) {
	configPath := fs.String("config", "", "path to configuration file")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	// Load configuration (before logger, so log level/format can be configured).
	viperCfg, err := server.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(viperCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return viperCfg, config.New(viperCfg), logger
}

// newGenerationClient builds the generation client from the "generation"
// configuration section.
func newGenerationClient(cfg *config.ViperConfig, logger *zap.Logger) (*genclient.Client, error) {
	genCfg := genclient.DefaultConfig()
	if err := cfg.Section("generation", &genCfg); err != nil {
		return nil, err
	}
	return genclient.New(genCfg, nil, logger)
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	showVersion := fs.Bool("version", false, "print version information and exit")
	viperCfg, cfg, logger := loadConfig(fs, args)
	defer func() { _ = logger.Sync() }()

	if *showVersion {
		fmt.Println(version.Get().Text())
		return
	}

	logger.Info("campaigndesk server starting", zap.String("version", version.Short()))

	if f := viperCfg.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded",
			zap.String("component", "config"),
			zap.String("source", f),
		)
	} else {
		logger.Warn("no configuration file found, using defaults",
			zap.String("component", "config"),
		)
	}

	srvCfg := server.DefaultConfig()
	if err := cfg.Section("server", &srvCfg); err != nil {
		logger.Fatal("invalid server configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open database
	dbPath := cfg.GetString("database.path")
	if dbPath == "" {
		dbPath = "campaigndesk.db"
	}
	db, err := store.New(dbPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.CheckVersion(ctx, version.Short()); err != nil {
		logger.Fatal("database version check failed", zap.Error(err))
	}

	kvStore := kv.New(db.DB())
	userStore := auth.NewUserStore(db.DB())
	campaignStore := campaign.NewStore(db.DB())
	auditStore := mcp.NewAuditStore(db.DB())
	if err := db.MigrateAll(ctx, kvStore, userStore, campaignStore, auditStore); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	logger.Info("database initialized",
		zap.String("component", "database"),
		zap.String("path", dbPath),
	)

	// Create auth service
	authCfg := auth.DefaultConfig()
	if err := cfg.Section("auth", &authCfg); err != nil {
		logger.Fatal("invalid auth configuration", zap.Error(err))
	}
	if authCfg.JWTSecret == "" {
		// Generate an ephemeral secret -- tokens won't survive restarts.
		authCfg.JWTSecret, err = auth.GenerateSecret()
		if err != nil {
			logger.Fatal("failed to generate JWT secret", zap.Error(err))
		}
		logger.Info("using auto-generated JWT secret (set auth.jwt_secret in config to keep tokens valid across restarts)",
			zap.String("component", "auth"),
		)
	} else {
		logger.Info("JWT secret loaded from configuration", zap.String("component", "auth"))
	}

	tokens := auth.NewTokenService([]byte(authCfg.JWTSecret), authCfg.AccessTokenTTL)
	sessions := auth.NewSessions(kvStore, userStore, authCfg, logger.Named("auth"))
	authHandler := auth.NewHandler(sessions, userStore, tokens, logger.Named("auth"))
	logger.Info("auth service initialized",
		zap.String("component", "auth"),
		zap.Duration("access_token_ttl", tokens.TTL()),
	)

	// Create generation client
	gen, err := newGenerationClient(cfg, logger.Named("generation"))
	if err != nil {
		logger.Fatal("failed to create generation client", zap.Error(err))
	}
	logger.Info("generation client initialized",
		zap.String("component", "generation"),
		zap.String("endpoint", gen.Endpoint()),
		zap.String("mode", string(gen.Mode())),
	)

	toolsSvc := tools.NewService(gen, logger.Named("tools"))
	toolsHandler := tools.NewHandler(toolsSvc, logger.Named("tools"))
	mcpServer := mcp.New(toolsSvc, campaignStore, auditStore, logger.Named("mcp"))
	mcpCfg := mcp.DefaultConfig()
	if err := cfg.Section("mcp", &mcpCfg); err != nil {
		logger.Fatal("invalid mcp configuration", zap.Error(err))
	}
	go auditStore.PruneLoop(ctx, mcpCfg.AuditRetention, mcp.AuditPruneInterval, logger.Named("mcp"))
	campaignHandler := campaign.NewHandler(campaignStore, logger.Named("campaign"))
	settingsHandler := settings.NewHandler(kvStore, logger.Named("settings"))
	wsHandler := ws.NewHandler(gen, tokens, logger.Named("ws"))

	readyCheck := server.ReadinessChecker(func(ctx context.Context) error {
		if err := db.DB().PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if err := gen.Heartbeat(ctx); err != nil {
			return fmt.Errorf("generation service: %w", err)
		}
		return nil
	})

	srv := server.New(srvCfg, logger, readyCheck, authHandler,
		toolsHandler, campaignHandler, settingsHandler, wsHandler, mcpServer)

	// Start server in background
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("campaigndesk server ready", zap.String("addr", srvCfg.Addr()))
	fmt.Fprintf(os.Stderr, "\n  campaigndesk %s is ready!\n  API at http://localhost:%d/api/v1\n\n", version.Short(), srvCfg.Port)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	wsHandler.Notify("server shutting down")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("campaigndesk server stopped")
}
