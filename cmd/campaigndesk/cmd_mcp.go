package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/HerbHall/campaigndesk/internal/campaign"
	"github.com/HerbHall/campaigndesk/internal/mcp"
	"github.com/HerbHall/campaigndesk/internal/store"
	"github.com/HerbHall/campaigndesk/internal/tools"
	"github.com/HerbHall/campaigndesk/internal/version"
	"go.uber.org/zap"
)

// runMCP serves the MCP tools over stdin/stdout for a local AI client.
// Logs go to the configured output (stderr by default) so stdout carries
// only protocol messages.
func runMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	_, cfg, logger := loadConfig(fs, args)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.New(cfg.GetString("database.path"))
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.CheckVersion(ctx, version.Short()); err != nil {
		logger.Fatal("database version check failed", zap.Error(err))
	}
	campaignStore := campaign.NewStore(db.DB())
	auditStore := mcp.NewAuditStore(db.DB())
	if err := db.MigrateAll(ctx, campaignStore, auditStore); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	gen, err := newGenerationClient(cfg, logger.Named("generation"))
	if err != nil {
		logger.Fatal("failed to create generation client", zap.Error(err))
	}

	srv := mcp.New(tools.NewService(gen, logger.Named("tools")), campaignStore, auditStore, logger.Named("mcp"))
	logger.Info("serving MCP on stdio", zap.String("endpoint", gen.Endpoint()))
	if err := srv.RunStdio(ctx); err != nil && ctx.Err() == nil {
		logger.Error("mcp session ended", zap.Error(err))
		os.Exit(1)
	}
}
