package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/HerbHall/campaigndesk/internal/backup"
	"github.com/HerbHall/campaigndesk/internal/store"
	"github.com/HerbHall/campaigndesk/internal/version"
	"go.uber.org/zap"
)

// runBackup writes an archive of the database and the active config file.
func runBackup(args []string) {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	output := fs.String("output", "", "archive path (default campaigndesk-backup-<timestamp>.tar.gz)")
	viperCfg, cfg, logger := loadConfig(fs, args)
	defer func() { _ = logger.Sync() }()

	archivePath := *output
	if archivePath == "" {
		archivePath = fmt.Sprintf("campaigndesk-backup-%s.tar.gz", time.Now().UTC().Format("20060102-150405"))
	}

	db, err := store.New(cfg.GetString("database.path"))
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	m, err := backup.Backup(context.Background(), db.DB(), version.Short(), viperCfg.ConfigFileUsed(), archivePath)
	if err != nil {
		logger.Fatal("backup failed", zap.Error(err))
	}
	logger.Info("backup written",
		zap.String("archive", archivePath),
		zap.Bool("config_included", m.HasConfig),
	)
	fmt.Println(archivePath)
}

// runRestore extracts an archive next to the configured database path.
func runRestore(args []string) {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	force := fs.Bool("force", false, "overwrite existing files")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: campaigndesk restore [-config file] [-force] <archive>")
		fs.PrintDefaults()
	}
	_, cfg, logger := loadConfig(fs, args)
	defer func() { _ = logger.Sync() }()

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	targetDir := filepath.Dir(cfg.GetString("database.path"))
	m, err := backup.Restore(context.Background(), fs.Arg(0), targetDir, version.Short(), *force)
	if err != nil {
		logger.Fatal("restore failed", zap.Error(err))
	}
	logger.Info("backup restored",
		zap.String("target", targetDir),
		zap.String("backup_version", m.AppVersion),
		zap.Time("created_at", m.CreatedAt),
	)
	if filepath.Base(cfg.GetString("database.path")) != backup.DatabaseName {
		logger.Warn("restored database name differs from database.path",
			zap.String("restored", filepath.Join(targetDir, backup.DatabaseName)),
			zap.String("database_path", cfg.GetString("database.path")),
		)
	}
}
