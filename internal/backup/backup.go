// Package backup writes and restores campaigndesk data archives. An archive
// is a gzip-compressed tar holding a manifest, a consistent snapshot of the
// SQLite database and, optionally, the configuration file.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Archive entry names.
const (
	ManifestName = "manifest.json"
	DatabaseName = "campaigndesk.db"
	ConfigName   = "campaigndesk.yaml"
)

// FormatVersion is bumped when the archive layout changes.
const FormatVersion = 1

// Manifest describes an archive.
type Manifest struct {
	Format     int       `json:"format"`
	AppVersion string    `json:"app_version"`
	CreatedAt  time.Time `json:"created_at"`
	HasConfig  bool      `json:"has_config"`
}

// Backup snapshots db with VACUUM INTO and writes the archive to
// archivePath, which must not exist. configPath may be empty. A partial
// archive is removed on failure.
func Backup(ctx context.Context, db *sql.DB, appVersion, configPath, archivePath string) (*Manifest, error) {
	tmpDir, err := os.MkdirTemp("", "campaigndesk-backup-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	snapshot := filepath.Join(tmpDir, DatabaseName)
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", snapshot); err != nil {
		return nil, fmt.Errorf("snapshotting database: %w", err)
	}

	m := &Manifest{
		Format:     FormatVersion,
		AppVersion: appVersion,
		CreatedAt:  time.Now().UTC(),
		HasConfig:  configPath != "",
	}

	if err := writeArchive(archivePath, m, snapshot, configPath); err != nil {
		return nil, err
	}
	return m, nil
}

func writeArchive(archivePath string, m *Manifest, dbPath, configPath string) (err error) {
	f, err := os.OpenFile(archivePath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	defer func() {
		err = errors.Join(err, tw.Close(), gw.Close(), f.Close())
		if err != nil {
			os.Remove(archivePath)
		}
	}()

	manifest, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := writeEntry(tw, ManifestName, manifest, m.CreatedAt); err != nil {
		return err
	}
	if err := copyFileEntry(tw, DatabaseName, dbPath); err != nil {
		return err
	}
	if configPath != "" {
		if err := copyFileEntry(tw, ConfigName, configPath); err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(tw *tar.Writer, name string, data []byte, modTime time.Time) error {
	hdr := &tar.Header{
		Name:    name,
		Mode:    0o600,
		Size:    int64(len(data)),
		ModTime: modTime,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("writing %s header: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func copyFileEntry(tw *tar.Writer, name, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	hdr := &tar.Header{
		Name:    name,
		Mode:    0o600,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("writing %s header: %w", name, err)
	}
	if _, err := io.Copy(tw, src); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
