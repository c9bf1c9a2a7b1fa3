package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
)

// Restore errors.
var (
	ErrNoManifest     = errors.New("invalid backup: archive has no manifest")
	ErrNoDatabase     = errors.New("invalid backup: archive has no database")
	ErrNewerArchive   = errors.New("backup was written by a newer version")
	ErrUnknownFormat  = errors.New("unsupported backup format")
	ErrUnexpectedFile = errors.New("unexpected archive entry")
)

// maxEntrySize bounds each extracted entry against decompression bombs.
const maxEntrySize = 4 << 30

// Restore extracts an archive into targetDir and returns its manifest.
// Archives written by a newer appVersion are refused ("dev" on either side
// always passes). Existing files are only overwritten when force is true.
// Files are written next to their targets and renamed once the whole
// archive has been read, so a failed restore leaves targetDir untouched.
func Restore(ctx context.Context, archivePath, targetDir, appVersion string, force bool) (*Manifest, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decompressing archive: %w", err)
	}
	defer gr.Close()

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating target directory: %w", err)
	}

	var (
		manifest *Manifest
		staged   = map[string]string{} // final path -> staged path
	)
	defer func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}()

	tr := tar.NewReader(gr)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading archive entry: %w", err)
		}
		if err := validateEntry(hdr.Name, targetDir); err != nil {
			return nil, err
		}

		switch hdr.Name {
		case ManifestName:
			manifest, err = readManifest(tr)
			if err != nil {
				return nil, err
			}
			if err := checkManifest(manifest, appVersion); err != nil {
				return nil, err
			}
		case DatabaseName, ConfigName:
			dest := filepath.Join(targetDir, hdr.Name)
			if !force {
				if _, err := os.Stat(dest); err == nil {
					return nil, fmt.Errorf("file already exists (use -force to overwrite): %s", dest)
				}
			}
			tmp, err := stageFile(tr, targetDir, hdr.Name)
			if err != nil {
				return nil, fmt.Errorf("extracting %s: %w", hdr.Name, err)
			}
			staged[dest] = tmp
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnexpectedFile, hdr.Name)
		}
	}

	if manifest == nil {
		return nil, ErrNoManifest
	}
	if _, ok := staged[filepath.Join(targetDir, DatabaseName)]; !ok {
		return nil, ErrNoDatabase
	}

	for dest, tmp := range staged {
		if err := os.Rename(tmp, dest); err != nil {
			return nil, fmt.Errorf("installing %s: %w", dest, err)
		}
		delete(staged, dest)
	}
	return manifest, nil
}

func readManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(io.LimitReader(r, 1<<20)).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, nil
}

func checkManifest(m *Manifest, appVersion string) error {
	if m.Format != FormatVersion {
		return fmt.Errorf("%w: %d", ErrUnknownFormat, m.Format)
	}
	if m.AppVersion == "dev" || appVersion == "dev" {
		return nil
	}
	if semver.Compare(canonical(m.AppVersion), canonical(appVersion)) > 0 {
		return fmt.Errorf("%w: backup=%s, binary=%s", ErrNewerArchive, m.AppVersion, appVersion)
	}
	return nil
}

func canonical(v string) string {
	if v != "" && v[0] != 'v' {
		return "v" + v
	}
	return v
}

// validateEntry rejects entry names that would escape targetDir.
func validateEntry(name, targetDir string) error {
	if filepath.IsAbs(name) {
		return fmt.Errorf("path traversal detected: absolute path %q", name)
	}
	cleaned := filepath.Clean(name)
	if strings.HasPrefix(cleaned, "..") {
		return fmt.Errorf("path traversal detected: %q", name)
	}

	absTarget, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving target directory: %w", err)
	}
	absDest, err := filepath.Abs(filepath.Join(targetDir, cleaned))
	if err != nil {
		return fmt.Errorf("resolving destination path: %w", err)
	}
	if !strings.HasPrefix(absDest, absTarget+string(filepath.Separator)) {
		return fmt.Errorf("path traversal detected: %q resolves outside target", name)
	}
	return nil
}

// stageFile copies one entry into a temp file in dir and returns its path.
func stageFile(r io.Reader, dir, name string) (string, error) {
	out, err := os.CreateTemp(dir, "."+name+".restore-*")
	if err != nil {
		return "", err
	}
	_, err = io.Copy(out, io.LimitReader(r, maxEntrySize))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}
