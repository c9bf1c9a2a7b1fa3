package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempDB(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New(%q): %v", path, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTable(name string) func(tx *sql.Tx) error {
	return func(tx *sql.Tx) error {
		_, err := tx.Exec("CREATE TABLE " + name + " (id INTEGER PRIMARY KEY, label TEXT)")
		return err
	}
}

func badSQL(tx *sql.Tx) error {
	_, err := tx.Exec("NOT A STATEMENT")
	return err
}

func migrationCount(t *testing.T, s *SQLiteStore, component string) int {
	t.Helper()
	var n int
	err := s.DB().QueryRow("SELECT COUNT(*) FROM _migrations WHERE component = ?", component).Scan(&n)
	if err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	return n
}

func TestNew_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campaigndesk.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestNew_InvalidPath(t *testing.T) {
	if _, err := New("/nonexistent/dir/campaigndesk.db"); err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestNew_Pragmas(t *testing.T) {
	s := tempDB(t)

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	var fk int
	if err := s.DB().QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestTx(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()
	if _, err := s.DB().Exec("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}

	err := s.Tx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO notes (id, body) VALUES (1, 'kept')")
		return err
	})
	if err != nil {
		t.Fatalf("Tx commit: %v", err)
	}

	sentinel := errors.New("abort")
	err = s.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO notes (id, body) VALUES (2, 'dropped')"); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Tx rollback err = %v, want %v", err, sentinel)
	}

	var n int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM notes").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}
}

func TestMigrate_AppliesOnce(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()

	runs := 0
	migrations := []Migration{
		{Version: 1, Description: "create campaigns", Up: func(tx *sql.Tx) error {
			runs++
			return createTable("campaigns")(tx)
		}},
		{Version: 2, Description: "add status", Up: func(tx *sql.Tx) error {
			_, err := tx.Exec("ALTER TABLE campaigns ADD COLUMN status TEXT")
			return err
		}},
	}

	for i := 0; i < 2; i++ {
		if err := s.Migrate(ctx, "campaign", migrations); err != nil {
			t.Fatalf("Migrate #%d: %v", i+1, err)
		}
	}
	if runs != 1 {
		t.Errorf("migration 1 ran %d times, want 1", runs)
	}
	if n := migrationCount(t, s, "campaign"); n != 2 {
		t.Errorf("recorded migrations = %d, want 2", n)
	}
	if _, err := s.DB().Exec("INSERT INTO campaigns (id, label, status) VALUES (1, 'x', 'active')"); err != nil {
		t.Errorf("insert after migration: %v", err)
	}
}

func TestMigrate_ComponentsIsolated(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()

	if err := s.Migrate(ctx, "auth", []Migration{{Version: 1, Description: "users", Up: createTable("auth_users")}}); err != nil {
		t.Fatalf("auth Migrate: %v", err)
	}
	if err := s.Migrate(ctx, "kv", []Migration{{Version: 1, Description: "entries", Up: createTable("kv_entries")}}); err != nil {
		t.Fatalf("kv Migrate: %v", err)
	}
	if migrationCount(t, s, "auth") != 1 || migrationCount(t, s, "kv") != 1 {
		t.Error("each component should record its own version 1")
	}
}

func TestMigrate_FailureKeepsEarlierSteps(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()

	err := s.Migrate(ctx, "partial", []Migration{
		{Version: 1, Description: "ok", Up: createTable("partial_ok")},
		{Version: 2, Description: "broken", Up: badSQL},
	})
	if err == nil {
		t.Fatal("expected migration error")
	}
	if n := migrationCount(t, s, "partial"); n != 1 {
		t.Errorf("recorded migrations = %d, want 1", n)
	}
}

type testComponent struct {
	name string
	ms   []Migration
}

func (c testComponent) Name() string            { return c.name }
func (c testComponent) Migrations() []Migration { return c.ms }

func TestMigrateAll(t *testing.T) {
	s := tempDB(t)
	err := s.MigrateAll(context.Background(),
		testComponent{"a", []Migration{{Version: 1, Description: "a", Up: createTable("a_t")}}},
		testComponent{"b", []Migration{{Version: 1, Description: "b", Up: createTable("b_t")}}},
	)
	if err != nil {
		t.Fatalf("MigrateAll: %v", err)
	}
	for _, table := range []string{"a_t", "b_t"} {
		var name string
		err := s.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		name       string
		sequence   []string
		wantErr    bool
		wantStored string
	}{
		{"first run", []string{"0.4.0"}, false, "0.4.0"},
		{"same version", []string{"0.4.0", "0.4.0"}, false, "0.4.0"},
		{"upgrade", []string{"0.4.0", "0.5.0"}, false, "0.5.0"},
		{"patch upgrade with prefix", []string{"v0.4.0", "0.4.1"}, false, "0.4.1"},
		{"downgrade rejected", []string{"0.5.0", "0.4.0"}, true, "0.5.0"},
		{"dev passes both ways", []string{"dev", "0.5.0", "dev"}, false, "dev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tempDB(t)
			ctx := context.Background()

			var err error
			for _, v := range tt.sequence {
				if err = s.CheckVersion(ctx, v); err != nil {
					break
				}
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckVersion() err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrNewerSchema) {
				t.Errorf("err = %v, want ErrNewerSchema", err)
			}

			var stored string
			if err := s.DB().QueryRow("SELECT app_version FROM _schema_meta WHERE id = 1").Scan(&stored); err != nil {
				t.Fatalf("query stored version: %v", err)
			}
			if stored != tt.wantStored {
				t.Errorf("stored = %q, want %q", stored, tt.wantStored)
			}
		})
	}
}
