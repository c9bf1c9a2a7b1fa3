package mcp

import (
	"context"
	"database/sql"
	"time"

	"github.com/HerbHall/campaigndesk/internal/store"
	"go.uber.org/zap"
)

// Compile-time interface guard.
var _ store.Component = (*AuditStore)(nil)

// timestampLayout is fixed width so text order matches time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// AuditEntry represents a single MCP tool invocation record.
type AuditEntry struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	ToolName     string    `json:"tool_name"`
	InputJSON    string    `json:"input_json"`
	Transport    string    `json:"transport"`
	DurationMs   int64     `json:"duration_ms"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// AuditStore handles persistence for MCP tool call audit records.
type AuditStore struct {
	db *sql.DB
}

// NewAuditStore creates a new AuditStore backed by the given database.
func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) Name() string { return "mcp" }

func (s *AuditStore) Migrations() []store.Migration {
	return []store.Migration{
		{
			Version:     1,
			Description: "create mcp audit log table",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS mcp_audit_log (
						id            INTEGER PRIMARY KEY AUTOINCREMENT,
						timestamp     TEXT    NOT NULL,
						tool_name     TEXT    NOT NULL,
						input_json    TEXT    NOT NULL DEFAULT '{}',
						transport     TEXT    NOT NULL DEFAULT 'stdio',
						duration_ms   INTEGER NOT NULL DEFAULT 0,
						success       INTEGER NOT NULL DEFAULT 1,
						error_message TEXT    NOT NULL DEFAULT ''
					)`,
					`CREATE INDEX IF NOT EXISTS idx_mcp_audit_timestamp ON mcp_audit_log(timestamp)`,
					`CREATE INDEX IF NOT EXISTS idx_mcp_audit_tool ON mcp_audit_log(tool_name)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}

// Insert records an audit entry.
func (s *AuditStore) Insert(ctx context.Context, entry AuditEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mcp_audit_log (timestamp, tool_name, input_json, transport, duration_ms, success, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Timestamp.UTC().Format(timestampLayout),
		entry.ToolName,
		entry.InputJSON,
		entry.Transport,
		entry.DurationMs,
		entry.Success,
		entry.ErrorMessage,
	)
	return err
}

// List returns audit entries, newest first, optionally filtered by tool
// name, together with the total count matching the filter.
func (s *AuditStore) List(ctx context.Context, toolName string, limit, offset int) ([]AuditEntry, int, error) {
	where := ""
	var filterArgs []any
	if toolName != "" {
		where = " WHERE tool_name = ?"
		filterArgs = append(filterArgs, toolName)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM mcp_audit_log"+where, filterArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT id, timestamp, tool_name, input_json, transport, duration_ms, success, error_message FROM mcp_audit_log" +
		where + " ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, query, append(filterArgs, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]AuditEntry, 0, limit)
	for rows.Next() {
		var e AuditEntry
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.ToolName, &e.InputJSON, &e.Transport, &e.DurationMs, &e.Success, &e.ErrorMessage); err != nil {
			return nil, 0, err
		}
		e.Timestamp, _ = time.Parse(timestampLayout, ts)
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// Prune deletes entries recorded before cutoff and returns how many were
// removed.
func (s *AuditStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM mcp_audit_log WHERE timestamp < ?", cutoff.UTC().Format(timestampLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PruneLoop prunes entries older than retention now and then every
// interval until ctx ends. A non-positive retention disables pruning.
func (s *AuditStore) PruneLoop(ctx context.Context, retention, interval time.Duration, logger *zap.Logger) {
	if retention <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		n, err := s.Prune(ctx, time.Now().Add(-retention))
		switch {
		case err != nil && ctx.Err() == nil:
			logger.Warn("failed to prune audit log", zap.Error(err))
		case n > 0:
			logger.Info("pruned audit log", zap.Int64("removed", n), zap.Duration("retention", retention))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
