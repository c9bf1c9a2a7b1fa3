package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/HerbHall/campaigndesk/internal/store"
)

// UserStore persists registered accounts in auth_users.
type UserStore struct {
	db *sql.DB
}

// Compile-time interface guard.
var _ store.Component = (*UserStore)(nil)

// NewUserStore returns a UserStore over db. Run its migrations before use.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Name() string { return "auth" }

func (s *UserStore) Migrations() []store.Migration {
	return []store.Migration{
		{
			Version:     1,
			Description: "create auth_users table",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`
					CREATE TABLE auth_users (
						email         TEXT     PRIMARY KEY,
						name          TEXT     NOT NULL,
						password_hash TEXT     NOT NULL,
						created_at    DATETIME NOT NULL
					)`)
				return err
			},
		},
	}
}

// CreateUser inserts an account. A duplicate email returns ErrUserExists.
func (s *UserStore) CreateUser(ctx context.Context, u *RegisteredUser) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auth_users (email, name, password_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		u.Email, u.Name, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByEmail returns the account registered under email.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*RegisteredUser, error) {
	var u RegisteredUser
	err := s.db.QueryRowContext(ctx, `
		SELECT email, name, password_hash, created_at
		FROM auth_users WHERE email = ?`, email,
	).Scan(&u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", email, err)
	}
	return &u, nil
}

// ListUsers returns all accounts, oldest first.
func (s *UserStore) ListUsers(ctx context.Context) ([]RegisteredUser, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT email, name, password_hash, created_at FROM auth_users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []RegisteredUser
	for rows.Next() {
		var u RegisteredUser
		if err := rows.Scan(&u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
