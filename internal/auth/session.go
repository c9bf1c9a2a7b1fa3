package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/HerbHall/campaigndesk/internal/kv"
	"go.uber.org/zap"
)

// SessionKey is the storage key of the current user record. Each signed-in
// user also has a record under userKey, which the HTTP API reads by the
// token's user ID.
const SessionKey = "@auth_user"

func userKey(id string) string { return SessionKey + "/" + id }

// Session errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoSession          = errors.New("no user signed in")
)

// Identity of the built-in guest and admin sessions.
const (
	AdminID    = "admin-1"
	AdminName  = "Admin"
	GuestName  = "Convidado"
	GuestEmail = "guest@app.com"
)

// Storage is the key-value storage the current user is mirrored to.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Config holds the auth configuration.
type Config struct {
	AdminEmail     string        `mapstructure:"admin_email"`
	AdminPassword  string        `mapstructure:"admin_password"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	BcryptCost     int           `mapstructure:"bcrypt_cost"`
}

// DefaultConfig returns the built-in admin pair and a 24h token lifetime.
func DefaultConfig() Config {
	return Config{
		AdminEmail:     "admin@app.com",
		AdminPassword:  "admin123",
		AccessTokenTTL: 24 * time.Hour,
	}
}

// Sessions manages the single current user of this installation: the admin
// pair, registered accounts, or an anonymous guest.
type Sessions struct {
	storage Storage
	users   *UserStore
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time

	mu sync.Mutex // guards read-modify-write of SessionKey
}

// NewSessions creates a session manager.
func NewSessions(storage Storage, users *UserStore, cfg Config, logger *zap.Logger) *Sessions {
	return &Sessions{
		storage: storage,
		users:   users,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Load returns the persisted current user, or nil when nobody is signed in.
// An unreadable record is logged and treated as signed out.
func (s *Sessions) Load(ctx context.Context) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Sessions) load(ctx context.Context) (*User, error) {
	return s.read(ctx, SessionKey)
}

// read returns the user stored under key, or nil when there is none. An
// unreadable record is logged and treated as absent.
func (s *Sessions) read(ctx context.Context, key string) (*User, error) {
	raw, err := s.storage.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.logger.Warn("discarding unreadable session record", zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	return &u, nil
}

// IsAuthenticated reports whether a user is signed in.
func (s *Sessions) IsAuthenticated(ctx context.Context) bool {
	u, err := s.Load(ctx)
	return err == nil && u != nil
}

// Login signs in with the admin pair or a registered account.
func (s *Sessions) Login(ctx context.Context, email, password string) (*User, error) {
	var u *User
	if email == s.cfg.AdminEmail && password == s.cfg.AdminPassword {
		u = &User{ID: AdminID, Name: AdminName, Email: s.cfg.AdminEmail, Role: RoleAdmin}
	} else {
		ru, err := s.users.GetUserByEmail(ctx, email)
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		if err != nil {
			return nil, fmt.Errorf("lookup user: %w", err)
		}
		if !CheckPassword(ru.PasswordHash, password) {
			return nil, ErrInvalidCredentials
		}
		u = &User{ID: s.newID("user"), Name: ru.Name, Email: ru.Email, Role: RoleUser}
	}

	if err := s.save(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// LoginAsGuest starts an anonymous session.
func (s *Sessions) LoginAsGuest(ctx context.Context) (*User, error) {
	u := &User{ID: s.newID("guest"), Name: GuestName, Email: GuestEmail, Role: RoleGuest}
	if err := s.save(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("guest session started", zap.String("user_id", u.ID))
	return u, nil
}

// Logout clears the current user and their session record.
func (s *Sessions) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.load(ctx)
	if err != nil {
		return err
	}
	if u != nil {
		if err := s.storage.Remove(ctx, userKey(u.ID)); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	if err := s.storage.Remove(ctx, SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Register creates an account and signs it in.
func (s *Sessions) Register(ctx context.Context, name, email, password string) (*User, error) {
	if err := ValidateRegistration(name, email, password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	err = s.users.CreateUser(ctx, &RegisteredUser{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	u := &User{ID: s.newID("user"), Name: name, Email: email, Role: RoleUser}
	if err := s.save(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", u.ID))
	return u, nil
}

// UpdateUser merges patch into the current user. It returns nil, nil when
// nobody is signed in.
func (s *Sessions) UpdateUser(ctx context.Context, patch UserPatch) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.load(ctx)
	if err != nil || u == nil {
		return nil, err
	}
	return s.update(ctx, u, patch)
}

// Session returns the session record of userID, or nil once that user has
// logged out.
func (s *Sessions) Session(ctx context.Context, userID string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx, userKey(userID))
}

// UpdateSession merges patch into userID's session record. It returns
// nil, nil when that user has no session.
func (s *Sessions) UpdateSession(ctx context.Context, userID string, patch UserPatch) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.read(ctx, userKey(userID))
	if err != nil || u == nil {
		return nil, err
	}
	return s.update(ctx, u, patch)
}

// EndSession removes userID's session record. The current user is cleared
// only when it is the same user.
func (s *Sessions) EndSession(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Remove(ctx, userKey(userID)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	cur, err := s.load(ctx)
	if err != nil {
		return err
	}
	if cur != nil && cur.ID == userID {
		if err := s.storage.Remove(ctx, SessionKey); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	return nil
}

// update applies patch to u and stores it. Caller holds s.mu.
func (s *Sessions) update(ctx context.Context, u *User, patch UserPatch) (*User, error) {
	if patch.Name != "" {
		u.Name = patch.Name
	}
	if patch.Email != "" {
		u.Email = patch.Email
	}
	if patch.Role != "" {
		u.Role = patch.Role
	}
	if err := s.write(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Debug("user updated", zap.String("user_id", u.ID))
	return u, nil
}

// save makes u the current user and records its session.
func (s *Sessions) save(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeKey(ctx, userKey(u.ID), u); err != nil {
		return err
	}
	return s.writeKey(ctx, SessionKey, u)
}

// write stores u as its own session record, and as the current user when
// u is the current user. Caller holds s.mu.
func (s *Sessions) write(ctx context.Context, u *User) error {
	if err := s.writeKey(ctx, userKey(u.ID), u); err != nil {
		return err
	}
	cur, err := s.load(ctx)
	if err != nil {
		return err
	}
	if cur != nil && cur.ID == u.ID {
		return s.writeKey(ctx, SessionKey, u)
	}
	return nil
}

func (s *Sessions) writeKey(ctx context.Context, key string, u *User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.storage.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Sessions) newID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, s.now().UnixMilli())
}
