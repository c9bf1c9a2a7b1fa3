package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HerbHall/campaigndesk/internal/kv"
	"github.com/HerbHall/campaigndesk/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type sessionEnv struct {
	sessions *Sessions
	users    *UserStore
	kv       *kv.Store
}

func newSessionEnv(t *testing.T) *sessionEnv {
	t.Helper()
	db := testutil.NewStore(t)
	users := NewUserStore(db.DB())
	k := kv.New(db.DB())
	if err := db.MigrateAll(context.Background(), users, k); err != nil {
		t.Fatalf("MigrateAll: %v", err)
	}

	cfg := DefaultConfig()
	cfg.BcryptCost = bcrypt.MinCost
	s := NewSessions(k, users, cfg, zap.NewNop())
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return &sessionEnv{sessions: s, users: users, kv: k}
}

func TestSessions_LoadEmpty(t *testing.T) {
	env := newSessionEnv(t)
	u, err := env.sessions.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if u != nil {
		t.Errorf("Load() = %+v, want nil", u)
	}
	if env.sessions.IsAuthenticated(context.Background()) {
		t.Error("IsAuthenticated() = true with no session")
	}
}

func TestSessions_LoadCorruptRecord(t *testing.T) {
	env := newSessionEnv(t)
	ctx := context.Background()
	if err := env.kv.Set(ctx, SessionKey, "{broken"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	u, err := env.sessions.Load(ctx)
	if err != nil || u != nil {
		t.Errorf("Load() = %+v, %v; want nil, nil", u, err)
	}
}

func TestSessions_LoginAdmin(t *testing.T) {
	env := newSessionEnv(t)
	ctx := context.Background()

	u, err := env.sessions.Login(ctx, "admin@app.com", "admin123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	want := User{ID: "admin-1", Name: "Admin", Email: "admin@app.com", Role: RoleAdmin}
	if *u != want {
		t.Errorf("Login() = %+v, want %+v", *u, want)
	}

	loaded, err := env.sessions.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil || *loaded != want {
		t.Errorf("Load() = %+v, want %+v", loaded, want)
	}
	if !env.sessions.IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() = false after login")
	}
}

func TestSessions_LoginInvalid(t *testing.T) {
	env := newSessionEnv(t)
	ctx := context.Background()

	for _, tc := range [][2]string{
		{"admin@app.com", "wrong"},
		{"nobody@example.com", "admin123"},
	} {
		if _, err := env.sessions.Login(ctx, tc[0], tc[1]); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%q) err = %v, want ErrInvalidCredentials", tc[0], err)
		}
	}
	if env.sessions.IsAuthenticated(ctx) {
		t.Error("failed login must not create a session")
	}
}

func TestSessions_RegisterThenLogin(t *testing.T) {
	env := newSessionEnv(t)
	ctx := context.Background()

	u, err := env.sessions.Register(ctx, "Maria Santos", "maria@example.com", "segredo")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.ID != "user-1700000000000" || u.Role != RoleUser || u.Name != "Maria Santos" {
		t.Errorf("Register() = %+v", u)
	}

	if _, err := env.sessions.Register(ctx, "Other", "maria@example.com", "x"); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate Register err = %v, want ErrUserExists", err)
	}

	if err := env.sessions.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if env.sessions.IsAuthenticated(ctx) {
		t.Fatal("still authenticated after Logout")
	}

	if _, err := env.sessions.Login(ctx, "maria@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login wrong password err = %v", err)
	}
	u, err = env.sessions.Login(ctx, "maria@example.com", "segredo")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Email != "maria@example.com" || u.Role != RoleUser {
		t.Errorf("Login() = %+v", u)
	}

	stored, err := env.users.GetUserByEmail(ctx, "maria@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if stored.PasswordHash == "segredo" {
		t.Error("password stored in clear text")
	}
}

func TestSessions_RegisterValidation(t *testing.T) {
	env := newSessionEnv(t)
	if _, err := env.sessions.Register(context.Background(), "", "a@b.c", "x"); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestSessions_LoginAsGuest(t *testing.T) {
	env := newSessionEnv(t)
	u, err := env.sessions.LoginAsGuest(context.Background())
	if err != nil {
		t.Fatalf("LoginAsGuest: %v", err)
	}
	want := User{ID: "guest-1700000000000", Name: "Convidado", Email: "guest@app.com", Role: RoleGuest}
	if *u != want {
		t.Errorf("LoginAsGuest() = %+v, want %+v", *u, want)
	}
}

func TestSessions_UpdateUser(t *testing.T) {
	env := newSessionEnv(t)
	ctx := context.Background()

	u, err := env.sessions.UpdateUser(ctx, UserPatch{Name: "Nobody"})
	if err != nil || u != nil {
		t.Fatalf("UpdateUser with no session = %+v, %v; want nil, nil", u, err)
	}
	if env.sessions.IsAuthenticated(ctx) {
		t.Fatal("UpdateUser must not create a session")
	}

	if _, err := env.sessions.LoginAsGuest(ctx); err != nil {
		t.Fatalf("LoginAsGuest: %v", err)
	}
	u, err = env.sessions.UpdateUser(ctx, UserPatch{Name: "Visitante"})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if u.Name != "Visitante" || u.Email != GuestEmail || u.Role != RoleGuest {
		t.Errorf("UpdateUser() = %+v", u)
	}

	loaded, _ := env.sessions.Load(ctx)
	if loaded == nil || loaded.Name != "Visitante" {
		t.Errorf("Load() after update = %+v", loaded)
	}
}

func TestSessions_PerUserRecords(t *testing.T) {
	env := newSessionEnv(t)
	ctx := context.Background()

	admin, err := env.sessions.Login(ctx, "admin@app.com", "admin123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	guest, err := env.sessions.LoginAsGuest(ctx)
	if err != nil {
		t.Fatalf("LoginAsGuest: %v", err)
	}

	got, err := env.sessions.Session(ctx, admin.ID)
	if err != nil || got == nil || got.Role != RoleAdmin {
		t.Fatalf("Session(admin) = %+v, %v", got, err)
	}

	// Renaming the admin leaves the current (guest) user alone.
	if _, err := env.sessions.UpdateSession(ctx, admin.ID, UserPatch{Name: "Chefe"}); err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}
	cur, _ := env.sessions.Load(ctx)
	if cur == nil || cur.ID != guest.ID || cur.Name != GuestName {
		t.Errorf("current user after admin update = %+v", cur)
	}

	// Ending the admin session keeps the guest signed in.
	if err := env.sessions.EndSession(ctx, admin.ID); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if got, _ := env.sessions.Session(ctx, admin.ID); got != nil {
		t.Errorf("Session(admin) after EndSession = %+v, want nil", got)
	}
	if !env.sessions.IsAuthenticated(ctx) {
		t.Error("guest should still be signed in")
	}

	// Ending the guest session clears the current user too.
	if err := env.sessions.EndSession(ctx, guest.ID); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if env.sessions.IsAuthenticated(ctx) {
		t.Error("current user should be cleared with its session")
	}
	if u, err := env.sessions.UpdateSession(ctx, guest.ID, UserPatch{Name: "x"}); err != nil || u != nil {
		t.Errorf("UpdateSession after EndSession = %+v, %v; want nil, nil", u, err)
	}
}
