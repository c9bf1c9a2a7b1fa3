package auth

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role represents what a signed-in user may do.
type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ValidRoles contains all valid role values.
var ValidRoles = map[Role]bool{
	RoleGuest: true,
	RoleUser:  true,
	RoleAdmin: true,
}

// User is the current session's identity as persisted under SessionKey.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// UserPatch holds the fields UpdateUser may change. Empty fields are kept.
type UserPatch struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role,omitempty"`
}

// RegisteredUser is an account created through Register.
type RegisteredUser struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Never serialized
	CreatedAt    time.Time `json:"created_at"`
}

// HashPassword creates a bcrypt hash of the given password.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a password against a bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidateRegistration checks that the registration fields are present.
func ValidateRegistration(name, email, password string) error {
	switch {
	case name == "":
		return errors.New("name is required")
	case email == "":
		return errors.New("email is required")
	case password == "":
		return errors.New("password is required")
	}
	return nil
}
