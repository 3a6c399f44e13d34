package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Roles understood by the capability checks. An admin can do everything an
// employee can.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

var (
	// ErrInvalidCredentials is returned when the username or password is wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserNotFound is returned by storage when a username does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// User is an operator account able to log into the point of sale.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserStorage is the persistence surface the authenticator needs.
type UserStorage interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	CountUsers(ctx context.Context) (int, error)
}

// Authenticator verifies operator credentials against bcrypt hashes.
type Authenticator struct {
	storage UserStorage
}

// NewAuthenticator creates a password-based authenticator.
func NewAuthenticator(storage UserStorage) *Authenticator {
	return &Authenticator{storage: storage}
}

// Login checks the credentials and returns the matching user.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*User, error) {
	user, err := a.storage.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// SeedAdmin creates the initial admin account when no users exist yet.
func (a *Authenticator) SeedAdmin(ctx context.Context, username, password string) error {
	count, err := a.storage.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         RoleAdmin,
		CreatedAt:    time.Now(),
	}
	if err := a.storage.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create seed user: %w", err)
	}
	return nil
}

// CanMutateCatalog reports whether the role may create or modify products
// and customers.
func CanMutateCatalog(role string) bool {
	return role == RoleAdmin
}

// CanOperate reports whether the role may sell, handle cash, and read reports.
func CanOperate(role string) bool {
	return role == RoleAdmin || role == RoleEmployee
}
