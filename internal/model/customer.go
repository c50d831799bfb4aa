package model

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role is the access level stored on a customer record.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// Customer is a registered shopper. The password hash never leaves the
// server.
type Customer struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Username     string    `json:"username" db:"username"`
	Phone        string    `json:"phone,omitempty" db:"phone"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	JoinedAt     time.Time `json:"joinedAt" db:"joined_at"`
}

// SetPassword stores a bcrypt hash of plaintext.
func (c *Customer) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	c.PasswordHash = string(hash)
	return nil
}

// VerifyPassword reports whether plaintext matches the stored hash.
func (c *Customer) VerifyPassword(plaintext string) bool {
	if c.PasswordHash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(plaintext))
	return err == nil
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Phone     string `json:"phone"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

const (
	minUsernameLength = 2
	minPasswordLength = 6
)

// Validate checks the sign-up constraints.
func (r *RegisterRequest) Validate() error {
	v := Validator{}
	r.Email = strings.TrimSpace(r.Email)
	r.Username = strings.TrimSpace(r.Username)
	r.Phone = strings.TrimSpace(r.Phone)

	v.Check(r.Email != "", "email", "email is required")
	v.Check(strings.Contains(r.Email, "@"), "email", "email is invalid")
	v.Check(len(r.Username) >= minUsernameLength, "username", "username must be at least 2 characters")
	v.Check(len(r.Password1) >= minPasswordLength, "password1", "password must be at least 6 characters")
	v.Check(r.Password1 == r.Password2, "password2", "passwords do not match")
	return v.Err()
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the change-password payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate checks the new password constraints.
func (r *ChangePasswordRequest) Validate() error {
	v := Validator{}
	v.Check(r.CurrentPassword != "", "currentPassword", "current password is required")
	v.Check(len(r.NewPassword) >= minPasswordLength, "newPassword", "password must be at least 6 characters")
	v.Check(r.NewPassword == r.ConfirmPassword, "confirmPassword", "passwords do not match")
	return v.Err()
}

// Session is an issued login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Customer  *Customer `json:"customer"`
}
