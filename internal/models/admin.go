package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used when an admin password changes.
var PasswordCost = bcrypt.DefaultCost

// Admin is the archive administrator. There is exactly one in practice,
// provisioned with cmd/seed-admin.
type Admin struct {
	AdminID      string    `json:"admin_id" dynamodbav:"admin_id"` // Primary Key
	Username     string    `json:"username" dynamodbav:"username"` // username-index GSI
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`   // bcrypt, salt embedded
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// SetPassword stores a fresh hash only when plain differs from the current
// password, so re-saving an admin never re-hashes.
func (a *Admin) SetPassword(plain string) (bool, error) {
	if a.PasswordHash != "" && a.CheckPassword(plain) {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return false, err
	}
	a.PasswordHash = string(hash)
	return true, nil
}

// CheckPassword reports whether plain matches the stored hash.
func (a *Admin) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plain)) == nil
}

// LoginRequest represents login request payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token minted at login.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"` // seconds
}
