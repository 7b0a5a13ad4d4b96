package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Admin struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Credential is an admin row including its bcrypt hash.
type Credential struct {
	Admin
	PasswordHash string
}

// Claims are carried by admin session tokens. RegisteredClaims.ID is the
// token id used for logout.
type Claims struct {
	UserID int    `json:"uid"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
