package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAuthenticated is the role claim carried by signed-in coaches.
const RoleAuthenticated = "authenticated"

// JWTClaims is the access token payload issued by the hosted identity provider.
// The subject is the coach id.
type JWTClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// CoachID returns the subject of the token.
func (c *JWTClaims) CoachID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}

// Coach is the local record of an identity provider account.
type Coach struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
