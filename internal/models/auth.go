package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles recognised on course mutation routes.
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleInstructor UserRole = "INSTRUCTOR"
	RoleStudent    UserRole = "STUDENT"
)

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID       string   `json:"user_id"`
	Role         UserRole `json:"role"`
	InstructorID int64    `json:"instructor_id,omitempty"`
	jwt.RegisteredClaims
}
