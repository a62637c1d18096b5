package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAthlete = "athlete"
	RoleTrainer = "trainer"
)

// AccessClaims are the claims carried by access tokens issued by the auth service.
type AccessClaims struct {
	UserID string   `json:"user_id"`
	Name   string   `json:"name,omitempty"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}
