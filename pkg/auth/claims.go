package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims accepted by the advisor API. The subject is the
// caller's user or client ID.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// HasRole checks if the claims include the specified role.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// Role constants
const (
	RoleAdmin    = "admin"
	RoleAdvisor  = "advisor"
	RoleBorrower = "borrower"
	RoleService  = "service"
)
