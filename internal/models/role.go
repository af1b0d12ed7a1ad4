package models

import "fmt"

// Role is the principal type supplied by the authentication layer.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOwner    Role = "owner"
	RoleCustomer Role = "customer"
)

// ParseRole converts a claim value into a known role.
func ParseRole(raw string) (Role, error) {
	switch r := Role(raw); r {
	case RoleAdmin, RoleOwner, RoleCustomer:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}
