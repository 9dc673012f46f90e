package users

import (
	"time"
)

// RoleType represents a role a user holds within their tenant or system wide
type RoleType string

const (
	RoleSystemAdmin    RoleType = "system_admin"    // Can manage all tenants and system configuration
	RoleTenantAdmin    RoleType = "tenant_admin"    // Can manage users and settings within a tenant
	RoleTenantOperator RoleType = "tenant_operator" // Day-to-day operations within a tenant
)

type User struct {
	ID           string     `json:"id,omitempty"`          // Unique identifier for the user
	Email        string     `json:"email,omitempty"`       // User's email address
	Username     string     `json:"username,omitempty"`    // Unique username
	Phone        string     `json:"phone,omitempty"`       // Optional phone number
	PasswordHash string     `json:"-"`                     // Hashed version of the user's password - never serialize
	TenantID     string     `json:"tenant_id,omitempty"`   // Tenant the user belongs to
	Roles        []RoleType `json:"roles,omitempty"`       // Roles granted to the user
	DateJoined   time.Time  `json:"date_joined,omitempty"` // Date and time when the user registered
}

// RoleStrings returns the user's roles as plain strings for token claims
func (u *User) RoleStrings() []string {
	roles := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		roles = append(roles, string(role))
	}
	return roles
}

func (u *User) HasRole(role RoleType) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
