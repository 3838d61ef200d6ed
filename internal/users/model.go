// Package users implements the durable user table of the identity core:
// registration, authentication, lookups, and JSON file persistence.
package users

import (
	"strings"
	"time"
)

// Role is one of the three fixed account roles.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleCustomer Role = "Customer"
)

// User is a single account record. PasswordHash holds a bcrypt hash, never
// a plaintext secret. Records are soft-deleted via IsActive=false and never
// physically removed.
type User struct {
	ID             int        `json:"userId"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"passwordHash"`
	FullName       string     `json:"fullName"`
	Role           Role       `json:"role"`
	ProfilePicture string     `json:"profilePicture,omitempty"`
	IsActive       bool       `json:"isActive"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
}

// Initials returns up to two uppercase initials for display chrome.
func (u *User) Initials() string {
	if u.FullName == "" {
		return "UN"
	}
	names := strings.Fields(u.FullName)
	if len(names) >= 2 {
		return strings.ToUpper(names[0][:1] + names[1][:1])
	}
	n := min(2, len(u.FullName))
	return strings.ToUpper(u.FullName[:n])
}

// tableData is the on-disk shape of the credential table.
type tableData struct {
	Users      []*User `json:"users"`
	NextUserID int     `json:"nextUserId"`
}
