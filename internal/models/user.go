package models

import "time"

// Role is the access level of a dashboard user
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents the authenticated dashboard user
type User struct {
	ID                  string    `json:"id"`
	Role                Role      `json:"role"`
	Email               string    `json:"email"`
	Username            string    `json:"username"`
	Password            *string   `json:"-"` // Not serialized
	FirstName           string    `json:"firstName,omitempty"`
	LastName            string    `json:"lastName,omitempty"`
	Avatar              *string   `json:"avatar"`
	CreatedAt           time.Time `json:"createdAt"`
	ForcePasswordChange bool      `json:"forcePasswordChange"`
}
