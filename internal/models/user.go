package models

import "time"

// Role represents a user's permission level
type Role int

// UserRole constants
const (
	RoleStudent    Role = 1
	RoleInstructor Role = 2
	RoleAdmin      Role = 3
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleInstructor || r == RoleAdmin
}

// User represents a user in the system
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RegisterRequest represents a registration request body
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request body
type LoginRequest struct {
	Login    string `json:"login"` // email or username
	Password string `json:"password"`
}

// UpdateProfileRequest represents a profile update (partial)
type UpdateProfileRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UserListItem represents a user row in admin list responses
type UserListItem struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserListFilter holds admin list filters
type UserListFilter struct {
	Role     *Role
	IsActive *bool
	Search   string
	Page     int
	Count    int
}

// UserListResult is a paginated admin list response
type UserListResult struct {
	Users []UserListItem `json:"users"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Count int            `json:"count"`
}

// UpdateRoleRequest represents an admin role change request
type UpdateRoleRequest struct {
	Role Role `json:"role"`
}
