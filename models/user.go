package models

// UserRole - represents admin account role
type UserRole string

// RoleAdmin - the only role with write access to content and inquiries
const RoleAdmin UserRole = "admin"

// Admin - represents an admin account. PasswordHash never leaves the server
type Admin struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	Role         UserRole `json:"role"`
	PasswordHash string   `json:"-"`
}

// LoginRequest - represents credentials that admin inputs on login page
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionInfo - session introspection response
type SessionInfo struct {
	User          *Admin `json:"user"`
	Authenticated bool   `json:"authenticated"`
}
