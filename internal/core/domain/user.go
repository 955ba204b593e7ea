package domain

import "time"

// Role is the staff role the backend assigns to a dashboard user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleDirector Role = "director"
	RoleManager  Role = "manager"
	RoleMaster   Role = "master"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDirector, RoleManager, RoleMaster:
		return true
	}
	return false
}

// User is the identity record the dashboard believes it is signed in as.
// Field names on the wire follow the backend's snake_case JSON.
type User struct {
	ID             int64      `json:"id" bson:"id"`
	Username       string     `json:"username" bson:"username"`
	Email          string     `json:"email" bson:"email"`
	FullName       string     `json:"full_name" bson:"full_name"`
	Role           Role       `json:"role" bson:"role"`
	Phone          string     `json:"phone,omitempty" bson:"phone,omitempty"`
	IsActive       bool       `json:"is_active" bson:"is_active"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	LastLogin      *time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
	Specialization string     `json:"specialization,omitempty" bson:"specialization,omitempty"`
}

// Clone returns a deep copy so callers never share the store's record.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}

// Credentials is what the login form submits.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is the login boundary's successful response.
type AuthResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user"`
}
