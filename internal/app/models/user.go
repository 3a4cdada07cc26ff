package models

import (
	"time"
)

// User is a login credential, stored in the 'users' table
type User struct {
	ID           int64      `json:"id" db:"id" example:"1"`
	Username     string     `json:"username" db:"username" example:"alice01"`
	Email        string     `json:"email" db:"email" example:"alice@example.com"`
	PasswordHash string     `json:"-" db:"password_hash"`
	RoleType     RoleType   `json:"roleType" db:"role_type" example:"STUDENT"`
	IsActive     bool       `json:"isActive" db:"is_active" example:"true"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}

// IsAdmin reports whether the credential belongs to an administrator.
func (u *User) IsAdmin() bool {
	return u.RoleType == RoleAdmin
}
