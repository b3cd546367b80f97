package model

import (
	"time"

	"gorm.io/gorm"
)

// Roles stored in user_roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User account, table users
type User struct {
	ID           string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email        string         `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	Name         string         `gorm:"type:varchar(100);not null"                     json:"name"`
	PasswordHash string         `gorm:"type:varchar(255);not null"                     json:"-"`
	CreatedAt    time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index"                                          json:"-"`

	Role *UserRole `gorm:"foreignKey:UserID;references:ID" json:"role,omitempty"`
}

func (User) TableName() string { return "users" }

// RoleName returns the stored role, "user" when none is recorded.
func (u *User) RoleName() string {
	if u.Role == nil || u.Role.Role == "" {
		return RoleUser
	}
	return u.Role.Role
}

// UserRole maps to user_roles
type UserRole struct {
	UserID    string    `gorm:"type:uuid;primaryKey"                     json:"user_id"`
	Role      string    `gorm:"type:varchar(20);not null;default:'user'" json:"role"` // admin | user
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"       json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"       json:"updated_at"`
}

func (UserRole) TableName() string { return "user_roles" }
