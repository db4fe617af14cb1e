package domain

import (
	"time"

	"gorm.io/gorm"
)

// User identity is owned by the auth collaborator; the engine only needs a
// verified id. This model backs the minimal register/login shim and the
// presence UnknownUser check.
type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"column:username;unique;not null" json:"username"`
	Email     string `gorm:"column:email;unique;not null" json:"email"`
	Password  string `gorm:"column:password;not null" json:"-"`
	Role      string `gorm:"column:role;default:voter" json:"role"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

const (
	RoleVoter = "voter"
	RoleAdmin = "admin"
)
