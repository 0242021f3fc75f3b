package models

import (
	"time"
)

// Role is the coarse role a user acts under.
type Role string

const (
	RoleDeveloper    Role = "developer"
	RoleTaskProvider Role = "task_provider"
	// RoleMember is a generic authenticated user without a workflow role.
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleDeveloper, RoleTaskProvider, RoleMember:
		return true
	}
	return false
}

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(255);not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'developer'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	AssignedTasks []Task `gorm:"foreignKey:AssignedToID" json:"-"`
	ProvidedTasks []Task `gorm:"foreignKey:AssignedByID" json:"-"`
}
