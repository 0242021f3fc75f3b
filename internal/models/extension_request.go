package models

import (
	"time"
)

type ExtensionStatus string

const (
	ExtensionStatusPending  ExtensionStatus = "PENDING"
	ExtensionStatusApproved ExtensionStatus = "APPROVED"
	ExtensionStatusRejected ExtensionStatus = "REJECTED"
)

func (s ExtensionStatus) Valid() bool {
	switch s {
	case ExtensionStatusPending, ExtensionStatusApproved, ExtensionStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s ExtensionStatus) Terminal() bool {
	return s == ExtensionStatusApproved || s == ExtensionStatusRejected
}

// ExtensionRequest is a proposal to move a task's due date later.
type ExtensionRequest struct {
	ID           uint64          `gorm:"primarykey" json:"id"`
	TaskID       uint64          `gorm:"not null;index" json:"task_id"`
	Reason       string          `gorm:"type:text;not null" json:"reason"`
	NewDeadline  Date            `gorm:"not null" json:"new_deadline"`
	RequestByID  uint64          `gorm:"not null" json:"request_by_id"`
	Status       ExtensionStatus `gorm:"type:varchar(10);not null;default:'PENDING'" json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	ApprovedByID *uint64         `json:"approved_by_id"`
	ApprovedAt   *time.Time      `json:"approved_at"`

	// Relations
	Task       Task  `gorm:"foreignKey:TaskID" json:"-"`
	RequestBy  User  `gorm:"foreignKey:RequestByID" json:"-"`
	ApprovedBy *User `gorm:"foreignKey:ApprovedByID" json:"-"`
}
