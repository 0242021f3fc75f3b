package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	return s.Rank() >= 0
}

// Rank orders statuses along the forward-only lifecycle; -1 for unknown values.
func (s TaskStatus) Rank() int {
	switch s {
	case TaskStatusPending:
		return 0
	case TaskStatusInProgress:
		return 1
	case TaskStatusCompleted:
		return 2
	}
	return -1
}

type TaskPriority string

// Priorities in ascending order.
const (
	PriorityWhenFree TaskPriority = "When Free"
	PriorityNextWeek TaskPriority = "Next Week"
	PriorityASAP     TaskPriority = "ASAP"
	PriorityUrgent   TaskPriority = "URGENT"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []TaskPriority{PriorityWhenFree, PriorityNextWeek, PriorityASAP, PriorityUrgent}

// Rank returns the position of p in ascending priority order, or -1.
func (p TaskPriority) Rank() int {
	for i, candidate := range Priorities {
		if candidate == p {
			return i
		}
	}
	return -1
}

func (p TaskPriority) Valid() bool {
	return p.Rank() >= 0
}

type Task struct {
	ID           uint64       `gorm:"primarykey" json:"id"`
	Name         string       `gorm:"type:varchar(200);not null" json:"name"`
	Description  string       `gorm:"type:text" json:"description"`
	Status       TaskStatus   `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	Priority     TaskPriority `gorm:"type:varchar(20);not null;default:'When Free'" json:"priority"`
	DueDate      Date         `gorm:"not null" json:"due_date"`
	ParentTaskID *uint64      `json:"parent_task"`
	AssignedToID uint64       `gorm:"not null" json:"assigned_to_id"`
	AssignedByID uint64       `gorm:"not null" json:"assigned_by_id"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Relations
	ParentTask        *Task              `gorm:"foreignKey:ParentTaskID" json:"-"`
	AssignedTo        User               `gorm:"foreignKey:AssignedToID" json:"-"`
	AssignedBy        User               `gorm:"foreignKey:AssignedByID" json:"-"`
	ExtensionRequests []ExtensionRequest `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}

// HasParent reports whether the task is a subtask.
func (t *Task) HasParent() bool {
	return t.ParentTaskID != nil
}
