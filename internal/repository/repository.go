package repository

import (
	"github.com/yukikurage/taskmanager-api/internal/models"
	"github.com/yukikurage/taskmanager-api/internal/utils"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// FindForUpdate finds a task by ID and locks its row until the
	// surrounding transaction ends
	FindForUpdate(id uint64) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// FindChildren returns the direct subtasks of the given tasks
	FindChildren(parentIDs []uint64) ([]models.Task, error)

	// ParentID returns the parent ID of a task, nil for top-level tasks
	ParentID(id uint64) (*uint64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete deletes a task and its extension requests
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	AssignedToID *uint64
	AssignedByID *uint64
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueAfter     *models.Date
	DueBefore    *models.Date
	// OverdueOn keeps tasks due strictly before the given day
	OverdueOn  *models.Date
	Search     string
	Ordering   string
	Pagination utils.PaginationParams
}

// ExtensionRequestRepository defines the interface for extension request data access
type ExtensionRequestRepository interface {
	// Create creates a new extension request
	Create(req *models.ExtensionRequest) error

	// FindByID finds a request by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.ExtensionRequest, error)

	// FindForUpdate finds a request by ID and locks its row
	FindForUpdate(id uint64) (*models.ExtensionRequest, error)

	// CountByTask counts every request filed for a task, whatever its status
	CountByTask(taskID uint64) (int64, error)

	// List retrieves requests with filtering and pagination
	List(filter ExtensionFilter) ([]models.ExtensionRequest, int64, error)

	// Update updates a request
	Update(req *models.ExtensionRequest) error
}

// ExtensionFilter holds filtering options for listing extension requests
type ExtensionFilter struct {
	TaskID *uint64
	Status *models.ExtensionStatus
	// TaskAssignedByID keeps requests whose task was assigned by this user
	TaskAssignedByID *uint64
	DeadlineAfter    *models.Date
	DeadlineBefore   *models.Date
	Pagination       utils.PaginationParams
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}

// Store groups the repositories and runs units of work against them.
type Store interface {
	Tasks() TaskRepository
	ExtensionRequests() ExtensionRequestRepository
	Users() UserRepository

	// Transaction runs fn with repositories bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	Transaction(fn func(tx Store) error) error
}
