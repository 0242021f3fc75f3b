package repository

import (
	"fmt"
	"strings"

	"github.com/yukikurage/taskmanager-api/internal/database"
	"github.com/yukikurage/taskmanager-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// TaskOrderings lists the accepted TaskFilter.Ordering values.
var TaskOrderings = map[string]string{
	"due_date":    "tasks.due_date ASC",
	"-due_date":   "tasks.due_date DESC",
	"priority":    priorityRank() + " ASC",
	"-priority":   priorityRank() + " DESC",
	"created_at":  "tasks.created_at ASC",
	"-created_at": "tasks.created_at DESC",
}

// priorityRank orders priorities by rank instead of lexically.
func priorityRank() string {
	var b strings.Builder
	b.WriteString("CASE tasks.priority")
	for i, p := range models.Priorities {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", p, i)
	}
	b.WriteString(" END")
	return b.String()
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Omit(clause.Associations).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// FindForUpdate finds a task by ID with a row lock
func (r *GormTaskRepository) FindForUpdate(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	// Apply filters
	if filter.AssignedToID != nil {
		query = query.Where("tasks.assigned_to_id = ?", *filter.AssignedToID)
	}
	if filter.AssignedByID != nil {
		query = query.Where("tasks.assigned_by_id = ?", *filter.AssignedByID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.DueAfter != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueAfter)
	}
	if filter.DueBefore != nil {
		query = query.Where("tasks.due_date <= ?", *filter.DueBefore)
	}
	if filter.OverdueOn != nil {
		query = query.Where("tasks.due_date < ?", *filter.OverdueOn)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(tasks.name) LIKE ? OR LOWER(tasks.description) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	if order, ok := TaskOrderings[filter.Ordering]; ok {
		listQuery = listQuery.Order(order)
	}
	listQuery = listQuery.Order("tasks.id ASC")

	listQuery = listQuery.Scopes(database.Paginate(filter.Pagination))

	if err := listQuery.Preload("AssignedTo").Preload("AssignedBy").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// FindChildren returns the direct subtasks of the given tasks
func (r *GormTaskRepository) FindChildren(parentIDs []uint64) ([]models.Task, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	var tasks []models.Task
	err := r.db.
		Where("parent_task_id IN ?", parentIDs).
		Order("id ASC").
		Preload("AssignedTo").
		Preload("AssignedBy").
		Find(&tasks).Error
	return tasks, err
}

// ParentID returns the parent ID of a task
func (r *GormTaskRepository) ParentID(id uint64) (*uint64, error) {
	var task models.Task
	if err := r.db.Select("id", "parent_task_id").First(&task, id).Error; err != nil {
		return nil, err
	}
	return task.ParentTaskID, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit(clause.Associations).Save(task).Error
}

// Delete deletes a task and its extension requests. Subtasks are detached.
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.ExtensionRequest{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Task{}).
			Where("parent_task_id = ?", id).
			Update("parent_task_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}
