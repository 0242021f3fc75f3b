package repository

import (
	"github.com/yukikurage/taskmanager-api/internal/database"
	"github.com/yukikurage/taskmanager-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormExtensionRequestRepository is a GORM implementation of ExtensionRequestRepository
type GormExtensionRequestRepository struct {
	db *gorm.DB
}

// NewExtensionRequestRepository creates a new ExtensionRequestRepository
func NewExtensionRequestRepository(db *gorm.DB) ExtensionRequestRepository {
	return &GormExtensionRequestRepository{db: db}
}

// Create creates a new extension request
func (r *GormExtensionRequestRepository) Create(req *models.ExtensionRequest) error {
	return r.db.Omit(clause.Associations).Create(req).Error
}

// FindByID finds a request by ID with optional preloading
func (r *GormExtensionRequestRepository) FindByID(id uint64, preload ...string) (*models.ExtensionRequest, error) {
	var req models.ExtensionRequest
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&req, id).Error; err != nil {
		return nil, err
	}

	return &req, nil
}

// FindForUpdate finds a request by ID with a row lock
func (r *GormExtensionRequestRepository) FindForUpdate(id uint64) (*models.ExtensionRequest, error) {
	var req models.ExtensionRequest
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// CountByTask counts the requests filed for a task
func (r *GormExtensionRequestRepository) CountByTask(taskID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.ExtensionRequest{}).
		Where("task_id = ?", taskID).
		Count(&count).Error
	return count, err
}

// List retrieves requests with filtering and pagination
func (r *GormExtensionRequestRepository) List(filter ExtensionFilter) ([]models.ExtensionRequest, int64, error) {
	var requests []models.ExtensionRequest

	query := r.db.Model(&models.ExtensionRequest{})

	if filter.TaskID != nil {
		query = query.Where("extension_requests.task_id = ?", *filter.TaskID)
	}
	if filter.Status != nil {
		query = query.Where("extension_requests.status = ?", *filter.Status)
	}
	if filter.DeadlineAfter != nil {
		query = query.Where("extension_requests.new_deadline >= ?", *filter.DeadlineAfter)
	}
	if filter.DeadlineBefore != nil {
		query = query.Where("extension_requests.new_deadline <= ?", *filter.DeadlineBefore)
	}
	if filter.TaskAssignedByID != nil {
		ownedTasks := r.db.Model(&models.Task{}).
			Select("id").
			Where("assigned_by_id = ?", *filter.TaskAssignedByID)
		query = query.Where("extension_requests.task_id IN (?)", ownedTasks)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("extension_requests.created_at DESC").Order("extension_requests.id DESC")
	listQuery = listQuery.Scopes(database.Paginate(filter.Pagination))

	if err := listQuery.
		Preload("Task").
		Preload("RequestBy").
		Preload("ApprovedBy").
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// Update updates a request
func (r *GormExtensionRequestRepository) Update(req *models.ExtensionRequest) error {
	return r.db.Omit(clause.Associations).Save(req).Error
}
