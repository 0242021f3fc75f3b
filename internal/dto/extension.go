package dto

import (
	"time"

	"github.com/yukikurage/taskmanager-api/internal/models"
	"github.com/yukikurage/taskmanager-api/internal/utils"
)

// TaskRefDTO identifies a task inside another resource
type TaskRefDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// ExtensionRequestDTO represents a deadline extension request
type ExtensionRequestDTO struct {
	ID          uint64                 `json:"id"`
	Task        TaskRefDTO             `json:"task"`
	RequestBy   UserDTO                `json:"request_by"`
	NewDeadline models.Date            `json:"new_deadline"`
	Reason      string                 `json:"reason"`
	Status      models.ExtensionStatus `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
	ApprovedBy  *UserDTO               `json:"approved_by"`
	ApprovedAt  *time.Time             `json:"approved_at"`
}

// ExtensionApprovalDTO is the reviewer's view of a request
type ExtensionApprovalDTO struct {
	ID          uint64                 `json:"id"`
	Task        TaskRefDTO             `json:"task"`
	NewDeadline models.Date            `json:"new_deadline"`
	Status      models.ExtensionStatus `json:"status"`
	ApprovedAt  *time.Time             `json:"approved_at"`
}

// ExtensionRequestListResponse represents a paginated list of requests
type ExtensionRequestListResponse struct {
	Requests   []ExtensionRequestDTO    `json:"requests"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ExtensionApprovalListResponse represents a paginated approval queue
type ExtensionApprovalListResponse struct {
	Approvals  []ExtensionApprovalDTO   `json:"approvals"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ApprovalUpdateResponse wraps the result of resolving a request
type ApprovalUpdateResponse struct {
	Status  string               `json:"status"`
	Message string               `json:"message"`
	Data    ExtensionApprovalDTO `json:"data"`
}

func toTaskRefDTO(task models.Task) TaskRefDTO {
	return TaskRefDTO{ID: task.ID, Name: task.Name}
}

// ToExtensionRequestDTO converts an ExtensionRequest model
func ToExtensionRequestDTO(req models.ExtensionRequest) ExtensionRequestDTO {
	dto := ExtensionRequestDTO{
		ID:          req.ID,
		Task:        toTaskRefDTO(req.Task),
		RequestBy:   ToUserDTO(req.RequestBy),
		NewDeadline: req.NewDeadline,
		Reason:      req.Reason,
		Status:      req.Status,
		CreatedAt:   req.CreatedAt,
		ApprovedAt:  req.ApprovedAt,
	}

	// Include approver if resolved and preloaded
	if req.ApprovedBy != nil {
		approver := ToUserDTO(*req.ApprovedBy)
		dto.ApprovedBy = &approver
	}

	return dto
}

// ToExtensionApprovalDTO converts an ExtensionRequest model for reviewers
func ToExtensionApprovalDTO(req models.ExtensionRequest) ExtensionApprovalDTO {
	return ExtensionApprovalDTO{
		ID:          req.ID,
		Task:        toTaskRefDTO(req.Task),
		NewDeadline: req.NewDeadline,
		Status:      req.Status,
		ApprovedAt:  req.ApprovedAt,
	}
}

func ToExtensionRequestListResponse(reqs []models.ExtensionRequest, params utils.PaginationParams, total int64) ExtensionRequestListResponse {
	items := make([]ExtensionRequestDTO, len(reqs))
	for i, req := range reqs {
		items[i] = ToExtensionRequestDTO(req)
	}
	return ExtensionRequestListResponse{
		Requests:   items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}

func ToExtensionApprovalListResponse(reqs []models.ExtensionRequest, params utils.PaginationParams, total int64) ExtensionApprovalListResponse {
	items := make([]ExtensionApprovalDTO, len(reqs))
	for i, req := range reqs {
		items[i] = ToExtensionApprovalDTO(req)
	}
	return ExtensionApprovalListResponse{
		Approvals:  items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}

// ToApprovalUpdateResponse wraps a resolved request with an outcome message
func ToApprovalUpdateResponse(req models.ExtensionRequest) ApprovalUpdateResponse {
	var message string
	switch req.Status {
	case models.ExtensionStatusApproved:
		message = "The deadline extension request has been approved successfully."
	case models.ExtensionStatusRejected:
		message = "The deadline extension request has been rejected successfully."
	default:
		message = "The deadline extension request has been updated."
	}

	return ApprovalUpdateResponse{
		Status:  "success",
		Message: message,
		Data:    ToExtensionApprovalDTO(req),
	}
}
