package dto

import (
	"time"

	"github.com/yukikurage/taskmanager-api/internal/models"
	"github.com/yukikurage/taskmanager-api/internal/services"
	"github.com/yukikurage/taskmanager-api/internal/utils"
	"github.com/yukikurage/taskmanager-api/internal/workflow"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CurrentUserDTO is the authenticated user, including their role
type CurrentUserDTO struct {
	UserDTO
	Role models.Role `json:"role"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	ID          uint64 `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
}

// SubtaskDTO is a nested subtask. It carries fewer fields than TaskDTO.
type SubtaskDTO struct {
	ID         uint64            `json:"id"`
	Name       string            `json:"name"`
	Status     models.TaskStatus `json:"status"`
	DueDate    models.Date       `json:"due_date"`
	AssignedTo UserDTO           `json:"assigned_to"`
	ParentTask *uint64           `json:"parent_task"`
	Subtasks   []SubtaskDTO      `json:"subtasks"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	Status      models.TaskStatus   `json:"status"`
	DueDate     models.Date         `json:"due_date"`
	AssignedTo  UserDTO             `json:"assigned_to"`
	AssignedBy  UserDTO             `json:"assigned_by"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	ParentTask  *uint64             `json:"parent_task"`
	Subtasks    []SubtaskDTO        `json:"subtasks"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// SubtaskSuggestionDTO is an unsaved subtask proposed by the AI generator
type SubtaskSuggestionDTO struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	DueDate     models.Date `json:"due_date"`
	ParentTask  uint64      `json:"parent_task"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

func ToCurrentUserDTO(user models.User) CurrentUserDTO {
	return CurrentUserDTO{
		UserDTO: ToUserDTO(user),
		Role:    user.Role,
	}
}

func ToLoginResponse(user models.User, token string) LoginResponse {
	return LoginResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		AccessToken: token,
	}
}

// ToTaskDTO converts a Task model to TaskDTO without subtasks
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		DueDate:     task.DueDate,
		AssignedTo:  ToUserDTO(task.AssignedTo),
		AssignedBy:  ToUserDTO(task.AssignedBy),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		ParentTask:  task.ParentTaskID,
		Subtasks:    []SubtaskDTO{},
	}
}

// ToTaskTreeDTO converts a task and its subtask tree
func ToTaskTreeDTO(node *workflow.TaskNode) TaskDTO {
	dto := ToTaskDTO(node.Task)
	dto.Subtasks = toSubtaskDTOs(node.Subtasks)
	return dto
}

func toSubtaskDTOs(nodes []*workflow.TaskNode) []SubtaskDTO {
	subtasks := make([]SubtaskDTO, len(nodes))
	for i, node := range nodes {
		subtasks[i] = SubtaskDTO{
			ID:         node.Task.ID,
			Name:       node.Task.Name,
			Status:     node.Task.Status,
			DueDate:    node.Task.DueDate,
			AssignedTo: ToUserDTO(node.Task.AssignedTo),
			ParentTask: node.Task.ParentTaskID,
			Subtasks:   toSubtaskDTOs(node.Subtasks),
		}
	}
	return subtasks
}

// ToTaskListResponse converts a page of task trees to TaskListResponse
func ToTaskListResponse(nodes []*workflow.TaskNode, params utils.PaginationParams, total int64) TaskListResponse {
	items := make([]TaskDTO, len(nodes))
	for i, node := range nodes {
		items[i] = ToTaskTreeDTO(node)
	}

	return TaskListResponse{
		Tasks:      items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}

func ToSubtaskSuggestionDTOs(suggestions []services.SubtaskSuggestion) []SubtaskSuggestionDTO {
	items := make([]SubtaskSuggestionDTO, len(suggestions))
	for i, s := range suggestions {
		items[i] = SubtaskSuggestionDTO{
			Name:        s.Name,
			Description: s.Description,
			DueDate:     s.DueDate,
			ParentTask:  s.ParentTaskID,
		}
	}
	return items
}
