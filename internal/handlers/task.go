package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskmanager-api/internal/authz"
	"github.com/yukikurage/taskmanager-api/internal/dto"
	apierrors "github.com/yukikurage/taskmanager-api/internal/errors"
	"github.com/yukikurage/taskmanager-api/internal/logger"
	"github.com/yukikurage/taskmanager-api/internal/middleware"
	"github.com/yukikurage/taskmanager-api/internal/models"
	"github.com/yukikurage/taskmanager-api/internal/services"
	"github.com/yukikurage/taskmanager-api/internal/utils"
	"go.uber.org/zap"
)

type TaskHandler struct {
	taskService *services.TaskService
	surface     authz.Surface
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		surface:     authz.APISurface,
	}
}

// NewAdminTaskHandler serves the administrative task surface, which scopes
// Developers to their own tasks and locks more fields.
func NewAdminTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		surface:     authz.AdminSurface,
	}
}

// ListTasks returns the tasks visible to the current user with their subtasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	input, err := parseListTasksQuery(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	input.Surface = h.surface

	nodes, total, err := h.taskService.ListTasks(c.Request.Context(), middleware.GetActor(c), input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(nodes, input.Pagination, total))
}

// GetTask returns a specific task by ID with its subtask tree
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	node, err := h.taskService.GetTask(c.Request.Context(), middleware.GetActor(c), taskID, h.surface)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskTreeDTO(node))
}

// CreateTask creates a new task assigned by the current user
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		Name        string              `json:"name"`
		Description string              `json:"description"`
		Status      models.TaskStatus   `json:"status"`
		Priority    models.TaskPriority `json:"priority"`
		DueDate     models.Date         `json:"due_date"`
		ParentTask  *uint64             `json:"parent_task"`
		AssignedTo  uint64              `json:"assigned_to"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	actor := middleware.GetActor(c)
	task, err := h.taskService.CreateTask(c.Request.Context(), actor, services.CreateTaskInput{
		Name:         req.Name,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		ParentTaskID: req.ParentTask,
		AssignedToID: req.AssignedTo,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	logger.Info("Task created",
		zap.Uint64("task_id", task.ID),
		zap.Uint64("assigned_by", actor.ID),
		zap.Uint64("assigned_to", task.AssignedToID))
	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. Absent fields are left unchanged and
// "parent_task": null detaches a subtask from its parent.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	type UpdateTaskRequest struct {
		Name        *string              `json:"name"`
		Description *string              `json:"description"`
		Status      *models.TaskStatus   `json:"status"`
		Priority    *models.TaskPriority `json:"priority"`
		DueDate     *models.Date         `json:"due_date"`
		ParentTask  optionalID           `json:"parent_task"`
		AssignedTo  *uint64              `json:"assigned_to"`
		AssignedBy  *uint64              `json:"assigned_by"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Name:         req.Name,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		AssignedToID: req.AssignedTo,
		AssignedByID: req.AssignedBy,
	}
	if req.ParentTask.Set {
		input.ParentTaskID = req.ParentTask.Value
		input.ClearParent = req.ParentTask.Value == nil
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), middleware.GetActor(c), taskID, input, h.surface)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), middleware.GetActor(c), taskID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// SuggestSubtasks proposes subtasks for a task using AI. Nothing is saved.
func (h *TaskHandler) SuggestSubtasks(c *gin.Context) {
	taskID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	suggestions, err := h.taskService.SuggestSubtasks(c.Request.Context(), middleware.GetActor(c), taskID)
	if err != nil {
		respondAIError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToSubtaskSuggestionDTOs(suggestions),
	})
}

func respondAIError(c *gin.Context, err error) {
	switch {
	case apierrors.KindOf(err) != 0:
		apierrors.Respond(c, err)
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	case errors.Is(err, services.ErrAINoTasksGenerated), errors.Is(err, services.ErrAINoValidTasks):
		apierrors.InternalError(c, err.Error())
	default:
		logger.Error("Failed to generate subtasks", err, zap.String("path", c.FullPath()))
		apierrors.InternalError(c, "Failed to generate tasks")
	}
}

func parseListTasksQuery(c *gin.Context) (services.ListTasksInput, error) {
	input := services.ListTasksInput{
		Search:     c.Query("search"),
		Ordering:   c.Query("ordering"),
		Pagination: utils.GetPaginationParams(c),
	}

	if raw := c.Query("status"); raw != "" {
		status := models.TaskStatus(raw)
		input.Status = &status
	}
	if raw := c.Query("priority"); raw != "" {
		priority := models.TaskPriority(raw)
		input.Priority = &priority
	}

	var err error
	if input.DueAfter, err = utils.ParseDateQuery(c, "due_after"); err != nil {
		return input, err
	}
	if input.DueBefore, err = utils.ParseDateQuery(c, "due_before"); err != nil {
		return input, err
	}
	if input.Overdue, err = utils.ParseBoolQuery(c, "overdue"); err != nil {
		return input, err
	}

	return input, nil
}
