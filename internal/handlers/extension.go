package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskmanager-api/internal/dto"
	apierrors "github.com/yukikurage/taskmanager-api/internal/errors"
	"github.com/yukikurage/taskmanager-api/internal/logger"
	"github.com/yukikurage/taskmanager-api/internal/middleware"
	"github.com/yukikurage/taskmanager-api/internal/models"
	"github.com/yukikurage/taskmanager-api/internal/services"
	"github.com/yukikurage/taskmanager-api/internal/utils"
	"go.uber.org/zap"
)

// ExtensionHandler serves deadline extension requests and the approval queue
type ExtensionHandler struct {
	extensionService *services.ExtensionService
}

func NewExtensionHandler(extensionService *services.ExtensionService) *ExtensionHandler {
	return &ExtensionHandler{
		extensionService: extensionService,
	}
}

// ListRequests returns extension requests, optionally filtered by task,
// status or new deadline range
func (h *ExtensionHandler) ListRequests(c *gin.Context) {
	input, err := parseListExtensionsQuery(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	reqs, total, err := h.extensionService.ListRequests(c.Request.Context(), middleware.GetActor(c), input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToExtensionRequestListResponse(reqs, input.Pagination, total))
}

// CreateRequest submits a deadline extension request for a task
func (h *ExtensionHandler) CreateRequest(c *gin.Context) {
	type CreateRequestBody struct {
		Task        uint64      `json:"task"`
		Reason      string      `json:"reason"`
		NewDeadline models.Date `json:"new_deadline"`
	}

	var body CreateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if body.NewDeadline.IsZero() {
		apierrors.BadRequest(c, "new_deadline is required")
		return
	}

	actor := middleware.GetActor(c)
	req, err := h.extensionService.CreateRequest(c.Request.Context(), actor, services.CreateExtensionInput{
		TaskID:      body.Task,
		Reason:      body.Reason,
		NewDeadline: body.NewDeadline,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	logger.Info("Extension request submitted",
		zap.Uint64("request_id", req.ID),
		zap.Uint64("task_id", req.TaskID),
		zap.Uint64("request_by", actor.ID))
	c.JSON(http.StatusCreated, dto.ToExtensionRequestDTO(*req))
}

// ListApprovals returns the requests on tasks the current user assigned
func (h *ExtensionHandler) ListApprovals(c *gin.Context) {
	input, err := parseListExtensionsQuery(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	reqs, total, err := h.extensionService.ListApprovals(c.Request.Context(), middleware.GetActor(c), input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToExtensionApprovalListResponse(reqs, input.Pagination, total))
}

// GetApproval returns a single request for review
func (h *ExtensionHandler) GetApproval(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid extension request ID")
		return
	}

	req, err := h.extensionService.GetApproval(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToExtensionApprovalDTO(*req))
}

// ResolveRequest approves or rejects a request. Only status is writable.
func (h *ExtensionHandler) ResolveRequest(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid extension request ID")
		return
	}

	type ResolveRequestBody struct {
		Status models.ExtensionStatus `json:"status" binding:"required"`
	}

	var body ResolveRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	actor := middleware.GetActor(c)
	req, err := h.extensionService.ResolveRequest(c.Request.Context(), actor, id, services.ResolveExtensionInput{
		Status: body.Status,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	logger.Info("Extension request resolved",
		zap.Uint64("request_id", req.ID),
		zap.String("status", string(req.Status)),
		zap.Uint64("resolved_by", actor.ID))
	c.JSON(http.StatusOK, dto.ToApprovalUpdateResponse(*req))
}

func parseListExtensionsQuery(c *gin.Context) (services.ListExtensionsInput, error) {
	input := services.ListExtensionsInput{
		Pagination: utils.GetPaginationParams(c),
	}

	if raw := c.Query("status"); raw != "" {
		status := models.ExtensionStatus(raw)
		input.Status = &status
	}

	var err error
	if input.TaskID, err = utils.ParseIDQuery(c, "task"); err != nil {
		return input, err
	}
	if input.DeadlineAfter, err = utils.ParseDateQuery(c, "new_deadline_after"); err != nil {
		return input, err
	}
	if input.DeadlineBefore, err = utils.ParseDateQuery(c, "new_deadline_before"); err != nil {
		return input, err
	}

	return input, nil
}
