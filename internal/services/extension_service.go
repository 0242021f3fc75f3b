package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/taskmanager-api/internal/authz"
	"github.com/yukikurage/taskmanager-api/internal/logger"
	"github.com/yukikurage/taskmanager-api/internal/models"
	"github.com/yukikurage/taskmanager-api/internal/notify"
	"github.com/yukikurage/taskmanager-api/internal/repository"
	"github.com/yukikurage/taskmanager-api/internal/utils"
	"github.com/yukikurage/taskmanager-api/internal/workflow"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var extensionPreloads = []string{"Task", "RequestBy", "ApprovedBy"}

// ExtensionService handles the deadline extension lifecycle
type ExtensionService struct {
	store    repository.Store
	gate     *authz.Gate
	notifier notify.Notifier
	// opsEmail receives every newly submitted request
	opsEmail string
	now      func() time.Time
}

// NewExtensionService creates a new ExtensionService
func NewExtensionService(store repository.Store, gate *authz.Gate, notifier notify.Notifier, opsEmail string) *ExtensionService {
	return &ExtensionService{
		store:    store,
		gate:     gate,
		notifier: notifier,
		opsEmail: opsEmail,
		now:      time.Now,
	}
}

// CreateExtensionInput represents input for submitting an extension request
type CreateExtensionInput struct {
	TaskID      uint64
	Reason      string
	NewDeadline models.Date
}

// ListExtensionsInput represents filters for listing extension requests
type ListExtensionsInput struct {
	TaskID         *uint64
	Status         *models.ExtensionStatus
	DeadlineAfter  *models.Date
	DeadlineBefore *models.Date
	Pagination     utils.PaginationParams
}

// ResolveExtensionInput carries the requested status. Other fields of the
// request cannot be changed through resolution.
type ResolveExtensionInput struct {
	Status models.ExtensionStatus
}

// CreateRequest files an extension request for a task. The cap is counted
// while the task row is locked, so concurrent submissions cannot exceed it.
func (s *ExtensionService) CreateRequest(ctx context.Context, actor *authz.Actor, input CreateExtensionInput) (*models.ExtensionRequest, error) {
	if err := s.gate.Authorize(actor, authz.ExtensionRequestView, authz.OpCreate); err != nil {
		return nil, err
	}
	if input.TaskID == 0 {
		return nil, ErrTaskRequired
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	req := &models.ExtensionRequest{
		TaskID:      input.TaskID,
		Reason:      reason,
		NewDeadline: input.NewDeadline,
		RequestByID: actor.ID,
		Status:      models.ExtensionStatusPending,
	}

	err := s.store.Transaction(func(tx repository.Store) error {
		task, err := tx.Tasks().FindForUpdate(input.TaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}

		if err := workflow.CheckRequester(task, actor.ID); err != nil {
			return err
		}

		count, err := tx.ExtensionRequests().CountByTask(task.ID)
		if err != nil {
			return fmt.Errorf("failed to count extension requests: %w", err)
		}

		if err := workflow.CheckExtensionRequest(task, count, input.NewDeadline); err != nil {
			return err
		}
		if err := checkWithinParent(tx, task, input.NewDeadline); err != nil {
			return err
		}

		if err := tx.ExtensionRequests().Create(req); err != nil {
			return fmt.Errorf("failed to create extension request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.store.ExtensionRequests().FindByID(req.ID, extensionPreloads...)
	if err != nil {
		return nil, fmt.Errorf("failed to reload extension request: %w", err)
	}

	if s.opsEmail == "" {
		logger.Warn("Extension request notification skipped: OPS_NOTIFICATION_EMAIL is not set",
			zap.Uint64("request_id", created.ID))
	} else {
		send(ctx, s.notifier, extensionSubmittedMessage(s.opsEmail, created))
	}

	return created, nil
}

// ListRequests lists every extension request matching the filter
func (s *ExtensionService) ListRequests(ctx context.Context, actor *authz.Actor, input ListExtensionsInput) ([]models.ExtensionRequest, int64, error) {
	if err := s.gate.Authorize(actor, authz.ExtensionRequestView, authz.OpRead); err != nil {
		return nil, 0, err
	}
	return s.list(input, nil)
}

// ListApprovals lists the requests on tasks actor assigned
func (s *ExtensionService) ListApprovals(ctx context.Context, actor *authz.Actor, input ListExtensionsInput) ([]models.ExtensionRequest, int64, error) {
	if err := s.gate.Authorize(actor, authz.ExtensionApprovalView, authz.OpRead); err != nil {
		return nil, 0, err
	}
	scope := authz.ApprovalScope(actor)
	return s.list(input, scope.AssignedByID)
}

// GetApproval returns a single request for review
func (s *ExtensionService) GetApproval(ctx context.Context, actor *authz.Actor, id uint64) (*models.ExtensionRequest, error) {
	if err := s.gate.Authorize(actor, authz.ExtensionApprovalView, authz.OpRead); err != nil {
		return nil, err
	}
	return s.find(s.store, id, extensionPreloads...)
}

// ResolveRequest approves or rejects a pending request. On approval the
// task's due date moves to the requested deadline in the same transaction.
// The requester is notified once the change is committed.
func (s *ExtensionService) ResolveRequest(ctx context.Context, actor *authz.Actor, id uint64, input ResolveExtensionInput) (*models.ExtensionRequest, error) {
	if err := s.gate.Authorize(actor, authz.ExtensionApprovalView, authz.OpUpdate); err != nil {
		return nil, err
	}

	resolved := false
	err := s.store.Transaction(func(tx repository.Store) error {
		req, err := tx.ExtensionRequests().FindForUpdate(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrExtensionRequestNotFound
			}
			return fmt.Errorf("failed to find extension request: %w", err)
		}

		task, err := tx.Tasks().FindForUpdate(req.TaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}

		if err := workflow.CheckResolution(req, task, actor.ID, input.Status); err != nil {
			return err
		}

		if !input.Status.Terminal() {
			return nil
		}
		if input.Status == models.ExtensionStatusApproved {
			if err := checkWithinParent(tx, task, req.NewDeadline); err != nil {
				return err
			}
		}

		if taskChanged := workflow.ApplyResolution(req, task, actor.ID, input.Status, s.now()); taskChanged {
			if err := tx.Tasks().Update(task); err != nil {
				return fmt.Errorf("failed to update task due date: %w", err)
			}
		}
		if err := tx.ExtensionRequests().Update(req); err != nil {
			return fmt.Errorf("failed to update extension request: %w", err)
		}
		resolved = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	req, err := s.find(s.store, id, extensionPreloads...)
	if err != nil {
		return nil, err
	}

	if resolved {
		send(ctx, s.notifier, extensionResolvedMessage(req))
	}

	return req, nil
}

func (s *ExtensionService) list(input ListExtensionsInput, assignedByID *uint64) ([]models.ExtensionRequest, int64, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: %q", workflow.ErrInvalidStatus, *input.Status)
	}

	requests, total, err := s.store.ExtensionRequests().List(repository.ExtensionFilter{
		TaskID:           input.TaskID,
		Status:           input.Status,
		TaskAssignedByID: assignedByID,
		DeadlineAfter:    input.DeadlineAfter,
		DeadlineBefore:   input.DeadlineBefore,
		Pagination:       input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list extension requests: %w", err)
	}
	return requests, total, nil
}

func (s *ExtensionService) find(store repository.Store, id uint64, preload ...string) (*models.ExtensionRequest, error) {
	req, err := store.ExtensionRequests().FindByID(id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExtensionRequestNotFound
		}
		return nil, fmt.Errorf("failed to find extension request: %w", err)
	}
	return req, nil
}

// checkWithinParent keeps a subtask's extended deadline on or before its
// parent's due date.
func checkWithinParent(tx repository.Store, task *models.Task, deadline models.Date) error {
	if task.ParentTaskID == nil {
		return nil
	}
	parent, err := tx.Tasks().FindByID(*task.ParentTaskID)
	if err != nil {
		return fmt.Errorf("failed to find parent task: %w", err)
	}
	return workflow.CheckParentDueDate(deadline, parent)
}
