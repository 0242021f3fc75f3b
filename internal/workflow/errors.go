package workflow

import (
	apierrors "github.com/yukikurage/taskmanager-api/internal/errors"
)

var (
	ErrNameRequired            = apierrors.Validation("NAME_REQUIRED", "name is required")
	ErrDueDateRequired         = apierrors.Validation("DUE_DATE_REQUIRED", "due date is required")
	ErrAssigneeRequired        = apierrors.Validation("ASSIGNEE_REQUIRED", "assigned_to is required")
	ErrInvalidStatus           = apierrors.Validation("INVALID_STATUS", "invalid status")
	ErrInvalidPriority         = apierrors.Validation("INVALID_PRIORITY", "invalid priority")
	ErrParentDueDateViolation  = apierrors.Validation("PARENT_DUE_DATE_VIOLATION", "due date cannot be later than the due date of the parent task")
	ErrSubtaskDueDateViolation = apierrors.Validation("SUBTASK_DUE_DATE_VIOLATION", "due date cannot be earlier than the due date of a subtask")
	ErrInvalidTransition       = apierrors.Validation("INVALID_TRANSITION", "invalid task status transition")
	ErrParentIncomplete        = apierrors.Validation("PARENT_INCOMPLETE", "a task can only be marked as Completed if its parent task is completed")
	ErrParentCycle             = apierrors.Validation("PARENT_CYCLE", "a task cannot be its own ancestor")
	ErrTooManyExtensions       = apierrors.Validation("TOO_MANY_EXTENSIONS", "a task can have a maximum of 3 deadline extensions")
	ErrDeadlineNotLater        = apierrors.Validation("DEADLINE_NOT_LATER", "new deadline must be after the current due date")
	ErrAlreadyResolved         = apierrors.Validation("ALREADY_RESOLVED", "extension request has already been resolved")
	ErrNotAuthorizedToResolve  = apierrors.Authorization("NOT_AUTHORIZED_TO_RESOLVE", "only the user who assigned the task can approve or reject a deadline extension request")
	ErrNotTaskAssignee         = apierrors.Authorization("NOT_TASK_ASSIGNEE", "only the task's assignee can request a deadline extension")
)
