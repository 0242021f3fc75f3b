package services

import (
	"errors"

	apierrors "github.com/yukikurage/taskmanager-api/internal/errors"
)

var (
	ErrTaskNotFound             = apierrors.NotFoundError(apierrors.ErrCodeNotFound, "task not found")
	ErrExtensionRequestNotFound = apierrors.NotFoundError(apierrors.ErrCodeNotFound, "extension request not found")
	ErrUserNotFound             = apierrors.NotFoundError(apierrors.ErrCodeNotFound, "user not found")

	ErrParentTaskNotFound = apierrors.Validation("PARENT_NOT_FOUND", "parent task does not exist")
	ErrAssigneeNotFound   = apierrors.Validation("ASSIGNEE_NOT_FOUND", "assigned user does not exist")
	ErrTaskRequired       = apierrors.Validation(apierrors.ErrCodeMissingField, "task is required")
	ErrReasonRequired     = apierrors.Validation(apierrors.ErrCodeMissingField, "reason is required")
	ErrInvalidOrdering    = apierrors.Validation(apierrors.ErrCodeInvalidInput, "invalid ordering")

	ErrUsernameRequired   = apierrors.Validation(apierrors.ErrCodeMissingField, "username is required")
	ErrInvalidEmail       = apierrors.Validation(apierrors.ErrCodeInvalidFormat, "invalid email address")
	ErrPasswordTooShort   = apierrors.Validation("PASSWORD_TOO_SHORT", "password too short")
	ErrInvalidRole        = apierrors.Validation("INVALID_ROLE", "invalid role")
	ErrUsernameTaken      = apierrors.ConflictError("USERNAME_TAKEN", "username already exists")
	ErrInvalidCredentials = apierrors.Authentication(apierrors.ErrCodeInvalidCredentials, "Invalid Username or Password")
	ErrInvalidToken       = apierrors.Authentication(apierrors.ErrCodeUnauthorized, "invalid or expired token")

	ErrFailedToHashPassword   = errors.New("failed to hash password")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)
