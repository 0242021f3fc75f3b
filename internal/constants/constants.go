package constants

const (
	// ContextKeyUserID is the key used for the authenticated user ID in sessions and gin contexts.
	ContextKeyUserID = "user_id"
	// ContextKeyActor holds the resolved *authz.Actor for the request.
	ContextKeyActor = "actor"
	// ContextKeyRequestID holds the request correlation ID.
	ContextKeyRequestID = "request_id"

	SessionCookieName = "task_session"
	HeaderRequestID   = "X-Request-ID"

	MinPasswordLength = 8

	// Pagination
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxExtensionRequests caps extension requests per task, regardless of status.
	MaxExtensionRequests = 3

	// MaxSubtaskDepth bounds subtask tree expansion.
	MaxSubtaskDepth = 16

	MaxAIGeneratedTasks = 10
)
