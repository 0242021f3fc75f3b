// Package workflow holds the business rules for task status transitions,
// parent/subtask due dates and the deadline extension lifecycle. Every
// function is pure: callers load the records, call the checks, then persist.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/taskmanager-api/internal/constants"
	"github.com/yukikurage/taskmanager-api/internal/models"
)

// TaskDraft is the validated shape of a task about to be created.
type TaskDraft struct {
	Name         string
	Priority     models.TaskPriority
	DueDate      models.Date
	AssignedToID uint64
}

// ValidateNewTask checks the creation rules. parent is nil for top-level tasks.
func ValidateNewTask(draft TaskDraft, parent *models.Task) error {
	if strings.TrimSpace(draft.Name) == "" {
		return ErrNameRequired
	}
	if draft.AssignedToID == 0 {
		return ErrAssigneeRequired
	}
	if draft.Priority != "" && !draft.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, draft.Priority)
	}
	return CheckParentDueDate(draft.DueDate, parent)
}

// CheckParentDueDate enforces due_date(task) <= due_date(parent).
func CheckParentDueDate(due models.Date, parent *models.Task) error {
	if due.IsZero() {
		return ErrDueDateRequired
	}
	if parent == nil {
		return nil
	}
	if due.After(parent.DueDate) {
		return fmt.Errorf("%w: %s", ErrParentDueDateViolation, parent.DueDate)
	}
	return nil
}

// CheckSubtaskDueDates enforces due_date(child) <= due for every direct
// subtask of a task whose due date moves to due.
func CheckSubtaskDueDates(due models.Date, children []models.Task) error {
	for _, child := range children {
		if child.DueDate.After(due) {
			return fmt.Errorf("%w: subtask %d is due %s", ErrSubtaskDueDateViolation, child.ID, child.DueDate)
		}
	}
	return nil
}

// CheckTransition allows only single forward steps
// Pending -> In Progress -> Completed. Re-setting Pending or In Progress is a
// no-op; Completed is only reachable from In Progress.
func CheckTransition(from, to models.TaskStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if to == models.TaskStatusCompleted && from != models.TaskStatusInProgress {
		return fmt.Errorf("%w: a task must be %s before it can be marked as %s", ErrInvalidTransition, models.TaskStatusInProgress, models.TaskStatusCompleted)
	}
	if from == to {
		return nil
	}
	if to.Rank() != from.Rank()+1 {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// CheckStatusChange validates moving task to status to. parent must be the
// loaded parent task when task.ParentTaskID is set.
func CheckStatusChange(task *models.Task, parent *models.Task, to models.TaskStatus) error {
	if err := CheckTransition(task.Status, to); err != nil {
		return err
	}
	if to == models.TaskStatusCompleted && parent != nil && parent.Status != models.TaskStatusCompleted {
		return fmt.Errorf("%w: parent task '%s' is not completed yet", ErrParentIncomplete, parent.Name)
	}
	return nil
}

// ParentLookup returns the parent ID of the task with the given ID, or nil
// for a top-level task.
type ParentLookup func(taskID uint64) (*uint64, error)

// CheckAncestry rejects making newParentID the parent of taskID when taskID
// is newParentID itself or one of its ancestors. The walk is iterative and
// stops after constants.MaxSubtaskDepth hops or on a revisited node.
func CheckAncestry(taskID, newParentID uint64, parentOf ParentLookup) error {
	seen := make(map[uint64]struct{})
	current := &newParentID
	for depth := 0; current != nil; depth++ {
		if *current == taskID {
			return ErrParentCycle
		}
		if _, ok := seen[*current]; ok {
			return fmt.Errorf("%w: existing ancestry of task %d is cyclic", ErrParentCycle, newParentID)
		}
		if depth > constants.MaxSubtaskDepth {
			return fmt.Errorf("%w: ancestry deeper than %d levels", ErrParentCycle, constants.MaxSubtaskDepth)
		}
		seen[*current] = struct{}{}

		next, err := parentOf(*current)
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

// CheckExtensionRequest validates a new extension request against the task
// state at submission. existing counts every request already filed for the
// task, whatever its status.
func CheckExtensionRequest(task *models.Task, existing int64, newDeadline models.Date) error {
	if existing >= constants.MaxExtensionRequests {
		return ErrTooManyExtensions
	}
	if newDeadline.IsZero() {
		return fmt.Errorf("%w: new_deadline is required", ErrDeadlineNotLater)
	}
	if !newDeadline.After(task.DueDate) {
		return fmt.Errorf("%w: current due date is %s", ErrDeadlineNotLater, task.DueDate)
	}
	return nil
}

// CheckRequester requires the requester to be the task's assignee.
func CheckRequester(task *models.Task, actorID uint64) error {
	if task.AssignedToID != actorID {
		return ErrNotTaskAssignee
	}
	return nil
}

// CheckResolution validates moving req to status to by actorID. A patch that
// keeps a pending request pending is accepted and changes nothing.
func CheckResolution(req *models.ExtensionRequest, task *models.Task, actorID uint64, to models.ExtensionStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if to.Terminal() && task.AssignedByID != actorID {
		return ErrNotAuthorizedToResolve
	}
	if req.Status.Terminal() {
		return fmt.Errorf("%w: status is %s", ErrAlreadyResolved, req.Status)
	}
	return nil
}

// ApplyResolution records the outcome on req and, on approval, moves the
// task's due date to the requested deadline. It reports whether task changed.
// Callers must have passed CheckResolution first.
func ApplyResolution(req *models.ExtensionRequest, task *models.Task, actorID uint64, to models.ExtensionStatus, now time.Time) bool {
	if !to.Terminal() {
		return false
	}

	req.Status = to
	req.ApprovedByID = &actorID
	req.ApprovedAt = &now

	if to == models.ExtensionStatusApproved {
		task.DueDate = req.NewDeadline
		return true
	}
	return false
}
