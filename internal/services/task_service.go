package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/taskmanager-api/internal/authz"
	"github.com/yukikurage/taskmanager-api/internal/constants"
	"github.com/yukikurage/taskmanager-api/internal/models"
	"github.com/yukikurage/taskmanager-api/internal/notify"
	"github.com/yukikurage/taskmanager-api/internal/repository"
	"github.com/yukikurage/taskmanager-api/internal/utils"
	"github.com/yukikurage/taskmanager-api/internal/workflow"
	"gorm.io/gorm"
)

var taskPreloads = []string{"AssignedTo", "AssignedBy"}

// TaskService handles task business logic
type TaskService struct {
	store     repository.Store
	gate      *authz.Gate
	notifier  notify.Notifier
	generator SubtaskGenerator
	now       func() time.Time
}

// NewTaskService creates a new TaskService. generator may be nil when AI
// suggestions are not configured.
func NewTaskService(store repository.Store, gate *authz.Gate, notifier notify.Notifier, generator SubtaskGenerator) *TaskService {
	return &TaskService{
		store:     store,
		gate:      gate,
		notifier:  notifier,
		generator: generator,
		now:       time.Now,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	DueAfter   *models.Date
	DueBefore  *models.Date
	Overdue    bool
	Search     string
	Ordering   string
	Pagination utils.PaginationParams
	Surface    authz.Surface
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Name         string
	Description  string
	Status       models.TaskStatus
	Priority     models.TaskPriority
	DueDate      models.Date
	ParentTaskID *uint64
	AssignedToID uint64
}

// UpdateTaskInput represents input for updating a task. Nil fields are left
// unchanged.
type UpdateTaskInput struct {
	Name         *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueDate      *models.Date
	ParentTaskID *uint64
	ClearParent  bool
	AssignedToID *uint64
	AssignedByID *uint64
}

// Fields lists the task fields the patch touches.
func (in UpdateTaskInput) Fields() []authz.TaskField {
	var fields []authz.TaskField
	if in.Name != nil {
		fields = append(fields, authz.FieldName)
	}
	if in.Description != nil {
		fields = append(fields, authz.FieldDescription)
	}
	if in.Status != nil {
		fields = append(fields, authz.FieldStatus)
	}
	if in.Priority != nil {
		fields = append(fields, authz.FieldPriority)
	}
	if in.DueDate != nil {
		fields = append(fields, authz.FieldDueDate)
	}
	if in.ParentTaskID != nil || in.ClearParent {
		fields = append(fields, authz.FieldParentTask)
	}
	if in.AssignedToID != nil {
		fields = append(fields, authz.FieldAssignedTo)
	}
	if in.AssignedByID != nil {
		fields = append(fields, authz.FieldAssignedBy)
	}
	return fields
}

// ListTasks returns the tasks visible to actor, each with its subtask tree
func (s *TaskService) ListTasks(ctx context.Context, actor *authz.Actor, input ListTasksInput) ([]*workflow.TaskNode, int64, error) {
	if err := s.gate.Authorize(actor, authz.TaskView, authz.OpRead); err != nil {
		return nil, 0, err
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: %q", workflow.ErrInvalidStatus, *input.Status)
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, 0, fmt.Errorf("%w: %q", workflow.ErrInvalidPriority, *input.Priority)
	}
	if input.Ordering != "" {
		if _, ok := repository.TaskOrderings[input.Ordering]; !ok {
			return nil, 0, fmt.Errorf("%w: %q", ErrInvalidOrdering, input.Ordering)
		}
	}

	filter := repository.TaskFilter{
		Status:     input.Status,
		Priority:   input.Priority,
		DueAfter:   input.DueAfter,
		DueBefore:  input.DueBefore,
		Search:     input.Search,
		Ordering:   input.Ordering,
		Pagination: input.Pagination,
	}
	if input.Overdue {
		today := models.DateOf(s.now())
		filter.OverdueOn = &today
	}
	if input.Surface == authz.AdminSurface {
		scope := authz.AdminTaskScope(actor)
		filter.AssignedToID = scope.AssignedToID
		if filter.Ordering == "" {
			filter.Ordering = "due_date"
		}
	}

	tasks, total, err := s.store.Tasks().List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	forest, err := workflow.BuildForest(tasks, s.store.Tasks().FindChildren, constants.MaxSubtaskDepth)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load subtasks: %w", err)
	}

	return forest, total, nil
}

// GetTask returns a task with its subtask tree
func (s *TaskService) GetTask(ctx context.Context, actor *authz.Actor, taskID uint64, surface authz.Surface) (*workflow.TaskNode, error) {
	if err := s.gate.Authorize(actor, authz.TaskView, authz.OpRead); err != nil {
		return nil, err
	}

	task, err := s.findTask(s.store, taskID, taskPreloads...)
	if err != nil {
		return nil, err
	}
	if !visible(actor, task, surface) {
		return nil, ErrTaskNotFound
	}

	tree, err := workflow.BuildTree(*task, s.store.Tasks().FindChildren, constants.MaxSubtaskDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to load subtasks: %w", err)
	}
	return tree, nil
}

// CreateTask validates and creates a task assigned by actor, then notifies
// the assignee
func (s *TaskService) CreateTask(ctx context.Context, actor *authz.Actor, input CreateTaskInput) (*models.Task, error) {
	if err := s.gate.Authorize(actor, authz.TaskView, authz.OpCreate); err != nil {
		return nil, err
	}

	var parent *models.Task
	if input.ParentTaskID != nil {
		p, err := s.findParent(s.store, *input.ParentTaskID)
		if err != nil {
			return nil, err
		}
		parent = p
	}

	draft := workflow.TaskDraft{
		Name:         input.Name,
		Priority:     input.Priority,
		DueDate:      input.DueDate,
		AssignedToID: input.AssignedToID,
	}
	if err := workflow.ValidateNewTask(draft, parent); err != nil {
		return nil, err
	}

	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}
	if err := workflow.CheckTransition(models.TaskStatusPending, input.Status); err != nil {
		return nil, err
	}
	if input.Priority == "" {
		input.Priority = models.PriorityWhenFree
	}

	if err := s.ensureUserExists(s.store, input.AssignedToID); err != nil {
		return nil, err
	}

	task := &models.Task{
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		Status:       input.Status,
		Priority:     input.Priority,
		DueDate:      input.DueDate,
		ParentTaskID: input.ParentTaskID,
		AssignedToID: input.AssignedToID,
		AssignedByID: actor.ID,
	}

	if err := s.store.Tasks().Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	created, err := s.store.Tasks().FindByID(task.ID, taskPreloads...)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	send(ctx, s.notifier, assignmentMessage(created))

	return created, nil
}

// UpdateTask applies a patch to a task inside a single transaction
func (s *TaskService) UpdateTask(ctx context.Context, actor *authz.Actor, taskID uint64, input UpdateTaskInput, surface authz.Surface) (*models.Task, error) {
	if err := s.gate.Authorize(actor, authz.TaskView, authz.OpUpdate); err != nil {
		return nil, err
	}
	if err := s.gate.CheckTaskPatch(actor, surface, input.Fields()); err != nil {
		return nil, err
	}

	err := s.store.Transaction(func(tx repository.Store) error {
		task, err := tx.Tasks().FindForUpdate(taskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}
		if !visible(actor, task, surface) {
			return ErrTaskNotFound
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return workflow.ErrNameRequired
			}
			task.Name = name
		}
		if input.Description != nil {
			task.Description = *input.Description
		}
		if input.Priority != nil {
			if !input.Priority.Valid() {
				return fmt.Errorf("%w: %q", workflow.ErrInvalidPriority, *input.Priority)
			}
			task.Priority = *input.Priority
		}
		if input.AssignedToID != nil {
			if err := s.ensureUserExists(tx, *input.AssignedToID); err != nil {
				return err
			}
			task.AssignedToID = *input.AssignedToID
		}

		parentChanged := input.ClearParent || input.ParentTaskID != nil
		switch {
		case input.ClearParent:
			task.ParentTaskID = nil
		case input.ParentTaskID != nil:
			if err := workflow.CheckAncestry(task.ID, *input.ParentTaskID, parentLookup(tx)); err != nil {
				return err
			}
			task.ParentTaskID = input.ParentTaskID
		}

		var parent *models.Task
		if task.ParentTaskID != nil {
			parent, err = s.findParent(tx, *task.ParentTaskID)
			if err != nil {
				return err
			}
		}

		if input.DueDate != nil {
			task.DueDate = *input.DueDate
		}
		if input.DueDate != nil || parentChanged {
			if err := workflow.CheckParentDueDate(task.DueDate, parent); err != nil {
				return err
			}
		}
		if input.DueDate != nil {
			children, err := tx.Tasks().FindChildren([]uint64{task.ID})
			if err != nil {
				return fmt.Errorf("failed to find subtasks: %w", err)
			}
			if err := workflow.CheckSubtaskDueDates(task.DueDate, children); err != nil {
				return err
			}
		}

		if input.Status != nil {
			if err := workflow.CheckStatusChange(task, parent, *input.Status); err != nil {
				return err
			}
			task.Status = *input.Status
		}

		if err := tx.Tasks().Update(task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.store.Tasks().FindByID(taskID, taskPreloads...)
}

// DeleteTask deletes a task together with its extension requests
func (s *TaskService) DeleteTask(ctx context.Context, actor *authz.Actor, taskID uint64) error {
	if err := s.gate.Authorize(actor, authz.TaskView, authz.OpDelete); err != nil {
		return err
	}

	if _, err := s.findTask(s.store, taskID); err != nil {
		return err
	}

	if err := s.store.Tasks().Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// SubtaskSuggestion is an unsaved subtask proposed for a parent task
type SubtaskSuggestion struct {
	Name         string
	Description  string
	DueDate      models.Date
	ParentTaskID uint64
}

// SuggestSubtasks asks the AI generator for subtasks of a task. Proposed due
// dates never fall after the parent's due date.
func (s *TaskService) SuggestSubtasks(ctx context.Context, actor *authz.Actor, taskID uint64) ([]SubtaskSuggestion, error) {
	if err := s.gate.Authorize(actor, authz.TaskView, authz.OpCreate); err != nil {
		return nil, err
	}
	if s.generator == nil {
		return nil, ErrAIServiceNotConfigured
	}

	parent, err := s.findTask(s.store, taskID)
	if err != nil {
		return nil, err
	}

	generated, err := s.generator.GenerateSubtasks(ctx, parent)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(generated) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(generated) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	today := models.DateOf(s.now())
	suggestions := make([]SubtaskSuggestion, 0, len(generated))
	for _, g := range generated {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			continue
		}

		due := parent.DueDate
		if g.DueDate != nil && !g.DueDate.IsZero() && !g.DueDate.After(parent.DueDate) {
			due = *g.DueDate
			if due.Before(today) && !today.After(parent.DueDate) {
				due = today
			}
		}

		suggestions = append(suggestions, SubtaskSuggestion{
			Name:         name,
			Description:  g.Description,
			DueDate:      due,
			ParentTaskID: parent.ID,
		})
	}

	if len(suggestions) == 0 {
		return nil, ErrAINoValidTasks
	}

	return suggestions, nil
}

// visible applies the administrative visibility scope.
func visible(actor *authz.Actor, task *models.Task, surface authz.Surface) bool {
	if surface != authz.AdminSurface {
		return true
	}
	scope := authz.AdminTaskScope(actor)
	return scope.AssignedToID == nil || *scope.AssignedToID == task.AssignedToID
}

func parentLookup(store repository.Store) workflow.ParentLookup {
	return func(id uint64) (*uint64, error) {
		parentID, err := store.Tasks().ParentID(id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParentTaskNotFound
		}
		return parentID, err
	}
}

func (s *TaskService) findTask(store repository.Store, id uint64, preload ...string) (*models.Task, error) {
	task, err := store.Tasks().FindByID(id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) findParent(store repository.Store, id uint64) (*models.Task, error) {
	parent, err := store.Tasks().FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParentTaskNotFound
		}
		return nil, fmt.Errorf("failed to find parent task: %w", err)
	}
	return parent, nil
}

func (s *TaskService) ensureUserExists(store repository.Store, id uint64) error {
	if _, err := store.Users().FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	return nil
}
