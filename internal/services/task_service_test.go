package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskmanager-api/internal/authz"
	apierrors "github.com/yukikurage/taskmanager-api/internal/errors"
	"github.com/yukikurage/taskmanager-api/internal/models"
	"github.com/yukikurage/taskmanager-api/internal/workflow"
)

type TaskServiceTestSuite struct {
	ServiceTestSuite
}

func (suite *TaskServiceTestSuite) TestCreateTask_ForcesAssignerAndNotifiesAssignee() {
	suite.notifier.On("Send", mock.Anything, sentTo("dev@example.com")).Return(nil).Once()

	task, err := suite.tasks.CreateTask(context.Background(), suite.provider, CreateTaskInput{
		Name:         "Write report",
		Description:  "Quarterly numbers",
		DueDate:      models.NewDate(2025, 3, 1),
		AssignedToID: suite.dev.ID,
	})
	suite.Require().NoError(err)

	suite.Equal(suite.provider.ID, task.AssignedByID)
	suite.Equal(models.TaskStatusPending, task.Status)
	suite.Equal(models.PriorityWhenFree, task.Priority)
	suite.Equal("dev", task.AssignedTo.Username)
	suite.notifier.AssertExpectations(suite.T())
}

func (suite *TaskServiceTestSuite) TestCreateTask_NotificationFailureIsSwallowed() {
	suite.notifier.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()

	task, err := suite.tasks.CreateTask(context.Background(), suite.provider, CreateTaskInput{
		Name:         "Still created",
		DueDate:      models.NewDate(2025, 3, 1),
		AssignedToID: suite.dev.ID,
	})
	suite.Require().NoError(err)
	suite.NotZero(task.ID)
	suite.notifier.AssertExpectations(suite.T())
}

func (suite *TaskServiceTestSuite) TestCreateTask_Validation() {
	parent := suite.seedTask("parent", models.NewDate(2025, 3, 1))

	tests := []struct {
		name  string
		actor *authz.Actor
		input CreateTaskInput
		want  error
	}{
		{"developer cannot create", suite.dev, CreateTaskInput{Name: "x", DueDate: models.NewDate(2025, 3, 1), AssignedToID: suite.dev.ID}, authz.ErrForbidden},
		{"unauthenticated", nil, CreateTaskInput{}, authz.ErrUnauthenticated},
		{"due date required", suite.provider, CreateTaskInput{Name: "x", AssignedToID: suite.dev.ID}, workflow.ErrDueDateRequired},
		{"assignee required", suite.provider, CreateTaskInput{Name: "x", DueDate: models.NewDate(2025, 3, 1)}, workflow.ErrAssigneeRequired},
		{"unknown assignee", suite.provider, CreateTaskInput{Name: "x", DueDate: models.NewDate(2025, 3, 1), AssignedToID: 999}, ErrAssigneeNotFound},
		{"unknown parent", suite.provider, CreateTaskInput{Name: "x", DueDate: models.NewDate(2025, 3, 1), AssignedToID: suite.dev.ID, ParentTaskID: ptr(uint64(999))}, ErrParentTaskNotFound},
		{"due after parent", suite.provider, CreateTaskInput{Name: "x", DueDate: models.NewDate(2025, 3, 2), AssignedToID: suite.dev.ID, ParentTaskID: &parent.ID}, workflow.ErrParentDueDateViolation},
		{"created completed", suite.provider, CreateTaskInput{Name: "x", DueDate: models.NewDate(2025, 3, 1), AssignedToID: suite.dev.ID, Status: models.TaskStatusCompleted}, workflow.ErrInvalidTransition},
		{"bad priority", suite.provider, CreateTaskInput{Name: "x", DueDate: models.NewDate(2025, 3, 1), AssignedToID: suite.dev.ID, Priority: "Whenever"}, workflow.ErrInvalidPriority},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.tasks.CreateTask(context.Background(), tt.actor, tt.input)
			suite.ErrorIs(err, tt.want)
		})
	}
	suite.notifier.AssertNotCalled(suite.T(), "Send", mock.Anything, mock.Anything)
}

func (suite *TaskServiceTestSuite) TestCreateTask_SubtaskOnParentDueDate() {
	suite.allowNotifications()
	parent := suite.seedTask("parent", models.NewDate(2025, 3, 1))

	task, err := suite.tasks.CreateTask(context.Background(), suite.provider, CreateTaskInput{
		Name:         "child",
		DueDate:      models.NewDate(2025, 3, 1),
		AssignedToID: suite.dev.ID,
		ParentTaskID: &parent.ID,
	})
	suite.Require().NoError(err)
	suite.Equal(parent.ID, *task.ParentTaskID)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_StatusLifecycle() {
	task := suite.seedTask("work", models.NewDate(2025, 3, 1))
	ctx := context.Background()

	_, err := suite.tasks.UpdateTask(ctx, suite.provider, task.ID, UpdateTaskInput{Status: ptr(models.TaskStatusCompleted)}, authz.APISurface)
	suite.ErrorIs(err, workflow.ErrInvalidTransition)
	suite.Equal(models.TaskStatusPending, suite.reloadTask(task.ID).Status)

	updated, err := suite.tasks.UpdateTask(ctx, suite.provider, task.ID, UpdateTaskInput{Status: ptr(models.TaskStatusInProgress)}, authz.APISurface)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusInProgress, updated.Status)

	updated, err = suite.tasks.UpdateTask(ctx, suite.provider, task.ID, UpdateTaskInput{Status: ptr(models.TaskStatusCompleted)}, authz.APISurface)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusCompleted, updated.Status)

	_, err = suite.tasks.UpdateTask(ctx, suite.provider, task.ID, UpdateTaskInput{Status: ptr(models.TaskStatusInProgress)}, authz.APISurface)
	suite.ErrorIs(err, workflow.ErrInvalidTransition)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_ParentIncomplete() {
	parent := suite.seedTask("parent", models.NewDate(2025, 3, 1), withStatus(models.TaskStatusInProgress))
	child := suite.seedTask("child", models.NewDate(2025, 2, 1), withParent(parent.ID), withStatus(models.TaskStatusInProgress))
	ctx := context.Background()

	_, err := suite.tasks.UpdateTask(ctx, suite.provider, child.ID, UpdateTaskInput{Status: ptr(models.TaskStatusCompleted)}, authz.APISurface)
	suite.ErrorIs(err, workflow.ErrParentIncomplete)
	suite.Contains(err.Error(), "parent")

	_, err = suite.tasks.UpdateTask(ctx, suite.provider, parent.ID, UpdateTaskInput{Status: ptr(models.TaskStatusCompleted)}, authz.APISurface)
	suite.Require().NoError(err)

	updated, err := suite.tasks.UpdateTask(ctx, suite.provider, child.ID, UpdateTaskInput{Status: ptr(models.TaskStatusCompleted)}, authz.APISurface)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusCompleted, updated.Status)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_ParentRules() {
	root := suite.seedTask("root", models.NewDate(2025, 3, 1))
	child := suite.seedTask("child", models.NewDate(2025, 2, 1), withParent(root.ID))
	loose := suite.seedTask("loose", models.NewDate(2025, 4, 1))
	ctx := context.Background()

	_, err := suite.tasks.UpdateTask(ctx, suite.provider, child.ID, UpdateTaskInput{DueDate: ptr(models.NewDate(2025, 3, 2))}, authz.APISurface)
	suite.ErrorIs(err, workflow.ErrParentDueDateViolation)

	_, err = suite.tasks.UpdateTask(ctx, suite.provider, root.ID, UpdateTaskInput{ParentTaskID: &child.ID}, authz.APISurface)
	suite.ErrorIs(err, workflow.ErrParentCycle)

	_, err = suite.tasks.UpdateTask(ctx, suite.provider, loose.ID, UpdateTaskInput{ParentTaskID: &root.ID}, authz.APISurface)
	suite.ErrorIs(err, workflow.ErrParentDueDateViolation)

	_, err = suite.tasks.UpdateTask(ctx, suite.provider, root.ID, UpdateTaskInput{DueDate: ptr(models.NewDate(2025, 1, 31))}, authz.APISurface)
	suite.ErrorIs(err, workflow.ErrSubtaskDueDateViolation)
	suite.Equal("2025-03-01", suite.reloadTask(root.ID).DueDate.String())

	updated, err := suite.tasks.UpdateTask(ctx, suite.provider, child.ID, UpdateTaskInput{ClearParent: true, DueDate: ptr(models.NewDate(2025, 5, 1))}, authz.APISurface)
	suite.Require().NoError(err)
	suite.Nil(updated.ParentTaskID)
	suite.Equal("2025-05-01", updated.DueDate.String())
}

func (suite *TaskServiceTestSuite) TestUpdateTask_PermissiveFieldEdits() {
	task := suite.seedTask("old", models.NewDate(2025, 3, 1))

	updated, err := suite.tasks.UpdateTask(context.Background(), suite.provider, task.ID, UpdateTaskInput{
		Name:         ptr("new"),
		Description:  ptr("details"),
		Priority:     ptr(models.PriorityUrgent),
		DueDate:      ptr(models.NewDate(2025, 1, 1)),
		AssignedToID: &suite.otherDev.ID,
	}, authz.APISurface)
	suite.Require().NoError(err)
	suite.Equal("new", updated.Name)
	suite.Equal(models.PriorityUrgent, updated.Priority)
	suite.Equal(suite.otherDev.ID, updated.AssignedToID)
	suite.Equal("dev2", updated.AssignedTo.Username)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_DeveloperFieldRestrictions() {
	task := suite.seedTask("work", models.NewDate(2025, 3, 1))
	ctx := context.Background()

	_, err := suite.tasks.UpdateTask(ctx, suite.dev, task.ID, UpdateTaskInput{Status: ptr(models.TaskStatusInProgress)}, authz.APISurface)
	suite.ErrorIs(err, authz.ErrFieldNotEditable)
	suite.Equal(apierrors.KindAuthorization, apierrors.KindOf(err))

	_, err = suite.tasks.UpdateTask(ctx, suite.provider, task.ID, UpdateTaskInput{AssignedByID: &suite.dev.ID}, authz.APISurface)
	suite.ErrorIs(err, authz.ErrFieldNotEditable)

	updated, err := suite.tasks.UpdateTask(ctx, suite.dev, task.ID, UpdateTaskInput{Description: ptr("progress notes")}, authz.APISurface)
	suite.Require().NoError(err)
	suite.Equal("progress notes", updated.Description)

	_, err = suite.tasks.UpdateTask(ctx, suite.dev, task.ID, UpdateTaskInput{AssignedToID: &suite.otherDev.ID}, authz.APISurface)
	suite.ErrorIs(err, authz.ErrFieldNotEditable)

	updated, err = suite.tasks.UpdateTask(ctx, suite.dev, task.ID, UpdateTaskInput{Name: ptr("renamed"), Priority: ptr(models.PriorityUrgent)}, authz.APISurface)
	suite.Require().NoError(err)
	suite.Equal("renamed", updated.Name)

	_, err = suite.tasks.UpdateTask(ctx, suite.dev, task.ID, UpdateTaskInput{Name: ptr("again")}, authz.AdminSurface)
	suite.ErrorIs(err, authz.ErrFieldNotEditable)

	_, err = suite.tasks.UpdateTask(ctx, suite.member, task.ID, UpdateTaskInput{Description: ptr("nope")}, authz.APISurface)
	suite.ErrorIs(err, authz.ErrForbidden)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_AdminScope() {
	mine := suite.seedTask("mine", models.NewDate(2025, 3, 1))
	theirs := suite.seedTask("theirs", models.NewDate(2025, 3, 1), func(t *models.Task) { t.AssignedToID = suite.otherDev.ID })
	ctx := context.Background()

	_, err := suite.tasks.UpdateTask(ctx, suite.dev, theirs.ID, UpdateTaskInput{Description: ptr("x")}, authz.AdminSurface)
	suite.ErrorIs(err, ErrTaskNotFound)

	_, err = suite.tasks.UpdateTask(ctx, suite.dev, mine.ID, UpdateTaskInput{Description: ptr("x")}, authz.AdminSurface)
	suite.NoError(err)

	_, err = suite.tasks.UpdateTask(ctx, suite.provider, mine.ID, UpdateTaskInput{Status: ptr(models.TaskStatusInProgress)}, authz.AdminSurface)
	suite.ErrorIs(err, authz.ErrFieldNotEditable)

	_, err = suite.tasks.GetTask(ctx, suite.dev, theirs.ID, authz.AdminSurface)
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_NotFound() {
	_, err := suite.tasks.UpdateTask(context.Background(), suite.provider, 999, UpdateTaskInput{Name: ptr("x")}, authz.APISurface)
	suite.ErrorIs(err, ErrTaskNotFound)
	suite.Equal(apierrors.KindNotFound, apierrors.KindOf(err))
}

func (suite *TaskServiceTestSuite) TestListTasks_FiltersAndTree() {
	root := suite.seedTask("root", models.NewDate(2025, 3, 1))
	suite.seedTask("child", models.NewDate(2025, 2, 1), withParent(root.ID), func(t *models.Task) { t.AssignedToID = suite.otherDev.ID })
	suite.seedTask("later", models.NewDate(2025, 6, 1), func(t *models.Task) { t.Priority = models.PriorityUrgent })
	ctx := context.Background()

	nodes, total, err := suite.tasks.ListTasks(ctx, suite.member, ListTasksInput{Ordering: "due_date"})
	suite.Require().NoError(err)
	suite.Equal(int64(3), total)
	suite.Equal("child", nodes[0].Task.Name)
	suite.Equal("root", nodes[1].Task.Name)
	suite.Require().Len(nodes[1].Subtasks, 1)
	suite.Equal("child", nodes[1].Subtasks[0].Task.Name)

	// fixedNow is 2025-02-15
	overdue, _, err := suite.tasks.ListTasks(ctx, suite.member, ListTasksInput{Overdue: true})
	suite.Require().NoError(err)
	suite.Require().Len(overdue, 1)
	suite.Equal("child", overdue[0].Task.Name)

	urgent, _, err := suite.tasks.ListTasks(ctx, suite.member, ListTasksInput{Priority: ptr(models.PriorityUrgent)})
	suite.Require().NoError(err)
	suite.Require().Len(urgent, 1)
	suite.Equal("later", urgent[0].Task.Name)

	_, _, err = suite.tasks.ListTasks(ctx, suite.member, ListTasksInput{Ordering: "name"})
	suite.ErrorIs(err, ErrInvalidOrdering)

	_, _, err = suite.tasks.ListTasks(ctx, nil, ListTasksInput{})
	suite.ErrorIs(err, authz.ErrUnauthenticated)
}

func (suite *TaskServiceTestSuite) TestListTasks_AdminScopesDevelopers() {
	suite.seedTask("mine", models.NewDate(2025, 3, 1))
	suite.seedTask("theirs", models.NewDate(2025, 2, 1), func(t *models.Task) { t.AssignedToID = suite.otherDev.ID })
	ctx := context.Background()

	nodes, total, err := suite.tasks.ListTasks(ctx, suite.dev, ListTasksInput{Surface: authz.AdminSurface})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal("mine", nodes[0].Task.Name)

	nodes, total, err = suite.tasks.ListTasks(ctx, suite.provider, ListTasksInput{Surface: authz.AdminSurface})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	// admin listing defaults to due date order
	suite.Equal("theirs", nodes[0].Task.Name)
}

func (suite *TaskServiceTestSuite) TestGetTask_Tree() {
	root := suite.seedTask("root", models.NewDate(2025, 3, 1))
	child := suite.seedTask("child", models.NewDate(2025, 2, 1), withParent(root.ID))
	suite.seedTask("grandchild", models.NewDate(2025, 1, 1), withParent(child.ID))

	node, err := suite.tasks.GetTask(context.Background(), suite.dev, root.ID, authz.APISurface)
	suite.Require().NoError(err)
	suite.Equal("dev", node.Task.AssignedTo.Username)
	suite.Require().Len(node.Subtasks, 1)
	suite.Require().Len(node.Subtasks[0].Subtasks, 1)
	suite.Equal("grandchild", node.Subtasks[0].Subtasks[0].Task.Name)

	_, err = suite.tasks.GetTask(context.Background(), suite.dev, 999, authz.APISurface)
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestDeleteTask() {
	task := suite.seedTask("gone", models.NewDate(2025, 3, 1))
	ctx := context.Background()

	suite.ErrorIs(suite.tasks.DeleteTask(ctx, suite.member, task.ID), authz.ErrForbidden)
	suite.Require().NoError(suite.tasks.DeleteTask(ctx, suite.provider, task.ID))
	suite.ErrorIs(suite.tasks.DeleteTask(ctx, suite.provider, task.ID), ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestSuggestSubtasks() {
	parent := suite.seedTask("launch", models.NewDate(2025, 3, 1))
	ctx := context.Background()

	_, err := suite.tasks.SuggestSubtasks(ctx, suite.provider, parent.ID)
	suite.ErrorIs(err, ErrAIServiceNotConfigured)

	suite.tasks.generator = &fakeGenerator{tasks: []GeneratedTask{
		{Name: "draft plan", DueDate: ptr(models.NewDate(2025, 2, 20))},
		{Name: "too late", DueDate: ptr(models.NewDate(2025, 4, 1))},
		{Name: "in the past", DueDate: ptr(models.NewDate(2025, 1, 1))},
		{Name: "undated"},
		{Name: "   "},
	}}

	suggestions, err := suite.tasks.SuggestSubtasks(ctx, suite.provider, parent.ID)
	suite.Require().NoError(err)
	suite.Require().Len(suggestions, 4)
	suite.Equal("2025-02-20", suggestions[0].DueDate.String())
	suite.Equal("2025-03-01", suggestions[1].DueDate.String())
	suite.Equal("2025-02-15", suggestions[2].DueDate.String())
	suite.Equal("2025-03-01", suggestions[3].DueDate.String())
	suite.Equal(parent.ID, suggestions[0].ParentTaskID)

	_, err = suite.tasks.SuggestSubtasks(ctx, suite.dev, parent.ID)
	suite.ErrorIs(err, authz.ErrForbidden)

	suite.tasks.generator = &fakeGenerator{}
	_, err = suite.tasks.SuggestSubtasks(ctx, suite.provider, parent.ID)
	suite.ErrorIs(err, ErrAINoTasksGenerated)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
