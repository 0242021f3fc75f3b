package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskmanager-api/internal/authz"
	"github.com/yukikurage/taskmanager-api/internal/models"
	"github.com/yukikurage/taskmanager-api/internal/notify"
	"github.com/yukikurage/taskmanager-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, msg notify.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func sentTo(addr string) any {
	return mock.MatchedBy(func(msg notify.Message) bool {
		return len(msg.To) == 1 && msg.To[0] == addr
	})
}

type fakeGenerator struct {
	tasks []GeneratedTask
	err   error
}

func (f *fakeGenerator) GenerateSubtasks(_ context.Context, _ *models.Task) ([]GeneratedTask, error) {
	return f.tasks, f.err
}

// ServiceTestSuite wires the services against in-memory SQLite
type ServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	store    repository.Store
	gate     *authz.Gate
	notifier *mockNotifier

	tasks      *TaskService
	extensions *ExtensionService

	provider      *authz.Actor
	otherProvider *authz.Actor
	dev           *authz.Actor
	otherDev      *authz.Actor
	member        *authz.Actor
}

var fixedNow = time.Date(2025, 2, 15, 9, 30, 0, 0, time.UTC)

func (suite *ServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	err = suite.db.AutoMigrate(&models.User{}, &models.Task{}, &models.ExtensionRequest{})
	suite.Require().NoError(err)

	suite.store = repository.NewStore(suite.db)
	suite.gate = authz.NewGate(authz.DefaultPolicy())
	suite.notifier = &mockNotifier{}

	suite.tasks = NewTaskService(suite.store, suite.gate, suite.notifier, nil)
	suite.tasks.now = func() time.Time { return fixedNow }
	suite.extensions = NewExtensionService(suite.store, suite.gate, suite.notifier, "ops@example.com")
	suite.extensions.now = func() time.Time { return fixedNow }

	suite.provider = suite.createActor("provider", models.RoleTaskProvider)
	suite.otherProvider = suite.createActor("provider2", models.RoleTaskProvider)
	suite.dev = suite.createActor("dev", models.RoleDeveloper)
	suite.otherDev = suite.createActor("dev2", models.RoleDeveloper)
	suite.member = suite.createActor("guest", models.RoleMember)
}

func (suite *ServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ServiceTestSuite) createActor(username string, role models.Role) *authz.Actor {
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	suite.Require().NoError(suite.store.Users().Create(user))
	return authz.ActorFromUser(user)
}

// seedTask inserts a task directly, bypassing the workflow rules.
func (suite *ServiceTestSuite) seedTask(name string, due models.Date, opts ...func(*models.Task)) *models.Task {
	task := &models.Task{
		Name:         name,
		Status:       models.TaskStatusPending,
		Priority:     models.PriorityWhenFree,
		DueDate:      due,
		AssignedToID: suite.dev.ID,
		AssignedByID: suite.provider.ID,
	}
	for _, opt := range opts {
		opt(task)
	}
	suite.Require().NoError(suite.store.Tasks().Create(task))
	return task
}

func (suite *ServiceTestSuite) reloadTask(id uint64) *models.Task {
	task, err := suite.store.Tasks().FindByID(id)
	suite.Require().NoError(err)
	return task
}

func (suite *ServiceTestSuite) allowNotifications() {
	suite.notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
}

func withStatus(s models.TaskStatus) func(*models.Task) {
	return func(t *models.Task) { t.Status = s }
}

func withParent(id uint64) func(*models.Task) {
	return func(t *models.Task) { t.ParentTaskID = &id }
}

func ptr[T any](v T) *T {
	return &v
}
