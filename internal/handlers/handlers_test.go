package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskmanager-api/internal/authz"
	"github.com/yukikurage/taskmanager-api/internal/constants"
	"github.com/yukikurage/taskmanager-api/internal/database"
	"github.com/yukikurage/taskmanager-api/internal/models"
	"github.com/yukikurage/taskmanager-api/internal/notify"
	"github.com/yukikurage/taskmanager-api/internal/repository"
	"github.com/yukikurage/taskmanager-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// HandlerTestSuite serves the full router against in-memory SQLite
type HandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	store  repository.Store
	auth   *services.AuthService
	tokens *services.TokenService
	router *gin.Engine
}

// SetupTest runs before each test
func (suite *HandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	// Set the test DB as the default database and run migrations
	database.SetDB(suite.db)
	suite.Require().NoError(database.Migrate())

	suite.store = repository.NewStore(suite.db)
	gate := authz.NewGate(nil)
	notifier := notify.LogNotifier{}

	suite.auth = services.NewAuthService(suite.store.Users())
	suite.tokens = services.NewTokenService("test-secret", time.Hour)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	suite.router = gin.New()
	suite.router.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(suite.router, Services{
		Auth:       suite.auth,
		Tokens:     suite.tokens,
		Tasks:      services.NewTaskService(suite.store, gate, notifier, nil),
		Extensions: services.NewExtensionService(suite.store, gate, notifier, "ops@example.com"),
		Gate:       gate,
	})
}

// TearDownTest runs after each test
func (suite *HandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// createTestUser creates a user with role and returns an access token for it
func (suite *HandlerTestSuite) createTestUser(username string, role models.Role) (*models.User, string) {
	user, err := suite.auth.CreateUser(services.CreateUserInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "supersecret",
		Role:     role,
	})
	suite.Require().NoError(err)

	token, err := suite.tokens.Issue(user)
	suite.Require().NoError(err)
	return user, token
}

func (suite *HandlerTestSuite) createTestTask(name string, due models.Date, assignedTo, assignedBy uint64, parentID *uint64) *models.Task {
	task := &models.Task{
		Name:         name,
		Status:       models.TaskStatusPending,
		Priority:     models.PriorityWhenFree,
		DueDate:      due,
		ParentTaskID: parentID,
		AssignedToID: assignedTo,
		AssignedByID: assignedBy,
	}
	suite.Require().NoError(suite.store.Tasks().Create(task))
	return task
}

// request performs an HTTP request against the router. A non-nil body is
// encoded as JSON.
func (suite *HandlerTestSuite) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) decode(w *httptest.ResponseRecorder, v any) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// errorCode extracts the code of an error response
func (suite *HandlerTestSuite) errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	suite.decode(w, &body)
	return body.Code
}

func (suite *HandlerTestSuite) assertStatus(w *httptest.ResponseRecorder, want int) {
	suite.Require().Equal(want, w.Code, w.Body.String())
}
