package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	apierrors "github.com/yukikurage/taskmanager-api/internal/errors"
	"github.com/yukikurage/taskmanager-api/internal/models"
	"github.com/yukikurage/taskmanager-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.User{})
	suite.Require().NoError(err)

	suite.service = NewAuthService(repository.NewUserRepository(suite.db))
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *AuthServiceTestSuite) TestSignup_CreatesDeveloper() {
	user, err := suite.service.Signup(SignupInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})

	suite.Require().NoError(err)
	suite.NotZero(user.ID)
	suite.Equal(models.RoleDeveloper, user.Role)
	suite.NotEqual("password123", user.PasswordHash)
}

func (suite *AuthServiceTestSuite) TestSignup_DuplicateUsername() {
	input := SignupInput{Username: "alice", Email: "alice@example.com", Password: "password123"}
	_, err := suite.service.Signup(input)
	suite.Require().NoError(err)

	_, err = suite.service.Signup(input)
	suite.ErrorIs(err, ErrUsernameTaken)
	suite.Equal(apierrors.KindConflict, apierrors.KindOf(err))
}

func (suite *AuthServiceTestSuite) TestCreateUser_Validation() {
	tests := []struct {
		name  string
		input CreateUserInput
		want  error
	}{
		{"blank username", CreateUserInput{Username: "  ", Password: "password123", Role: models.RoleMember}, ErrUsernameRequired},
		{"bad email", CreateUserInput{Username: "bob", Email: "bob", Password: "password123", Role: models.RoleMember}, ErrInvalidEmail},
		{"short password", CreateUserInput{Username: "bob", Password: "short", Role: models.RoleMember}, ErrPasswordTooShort},
		{"unknown role", CreateUserInput{Username: "bob", Password: "password123", Role: "admin"}, ErrInvalidRole},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.service.CreateUser(tt.input)
			suite.ErrorIs(err, tt.want)
		})
	}
}

func (suite *AuthServiceTestSuite) TestCreateUser_TaskProvider() {
	user, err := suite.service.CreateUser(CreateUserInput{
		Username: "boss",
		Email:    "boss@example.com",
		Password: "password123",
		Role:     models.RoleTaskProvider,
	})

	suite.Require().NoError(err)
	suite.Equal(models.RoleTaskProvider, user.Role)
}

func (suite *AuthServiceTestSuite) TestLogin() {
	created, err := suite.service.Signup(SignupInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
	suite.Require().NoError(err)

	user, err := suite.service.Login(LoginInput{Username: "alice", Password: "password123"})
	suite.Require().NoError(err)
	suite.Equal(created.ID, user.ID)

	_, err = suite.service.Login(LoginInput{Username: "alice", Password: "wrongpassword"})
	suite.ErrorIs(err, ErrInvalidCredentials)

	_, err = suite.service.Login(LoginInput{Username: "nobody", Password: "password123"})
	suite.ErrorIs(err, ErrInvalidCredentials)
	suite.Equal(apierrors.KindAuthentication, apierrors.KindOf(err))
}

func (suite *AuthServiceTestSuite) TestGetUser() {
	created, err := suite.service.Signup(SignupInput{Username: "alice", Password: "password123"})
	suite.Require().NoError(err)

	user, err := suite.service.GetUser(created.ID)
	suite.Require().NoError(err)
	suite.Equal("alice", user.Username)

	_, err = suite.service.GetUser(999)
	suite.ErrorIs(err, ErrUserNotFound)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
