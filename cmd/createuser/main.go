// Command createuser creates an account with an explicit role. Signup over
// the API only ever creates Developers.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/yukikurage/taskmanager-api/internal/config"
	"github.com/yukikurage/taskmanager-api/internal/database"
	"github.com/yukikurage/taskmanager-api/internal/logger"
	"github.com/yukikurage/taskmanager-api/internal/models"
	"github.com/yukikurage/taskmanager-api/internal/repository"
	"github.com/yukikurage/taskmanager-api/internal/services"
	"go.uber.org/zap"
)

func main() {
	var (
		username = pflag.StringP("username", "u", "", "username (required)")
		email    = pflag.StringP("email", "e", "", "email address")
		password = pflag.StringP("password", "p", "", "password (required)")
		role     = pflag.StringP("role", "r", string(models.RoleTaskProvider), "developer, task_provider or member")
	)
	pflag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: createuser --username NAME --password SECRET [--email ADDR] [--role ROLE]")
		pflag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.LogDevelopment); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := database.Connect(cfg); err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	auth := services.NewAuthService(repository.NewUserRepository(database.GetDB()))
	user, err := auth.CreateUser(services.CreateUserInput{
		Username: *username,
		Email:    *email,
		Password: *password,
		Role:     models.Role(*role),
	})
	if err != nil {
		logger.Fatal("Failed to create user", err, zap.String("username", *username))
	}

	logger.Info("User created",
		zap.Uint64("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))
}
