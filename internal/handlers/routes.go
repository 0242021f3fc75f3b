package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskmanager-api/internal/authz"
	"github.com/yukikurage/taskmanager-api/internal/middleware"
	"github.com/yukikurage/taskmanager-api/internal/services"
)

// Services bundles what the HTTP layer depends on
type Services struct {
	Auth       *services.AuthService
	Tokens     *services.TokenService
	Tasks      *services.TaskService
	Extensions *services.ExtensionService
	Gate       *authz.Gate
}

// RegisterRoutes mounts every endpoint on r. Session middleware must already
// be installed.
func RegisterRoutes(r gin.IRouter, svc Services) {
	authHandler := NewAuthHandler(svc.Auth, svc.Tokens)
	taskHandler := NewTaskHandler(svc.Tasks)
	adminTaskHandler := NewAdminTaskHandler(svc.Tasks)
	extensionHandler := NewExtensionHandler(svc.Extensions)

	requireActor := []gin.HandlerFunc{middleware.RequireAuth(svc.Tokens), middleware.LoadActor(svc.Auth)}

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Management API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(svc.Tokens), authHandler.GetCurrentUser)
		}

		tasks := api.Group("/tasks", requireActor...)
		tasks.Use(middleware.RequirePermission(svc.Gate, authz.TaskView))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/suggest-subtasks", taskHandler.SuggestSubtasks)
		}

		requests := api.Group("/deadline-extension-requests", requireActor...)
		requests.Use(middleware.RequirePermission(svc.Gate, authz.ExtensionRequestView))
		{
			requests.GET("", extensionHandler.ListRequests)
			requests.POST("", extensionHandler.CreateRequest)
		}

		approvals := api.Group("/deadline-extension-approvals", requireActor...)
		approvals.Use(middleware.RequirePermission(svc.Gate, authz.ExtensionApprovalView))
		{
			approvals.GET("", extensionHandler.ListApprovals)
			approvals.GET("/:id", extensionHandler.GetApproval)
			approvals.PATCH("/:id", extensionHandler.ResolveRequest)
		}

		admin := api.Group("/admin/tasks", requireActor...)
		admin.Use(middleware.RequirePermission(svc.Gate, authz.TaskView))
		{
			admin.GET("", adminTaskHandler.ListTasks)
			admin.GET("/:id", adminTaskHandler.GetTask)
			admin.PATCH("/:id", adminTaskHandler.UpdateTask)
		}
	}
}
