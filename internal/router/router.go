package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"taskhub/internal/auth"
	"taskhub/internal/handler"
	"taskhub/internal/repository"
	"taskhub/internal/validation"
)

// Register wires routes and middleware. Every /tasks route sits behind the
// credential verifier and identity binder; auth routes are public.
func Register(
	e *echo.Echo,
	jwtService *auth.JWTService,
	userRepo repository.UserRepository,
	authHandler *handler.AuthHandler,
	taskHandler *handler.TaskHandler,
	statsHandler *handler.StatsHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = validation.New()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authGroup := e.Group("/auth")
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/login", authHandler.Login)

	tasks := e.Group("/tasks",
		auth.VerifyCredential(jwtService),
		auth.BindIdentity(userRepo),
	)

	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create)
	tasks.PATCH("/:id", taskHandler.Patch)
	tasks.DELETE("/:id", taskHandler.Delete)

	tasks.GET("/task-stats", statsHandler.CompletionSummary)
	tasks.GET("/pending-tasks", statsHandler.PendingAggregate)
	tasks.GET("/tasks-by-priority", statsHandler.PriorityBreakdown)
}
