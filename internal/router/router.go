package router

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"spendly/internal/config"
	"spendly/internal/handler"
	authmw "spendly/internal/middleware"
	"spendly/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	gate *authmw.Gate,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	expenseHandler *handler.ExpenseHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1")

	// Public auth routes, rate limited per client IP to slow down
	// credential stuffing and token guessing.
	authGroup := api.Group("/auth", middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(5),
			Burst:     10,
			ExpiresIn: 3 * time.Minute,
		}),
	}))
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/forgot-password", authHandler.ForgotPassword)
	authGroup.PATCH("/reset-password/:token", authHandler.ResetPassword)
	authGroup.GET("/email-token-verify/:token", authHandler.VerifyEmail)

	// Secured routes: bearer token verification, revocation and stale-session
	// checks, then user resolution into the request context.
	secured := api.Group("", gate.SessionParser(), gate.Authenticate)

	secured.POST("/auth/logout", authHandler.Logout)
	secured.POST("/auth/email-token", authHandler.SendVerificationEmail)

	secured.GET("/users/me", userHandler.Me)

	secured.POST("/expenses", expenseHandler.Create)
	secured.GET("/expenses", expenseHandler.List)
	secured.GET("/expenses/summary", expenseHandler.Summary)
	secured.GET("/expenses/:id", expenseHandler.Get)
	secured.PATCH("/expenses/:id", expenseHandler.Update)
	secured.DELETE("/expenses/:id", expenseHandler.Delete)

	// Admin-only routes
	admin := secured.Group("/admin", gate.RequireRoles(model.RoleAdmin))
	admin.GET("/users", userHandler.List)
	admin.DELETE("/expenses/:id", expenseHandler.DeleteAny)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
