package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-seat-reservation/internal/handler"
    "github.com/iliyamo/bus-seat-reservation/internal/middleware"
    "github.com/iliyamo/bus-seat-reservation/internal/utils"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterTasks registers the task and process endpoints under /v1.  Every
// route requires a bearer token carrying the OPERATOR or CUSTOMER role.
// limiter runs after authentication so buckets can be keyed by caller; pass
// nil to disable rate limiting.
func RegisterTasks(e *echo.Echo, t *handler.TaskHandler, p *handler.ProcessHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
    g := e.Group("/v1")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole(utils.RoleOperator, utils.RoleCustomer))
    if limiter != nil {
        g.Use(limiter)
    }

    g.GET("/tasks", t.List)
    g.GET("/tasks/:id", t.Get)
    g.POST("/tasks/:id/complete", t.Complete)
    g.POST("/processes", p.Start)
}
