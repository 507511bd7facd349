package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SetupRouter creates the echo router with all routes and middleware.
func SetupRouter(handler *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(RequestLogger())

	e.GET("/health", handler.HandleHealth)

	// Tree
	e.GET("/api/tree", handler.HandleTree)

	// Directories
	e.GET("/api/dirs", handler.HandleStat)
	e.POST("/api/dirs", handler.HandleCreate)
	e.DELETE("/api/dirs", handler.HandleDelete)

	e.POST("/api/move", handler.HandleMove)

	return e
}
