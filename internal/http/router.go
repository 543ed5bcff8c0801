package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"lector/backend/internal/handler"
)

func NewRouter(
	feedHandler *handler.FeedHandler,
	folderHandler *handler.FolderHandler,
	itemHandler *handler.ItemHandler,
	refreshHandler *handler.RefreshHandler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(RequestLoggerMiddleware())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api", OwnerMiddleware())
	feedHandler.RegisterRoutes(api)
	folderHandler.RegisterRoutes(api)
	itemHandler.RegisterRoutes(api)
	refreshHandler.RegisterRoutes(api)

	return e
}
