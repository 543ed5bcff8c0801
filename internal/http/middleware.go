package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"lector/backend/internal/logger"
)

// OwnerHeader carries the caller's identity. Authentication is delegated to
// the reverse proxy in front of the service; this layer only requires the
// resolved identity to be present.
const OwnerHeader = "X-Lector-Owner"

const ownerKey = "owner"

// RequestLoggerMiddleware logs HTTP requests using logger.
func RequestLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			latency := time.Since(start)

			args := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"status_code", res.Status,
				"duration_ms", latency.Milliseconds(),
				"remote_ip", c.RealIP(),
			}
			switch {
			case res.Status >= 500:
				logger.Error("http request", args...)
			case res.Status >= 400:
				logger.Warn("http request", args...)
			default:
				logger.Debug("http request", args...)
			}

			return nil
		}
	}
}

// OwnerMiddleware extracts the owner identity from the request header and
// stores it in the echo context. Requests without an identity are rejected.
func OwnerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			owner := strings.TrimSpace(c.Request().Header.Get(OwnerHeader))
			if owner == "" {
				logger.Warn("owner missing",
					"method", c.Request().Method,
					"path", c.Request().URL.Path,
					"remote_ip", c.RealIP(),
				)
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "missing owner identity",
				})
			}

			c.Set(ownerKey, owner)
			return next(c)
		}
	}
}
