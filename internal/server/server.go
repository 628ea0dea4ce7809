package server

import (
	"database/sql"
	"net/http"

	"change-audit/internal/domain"
	"change-audit/internal/service"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

type Server struct {
	interceptor service.InterceptorInterface
	db          *sql.DB
}

func NewServer(interceptor service.InterceptorInterface, db *sql.DB) *Server {
	return &Server{
		interceptor: interceptor,
		db:          db,
	}
}

func (s *Server) HealthCheck(c echo.Context) error {
	if err := s.db.PingContext(c.Request().Context()); err != nil {
		log.WithField("error", err).Error("Health check failed: database is down")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  "database connection error",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// InterceptMutation runs the audit pipeline for one mutation delivered by the host.
func (s *Server) InterceptMutation(c echo.Context) error {
	var event domain.MutationEvent
	if err := c.Bind(&event); err != nil {
		log.WithError(err).Warn("Failed to decode mutation event")
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	ctx := c.Request().Context()
	res, err := s.interceptor.Intercept(ctx, &event)
	if err != nil {
		statusCode, errorMsg := handleInterceptError(err)
		return c.JSON(statusCode, map[string]interface{}{
			"error":    errorMsg,
			"detected": res.Detected,
			"written":  res.Written,
			"failed":   res.Failed,
		})
	}

	return c.JSON(http.StatusOK, res)
}
