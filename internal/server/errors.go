package server

import (
	"errors"
	"net/http"

	"change-audit/internal/domain"
)

func handleInterceptError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInvocation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrConfigurationLookup):
		return http.StatusBadGateway, "audit configuration unavailable"
	case errors.Is(err, domain.ErrWriteFailure):
		return http.StatusInternalServerError, "audit trail incomplete"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
