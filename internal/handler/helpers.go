package handler

import (
	"errors"
	"net/http"

	"pr-velocity-service/internal/domain"
)

func toErrorResponse(code, message string) domain.ErrorResponse {
	return domain.ErrorResponse{
		Error: domain.HTTPError{Code: code, Message: message},
	}
}

func getHTTPStatusCode(err error) int {
	switch {
	// Conflict errors (409)
	case errors.Is(err, domain.ErrRepoAlreadyExists):
		return http.StatusConflict

	// Not Found errors (404)
	case errors.Is(err, domain.ErrRepoNotFound),
		errors.Is(err, domain.ErrPRNotFound),
		errors.Is(err, domain.ErrBucketNotFound):
		return http.StatusNotFound

	// Bad Request errors (400) - валидация входа
	case errors.Is(err, domain.ErrInvalidRepoName),
		errors.Is(err, domain.ErrInvalidPRNumber),
		errors.Is(err, domain.ErrMilestoneOrder):
		return http.StatusBadRequest

	// Data integrity (500): порча данных, наружу только для алерта
	case errors.Is(err, domain.ErrBucketRepoMismatch),
		errors.Is(err, domain.ErrBucketOverlap),
		errors.Is(err, domain.ErrNegativeDuration):
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}
