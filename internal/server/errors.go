package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/autojob/internal/pipeline"
)

// ErrInvalidOperatorKey indicates the supplied operator key did not match
type ErrInvalidOperatorKey struct{}

func (e *ErrInvalidOperatorKey) Error() string {
	return "invalid operator key"
}

// ErrBulkAlreadyRunning indicates a bulk run is already in progress
type ErrBulkAlreadyRunning struct{}

func (e *ErrBulkAlreadyRunning) Error() string {
	return "a bulk run is already in progress"
}

// ErrNoBulkRun indicates there is no bulk run to cancel
type ErrNoBulkRun struct{}

func (e *ErrNoBulkRun) Error() string {
	return "no bulk run in progress"
}

// ErrStrategyNotFound indicates no strategy plan has been adopted
type ErrStrategyNotFound struct{}

func (e *ErrStrategyNotFound) Error() string {
	return "no strategy plan adopted"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	if errors.Is(err, pipeline.ErrLocked) {
		return http.StatusLocked
	}
	var riskDenied *pipeline.RiskDeniedError
	if errors.As(err, &riskDenied) {
		return http.StatusForbidden
	}
	if errors.Is(err, pipeline.ErrAlreadyApplied) {
		return http.StatusConflict
	}
	if errors.Is(err, pipeline.ErrDailyQuotaReached) {
		return http.StatusTooManyRequests
	}
	switch err.(type) {
	case *ErrInvalidOperatorKey:
		return http.StatusUnauthorized
	case *ErrBulkAlreadyRunning:
		return http.StatusConflict
	case *ErrNoBulkRun, *ErrStrategyNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
