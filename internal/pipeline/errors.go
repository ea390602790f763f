package pipeline

import (
	"errors"
	"fmt"

	"github.com/jonathan/autojob/internal/types"
)

// ErrLocked is returned when the risk lock rejects a new run or batch.
var ErrLocked = errors.New("risk shield is locked; resume or override to continue")

// ErrAlreadyApplied is returned when the ledger already holds a completed
// application for the job URL.
var ErrAlreadyApplied = errors.New("already applied to this job")

// ErrDailyQuotaReached is returned when the active plan's daily quota has
// been exhausted.
var ErrDailyQuotaReached = errors.New("daily application quota reached")

// RiskDeniedError is returned when the risk shield denies an apply action.
type RiskDeniedError struct {
	State types.RiskState
}

func (e *RiskDeniedError) Error() string {
	return fmt.Sprintf("risk threshold exceeded (level %s)", e.State.Level)
}

// DispatchError is returned when the apply collaborator reports failure.
type DispatchError struct {
	Message string
}

func (e *DispatchError) Error() string {
	return "dispatch failed: " + e.Message
}
