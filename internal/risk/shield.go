// Package risk implements the detection-risk circuit breaker that gates all
// automated application activity.
package risk

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/jonathan/autojob/internal/types"
)

const (
	// denialThreshold is the simulated detection roll above which a check
	// is denied.
	denialThreshold = 0.96

	// criticalDenialStreak is the number of consecutive denials that
	// escalates the shield to CRITICAL and engages the lock.
	criticalDenialStreak = 3

	// checkDelayMin and checkDelayMax bound the randomized pacing delay
	// applied before every check.
	checkDelayMin = 1000 * time.Millisecond
	checkDelayMax = 2000 * time.Millisecond

	reputationPenalty  = 12
	reputationRecovery = 2
)

// Shield is the risk circuit breaker. Every pipeline invocation must pass
// Check before the APPLYING phase; a locked shield denies everything until
// an operator unlocks or overrides it.
type Shield struct {
	mu     sync.Mutex
	state  types.RiskState
	streak int

	rng    *rand.Rand
	sleep  func(context.Context, time.Duration) error
	rollFn func() float64
}

// NewShield creates a Shield in the LOW state with full IP reputation.
func NewShield() *Shield {
	return &Shield{
		state: types.RiskState{
			Level:        types.RiskLow,
			IPReputation: 100,
		},
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep: sleepCtx,
	}
}

// roll returns the detection roll. Callers must hold s.mu.
func (s *Shield) roll() float64 {
	if s.rollFn != nil {
		return s.rollFn()
	}
	return s.rng.Float64()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Check performs one risk assessment. It applies a randomized pacing delay,
// rolls for detection, and returns whether automated activity may proceed
// along with a snapshot of the resulting state.
//
// A locked shield denies immediately without delay. A context error aborts
// the check and counts as a denial without mutating risk state.
func (s *Shield) Check(ctx context.Context) (bool, types.RiskState, error) {
	s.mu.Lock()
	if s.state.Locked {
		state := s.state
		s.mu.Unlock()
		return false, state, nil
	}
	delay := checkDelayMin + time.Duration(s.rng.Int63n(int64(checkDelayMax-checkDelayMin)))
	roll := s.roll()
	s.mu.Unlock()

	if err := s.sleep(ctx, delay); err != nil {
		return false, s.Snapshot(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The lock may have been engaged while we slept.
	if s.state.Locked {
		return false, s.state, nil
	}

	if roll > denialThreshold {
		s.streak++
		s.state.CaptchaCount++
		s.state.Level = types.RiskHigh
		s.state.IPReputation = max(0, s.state.IPReputation-reputationPenalty)
		if s.streak >= criticalDenialStreak {
			s.state.Level = types.RiskCritical
			s.state.Locked = true
		}
		return false, s.state, nil
	}

	s.streak = 0
	s.state.IPReputation = min(100, s.state.IPReputation+reputationRecovery)
	s.state.Level = decay(s.state.Level)
	return true, s.state, nil
}

// decay steps the level one notch toward LOW after a clean check.
func decay(level types.RiskLevel) types.RiskLevel {
	switch level {
	case types.RiskCritical:
		return types.RiskHigh
	case types.RiskHigh:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

// Lock engages the emergency lock. All checks deny until Unlock or Override.
func (s *Shield) Lock() types.RiskState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Locked = true
	return s.state
}

// Unlock disengages the lock without altering the assessed level.
func (s *Shield) Unlock() types.RiskState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Locked = false
	s.streak = 0
	return s.state
}

// Override is the operator escape hatch: it disengages the lock and forces
// the level down to MEDIUM so activity can resume under caution.
func (s *Shield) Override() types.RiskState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Locked = false
	s.streak = 0
	if s.state.Level == types.RiskHigh || s.state.Level == types.RiskCritical {
		s.state.Level = types.RiskMedium
	}
	return s.state
}

// NoteDOMChange records that a platform changed its page structure, which
// raises the level to at least MEDIUM.
func (s *Shield) NoteDOMChange() types.RiskState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.DOMChangesDetected = true
	if s.state.Level == types.RiskLow {
		s.state.Level = types.RiskMedium
	}
	return s.state
}

// Snapshot returns a copy of the current state.
func (s *Shield) Snapshot() types.RiskState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
