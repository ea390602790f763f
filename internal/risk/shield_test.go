package risk

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/autojob/internal/types"
)

// newTestShield returns a shield with a deterministic roll sequence and no
// real sleeping. rolls are consumed one per Check.
func newTestShield(rolls ...float64) *Shield {
	s := NewShield()
	s.sleep = func(context.Context, time.Duration) error { return nil }
	s.rng = rand.New(&fixedSource{})
	s.rollFn = func() float64 {
		if len(rolls) == 0 {
			return 0.5
		}
		r := rolls[0]
		rolls = rolls[1:]
		return r
	}
	return s
}

type fixedSource struct{}

func (fixedSource) Int63() int64 { return 1 }
func (fixedSource) Seed(int64)   {}

func TestCheck_AllowedBelowThreshold(t *testing.T) {
	s := newTestShield(0.5)

	allowed, state, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, types.RiskLow, state.Level)
	assert.False(t, state.Locked)
	assert.Equal(t, 0, state.CaptchaCount)
}

func TestCheck_DeniedAboveThreshold(t *testing.T) {
	s := newTestShield(0.97)

	allowed, state, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, types.RiskHigh, state.Level)
	assert.Equal(t, 1, state.CaptchaCount)
	assert.False(t, state.Locked, "a single denial must not engage the lock")
}

func TestCheck_ExactThresholdAllowed(t *testing.T) {
	s := newTestShield(0.96)

	allowed, _, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheck_ThreeDenialsEscalateToCriticalAndLock(t *testing.T) {
	s := newTestShield(0.99, 0.99, 0.99)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, state, err := s.Check(ctx)
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.False(t, state.Locked)
	}

	allowed, state, err := s.Check(ctx)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, types.RiskCritical, state.Level)
	assert.True(t, state.Locked)
}

func TestCheck_AllowResetsDenialStreak(t *testing.T) {
	s := newTestShield(0.99, 0.99, 0.5, 0.99)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		s.Check(ctx)
	}

	state := s.Snapshot()
	assert.False(t, state.Locked, "streak broken by an allow must not lock")
	assert.Equal(t, 3, state.CaptchaCount)
}

func TestCheck_DenialRateConverges(t *testing.T) {
	s := NewShield()
	s.sleep = func(context.Context, time.Duration) error { return nil }
	s.rng = rand.New(rand.NewSource(7))
	s.rollFn = s.rng.Float64
	ctx := context.Background()

	const draws = 20000
	denied := 0
	for i := 0; i < draws; i++ {
		allowed, state, err := s.Check(ctx)
		require.NoError(t, err)
		if !allowed {
			denied++
		}
		// A denial streak can engage the lock; clear it so every draw
		// exercises the roll rather than the lock path.
		if state.Locked {
			s.Unlock()
		}
	}

	rate := float64(denied) / draws
	assert.InDelta(t, 1-denialThreshold, rate, 0.01,
		"denial rate should converge to the roll threshold")
}

func TestCheck_LockedDeniesImmediately(t *testing.T) {
	s := newTestShield(0.1)
	s.sleep = func(context.Context, time.Duration) error {
		t.Fatal("locked shield must not sleep")
		return nil
	}
	s.Lock()

	allowed, state, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.True(t, state.Locked)
}

func TestCheck_ContextCancelled(t *testing.T) {
	s := newTestShield(0.5)
	s.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	allowed, _, err := s.Check(ctx)
	assert.False(t, allowed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.Snapshot().CaptchaCount, "aborted check must not mutate state")
}

func TestCheck_ReputationDegradesAndRecovers(t *testing.T) {
	s := newTestShield(0.99, 0.5)
	ctx := context.Background()

	s.Check(ctx)
	assert.Equal(t, 100-reputationPenalty, s.Snapshot().IPReputation)

	s.Check(ctx)
	assert.Equal(t, 100-reputationPenalty+reputationRecovery, s.Snapshot().IPReputation)
}

func TestCheck_LevelDecaysAfterCleanChecks(t *testing.T) {
	s := newTestShield(0.99, 0.5, 0.5)
	ctx := context.Background()

	s.Check(ctx)
	assert.Equal(t, types.RiskHigh, s.Snapshot().Level)

	s.Check(ctx)
	assert.Equal(t, types.RiskMedium, s.Snapshot().Level)

	s.Check(ctx)
	assert.Equal(t, types.RiskLow, s.Snapshot().Level)
}

func TestUnlock_KeepsLevel(t *testing.T) {
	s := newTestShield(0.99, 0.99, 0.99)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		s.Check(ctx)
	}
	require.True(t, s.Snapshot().Locked)

	state := s.Unlock()
	assert.False(t, state.Locked)
	assert.Equal(t, types.RiskCritical, state.Level)
}

func TestOverride_UnlocksAndReducesLevel(t *testing.T) {
	s := newTestShield(0.99, 0.99, 0.99)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		s.Check(ctx)
	}

	state := s.Override()
	assert.False(t, state.Locked)
	assert.Equal(t, types.RiskMedium, state.Level)
}

func TestNoteDOMChange(t *testing.T) {
	s := NewShield()

	state := s.NoteDOMChange()
	assert.True(t, state.DOMChangesDetected)
	assert.Equal(t, types.RiskMedium, state.Level)
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := NewShield()

	snap := s.Snapshot()
	snap.Locked = true

	assert.False(t, s.Snapshot().Locked)
}
