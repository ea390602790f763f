package strategy

import (
	"slices"
	"sync"
	"time"

	"github.com/jonathan/autojob/internal/types"
)

// Controller owns the active strategy plan. All mutation goes through it so
// concurrent surfaces (CLI, HTTP, bulk runs) see a consistent plan.
type Controller struct {
	mu   sync.Mutex
	plan *types.StrategyPlan
	now  func() time.Time
}

// NewController creates a Controller with no plan adopted.
func NewController() *Controller {
	return &Controller{now: time.Now}
}

// Adopt installs a plan, replacing any existing one. The controller owns
// lifecycle metadata: adoption always activates the plan and stamps
// LastUpdate, whatever the builder set.
func (c *Controller) Adopt(plan *types.StrategyPlan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	plan.Status = types.PlanActive
	plan.LastUpdate = c.now()
	c.plan = plan
}

// Current returns a copy of the active plan, or nil when none is adopted.
func (c *Controller) Current() *types.StrategyPlan {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.plan == nil {
		return nil
	}
	plan := *c.plan
	plan.TargetRoles = slices.Clone(c.plan.TargetRoles)
	plan.Platforms = slices.Clone(c.plan.Platforms)
	return &plan
}

// DailyQuota returns the active plan's daily application quota, or 0 when
// no plan is adopted or the plan is not ACTIVE.
func (c *Controller) DailyQuota() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.plan == nil || c.plan.Status != types.PlanActive {
		return 0
	}
	return c.plan.DailyQuota
}

// Update merges a partial update into the active plan. It reports whether
// anything actually changed: an empty update, or one that restates the
// current values, is a no-op and does not touch LastUpdate.
func (c *Controller) Update(update types.PlanUpdate) (bool, *types.StrategyPlan, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.plan == nil {
		return false, nil, ErrNoPlan
	}
	if update.Empty() {
		return false, c.snapshotLocked(), nil
	}

	changed := false
	if update.DailyQuota != nil && *update.DailyQuota != c.plan.DailyQuota {
		c.plan.DailyQuota = *update.DailyQuota
		changed = true
	}
	if update.TargetRoles != nil && !slices.Equal(update.TargetRoles, c.plan.TargetRoles) {
		c.plan.TargetRoles = slices.Clone(update.TargetRoles)
		changed = true
	}
	if update.Platforms != nil && !slices.Equal(update.Platforms, c.plan.Platforms) {
		c.plan.Platforms = slices.Clone(update.Platforms)
		changed = true
	}
	if update.Intensity != nil && *update.Intensity != c.plan.Intensity {
		c.plan.Intensity = *update.Intensity
		changed = true
	}

	if changed {
		c.plan.LastUpdate = c.now()
	}
	return changed, c.snapshotLocked(), nil
}

// Toggle flips the plan between ACTIVE and PAUSED.
func (c *Controller) Toggle() (*types.StrategyPlan, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.plan == nil {
		return nil, ErrNoPlan
	}
	if c.plan.Status == types.PlanActive {
		c.plan.Status = types.PlanPaused
	} else {
		c.plan.Status = types.PlanActive
	}
	c.plan.LastUpdate = c.now()
	return c.snapshotLocked(), nil
}

// Clear drops the active plan.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plan = nil
}

func (c *Controller) snapshotLocked() *types.StrategyPlan {
	plan := *c.plan
	plan.TargetRoles = slices.Clone(c.plan.TargetRoles)
	plan.Platforms = slices.Clone(c.plan.Platforms)
	return &plan
}
