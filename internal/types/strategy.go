package types

import "time"

// Intensity is the aggressiveness profile of an autonomous strategy plan.
type Intensity string

// Intensity levels.
const (
	IntensityAggressive Intensity = "Aggressive"
	IntensityBalanced   Intensity = "Balanced"
	IntensityPrecision  Intensity = "Precision"
)

// PlanStatus is the lifecycle state of a strategy plan.
type PlanStatus string

// Plan lifecycle states.
const (
	PlanActive     PlanStatus = "ACTIVE"
	PlanPaused     PlanStatus = "PAUSED"
	PlanOptimizing PlanStatus = "OPTIMIZING"
)

// StrategyPlan holds the executable parameters derived from a stated goal.
// At most one plan is active per session; it is mutated only through the
// strategy controller.
type StrategyPlan struct {
	Goal        string     `json:"goal"`
	DailyQuota  int        `json:"daily_quota"`
	TargetRoles []string   `json:"target_roles"`
	Platforms   []string   `json:"platforms"`
	Intensity   Intensity  `json:"intensity"`
	Explanation string     `json:"explanation"`
	LastUpdate  time.Time  `json:"last_update"`
	Status      PlanStatus `json:"status"`
}

// DefaultStyle returns the cover-letter style implied by the plan's
// intensity. This is an advisory default, not a constraint.
func (p *StrategyPlan) DefaultStyle() CoverLetterStyle {
	switch p.Intensity {
	case IntensityAggressive:
		return StyleResultsDriven
	case IntensityPrecision:
		return StyleTechnicalDeepCut
	default:
		return StyleChillProfessional
	}
}

// PlanUpdate is a partial update merged into the active plan. Nil fields are
// left unchanged.
type PlanUpdate struct {
	DailyQuota  *int       `json:"daily_quota,omitempty"`
	TargetRoles []string   `json:"target_roles,omitempty"`
	Platforms   []string   `json:"platforms,omitempty"`
	Intensity   *Intensity `json:"intensity,omitempty"`
}

// Empty reports whether the update would change nothing.
func (u *PlanUpdate) Empty() bool {
	return u == nil ||
		(u.DailyQuota == nil && u.TargetRoles == nil && u.Platforms == nil && u.Intensity == nil)
}
