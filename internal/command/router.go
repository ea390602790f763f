package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/autojob/internal/observability"
	"github.com/jonathan/autojob/internal/risk"
	"github.com/jonathan/autojob/internal/strategy"
	"github.com/jonathan/autojob/internal/types"
)

// Searcher finds jobs matching the given preferences.
type Searcher interface {
	Search(ctx context.Context, prefs types.Preferences) ([]types.DiscoveredJob, error)
}

// PlanBuilder produces a strategy plan for a stated goal.
type PlanBuilder interface {
	BuildPlan(ctx context.Context, goal string, profile *types.UserProfile, current *types.StrategyPlan) (*types.StrategyPlan, error)
}

// Outcome is what executing a command produced. Jobs is populated for
// apply/filter so the caller can feed them into a batch run; Plan for
// strategy commands.
type Outcome struct {
	Command *types.CommandResult  `json:"command"`
	Message string                `json:"message"`
	Jobs    []types.DiscoveredJob `json:"jobs,omitempty"`
	Plan    *types.StrategyPlan   `json:"plan,omitempty"`
	Risk    *types.RiskState      `json:"risk,omitempty"`
}

// Router interprets instructions and applies them to the agent's subsystems.
type Router struct {
	interpreter *Interpreter
	shield      *risk.Shield
	controller  *strategy.Controller
	planner     PlanBuilder
	searcher    Searcher
	journal     *observability.Journal
}

// NewRouter wires the command surface to the subsystems it controls.
func NewRouter(interpreter *Interpreter, shield *risk.Shield, controller *strategy.Controller, planner PlanBuilder, searcher Searcher, journal *observability.Journal) *Router {
	return &Router{
		interpreter: interpreter,
		shield:      shield,
		controller:  controller,
		planner:     planner,
		searcher:    searcher,
		journal:     journal,
	}
}

// Execute interprets the instruction and performs its effect. Blocked
// commands are reported, not errored; only context cancellation and
// collaborator failures on the chosen path surface as errors.
func (r *Router) Execute(ctx context.Context, instruction string, profile *types.UserProfile) (*Outcome, error) {
	r.journal.Logf("[command] %s: interpreting instruction", types.StatusInterpreting)
	result, err := r.interpreter.Interpret(ctx, instruction)
	if err != nil {
		return nil, err
	}

	r.journal.Logf("Command interpreted: %s", result.Action)

	switch result.Action {
	case types.ActionBlocked:
		r.journal.Logf("Command blocked: %s", result.Reason)
		return &Outcome{Command: result, Message: "Command blocked: " + result.Reason}, nil

	case types.ActionPause:
		state := r.shield.Lock()
		r.journal.Logf("Automated activity paused by operator")
		return &Outcome{Command: result, Message: "Paused. No new runs will start.", Risk: &state}, nil

	case types.ActionResume:
		state := r.shield.Unlock()
		r.journal.Logf("Automated activity resumed by operator")
		return &Outcome{Command: result, Message: "Resumed.", Risk: &state}, nil

	case types.ActionApply, types.ActionFilter:
		return r.discover(ctx, result, profile)

	case types.ActionLimit:
		return r.applyLimits(result)

	case types.ActionStatus:
		return r.status(result), nil

	case types.ActionStrategy:
		return r.buildStrategy(ctx, result, profile)
	}

	// Interpret guarantees a known action, but fail closed anyway.
	return &Outcome{Command: blocked("unhandled action"), Message: "Command blocked."}, nil
}

// discover overlays the command's filters onto the profile's stored
// preferences and runs discovery. The risk lock gates discovery like any
// other new automated work.
func (r *Router) discover(ctx context.Context, result *types.CommandResult, profile *types.UserProfile) (*Outcome, error) {
	if state := r.shield.Snapshot(); state.Locked {
		r.journal.Logf("Discovery refused: risk shield is locked")
		return &Outcome{Command: result, Message: "Risk shield is locked. Resume before applying.", Risk: &state}, nil
	}

	prefs := types.Preferences{}
	if profile != nil {
		prefs = profile.Preferences
	}
	prefs = overlayFilters(prefs, result.Filters)

	jobs, err := r.searcher.Search(ctx, prefs)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}

	r.journal.Logf("Discovery found %d jobs for command %s", len(jobs), result.Action)
	msg := fmt.Sprintf("Found %d jobs.", len(jobs))
	if result.Action == types.ActionApply && len(jobs) > 0 {
		msg += " Starting applications."
	}
	return &Outcome{Command: result, Message: msg, Jobs: jobs}, nil
}

// overlayFilters merges command filters over stored preferences. Command
// values win; absent fields leave preferences untouched.
func overlayFilters(prefs types.Preferences, filters *types.CommandFilters) types.Preferences {
	if filters == nil {
		return prefs
	}
	if filters.Role != "" {
		prefs.TargetRoles = []string{filters.Role}
	}
	if filters.Location != "" {
		prefs.Locations = []string{filters.Location}
	}
	if filters.Remote != nil {
		prefs.RemoteOnly = *filters.Remote
	}
	return prefs
}

func (r *Router) applyLimits(result *types.CommandResult) (*Outcome, error) {
	if result.Limits == nil || result.Limits.DailyQuota == 0 {
		return &Outcome{Command: result, Message: "No limit specified."}, nil
	}

	quota := result.Limits.DailyQuota
	changed, plan, err := r.controller.Update(types.PlanUpdate{DailyQuota: &quota})
	if err != nil {
		return &Outcome{Command: result, Message: fmt.Sprintf("Daily quota noted (%d), but no active plan to update.", quota)}, nil
	}
	if changed {
		r.journal.Logf("Daily quota updated to %d", quota)
	}
	return &Outcome{Command: result, Message: fmt.Sprintf("Daily quota set to %d.", quota), Plan: plan}, nil
}

func (r *Router) status(result *types.CommandResult) *Outcome {
	state := r.shield.Snapshot()
	var b strings.Builder
	fmt.Fprintf(&b, "Risk level %s, reputation %d.", state.Level, state.IPReputation)
	if state.Locked {
		b.WriteString(" Automation is paused.")
	}
	if plan := r.controller.Current(); plan != nil {
		fmt.Fprintf(&b, " Plan %s: %d/day targeting %s.", plan.Status, plan.DailyQuota, strings.Join(plan.TargetRoles, ", "))
	} else {
		b.WriteString(" No active strategy plan.")
	}
	return &Outcome{Command: result, Message: b.String(), Risk: &state, Plan: r.controller.Current()}
}

func (r *Router) buildStrategy(ctx context.Context, result *types.CommandResult, profile *types.UserProfile) (*Outcome, error) {
	goal := result.Goal
	if goal == "" {
		return &Outcome{Command: result, Message: "Strategy command needs a goal."}, nil
	}

	r.journal.Logf("[command] %s: building plan for %q", types.StatusStrategizing, goal)
	plan, err := r.planner.BuildPlan(ctx, goal, profile, r.controller.Current())
	if err != nil {
		return nil, fmt.Errorf("strategy planning failed: %w", err)
	}
	r.controller.Adopt(plan)
	r.journal.Logf("Strategy plan adopted: %s (%d/day)", plan.Goal, plan.DailyQuota)
	return &Outcome{Command: result, Message: "Strategy plan adopted.", Plan: plan}, nil
}
