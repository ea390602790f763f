// Package strategy turns operator goals into executable application plans
// and owns the lifecycle of the active plan.
package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/autojob/internal/llm"
	"github.com/jonathan/autojob/internal/prompts"
	"github.com/jonathan/autojob/internal/schemas"
	"github.com/jonathan/autojob/internal/types"
)

// Planner builds strategy plans and campaign briefs via the LLM.
type Planner struct {
	client llm.Client
	now    func() time.Time
}

// NewPlanner creates a Planner backed by the given LLM client.
func NewPlanner(client llm.Client) *Planner {
	return &Planner{
		client: client,
		now:    time.Now,
	}
}

// planOutput is the LLM's plan shape before it becomes a StrategyPlan.
type planOutput struct {
	DailyQuota  int             `json:"daily_quota"`
	TargetRoles []string        `json:"target_roles"`
	Platforms   []string        `json:"platforms"`
	Intensity   types.Intensity `json:"intensity"`
	Explanation string          `json:"explanation"`
}

// BuildPlan derives an executable plan from a stated goal. The current plan,
// if any, is offered to the LLM as context so successive goals evolve the
// campaign rather than restart it.
func (p *Planner) BuildPlan(ctx context.Context, goal string, profile *types.UserProfile, current *types.StrategyPlan) (*types.StrategyPlan, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, fmt.Errorf("goal is required")
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, &ParseError{Message: "failed to encode profile", Cause: err}
	}

	currentJSON := "(none)"
	if current != nil {
		data, err := json.Marshal(current)
		if err != nil {
			return nil, &ParseError{Message: "failed to encode current plan", Cause: err}
		}
		currentJSON = string(data)
	}

	template := prompts.MustGet(prompts.FileStrategy, "build-plan")
	prompt := prompts.Format(template, map[string]string{
		"Goal":        goal,
		"Profile":     string(profileJSON),
		"CurrentPlan": currentJSON,
	})

	raw, err := p.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &APICallError{Message: "failed to build strategy plan", Cause: err}
	}

	if err := schemas.Validate(schemas.StrategyPlan, raw); err != nil {
		return nil, fmt.Errorf("strategy plan rejected: %w", err)
	}

	var out planOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &ParseError{Message: "failed to parse strategy plan JSON", Cause: err}
	}

	return &types.StrategyPlan{
		Goal:        goal,
		DailyQuota:  out.DailyQuota,
		TargetRoles: out.TargetRoles,
		Platforms:   out.Platforms,
		Intensity:   out.Intensity,
		Explanation: out.Explanation,
		LastUpdate:  p.now(),
		Status:      types.PlanActive,
	}, nil
}

// Brief produces a short plain-text campaign brief from the active plan and
// recent application activity.
func (p *Planner) Brief(ctx context.Context, plan *types.StrategyPlan, activity []types.ApplicationLogEntry) (string, error) {
	if plan == nil {
		return "", ErrNoPlan
	}

	planJSON, err := json.Marshal(plan)
	if err != nil {
		return "", &ParseError{Message: "failed to encode plan", Cause: err}
	}

	var sb strings.Builder
	if len(activity) == 0 {
		sb.WriteString("(no activity yet)")
	}
	for i, entry := range activity {
		if i >= 20 {
			sb.WriteString(fmt.Sprintf("... and %d older entries\n", len(activity)-i))
			break
		}
		sb.WriteString(fmt.Sprintf("%s  %s  %s @ %s\n",
			entry.Timestamp.Format("2006-01-02 15:04"),
			entry.Status, entry.JobTitle, entry.Company))
	}

	template := prompts.MustGet(prompts.FileStrategy, "brief")
	prompt := prompts.Format(template, map[string]string{
		"Plan":     string(planJSON),
		"Activity": sb.String(),
	})

	brief, err := p.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return "", &APICallError{Message: "failed to generate brief", Cause: err}
	}

	return strings.TrimSpace(brief), nil
}
