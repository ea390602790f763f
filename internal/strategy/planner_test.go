package strategy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/autojob/internal/llm"
	"github.com/jonathan/autojob/internal/types"
)

// mockClient returns canned LLM responses and records the last prompt.
type mockClient struct {
	response   string
	err        error
	lastPrompt string
	lastTier   llm.ModelTier
}

func (m *mockClient) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.lastPrompt = prompt
	m.lastTier = tier
	return m.response, m.err
}

func (m *mockClient) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.lastPrompt = prompt
	m.lastTier = tier
	return m.response, m.err
}

func (m *mockClient) GetModel(llm.ModelTier) string { return "mock-model" }
func (m *mockClient) Close() error                  { return nil }

func testProfile() *types.UserProfile {
	return &types.UserProfile{
		FullName: "Jordan Reyes",
		Email:    "jordan@example.com",
		ResumeTracks: []types.ResumeTrack{
			{ID: "backend", Name: "Backend Track"},
		},
	}
}

const validPlanJSON = `{
	"daily_quota": 15,
	"target_roles": ["Backend Engineer", "Platform Engineer"],
	"platforms": ["LinkedIn", "Wellfound"],
	"intensity": "Aggressive",
	"explanation": "High volume suits a tight timeline."
}`

func TestBuildPlan(t *testing.T) {
	client := &mockClient{response: validPlanJSON}
	p := NewPlanner(client)
	p.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	plan, err := p.BuildPlan(context.Background(), "land a job in 30 days", testProfile(), nil)
	require.NoError(t, err)

	assert.Equal(t, "land a job in 30 days", plan.Goal)
	assert.Equal(t, 15, plan.DailyQuota)
	assert.Equal(t, types.IntensityAggressive, plan.Intensity)
	assert.Equal(t, types.PlanActive, plan.Status)
	assert.Equal(t, 2025, plan.LastUpdate.Year())
	assert.Equal(t, llm.TierAdvanced, client.lastTier)
	assert.Contains(t, client.lastPrompt, "land a job in 30 days")
	assert.Contains(t, client.lastPrompt, "(none)")
}

func TestBuildPlan_CurrentPlanOfferedAsContext(t *testing.T) {
	client := &mockClient{response: validPlanJSON}
	p := NewPlanner(client)

	current := &types.StrategyPlan{Goal: "previous goal", DailyQuota: 5}
	_, err := p.BuildPlan(context.Background(), "ramp up volume", testProfile(), current)
	require.NoError(t, err)

	assert.Contains(t, client.lastPrompt, "previous goal")
	assert.NotContains(t, client.lastPrompt, "(none)")
}

func TestBuildPlan_EmptyGoal(t *testing.T) {
	p := NewPlanner(&mockClient{response: validPlanJSON})

	_, err := p.BuildPlan(context.Background(), "  ", testProfile(), nil)
	assert.Error(t, err)
}

func TestBuildPlan_APIError(t *testing.T) {
	p := NewPlanner(&mockClient{err: errors.New("quota exceeded")})

	_, err := p.BuildPlan(context.Background(), "goal", testProfile(), nil)
	require.Error(t, err)

	var apiErr *APICallError
	assert.ErrorAs(t, err, &apiErr)
}

func TestBuildPlan_SchemaRejectsBadOutput(t *testing.T) {
	// Quota above the schema ceiling
	bad := `{
		"daily_quota": 500,
		"target_roles": ["Backend Engineer"],
		"platforms": ["LinkedIn"],
		"intensity": "Aggressive",
		"explanation": "x"
	}`
	p := NewPlanner(&mockClient{response: bad})

	_, err := p.BuildPlan(context.Background(), "goal", testProfile(), nil)
	assert.Error(t, err)
}

func TestBuildPlan_MalformedJSON(t *testing.T) {
	p := NewPlanner(&mockClient{response: "not json at all"})

	_, err := p.BuildPlan(context.Background(), "goal", testProfile(), nil)
	assert.Error(t, err)
}

func TestBrief(t *testing.T) {
	client := &mockClient{response: "  The campaign is on track.  "}
	p := NewPlanner(client)

	plan := &types.StrategyPlan{Goal: "goal", DailyQuota: 10, Status: types.PlanActive}
	activity := []types.ApplicationLogEntry{
		{
			JobTitle:  "Backend Engineer",
			Company:   "Acme",
			Status:    types.StatusCompleted,
			Timestamp: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		},
	}

	brief, err := p.Brief(context.Background(), plan, activity)
	require.NoError(t, err)

	assert.Equal(t, "The campaign is on track.", brief)
	assert.Equal(t, llm.TierStandard, client.lastTier)
	assert.Contains(t, client.lastPrompt, "Backend Engineer")
	assert.Contains(t, client.lastPrompt, "Acme")
}

func TestBrief_NoPlan(t *testing.T) {
	p := NewPlanner(&mockClient{})

	_, err := p.Brief(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNoPlan)
}

func TestBrief_NoActivity(t *testing.T) {
	client := &mockClient{response: "brief"}
	p := NewPlanner(client)

	_, err := p.Brief(context.Background(), &types.StrategyPlan{Goal: "g"}, nil)
	require.NoError(t, err)
	assert.Contains(t, client.lastPrompt, "(no activity yet)")
}
