package observability

import (
	"bytes"
	"testing"

	"github.com/jonathan/autojob/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintJobRecord(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	job := &types.JobRecord{
		ID:       "job-1",
		Title:    "Senior Engineer",
		Company:  "Acme Corp",
		Location: "Remote",
		Skills:   []string{"Go", "Kubernetes", "PostgreSQL"},
		Platform: types.PlatformLinkedIn,
		Intent: &types.IntentSignal{
			Type:       types.IntentRealHire,
			Confidence: 0.9,
		},
	}

	p.PrintJobRecord(job)
	output := buf.String()

	assert.Contains(t, output, "EXTRACTED JOB RECORD")
	assert.Contains(t, output, "Acme Corp")
	assert.Contains(t, output, "Senior Engineer")
	assert.Contains(t, output, "Go")
	assert.Contains(t, output, "Real Hire")
}

func TestPrintJobRecord_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJobRecord(nil)

	assert.Empty(t, buf.String())
}

func TestPrintMatchResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	match := &types.MatchResult{
		Score:         82,
		Reasoning:     "Strong backend overlap.",
		MissingSkills: []string{"Terraform"},
	}

	p.PrintMatchResult(match, 70)
	output := buf.String()

	assert.Contains(t, output, "MATCH RESULT")
	assert.Contains(t, output, "82")
	assert.Contains(t, output, "QUALIFIED")
	assert.Contains(t, output, "Terraform")
}

func TestPrintMatchResult_BelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	match := &types.MatchResult{Score: 40, Reasoning: "weak fit"}

	p.PrintMatchResult(match, 70)

	assert.Contains(t, buf.String(), "BELOW THRESHOLD")
}

func TestPrintMutationReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	report := &types.MutationReport{
		SelectedTrackName: "Backend Track",
		KeywordsInjected:  []string{"gRPC", "Kafka"},
		MirroredPhrases: []types.MirroredPhrase{
			{Original: "distributed systems", Mirrored: "distributed systems at scale"},
		},
		ATSScoreEstimate: 88,
	}

	p.PrintMutationReport(report)
	output := buf.String()

	assert.Contains(t, output, "RESUME MUTATION REPORT")
	assert.Contains(t, output, "Backend Track")
	assert.Contains(t, output, "gRPC")
	assert.Contains(t, output, "88")
}

func TestPrintStrategyPlan(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	plan := &types.StrategyPlan{
		Goal:        "Land a staff role in 60 days",
		DailyQuota:  12,
		TargetRoles: []string{"Staff Engineer"},
		Platforms:   []string{"LinkedIn", "Wellfound"},
		Intensity:   types.IntensityAggressive,
		Status:      types.PlanActive,
	}

	p.PrintStrategyPlan(plan)
	output := buf.String()

	assert.Contains(t, output, "STRATEGY PLAN")
	assert.Contains(t, output, "12 / day")
	assert.Contains(t, output, "Aggressive")
	assert.Contains(t, output, "Staff Engineer")
}

func TestPrintRiskState_Low(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRiskState(&types.RiskState{Level: types.RiskLow, IPReputation: 100})

	assert.Contains(t, buf.String(), "RISK LEVEL LOW")
}

func TestPrintRiskState_Locked(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRiskState(&types.RiskState{
		Level:        types.RiskCritical,
		CaptchaCount: 2,
		IPReputation: 40,
		Locked:       true,
	})
	output := buf.String()

	assert.Contains(t, output, "RISK SHIELD")
	assert.Contains(t, output, "CRITICAL")
	assert.Contains(t, output, "ENGAGED")
}

func TestPrintCommand_Blocked(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCommand(&types.CommandResult{
		Action: types.ActionBlocked,
		Reason: "instruction outside job searching",
	})
	output := buf.String()

	assert.Contains(t, output, "COMMAND BLOCKED")
	assert.Contains(t, output, "outside job searching")
}
