package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/autojob/internal/llm"
	"github.com/jonathan/autojob/internal/prompts"
	"github.com/jonathan/autojob/internal/schemas"
	"github.com/jonathan/autojob/internal/types"
)

// Matcher scores job records against the candidate profile.
type Matcher struct {
	client llm.Client
}

// NewMatcher creates a Matcher.
func NewMatcher(client llm.Client) *Matcher {
	return &Matcher{client: client}
}

// ScoreMatch scores how well the candidate fits the job on a 0-100 scale.
// Scoring never fails the pipeline: any LLM or parse failure degrades to a
// zero score with the failure noted in the reasoning, which keeps the job
// below every sane threshold.
func (m *Matcher) ScoreMatch(ctx context.Context, job *types.JobRecord, profile *types.UserProfile) *types.MatchResult {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return degradedMatch(job, fmt.Sprintf("profile could not be encoded: %v", err))
	}

	template := prompts.MustGet(prompts.FileIntel, "score-match")
	prompt := prompts.Format(template, map[string]string{
		"Profile":     string(profileJSON),
		"Title":       job.Title,
		"Company":     job.Company,
		"Skills":      joinSkills(job.Skills),
		"Description": job.Description,
	})

	raw, err := m.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return degradedMatch(job, fmt.Sprintf("match scoring unavailable: %v", err))
	}

	if err := schemas.Validate(schemas.MatchResult, raw); err != nil {
		return degradedMatch(job, fmt.Sprintf("match result rejected: %v", err))
	}

	var result types.MatchResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return degradedMatch(job, fmt.Sprintf("match result unparseable: %v", err))
	}

	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > 100 {
		result.Score = 100
	}
	if result.MissingSkills == nil {
		result.MissingSkills = []string{}
	}
	return &result
}

// degradedMatch is the zero-score result used when scoring cannot run.
// All of the job's required skills are reported missing since none could be
// confirmed.
func degradedMatch(job *types.JobRecord, reason string) *types.MatchResult {
	missing := make([]string, len(job.Skills))
	copy(missing, job.Skills)
	return &types.MatchResult{
		Score:         0,
		Reasoning:     reason,
		MissingSkills: missing,
	}
}

func joinSkills(skills []string) string {
	if len(skills) == 0 {
		return "(none listed)"
	}
	return strings.Join(skills, ", ")
}
