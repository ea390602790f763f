package intel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/autojob/internal/llm"
	"github.com/jonathan/autojob/internal/types"
)

func testJob() *types.JobRecord {
	return &types.JobRecord{
		ID:          "job-1",
		Title:       "Backend Engineer",
		Company:     "Acme",
		Skills:      []string{"Go", "Kubernetes", "Terraform"},
		Description: "Build backend services.",
		ApplyURL:    "https://acme.example/jobs/1",
		Platform:    types.PlatformOther,
	}
}

func testProfile() *types.UserProfile {
	return &types.UserProfile{
		FullName: "Jordan Reyes",
		Email:    "jordan@example.com",
		ResumeTracks: []types.ResumeTrack{
			{ID: "backend", Name: "Backend Track", Content: types.ResumeJSON{
				Skills: []string{"Go", "PostgreSQL"},
			}},
		},
	}
}

func TestScoreMatch(t *testing.T) {
	client := &mockClient{response: `{"score": 78, "reasoning": "solid Go overlap", "missing_skills": ["Terraform"]}`}
	m := NewMatcher(client)

	result := m.ScoreMatch(context.Background(), testJob(), testProfile())

	assert.Equal(t, 78, result.Score)
	assert.Equal(t, "solid Go overlap", result.Reasoning)
	assert.Equal(t, []string{"Terraform"}, result.MissingSkills)
	assert.Equal(t, llm.TierStandard, client.lastTier)
	assert.Contains(t, client.lastPrompt, "Backend Engineer")
	assert.Contains(t, client.lastPrompt, "Go, Kubernetes, Terraform")
}

func TestScoreMatch_LLMFailureDegradesToZero(t *testing.T) {
	m := NewMatcher(&mockClient{err: errors.New("deadline exceeded")})

	job := testJob()
	result := m.ScoreMatch(context.Background(), job, testProfile())

	assert.Equal(t, 0, result.Score)
	assert.Contains(t, result.Reasoning, "match scoring unavailable")
	assert.Equal(t, job.Skills, result.MissingSkills, "all required skills are unconfirmed")
}

func TestScoreMatch_MalformedResponseDegradesToZero(t *testing.T) {
	m := NewMatcher(&mockClient{response: "I think the candidate is great!"})

	result := m.ScoreMatch(context.Background(), testJob(), testProfile())

	assert.Equal(t, 0, result.Score)
	assert.NotEmpty(t, result.Reasoning)
}

func TestScoreMatch_OutOfRangeScoreRejected(t *testing.T) {
	// Schema validation rejects scores outside [0,100]
	m := NewMatcher(&mockClient{response: `{"score": 140, "reasoning": "x"}`})

	result := m.ScoreMatch(context.Background(), testJob(), testProfile())

	assert.Equal(t, 0, result.Score)
}

func TestScoreMatch_NilMissingSkillsNormalized(t *testing.T) {
	m := NewMatcher(&mockClient{response: `{"score": 90, "reasoning": "great fit"}`})

	result := m.ScoreMatch(context.Background(), testJob(), testProfile())

	require.NotNil(t, result.MissingSkills)
	assert.Empty(t, result.MissingSkills)
}
