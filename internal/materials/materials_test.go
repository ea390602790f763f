package materials

import (
	"context"
	"errors"
	"testing"

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

func testJob() *types.JobRecord {
	return &types.JobRecord{
		ID:          "job-1",
		Title:       "Backend Engineer",
		Company:     "Acme",
		Skills:      []string{"Go", "PostgreSQL"},
		Description: "Build backend services in Go.",
		ApplyURL:    "https://acme.example.com/jobs/1",
		Platform:    types.PlatformOther,
	}
}

func testProfile() *types.UserProfile {
	return &types.UserProfile{
		FullName: "Jordan Reyes",
		Email:    "jordan@example.com",
		ResumeTracks: []types.ResumeTrack{
			{
				ID:   "backend",
				Name: "Backend Track",
				Content: types.ResumeJSON{
					Summary: "Backend engineer with six years of Go.",
					Skills:  []string{"Go", "PostgreSQL", "Kubernetes"},
				},
			},
			{
				ID:   "data",
				Name: "Data Track",
				Content: types.ResumeJSON{
					Summary: "Data engineer.",
					Skills:  []string{"Python", "Spark"},
				},
			},
		},
	}
}

const validMutationJSON = `{
	"selected_track_id": "backend",
	"selected_track_name": "Backend Track",
	"content": {
		"summary": "Backend engineer with six years of Go at scale.",
		"skills": ["Go", "PostgreSQL", "Kubernetes"],
		"experience": [
			{"company": "PrevCo", "role": "Engineer", "duration": "2019-2024", "achievements": ["Shipped the billing service"]}
		]
	},
	"report": {
		"keywords_injected": ["PostgreSQL"],
		"mirrored_phrases": [{"original": "backend services", "mirrored": "backend services at scale"}],
		"reordering_justification": "Led with Go experience to match the role.",
		"ats_score_estimate": 88
	}
}`

func TestGenerateCoverLetter(t *testing.T) {
	client := &mockClient{response: "Dear Hiring Manager,\n\nI would love to build backend services at Acme."}
	g := NewGenerator(client)

	letter, err := g.GenerateCoverLetter(context.Background(), testJob(), testProfile(), types.StyleResultsDriven)
	require.NoError(t, err)
	assert.Contains(t, letter, "Acme")
	assert.Equal(t, llm.TierAdvanced, client.lastTier)
	assert.Contains(t, client.lastPrompt, "Backend Engineer")
	assert.Contains(t, client.lastPrompt, "jordan@example.com")
}

func TestGenerateCoverLetterNilJob(t *testing.T) {
	g := NewGenerator(&mockClient{})
	_, err := g.GenerateCoverLetter(context.Background(), nil, testProfile(), types.StyleUltraConcise)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "job", validationErr.Field)
}

func TestGenerateCoverLetterAPIError(t *testing.T) {
	g := NewGenerator(&mockClient{err: errors.New("quota exceeded")})
	_, err := g.GenerateCoverLetter(context.Background(), testJob(), testProfile(), types.StyleFounderFriendly)

	var apiErr *APICallError
	require.ErrorAs(t, err, &apiErr)
}

func TestStyleKeyDefaultsToChill(t *testing.T) {
	assert.Equal(t, "style-ultra-concise", styleKey(types.StyleUltraConcise))
	assert.Equal(t, "style-chill-professional", styleKey(types.StyleChillProfessional))
	assert.Equal(t, "style-chill-professional", styleKey(types.CoverLetterStyle("Made Up")))
}

func TestMutateResume(t *testing.T) {
	client := &mockClient{response: validMutationJSON}
	g := NewGenerator(client)

	mutation, err := g.MutateResume(context.Background(), testJob(), testProfile())
	require.NoError(t, err)

	assert.Equal(t, "backend", mutation.Report.SelectedTrackID)
	assert.Equal(t, "Backend Track", mutation.Report.SelectedTrackName)
	assert.Equal(t, []string{"PostgreSQL"}, mutation.Report.KeywordsInjected)
	assert.Equal(t, 88, mutation.Report.ATSScoreEstimate)
	assert.Equal(t, 1, mutation.Report.IterationCount)
	assert.Contains(t, mutation.MutatedResume.Summary, "at scale")
	assert.Equal(t, llm.TierAdvanced, client.lastTier)
}

func TestMutateResumeFallsBackOnAPIError(t *testing.T) {
	g := NewGenerator(&mockClient{err: errors.New("overloaded")})
	profile := testProfile()

	mutation, err := g.MutateResume(context.Background(), testJob(), profile)
	require.NoError(t, err)

	assert.Equal(t, "backend", mutation.Report.SelectedTrackID)
	assert.Equal(t, profile.ResumeTracks[0].Content, mutation.MutatedResume)
	assert.Contains(t, mutation.Report.ReorderingJustification, "System fallback")
	assert.Equal(t, 0, mutation.Report.IterationCount)
}

func TestMutateResumeFallsBackOnInvalidShape(t *testing.T) {
	g := NewGenerator(&mockClient{response: `{"selected_track_id": "backend"}`})

	mutation, err := g.MutateResume(context.Background(), testJob(), testProfile())
	require.NoError(t, err)
	assert.Contains(t, mutation.Report.ReorderingJustification, "System fallback")
}

func TestMutateResumeUnknownTrackID(t *testing.T) {
	response := `{
		"selected_track_id": "invented",
		"content": {"summary": "s", "skills": ["Go"]},
		"report": {"keywords_injected": [], "reordering_justification": "x", "ats_score_estimate": 50}
	}`
	g := NewGenerator(&mockClient{response: response})

	mutation, err := g.MutateResume(context.Background(), testJob(), testProfile())
	require.NoError(t, err)

	// Tailored content is kept, identity falls back to the first track.
	assert.Equal(t, "backend", mutation.Report.SelectedTrackID)
	assert.Equal(t, "s", mutation.MutatedResume.Summary)
}

func TestMutateResumeNoTracks(t *testing.T) {
	g := NewGenerator(&mockClient{})
	_, err := g.MutateResume(context.Background(), testJob(), &types.UserProfile{})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestAugmentResumeWithSkill(t *testing.T) {
	client := &mockClient{response: `{
		"summary": "Backend engineer with six years of Go and recent Kafka work.",
		"skills": ["Go", "PostgreSQL", "Kubernetes", "Kafka"]
	}`}
	g := NewGenerator(client)

	augmented, err := g.AugmentResumeWithSkill(context.Background(), testProfile().ResumeTracks[0].Content, "Kafka")
	require.NoError(t, err)
	assert.Contains(t, augmented.Skills, "Kafka")
	assert.Contains(t, client.lastPrompt, "Kafka")
}

func TestAugmentResumeEmptySkill(t *testing.T) {
	g := NewGenerator(&mockClient{})
	_, err := g.AugmentResumeWithSkill(context.Background(), types.ResumeJSON{}, "")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestAugmentResumeMissingSkills(t *testing.T) {
	g := NewGenerator(&mockClient{response: `{"summary": "s"}`})
	_, err := g.AugmentResumeWithSkill(context.Background(), types.ResumeJSON{}, "Kafka")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestGenerateInterviewQuestions(t *testing.T) {
	client := &mockClient{response: `[
		{"question": "How do you manage goroutine lifecycles?", "category": "technical", "hint": "Mention context cancellation."},
		{"question": "Describe a conflict with a teammate.", "category": "behavioral", "hint": "Use the STAR format."}
	]`}
	g := NewGenerator(client)

	questions, err := g.GenerateInterviewQuestions(context.Background(), testJob(), testProfile())
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "technical", questions[0].Category)
	assert.Equal(t, llm.TierAdvanced, client.lastTier)
}

func TestGenerateInterviewQuestionsEmpty(t *testing.T) {
	g := NewGenerator(&mockClient{response: `[]`})
	_, err := g.GenerateInterviewQuestions(context.Background(), testJob(), testProfile())

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}
