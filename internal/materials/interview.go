package materials

import (
	"context"
	"encoding/json"

	"github.com/jonathan/autojob/internal/llm"
	"github.com/jonathan/autojob/internal/prompts"
	"github.com/jonathan/autojob/internal/types"
)

// InterviewQuestion is one predicted interview question with preparation
// guidance.
type InterviewQuestion struct {
	Question string `json:"question"`
	Category string `json:"category"`
	Hint     string `json:"hint"`
}

// GenerateInterviewQuestions predicts likely interview questions for the job
// based on its description and the candidate's background.
func (g *Generator) GenerateInterviewQuestions(ctx context.Context, job *types.JobRecord, profile *types.UserProfile) ([]InterviewQuestion, error) {
	if job == nil {
		return nil, &ValidationError{Field: "job", Message: "job record is required"}
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, &ParseError{Message: "failed to encode profile", Cause: err}
	}

	template := prompts.MustGet(prompts.FileMaterials, "interview-questions")
	prompt := prompts.Format(template, map[string]string{
		"Title":       job.Title,
		"Company":     job.Company,
		"Description": job.Description,
		"Profile":     string(profileJSON),
	})

	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &APICallError{Message: "failed to generate interview questions", Cause: err}
	}

	var questions []InterviewQuestion
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, &ParseError{Message: "failed to parse interview questions", Cause: err}
	}
	if len(questions) == 0 {
		return nil, &ParseError{Message: "no interview questions returned"}
	}
	return questions, nil
}
