// Package materials generates per-application artifacts: cover letters,
// tailored resumes, and interview preparation.
package materials

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/autojob/internal/llm"
	"github.com/jonathan/autojob/internal/prompts"
	"github.com/jonathan/autojob/internal/types"
)

// Generator produces application materials via the LLM.
type Generator struct {
	client llm.Client
}

// NewGenerator creates a Generator backed by the given LLM client.
func NewGenerator(client llm.Client) *Generator {
	return &Generator{client: client}
}

// styleKey maps a cover letter style to its prompt key.
func styleKey(style types.CoverLetterStyle) string {
	switch style {
	case types.StyleUltraConcise:
		return "style-ultra-concise"
	case types.StyleResultsDriven:
		return "style-results-driven"
	case types.StyleFounderFriendly:
		return "style-founder-friendly"
	case types.StyleTechnicalDeepCut:
		return "style-technical-deep-cut"
	default:
		return "style-chill-professional"
	}
}

// GenerateCoverLetter writes a cover letter for the job in the given style.
func (g *Generator) GenerateCoverLetter(ctx context.Context, job *types.JobRecord, profile *types.UserProfile, style types.CoverLetterStyle) (string, error) {
	if job == nil {
		return "", &ValidationError{Field: "job", Message: "job record is required"}
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return "", &ParseError{Message: "failed to encode profile", Cause: err}
	}

	template := prompts.MustGet(prompts.FileMaterials, "cover-letter")
	prompt := prompts.Format(template, map[string]string{
		"Profile":           string(profileJSON),
		"Title":             job.Title,
		"Company":           job.Company,
		"Skills":            strings.Join(job.Skills, ", "),
		"Description":       job.Description,
		"StyleInstructions": prompts.MustGet(prompts.FileMaterials, styleKey(style)),
	})

	letter, err := g.client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return "", &APICallError{Message: "failed to generate cover letter", Cause: err}
	}

	letter = strings.TrimSpace(letter)
	if letter == "" {
		return "", &ParseError{Message: "empty cover letter response"}
	}
	return letter, nil
}
