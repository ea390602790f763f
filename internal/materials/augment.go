package materials

import (
	"context"
	"encoding/json"

	"github.com/jonathan/autojob/internal/llm"
	"github.com/jonathan/autojob/internal/prompts"
	"github.com/jonathan/autojob/internal/types"
)

// AugmentResumeWithSkill weaves a newly acquired skill into the resume so a
// re-score sees it. The returned resume is a new value; the input is not
// modified.
func (g *Generator) AugmentResumeWithSkill(ctx context.Context, resume types.ResumeJSON, skill string) (*types.ResumeJSON, error) {
	if skill == "" {
		return nil, &ValidationError{Field: "skill", Message: "skill is required"}
	}

	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		return nil, &ParseError{Message: "failed to encode resume", Cause: err}
	}

	template := prompts.MustGet(prompts.FileMaterials, "augment-skill")
	prompt := prompts.Format(template, map[string]string{
		"Skill":  skill,
		"Resume": string(resumeJSON),
	})

	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &APICallError{Message: "failed to augment resume", Cause: err}
	}

	var augmented types.ResumeJSON
	if err := json.Unmarshal([]byte(raw), &augmented); err != nil {
		return nil, &ParseError{Message: "failed to parse augmented resume", Cause: err}
	}

	// A response that drops the skills section entirely is unusable; keep
	// the caller on the original resume.
	if len(augmented.Skills) == 0 {
		return nil, &ParseError{Message: "augmented resume missing skills section"}
	}
	return &augmented, nil
}
