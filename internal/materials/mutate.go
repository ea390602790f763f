package materials

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/autojob/internal/llm"
	"github.com/jonathan/autojob/internal/prompts"
	"github.com/jonathan/autojob/internal/schemas"
	"github.com/jonathan/autojob/internal/types"
)

// mutationOutput is the LLM's tailoring shape.
type mutationOutput struct {
	SelectedTrackID   string           `json:"selected_track_id"`
	SelectedTrackName string           `json:"selected_track_name"`
	Content           types.ResumeJSON `json:"content"`
	Report            struct {
		KeywordsInjected        []string               `json:"keywords_injected"`
		MirroredPhrases         []types.MirroredPhrase `json:"mirrored_phrases"`
		ReorderingJustification string                 `json:"reordering_justification"`
		ATSScoreEstimate        int                    `json:"ats_score_estimate"`
	} `json:"report"`
}

// MutateResume selects the profile's best resume track for the job and
// tailors it: keyword injection, phrase mirroring, and section reordering.
//
// Tailoring degrades rather than blocks an application: when the LLM fails
// or returns an unusable shape, the profile's first track is submitted
// unmodified with a report marking the system fallback.
func (g *Generator) MutateResume(ctx context.Context, job *types.JobRecord, profile *types.UserProfile) (*types.ResumeMutation, error) {
	if profile == nil || len(profile.ResumeTracks) == 0 {
		return nil, &ValidationError{Field: "profile.resume_tracks", Message: "at least one resume track is required"}
	}

	tracksJSON, err := json.Marshal(profile.ResumeTracks)
	if err != nil {
		return nil, &ParseError{Message: "failed to encode resume tracks", Cause: err}
	}

	template := prompts.MustGet(prompts.FileMaterials, "mutate-resume")
	prompt := prompts.Format(template, map[string]string{
		"Tracks":      string(tracksJSON),
		"Title":       job.Title,
		"Company":     job.Company,
		"Skills":      strings.Join(job.Skills, ", "),
		"Description": job.Description,
	})

	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return fallbackMutation(profile), nil
	}

	if err := schemas.Validate(schemas.ResumeMutation, raw); err != nil {
		return fallbackMutation(profile), nil
	}

	var out mutationOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return fallbackMutation(profile), nil
	}

	// The selected track must actually exist; an invented ID falls back to
	// the first track's identity while keeping the tailored content.
	track := trackByID(profile, out.SelectedTrackID)
	if track == nil {
		track = &profile.ResumeTracks[0]
	}

	mutation := &types.ResumeMutation{
		MutatedResume: out.Content,
		Report: types.MutationReport{
			SelectedTrackID:         track.ID,
			SelectedTrackName:       track.Name,
			KeywordsInjected:        out.Report.KeywordsInjected,
			MirroredPhrases:         out.Report.MirroredPhrases,
			ReorderingJustification: out.Report.ReorderingJustification,
			ATSScoreEstimate:        out.Report.ATSScoreEstimate,
			IterationCount:          1,
		},
	}
	if mutation.Report.KeywordsInjected == nil {
		mutation.Report.KeywordsInjected = []string{}
	}
	return mutation, nil
}

// fallbackMutation submits the first track untouched when tailoring is
// unavailable.
func fallbackMutation(profile *types.UserProfile) *types.ResumeMutation {
	track := profile.ResumeTracks[0]
	return &types.ResumeMutation{
		MutatedResume: track.Content,
		Report: types.MutationReport{
			SelectedTrackID:         track.ID,
			SelectedTrackName:       track.Name,
			KeywordsInjected:        []string{},
			ReorderingJustification: "System fallback: tailoring unavailable, first track submitted unmodified",
			ATSScoreEstimate:        0,
			IterationCount:          0,
		},
	}
}

func trackByID(profile *types.UserProfile, id string) *types.ResumeTrack {
	for i := range profile.ResumeTracks {
		if profile.ResumeTracks[i].ID == id {
			return &profile.ResumeTracks[i]
		}
	}
	return nil
}
