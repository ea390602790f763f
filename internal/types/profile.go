package types

import (
	"slices"

	"github.com/go-playground/validator/v10"
)

// ResumeJSON is the structured content of one resume track.
type ResumeJSON struct {
	Summary    string       `json:"summary"`
	Skills     []string     `json:"skills"`
	Experience []Experience `json:"experience"`
	Projects   []Project    `json:"projects"`
}

// Experience is one employment entry in a resume track.
type Experience struct {
	Company      string   `json:"company"`
	Role         string   `json:"role"`
	Duration     string   `json:"duration"`
	Achievements []string `json:"achievements"`
}

// Project is one project entry in a resume track.
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

// ResumeTrack is a named base resume variant. Tailoring selects the single
// best-fit track per job; augmentation rewrites a track in place.
type ResumeTrack struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Content ResumeJSON `json:"content"`
}

// Preferences holds stored search preferences used by discovery and the
// bulk-run threshold gate.
type Preferences struct {
	TargetRoles        []string `json:"target_roles"`
	MinSalary          string   `json:"min_salary,omitempty"`
	Locations          []string `json:"locations"`
	RemoteOnly         bool     `json:"remote_only"`
	MatchThreshold     int      `json:"match_threshold" validate:"gte=0,lte=100"`
	PreferredPlatforms []string `json:"preferred_platforms,omitempty"`
}

// DefaultMatchThreshold is used when a profile does not configure one.
const DefaultMatchThreshold = 70

// UserProfile is the candidate identity and preference set one pipeline
// invocation runs against.
type UserProfile struct {
	FullName     string        `json:"full_name" validate:"required,min=1"`
	Email        string        `json:"email" validate:"required,email"`
	Phone        string        `json:"phone,omitempty"`
	LinkedIn     string        `json:"linkedin,omitempty"`
	Portfolio    string        `json:"portfolio,omitempty"`
	ResumeTracks []ResumeTrack `json:"resume_tracks" validate:"required,min=1"`
	Preferences  Preferences   `json:"preferences"`
}

// Validate validates the UserProfile using the validator.
func (p *UserProfile) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// MatchThreshold returns the configured threshold, falling back to the default.
func (p *UserProfile) MatchThreshold() int {
	if p.Preferences.MatchThreshold > 0 {
		return p.Preferences.MatchThreshold
	}
	return DefaultMatchThreshold
}

// Clone returns a deep copy. Augmentation rewrites a resume track in place,
// so callers sharing a profile across concurrent runs clone it first.
func (p *UserProfile) Clone() *UserProfile {
	clone := *p
	clone.ResumeTracks = make([]ResumeTrack, len(p.ResumeTracks))
	for i, track := range p.ResumeTracks {
		track.Content = track.Content.clone()
		clone.ResumeTracks[i] = track
	}
	clone.Preferences.TargetRoles = slices.Clone(p.Preferences.TargetRoles)
	clone.Preferences.Locations = slices.Clone(p.Preferences.Locations)
	clone.Preferences.PreferredPlatforms = slices.Clone(p.Preferences.PreferredPlatforms)
	return &clone
}

func (r ResumeJSON) clone() ResumeJSON {
	r.Skills = slices.Clone(r.Skills)
	experience := make([]Experience, len(r.Experience))
	for i, e := range r.Experience {
		e.Achievements = slices.Clone(e.Achievements)
		experience[i] = e
	}
	r.Experience = experience
	projects := make([]Project, len(r.Projects))
	for i, pr := range r.Projects {
		pr.Technologies = slices.Clone(pr.Technologies)
		projects[i] = pr
	}
	r.Projects = projects
	return r
}

// PrimaryTrack returns the first resume track, used as the system-fallback
// when tailoring cannot produce a mutation.
func (p *UserProfile) PrimaryTrack() *ResumeTrack {
	if len(p.ResumeTracks) == 0 {
		return nil
	}
	return &p.ResumeTracks[0]
}
