package types

import (
	"strings"
	"time"
)

// CoverLetterStyle selects the voice used for generated cover letters.
type CoverLetterStyle string

// Available cover letter styles.
const (
	StyleUltraConcise      CoverLetterStyle = "Ultra Concise"
	StyleResultsDriven     CoverLetterStyle = "Results Driven"
	StyleFounderFriendly   CoverLetterStyle = "Founder Friendly"
	StyleTechnicalDeepCut  CoverLetterStyle = "Technical Deep-Cut"
	StyleChillProfessional CoverLetterStyle = "Chill but Professional"
)

// ParseStyle resolves a style name, tolerating case and shorthand forms like
// "ultra-concise". Unrecognized names fall back to Chill but Professional.
func ParseStyle(s string) CoverLetterStyle {
	normalized := strings.ToLower(strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s)))
	switch normalized {
	case "ultra concise":
		return StyleUltraConcise
	case "results driven":
		return StyleResultsDriven
	case "founder friendly":
		return StyleFounderFriendly
	case "technical deep cut":
		return StyleTechnicalDeepCut
	default:
		return StyleChillProfessional
	}
}

// MirroredPhrase records one job-description phrase mirrored into the resume.
type MirroredPhrase struct {
	Original string `json:"original"`
	Mirrored string `json:"mirrored"`
}

// MutationReport describes the structural tailoring applied to a resume.
type MutationReport struct {
	SelectedTrackID         string           `json:"selected_track_id"`
	SelectedTrackName       string           `json:"selected_track_name"`
	KeywordsInjected        []string         `json:"keywords_injected"`
	MirroredPhrases         []MirroredPhrase `json:"mirrored_phrases"`
	ReorderingJustification string           `json:"reordering_justification"`
	ATSScoreEstimate        int              `json:"ats_score_estimate"`
	IterationCount          int              `json:"iteration_count"`
}

// ResumeMutation is the output of tailoring: the rewritten resume plus a
// report of what changed.
type ResumeMutation struct {
	MutatedResume ResumeJSON     `json:"mutated_resume"`
	Report        MutationReport `json:"report"`
}

// ApplicationMaterials bundles everything generated for one application
// attempt. Produced once per job per attempt; never regenerated automatically.
type ApplicationMaterials struct {
	CoverLetter string          `json:"cover_letter"`
	Resume      ResumeJSON      `json:"resume"`
	Report      *MutationReport `json:"mutation_report,omitempty"`
}

// ApplicationLogEntry is the terminal, append-only record of one attempt.
// Created if and only if the pipeline reaches COMPLETED.
type ApplicationLogEntry struct {
	ID               string            `json:"id"`
	JobID            string            `json:"job_id"`
	JobTitle         string            `json:"job_title"`
	Company          string            `json:"company"`
	Status           ApplicationStatus `json:"status"`
	Timestamp        time.Time         `json:"timestamp"`
	URL              string            `json:"url"`
	Platform         Platform          `json:"platform,omitempty"`
	Location         string            `json:"location,omitempty"`
	CoverLetter      string            `json:"cover_letter,omitempty"`
	CoverLetterStyle CoverLetterStyle  `json:"cover_letter_style,omitempty"`
	MutatedResume    *ResumeJSON       `json:"mutated_resume,omitempty"`
	MutationReport   *MutationReport   `json:"mutation_report,omitempty"`
}
