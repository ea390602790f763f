// Package types provides type definitions for structured data used throughout the autojob system.
package types

import "time"

// Platform identifies the job board a listing was sourced from.
type Platform string

// Known source platforms.
const (
	PlatformLinkedIn  Platform = "LinkedIn"
	PlatformIndeed    Platform = "Indeed"
	PlatformWellfound Platform = "Wellfound"
	PlatformOther     Platform = "Other"
)

// JobIntent classifies why a listing exists.
type JobIntent string

// Intent classifications produced by extraction.
const (
	IntentRealHire     JobIntent = "Real Hire"
	IntentGhostJob     JobIntent = "Ghost Job"
	IntentDataHarvest  JobIntent = "Data Harvesting"
	IntentTrainingScam JobIntent = "Training/Upskilling Scam"
	IntentEvergreen    JobIntent = "Evergreen/Pipeline"
)

// IntentSignal is the extraction service's judgment of a listing's intent.
type IntentSignal struct {
	Type       JobIntent `json:"type"`
	Confidence float64   `json:"confidence"`
	Reasoning  string    `json:"reasoning"`
}

// JobRecord is a structured job listing. It is immutable once extracted;
// one JobRecord flows through exactly one pipeline invocation.
type JobRecord struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Company     string        `json:"company"`
	Location    string        `json:"location"`
	Skills      []string      `json:"skills"`
	Description string        `json:"description"`
	ApplyURL    string        `json:"apply_url"`
	ScrapedAt   time.Time     `json:"scraped_at"`
	Platform    Platform      `json:"platform"`
	Intent      *IntentSignal `json:"intent,omitempty"`
}

// DiscoveredJob is a lightweight listing reference returned by discovery,
// before extraction has produced a full JobRecord.
type DiscoveredJob struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	URL      string `json:"url"`
	Source   string `json:"source"`
}

// MatchResult scores a job against a candidate profile.
// Score is in [0,100]; MissingSkills lists requirements absent from the profile.
type MatchResult struct {
	Score         int      `json:"score"`
	Reasoning     string   `json:"reasoning"`
	MissingSkills []string `json:"missing_skills"`
}
