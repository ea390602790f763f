package types

// CommandAction is the closed vocabulary of canonical agent commands.
type CommandAction string

// Canonical actions produced by command interpretation.
const (
	ActionApply    CommandAction = "apply"
	ActionPause    CommandAction = "pause"
	ActionResume   CommandAction = "resume"
	ActionFilter   CommandAction = "filter"
	ActionLimit    CommandAction = "limit"
	ActionBlocked  CommandAction = "blocked"
	ActionStatus   CommandAction = "status"
	ActionStrategy CommandAction = "strategy"
)

// Known reports whether the action is in the closed vocabulary.
func (a CommandAction) Known() bool {
	switch a {
	case ActionApply, ActionPause, ActionResume, ActionFilter,
		ActionLimit, ActionBlocked, ActionStatus, ActionStrategy:
		return true
	}
	return false
}

// CommandFilters narrows discovery when attached to an apply/filter command.
type CommandFilters struct {
	Role         string   `json:"role,omitempty"`
	Location     string   `json:"location,omitempty"`
	Remote       *bool    `json:"remote,omitempty"`
	CompanyType  string   `json:"company_type,omitempty"`
	PostedWithin string   `json:"posted_within,omitempty"`
	ExcludeRoles []string `json:"exclude_roles,omitempty"`
}

// CommandLimits caps the amount of automated work a command authorizes.
type CommandLimits struct {
	MaxApplications int `json:"max_applications,omitempty"`
	DailyQuota      int `json:"daily_quota,omitempty"`
}

// CommandSchedule bounds how long a command's effect should last.
type CommandSchedule struct {
	Duration string `json:"duration,omitempty"`
}

// CommandResult is the canonical command object produced by the external
// interpretation collaborator.
type CommandResult struct {
	Action   CommandAction    `json:"action"`
	Goal     string           `json:"goal,omitempty"`
	Filters  *CommandFilters  `json:"filters,omitempty"`
	Limits   *CommandLimits   `json:"limits,omitempty"`
	Schedule *CommandSchedule `json:"schedule,omitempty"`
	Reason   string           `json:"reason,omitempty"`
}
