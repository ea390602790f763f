package types

// ApplicationStatus is the pipeline state a job application currently occupies.
type ApplicationStatus string

// Pipeline states. The main sequence runs PENDING through APPLYING and ends
// in COMPLETED, FAILED, or RISK_HALT. AUGMENTING is an optional side path that
// loops back to MATCHING. INTERPRETING and STRATEGIZING are entry states used
// only for command-triggered runs and always resolve back to PENDING.
const (
	StatusPending               ApplicationStatus = "PENDING"
	StatusExtracting            ApplicationStatus = "EXTRACTING"
	StatusMatching              ApplicationStatus = "MATCHING"
	StatusAugmenting            ApplicationStatus = "AUGMENTING"
	StatusGeneratingCoverLetter ApplicationStatus = "GENERATING_COVER_LETTER"
	StatusMutatingResume        ApplicationStatus = "MUTATING_RESUME"
	StatusApplying              ApplicationStatus = "APPLYING"
	StatusCompleted             ApplicationStatus = "COMPLETED"
	StatusFailed                ApplicationStatus = "FAILED"
	StatusRiskHalt              ApplicationStatus = "RISK_HALT"
	StatusInterpreting          ApplicationStatus = "INTERPRETING"
	StatusStrategizing          ApplicationStatus = "STRATEGIZING"
)

// Terminal reports whether the status ends a pipeline invocation.
func (s ApplicationStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusRiskHalt:
		return true
	}
	return false
}
