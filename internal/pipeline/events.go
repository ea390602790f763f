// Package pipeline provides the per-job application state machine and the
// serial bulk orchestrator built on top of it.
package pipeline

import "github.com/jonathan/autojob/internal/types"

// ProgressEvent represents one state transition or bulk progress update.
type ProgressEvent struct {
	JobRef  string                  `json:"job_ref"`
	State   types.ApplicationStatus `json:"state"`
	Message string                  `json:"message"`
	Index   int                     `json:"index,omitempty"`
	Total   int                     `json:"total,omitempty"`
	Content any                     `json:"content,omitempty"`
}

// ProgressCallback is called on every emitted event.
type ProgressCallback func(event ProgressEvent)

func (r *Runner) emit(jobRef string, state types.ApplicationStatus, message string, content any) {
	r.journal.Logf("[%s] %s: %s", jobRef, state, message)
	if r.onProgress != nil {
		r.onProgress(ProgressEvent{
			JobRef:  jobRef,
			State:   state,
			Message: message,
			Content: content,
		})
	}
}
