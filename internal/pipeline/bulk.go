package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/autojob/internal/types"
)

// ItemStatus is the per-item outcome of a bulk run.
type ItemStatus string

const (
	ItemCompleted ItemStatus = "completed"
	ItemFailed    ItemStatus = "failed"
	ItemSkipped   ItemStatus = "skipped"
	ItemAborted   ItemStatus = "aborted"
)

// ItemOutcome records what happened to one queue entry.
type ItemOutcome struct {
	Index  int                        `json:"index"`
	JobRef string                     `json:"job_ref"`
	Status ItemStatus                 `json:"status"`
	Score  int                        `json:"score,omitempty"`
	Entry  *types.ApplicationLogEntry `json:"entry,omitempty"`
	Reason string                     `json:"reason,omitempty"`
}

// BulkSummary is the completion marker for a batch. Completed, Failed,
// Skipped, and Aborted always sum to Total.
type BulkSummary struct {
	Total     int           `json:"total"`
	Completed int           `json:"completed"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Aborted   int           `json:"aborted"`
	Outcomes  []ItemOutcome `json:"outcomes"`
}

// RunBulk processes the queue strictly in order, one job in flight at a
// time. Cancellation is cooperative: the context is consulted at the top of
// each iteration, and the in-flight item always runs to completion on a
// non-cancellable child context. Items scoring below the profile's match
// threshold are skipped before any materials are generated. One item's
// failure never aborts the batch.
func (r *Runner) RunBulk(ctx context.Context, queue []string, profile *types.UserProfile, style types.CoverLetterStyle) (*BulkSummary, error) {
	if r.shield.Snapshot().Locked {
		return nil, ErrLocked
	}

	total := len(queue)
	threshold := profile.MatchThreshold()
	summary := &BulkSummary{Total: total}
	r.journal.Logf("Bulk run started: %d jobs, threshold %d", total, threshold)

	for i, jobRef := range queue {
		if ctx.Err() != nil {
			r.journal.Logf("Bulk run aborted by operator at item %d/%d", i+1, total)
			r.abortRemaining(summary, queue, i, "aborted by operator")
			break
		}
		if r.shield.Snapshot().Locked {
			r.journal.Logf("Bulk run halted by risk lock at item %d/%d", i+1, total)
			r.abortRemaining(summary, queue, i, "risk lock engaged")
			break
		}

		r.emitBulkProgress(jobRef, i, total)

		// The in-flight item runs to completion even if the batch is
		// cancelled mid-item.
		itemCtx := context.WithoutCancel(ctx)
		outcome := r.runItem(itemCtx, i, jobRef, profile, style, threshold)
		summary.Outcomes = append(summary.Outcomes, outcome)

		switch outcome.Status {
		case ItemCompleted:
			summary.Completed++
		case ItemFailed:
			summary.Failed++
		case ItemSkipped:
			summary.Skipped++
		}

		if i < total-1 {
			if err := r.pace(ctx, bulkDelayMin, bulkDelayMax); err != nil && !errors.Is(err, context.Canceled) {
				return summary, err
			}
		}
	}

	r.journal.Logf("Bulk run finished: %d completed, %d failed, %d skipped, %d aborted",
		summary.Completed, summary.Failed, summary.Skipped, summary.Aborted)
	return summary, nil
}

func (r *Runner) abortRemaining(summary *BulkSummary, queue []string, from int, reason string) {
	for j := from; j < len(queue); j++ {
		summary.Outcomes = append(summary.Outcomes, ItemOutcome{
			Index:  j,
			JobRef: queue[j],
			Status: ItemAborted,
			Reason: reason,
		})
		summary.Aborted++
	}
}

func (r *Runner) emitBulkProgress(jobRef string, index, total int) {
	r.journal.Logf("Bulk progress: item %d/%d (%s)", index+1, total, jobRef)
	if r.onProgress != nil {
		r.onProgress(ProgressEvent{
			JobRef:  jobRef,
			State:   types.StatusPending,
			Message: fmt.Sprintf("Bulk item %d of %d", index+1, total),
			Index:   index + 1,
			Total:   total,
		})
	}
}

func (r *Runner) runItem(ctx context.Context, index int, jobRef string, profile *types.UserProfile, style types.CoverLetterStyle, threshold int) ItemOutcome {
	outcome := ItemOutcome{Index: index, JobRef: jobRef}

	prep, err := r.Prepare(ctx, jobRef, profile)
	if err != nil {
		if errors.Is(err, ErrAlreadyApplied) || errors.Is(err, ErrDailyQuotaReached) {
			outcome.Status = ItemSkipped
			outcome.Reason = err.Error()
			if r.collector != nil {
				r.collector.RecordSkipped()
			}
			return outcome
		}
		outcome.Status = ItemFailed
		outcome.Reason = err.Error()
		if r.collector != nil {
			r.collector.RecordFailed()
		}
		return outcome
	}
	outcome.Score = prep.Match.Score

	if prep.Match.Score < threshold {
		r.journal.Logf("[%s] Below threshold (%d < %d), skipping", jobRef, prep.Match.Score, threshold)
		outcome.Status = ItemSkipped
		outcome.Reason = fmt.Sprintf("score %d below threshold %d", prep.Match.Score, threshold)
		if r.collector != nil {
			r.collector.RecordSkipped()
		}
		return outcome
	}

	entry, err := r.Complete(ctx, prep, profile, style)
	if err != nil {
		outcome.Status = ItemFailed
		outcome.Reason = err.Error()
		return outcome
	}

	outcome.Status = ItemCompleted
	outcome.Entry = entry
	return outcome
}
