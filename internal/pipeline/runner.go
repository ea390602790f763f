package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/autojob/internal/dispatch"
	"github.com/jonathan/autojob/internal/metrics"
	"github.com/jonathan/autojob/internal/observability"
	"github.com/jonathan/autojob/internal/types"
)

// Pacing delay bounds. Single runs pause longer than the gap between bulk
// items so one-off activity looks unhurried.
const (
	singleDelayMin = 1500 * time.Millisecond
	singleDelayMax = 4500 * time.Millisecond
	bulkDelayMin   = 1500 * time.Millisecond
	bulkDelayMax   = 3000 * time.Millisecond
)

// Extractor turns a raw job reference into a structured record.
type Extractor interface {
	ExtractJob(ctx context.Context, jobURL string) (*types.JobRecord, error)
}

// Matcher scores a job against a profile. Never errors; failures degrade to
// score 0 with an explanatory reason.
type Matcher interface {
	ScoreMatch(ctx context.Context, job *types.JobRecord, profile *types.UserProfile) *types.MatchResult
}

// MaterialsGenerator produces per-application artifacts.
type MaterialsGenerator interface {
	GenerateCoverLetter(ctx context.Context, job *types.JobRecord, profile *types.UserProfile, style types.CoverLetterStyle) (string, error)
	MutateResume(ctx context.Context, job *types.JobRecord, profile *types.UserProfile) (*types.ResumeMutation, error)
	AugmentResumeWithSkill(ctx context.Context, resume types.ResumeJSON, skill string) (*types.ResumeJSON, error)
}

// Dispatcher submits a prepared application.
type Dispatcher interface {
	Submit(ctx context.Context, job *types.JobRecord, profile *types.UserProfile, materials *types.ApplicationMaterials) (*dispatch.Result, error)
}

// RiskChecker gates apply-class actions and reports lock state.
type RiskChecker interface {
	Check(ctx context.Context) (bool, types.RiskState, error)
	Snapshot() types.RiskState
}

// Ledger persists terminal application records. Persistence is best-effort;
// a nil Ledger or a write error never fails a run.
type Ledger interface {
	AppendApplication(ctx context.Context, entry *types.ApplicationLogEntry) error
}

// History answers questions about past applications so the runner can skip
// duplicates and enforce the daily quota. Optional; a nil History or a read
// error disables the check for that run.
type History interface {
	HasAppliedToURL(ctx context.Context, url string) (bool, error)
	CountApplicationsSince(ctx context.Context, cutoff time.Time) (int, error)
}

// Runner drives one job through the application state machine.
type Runner struct {
	extractor  Extractor
	matcher    Matcher
	materials  MaterialsGenerator
	dispatcher Dispatcher
	shield     RiskChecker
	journal    *observability.Journal
	ledger     Ledger
	history    History
	quota      func() int
	collector  *metrics.Collector
	onProgress ProgressCallback

	// rng is shared by the server's concurrent single and bulk entry
	// points, so draws go through rngMu.
	rngMu sync.Mutex
	rng   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// RunnerOptions wires the runner's collaborators. Ledger, History, Quota,
// Collector, and OnProgress are optional.
type RunnerOptions struct {
	Extractor  Extractor
	Matcher    Matcher
	Materials  MaterialsGenerator
	Dispatcher Dispatcher
	Shield     RiskChecker
	Journal    *observability.Journal
	Ledger     Ledger
	History    History
	Quota      func() int
	Collector  *metrics.Collector
	OnProgress ProgressCallback
}

// NewRunner creates a Runner from the given collaborators.
func NewRunner(opts RunnerOptions) *Runner {
	journal := opts.Journal
	if journal == nil {
		journal = observability.NewJournal(observability.DefaultJournalCap)
	}
	return &Runner{
		extractor:  opts.Extractor,
		matcher:    opts.Matcher,
		materials:  opts.Materials,
		dispatcher: opts.Dispatcher,
		shield:     opts.Shield,
		journal:    journal,
		ledger:     opts.Ledger,
		history:    opts.History,
		quota:      opts.Quota,
		collector:  opts.Collector,
		onProgress: opts.OnProgress,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:      sleepCtx,
		now:        time.Now,
	}
}

// Journal returns the journal transitions are written to.
func (r *Runner) Journal() *observability.Journal {
	return r.journal
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// pace waits a uniform random duration in [min, max].
func (r *Runner) pace(ctx context.Context, min, max time.Duration) error {
	r.rngMu.Lock()
	d := min + time.Duration(r.rng.Int63n(int64(max-min)+1))
	r.rngMu.Unlock()
	return r.sleep(ctx, d)
}

// Prepared is a job that has been extracted and scored but not yet applied
// to. The Bulk Orchestrator gates on Match.Score between Prepare and
// Complete.
type Prepared struct {
	JobRef string
	Job    *types.JobRecord
	Match  *types.MatchResult
}

// Prepare runs PENDING through MATCHING: extract the job record and score it
// against the profile.
func (r *Runner) Prepare(ctx context.Context, jobRef string, profile *types.UserProfile) (*Prepared, error) {
	r.emit(jobRef, types.StatusPending, "Queued for processing", nil)

	if err := r.checkHistory(ctx, jobRef); err != nil {
		r.emit(jobRef, types.StatusFailed, err.Error(), nil)
		return nil, err
	}

	r.emit(jobRef, types.StatusExtracting, "Extracting job data from reference", nil)
	job, err := r.extractor.ExtractJob(ctx, jobRef)
	if err != nil {
		r.emit(jobRef, types.StatusFailed, "Extraction failed: "+err.Error(), nil)
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	r.emit(jobRef, types.StatusExtracting, fmt.Sprintf("Extracted %q at %s", job.Title, job.Company), job)

	r.emit(jobRef, types.StatusMatching, "Scoring match against profile", nil)
	match := r.matcher.ScoreMatch(ctx, job, profile)
	r.emit(jobRef, types.StatusMatching, fmt.Sprintf("Match score %d", match.Score), match)

	return &Prepared{JobRef: jobRef, Job: job, Match: match}, nil
}

// checkHistory rejects the job if a completed application already exists for
// the URL, or if the active plan's daily quota is exhausted. Ledger reads are
// best-effort; a read error logs a warning and lets the run proceed.
func (r *Runner) checkHistory(ctx context.Context, jobRef string) error {
	if r.history == nil {
		return nil
	}

	applied, err := r.history.HasAppliedToURL(ctx, jobRef)
	if err != nil {
		r.journal.Logf("Warning: duplicate check failed: %v. Continuing.", err)
	} else if applied {
		return ErrAlreadyApplied
	}

	if r.quota == nil {
		return nil
	}
	quota := r.quota()
	if quota <= 0 {
		return nil
	}
	now := r.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	count, err := r.history.CountApplicationsSince(ctx, midnight)
	if err != nil {
		r.journal.Logf("Warning: quota check failed: %v. Continuing.", err)
		return nil
	}
	if count >= quota {
		return fmt.Errorf("%w (%d today, quota %d)", ErrDailyQuotaReached, count, quota)
	}
	return nil
}

// Augment rewrites the profile's primary resume track to include the given
// skill, then rescores the prepared job. It is invoked only on explicit
// operator request, at most once per request, and mutates the profile's
// primary track in place so the subsequent tailoring sees the new skill.
func (r *Runner) Augment(ctx context.Context, prep *Prepared, profile *types.UserProfile, skill string) error {
	track := profile.PrimaryTrack()
	if track == nil {
		return fmt.Errorf("augmentation requires at least one resume track")
	}

	r.emit(prep.JobRef, types.StatusAugmenting, fmt.Sprintf("Augmenting resume with skill %q", skill), nil)
	augmented, err := r.materials.AugmentResumeWithSkill(ctx, track.Content, skill)
	if err != nil {
		r.emit(prep.JobRef, types.StatusAugmenting, "Augmentation failed: "+err.Error(), nil)
		return fmt.Errorf("augmentation failed: %w", err)
	}
	track.Content = *augmented

	r.emit(prep.JobRef, types.StatusMatching, "Rescoring after augmentation", nil)
	prep.Match = r.matcher.ScoreMatch(ctx, prep.Job, profile)
	r.emit(prep.JobRef, types.StatusMatching, fmt.Sprintf("Match score %d after augmentation", prep.Match.Score), prep.Match)
	return nil
}

// Complete runs GENERATING_COVER_LETTER through APPLYING on an already
// prepared job. Exactly one ApplicationLogEntry is produced iff the run ends
// COMPLETED.
func (r *Runner) Complete(ctx context.Context, prep *Prepared, profile *types.UserProfile, style types.CoverLetterStyle) (*types.ApplicationLogEntry, error) {
	job := prep.Job

	r.emit(prep.JobRef, types.StatusGeneratingCoverLetter, fmt.Sprintf("Writing cover letter in style %q", style), nil)
	coverLetter, err := r.materials.GenerateCoverLetter(ctx, job, profile, style)
	if err != nil {
		return nil, r.fail(prep.JobRef, fmt.Errorf("cover letter generation failed: %w", err))
	}

	r.emit(prep.JobRef, types.StatusMutatingResume, "Tailoring resume to the role", nil)
	mutation, err := r.materials.MutateResume(ctx, job, profile)
	if err != nil {
		return nil, r.fail(prep.JobRef, fmt.Errorf("resume tailoring failed: %w", err))
	}
	r.emit(prep.JobRef, types.StatusMutatingResume,
		fmt.Sprintf("Selected track %q, ATS estimate %d", mutation.Report.SelectedTrackName, mutation.Report.ATSScoreEstimate), &mutation.Report)

	materials := &types.ApplicationMaterials{
		CoverLetter: coverLetter,
		Resume:      mutation.MutatedResume,
		Report:      &mutation.Report,
	}

	r.emit(prep.JobRef, types.StatusApplying, "Running risk check before dispatch", nil)
	allowed, state, err := r.shield.Check(ctx)
	if err != nil {
		return nil, err
	}
	if r.collector != nil {
		r.collector.SetReputation(state.IPReputation)
	}
	if !allowed {
		if r.collector != nil {
			r.collector.RecordDenial()
		}
		r.emit(prep.JobRef, types.StatusRiskHalt, fmt.Sprintf("Risk shield denied the action (level %s)", state.Level), &state)
		return nil, &RiskDeniedError{State: state}
	}

	r.emit(prep.JobRef, types.StatusApplying, "Dispatching application", nil)
	result, err := r.dispatcher.Submit(ctx, job, profile, materials)
	if err != nil {
		return nil, r.fail(prep.JobRef, fmt.Errorf("dispatch failed: %w", err))
	}
	if !result.Success {
		return nil, r.fail(prep.JobRef, &DispatchError{Message: result.Message})
	}

	entry := &types.ApplicationLogEntry{
		ID:               uuid.NewString(),
		JobID:            job.ID,
		JobTitle:         job.Title,
		Company:          job.Company,
		Status:           types.StatusCompleted,
		Timestamp:        r.now(),
		URL:              result.Endpoint,
		Platform:         job.Platform,
		Location:         job.Location,
		CoverLetter:      coverLetter,
		CoverLetterStyle: style,
		MutatedResume:    &mutation.MutatedResume,
		MutationReport:   &mutation.Report,
	}

	if r.ledger != nil {
		if err := r.ledger.AppendApplication(ctx, entry); err != nil {
			r.journal.Logf("[%s] Warning: failed to persist application record: %v", prep.JobRef, err)
		}
	}
	if r.collector != nil {
		r.collector.RecordCompleted()
	}

	r.emit(prep.JobRef, types.StatusCompleted, "Application submitted at "+result.Endpoint, entry)
	return entry, nil
}

// Run drives a single job through the full state machine. The risk lock
// rejects new runs before any work starts.
func (r *Runner) Run(ctx context.Context, jobRef string, profile *types.UserProfile, style types.CoverLetterStyle) (*types.ApplicationLogEntry, error) {
	if r.shield.Snapshot().Locked {
		return nil, ErrLocked
	}

	prep, err := r.Prepare(ctx, jobRef, profile)
	if err != nil {
		return nil, err
	}

	if err := r.pace(ctx, singleDelayMin, singleDelayMax); err != nil {
		return nil, err
	}

	return r.Complete(ctx, prep, profile, style)
}

// fail records a FAILED terminus and returns the error unchanged in meaning.
func (r *Runner) fail(jobRef string, err error) error {
	if r.collector != nil {
		r.collector.RecordFailed()
	}
	r.emit(jobRef, types.StatusFailed, err.Error(), nil)
	return err
}
