package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/autojob/internal/db"
	"github.com/jonathan/autojob/internal/pipeline"
	"github.com/jonathan/autojob/internal/strategy"
	"github.com/jonathan/autojob/internal/types"
)

// authTokenRequest is the request body for POST /auth/token
type authTokenRequest struct {
	OperatorKey string `json:"operator_key"`
}

// handleAuthToken exchanges the operator key for a session token.
func (s *Server) handleAuthToken(w http.ResponseWriter, r *http.Request) {
	if s.operatorCfg == nil || s.jwtService == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "operator authentication not configured")
		return
	}

	var req authTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.OperatorKey == "" {
		err := &ErrValidation{Field: "operator_key", Message: "operator_key is required"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	if !s.operatorCfg.VerifyKey(req.OperatorKey, s.operatorKeyHash) {
		err := &ErrInvalidOperatorKey{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	token, err := s.jwtService.GenerateToken("operator")
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"token": token})
}

// applyRequest is the request body for POST /apply and POST /apply/stream
type applyRequest struct {
	JobURL string `json:"job_url"`
	Style  string `json:"style,omitempty"`
	Skill  string `json:"skill,omitempty"`
}

func (s *Server) decodeApplyRequest(w http.ResponseWriter, r *http.Request) (*applyRequest, bool) {
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return nil, false
	}
	if req.JobURL == "" {
		err := &ErrValidation{Field: "job_url", Message: "job_url is required"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return nil, false
	}
	return &req, true
}

// applyStyle resolves the request's style, falling back to the server default.
func (s *Server) applyStyle(req *applyRequest) types.CoverLetterStyle {
	if req.Style == "" {
		return s.style
	}
	return types.ParseStyle(req.Style)
}

// runApply drives one job through the pipeline, with an optional skill
// augmentation pass between scoring and materials.
func (s *Server) runApply(ctx context.Context, req *applyRequest) (*types.ApplicationLogEntry, error) {
	style := s.applyStyle(req)

	if req.Skill == "" {
		return s.runner.Run(ctx, req.JobURL, s.profile, style)
	}

	if s.shield.Snapshot().Locked {
		return nil, pipeline.ErrLocked
	}

	// Augmentation mutates the profile's primary track; a bulk run may be
	// reading the shared profile concurrently, so work on a copy.
	profile := s.profile.Clone()
	prep, err := s.runner.Prepare(ctx, req.JobURL, profile)
	if err != nil {
		return nil, err
	}
	if err := s.runner.Augment(ctx, prep, profile, req.Skill); err != nil {
		return nil, err
	}
	return s.runner.Complete(ctx, prep, profile, style)
}

// handleApply runs a single application synchronously.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeApplyRequest(w, r)
	if !ok {
		return
	}

	entry, err := s.runApply(r.Context(), req)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, entry)
}

// handleApplyStream runs a single application while streaming journal
// activity to the client as Server-Sent Events.
func (s *Server) handleApplyStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeApplyRequest(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	entries, unsubscribe := s.journal.Subscribe()
	defer unsubscribe()

	type applyOutcome struct {
		entry *types.ApplicationLogEntry
		err   error
	}
	done := make(chan applyOutcome, 1)
	go func() {
		entry, err := s.runApply(r.Context(), req)
		done <- applyOutcome{entry: entry, err: err}
	}()

	for {
		select {
		case entry := <-entries:
			sse.WriteEvent("progress", entry) //nolint:errcheck
		case outcome := <-done:
			// Drain activity logged just before completion.
			for {
				select {
				case entry := <-entries:
					sse.WriteEvent("progress", entry) //nolint:errcheck
					continue
				default:
				}
				break
			}
			if outcome.err != nil {
				sse.WriteError(outcome.err.Error())
				return
			}
			sse.WriteEvent("result", outcome.entry) //nolint:errcheck
			sse.WriteComplete(req.JobURL, string(outcome.entry.Status))
			return
		case <-r.Context().Done():
			return
		}
	}
}

// bulkRequest is the request body for POST /bulk
type bulkRequest struct {
	JobURLs []string `json:"job_urls"`
	Style   string   `json:"style,omitempty"`
}

// handleBulkStart begins an asynchronous bulk run. Only one bulk run may be
// in flight at a time.
func (s *Server) handleBulkStart(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.JobURLs) == 0 {
		err := &ErrValidation{Field: "job_urls", Message: "at least one job URL is required"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if s.shield.Snapshot().Locked {
		s.errorResponse(w, HTTPStatus(pipeline.ErrLocked), pipeline.ErrLocked.Error())
		return
	}

	style := s.style
	if req.Style != "" {
		style = types.ParseStyle(req.Style)
	}

	s.bulkMu.Lock()
	if s.bulkRunning {
		s.bulkMu.Unlock()
		err := &ErrBulkAlreadyRunning{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.bulkRunning = true
	s.bulkCancel = cancel
	s.bulkMu.Unlock()

	go func() {
		defer cancel()
		summary, err := s.runner.RunBulk(ctx, req.JobURLs, s.profile, style)
		if err != nil {
			s.journal.Logf("Bulk run error: %v", err)
		}

		s.bulkMu.Lock()
		s.bulkRunning = false
		s.bulkCancel = nil
		if summary != nil {
			s.bulkLast = summary
		}
		s.bulkMu.Unlock()
	}()

	s.jsonResponse(w, http.StatusAccepted, map[string]any{
		"status": "started",
		"total":  len(req.JobURLs),
	})
}

// handleBulkStatus reports whether a bulk run is in flight and the summary
// of the most recently finished one.
func (s *Server) handleBulkStatus(w http.ResponseWriter, _ *http.Request) {
	s.bulkMu.Lock()
	running := s.bulkRunning
	last := s.bulkLast
	s.bulkMu.Unlock()

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"running": running,
		"last":    last,
	})
}

// handleBulkCancel requests cancellation of the in-flight bulk run. The
// current item finishes; remaining items are marked aborted.
func (s *Server) handleBulkCancel(w http.ResponseWriter, _ *http.Request) {
	s.bulkMu.Lock()
	cancel := s.bulkCancel
	s.bulkMu.Unlock()

	if cancel == nil {
		err := &ErrNoBulkRun{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	cancel()
	s.journal.Logf("Bulk cancellation requested by operator")
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "cancelling"})
}

// commandRequest is the request body for POST /command
type commandRequest struct {
	Instruction string `json:"instruction"`
}

// handleCommand interprets a natural-language instruction and applies it.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Instruction == "" {
		err := &ErrValidation{Field: "instruction", Message: "instruction is required"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	outcome, err := s.cmdRouter.Execute(r.Context(), req.Instruction, s.profile)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, outcome)
}

func (s *Server) handleRiskStatus(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.shield.Snapshot())
}

func (s *Server) handleRiskLock(w http.ResponseWriter, _ *http.Request) {
	state := s.shield.Lock()
	s.journal.Logf("Risk shield locked by operator")
	s.jsonResponse(w, http.StatusOK, state)
}

func (s *Server) handleRiskUnlock(w http.ResponseWriter, _ *http.Request) {
	state := s.shield.Unlock()
	s.journal.Logf("Risk shield unlocked by operator")
	s.jsonResponse(w, http.StatusOK, state)
}

func (s *Server) handleRiskOverride(w http.ResponseWriter, _ *http.Request) {
	state := s.shield.Override()
	s.journal.Logf("Risk shield overridden by operator, level now %s", state.Level)
	s.jsonResponse(w, http.StatusOK, state)
}

func (s *Server) handleStrategyGet(w http.ResponseWriter, _ *http.Request) {
	plan := s.controller.Current()
	if plan == nil {
		err := &ErrStrategyNotFound{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, plan)
}

// strategyBuildRequest is the request body for POST /strategy
type strategyBuildRequest struct {
	Goal string `json:"goal"`
}

// handleStrategyBuild derives a plan from a stated goal and adopts it.
func (s *Server) handleStrategyBuild(w http.ResponseWriter, r *http.Request) {
	var req strategyBuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Goal == "" {
		err := &ErrValidation{Field: "goal", Message: "goal is required"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	plan, err := s.planner.BuildPlan(r.Context(), req.Goal, s.profile, s.controller.Current())
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.controller.Adopt(plan)
	s.journal.Logf("Strategy plan adopted: %s (%d/day)", plan.Goal, plan.DailyQuota)
	s.jsonResponse(w, http.StatusCreated, plan)
}

// handleStrategyUpdate merges a partial update into the active plan.
func (s *Server) handleStrategyUpdate(w http.ResponseWriter, r *http.Request) {
	var update types.PlanUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	changed, plan, err := s.controller.Update(update)
	if err != nil {
		if errors.Is(err, strategy.ErrNoPlan) {
			notFound := &ErrStrategyNotFound{}
			s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
			return
		}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if changed {
		s.journal.Logf("Strategy plan updated")
	}
	s.jsonResponse(w, http.StatusOK, plan)
}

func (s *Server) handleStrategyToggle(w http.ResponseWriter, _ *http.Request) {
	plan, err := s.controller.Toggle()
	if err != nil {
		notFound := &ErrStrategyNotFound{}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}
	s.journal.Logf("Strategy plan toggled to %s", plan.Status)
	s.jsonResponse(w, http.StatusOK, plan)
}

func (s *Server) handleStrategyClear(w http.ResponseWriter, _ *http.Request) {
	s.controller.Clear()
	s.journal.Logf("Strategy plan cleared")
	w.WriteHeader(http.StatusNoContent)
}

// handleStrategyBrief produces a plain-text campaign brief for the active
// plan, fed by recent ledger activity when a database is configured.
func (s *Server) handleStrategyBrief(w http.ResponseWriter, r *http.Request) {
	plan := s.controller.Current()
	if plan == nil {
		err := &ErrStrategyNotFound{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	var activity []types.ApplicationLogEntry
	if s.database != nil {
		entries, err := s.database.ListApplications(r.Context(), db.ApplicationFilters{Limit: 20})
		if err == nil {
			activity = entries
		}
	}

	brief, err := s.planner.Brief(r.Context(), plan, activity)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"brief": brief})
}

// handleListApplications returns recent ledger entries, newest first.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	if s.database == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "application ledger not configured")
		return
	}

	filters := db.ApplicationFilters{
		Status:  types.ApplicationStatus(r.URL.Query().Get("status")),
		Company: r.URL.Query().Get("company"),
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if _, err := fmt.Sscanf(limit, "%d", &filters.Limit); err != nil || filters.Limit < 0 {
			valErr := &ErrValidation{Field: "limit", Message: "limit must be a non-negative integer"}
			s.errorResponse(w, HTTPStatus(valErr), valErr.Error())
			return
		}
	}

	entries, err := s.database.ListApplications(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []types.ApplicationLogEntry{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"applications": entries,
		"count":        len(entries),
	})
}

// handleJournal returns the in-memory activity journal, newest first.
func (s *Server) handleJournal(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"entries": s.journal.Entries()})
}

// handleEvents streams journal activity to the client as Server-Sent Events
// until the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	entries, unsubscribe := s.journal.Subscribe()
	defer unsubscribe()

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return
			}
			if err := sse.WriteEvent("journal", entry); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
