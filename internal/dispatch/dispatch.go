// Package dispatch submits prepared applications, either through the
// browser-automation server or as a manual handoff.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jonathan/autojob/internal/types"
)

const defaultTimeout = 120 * time.Second

// applicationProfile is the form-fill payload the automation server expects.
type applicationProfile struct {
	FullName  string           `json:"fullName"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone"`
	LinkedIn  string           `json:"linkedin"`
	Portfolio string           `json:"portfolio"`
	Resume    types.ResumeJSON `json:"resume"`
}

// Result is the automation server's verdict on one submission.
type Result struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	FilledFields []string `json:"filledFields"`
	Screenshot   string   `json:"screenshot,omitempty"`
	// Endpoint is where the application went: the automation server, or the
	// apply URL itself in manual handoff mode.
	Endpoint string `json:"endpoint"`
	Manual   bool   `json:"manual"`
}

// Dispatcher sends application payloads. With an empty server URL it runs in
// manual handoff mode: no network call, the operator applies at the URL.
type Dispatcher struct {
	ServerURL string
	Client    *http.Client
}

// NewDispatcher creates a dispatcher. serverURL may be empty for manual mode.
func NewDispatcher(serverURL string) *Dispatcher {
	return &Dispatcher{
		ServerURL: serverURL,
		Client:    &http.Client{Timeout: defaultTimeout},
	}
}

// Submit delivers the application. Automation failures are returned as a
// non-success Result rather than an error so the pipeline can record the
// outcome; only payload encoding and context failures error.
func (d *Dispatcher) Submit(ctx context.Context, job *types.JobRecord, profile *types.UserProfile, materials *types.ApplicationMaterials) (*Result, error) {
	if job == nil || profile == nil || materials == nil {
		return nil, fmt.Errorf("dispatch: job, profile, and materials are required")
	}

	if d.ServerURL == "" {
		return &Result{
			Success:  true,
			Message:  "No automation endpoint configured; apply manually at the job URL",
			Endpoint: job.ApplyURL,
			Manual:   true,
		}, nil
	}

	payload := struct {
		JobURL      string             `json:"jobUrl"`
		Profile     applicationProfile `json:"profile"`
		CoverLetter string             `json:"coverLetter"`
		Resume      types.ResumeJSON   `json:"resume"`
		ResumeText  string             `json:"resumeText"`
	}{
		JobURL: job.ApplyURL,
		Profile: applicationProfile{
			FullName:  profile.FullName,
			Email:     profile.Email,
			Phone:     profile.Phone,
			LinkedIn:  profile.LinkedIn,
			Portfolio: profile.Portfolio,
			Resume:    materials.Resume,
		},
		CoverLetter: materials.CoverLetter,
		Resume:      materials.Resume,
		// Plain-text rendering for boards whose forms take a paste field.
		ResumeText: FormatResumeText(materials.Resume),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("dispatch: failed to encode payload: %w", err)
	}

	endpoint := d.ServerURL + "/api/jobs/apply"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("dispatch: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return &Result{Success: false, Message: "automation server unreachable: " + err.Error(), Endpoint: endpoint}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &Result{Success: false, Message: fmt.Sprintf("automation server returned HTTP %d", resp.StatusCode), Endpoint: endpoint}, nil
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return &Result{Success: false, Message: "unreadable automation response: " + err.Error(), Endpoint: endpoint}, nil
	}
	result.Endpoint = endpoint
	return &result, nil
}
