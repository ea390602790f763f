package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonathan/autojob/internal/types"
)

const adzunaBaseURL = "https://api.adzuna.com/v1/api/jobs"

// AdzunaSource queries the Adzuna job board REST API.
type AdzunaSource struct {
	AppID   string
	AppKey  string
	BaseURL string
	Client  *http.Client
}

// NewAdzunaSource creates an Adzuna source with the given credentials.
func NewAdzunaSource(appID, appKey string) *AdzunaSource {
	return &AdzunaSource{
		AppID:   appID,
		AppKey:  appKey,
		BaseURL: adzunaBaseURL,
		Client:  &http.Client{Timeout: defaultTimeout},
	}
}

func (s *AdzunaSource) Name() string { return "Adzuna" }

type adzunaResponse struct {
	Results []struct {
		Title   string `json:"title"`
		Company struct {
			DisplayName string `json:"display_name"`
		} `json:"company"`
		Location struct {
			DisplayName string `json:"display_name"`
		} `json:"location"`
		RedirectURL string `json:"redirect_url"`
	} `json:"results"`
}

// Search queries Adzuna's first results page, newest first.
func (s *AdzunaSource) Search(ctx context.Context, q Query) ([]types.DiscoveredJob, error) {
	if s.AppID == "" || s.AppKey == "" {
		return nil, &SourceError{Source: s.Name(), Message: "credentials not configured"}
	}

	where := q.Location
	if q.Remote {
		where = "remote"
	}
	params := url.Values{
		"app_id":           {s.AppID},
		"app_key":          {s.AppKey},
		"what":             {q.Keywords},
		"where":            {where},
		"results_per_page": {"15"},
		"content_type":     {"job"},
		"sort_by":          {"date"},
	}

	endpoint := fmt.Sprintf("%s/%s/search/1?%s", s.BaseURL, countryCode(q.Location), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &SourceError{Source: s.Name(), Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, &SourceError{Source: s.Name(), Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &SourceError{Source: s.Name(), Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}

	var parsed adzunaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &SourceError{Source: s.Name(), Message: "failed to decode response", Cause: err}
	}

	jobs := make([]types.DiscoveredJob, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.RedirectURL == "" {
			continue
		}
		job := types.DiscoveredJob{
			Title:    r.Title,
			Company:  r.Company.DisplayName,
			Location: r.Location.DisplayName,
			URL:      r.RedirectURL,
			Source:   s.Name(),
		}
		if job.Title == "" {
			job.Title = "Untitled Position"
		}
		if job.Company == "" {
			job.Company = "Unknown Company"
		}
		if job.Location == "" {
			job.Location = q.Location
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// countryCode maps a free-form location to an Adzuna country segment.
func countryCode(location string) string {
	countries := map[string]string{
		"US": "us", "United States": "us", "USA": "us",
		"UK": "gb", "United Kingdom": "gb",
		"Canada":    "ca",
		"Australia": "au",
		"Germany":   "de",
		"France":    "fr",
	}
	for name, code := range countries {
		if strings.Contains(location, name) {
			return code
		}
	}
	return "us"
}
