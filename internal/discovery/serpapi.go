package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jonathan/autojob/internal/types"
)

const serpAPIBaseURL = "https://serpapi.com/search"

// SerpAPISource queries Google Jobs through SerpAPI.
type SerpAPISource struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// NewSerpAPISource creates a SerpAPI source with the given key.
func NewSerpAPISource(apiKey string) *SerpAPISource {
	return &SerpAPISource{
		APIKey:  apiKey,
		BaseURL: serpAPIBaseURL,
		Client:  &http.Client{Timeout: defaultTimeout},
	}
}

func (s *SerpAPISource) Name() string { return "Google Jobs" }

type serpAPIResponse struct {
	JobsResults []struct {
		Title        string `json:"title"`
		CompanyName  string `json:"company_name"`
		Location     string `json:"location"`
		ApplyOptions []struct {
			Link string `json:"link"`
		} `json:"apply_options"`
		RelatedLinks []struct {
			Link string `json:"link"`
		} `json:"related_links"`
	} `json:"jobs_results"`
}

// Search queries the google_jobs engine.
func (s *SerpAPISource) Search(ctx context.Context, q Query) ([]types.DiscoveredJob, error) {
	if s.APIKey == "" {
		return nil, &SourceError{Source: s.Name(), Message: "API key not configured"}
	}

	location := q.Location
	if q.Remote {
		location = "remote"
	}
	params := url.Values{
		"api_key":  {s.APIKey},
		"engine":   {"google_jobs"},
		"q":        {q.Keywords},
		"location": {location},
		"num":      {"15"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &SourceError{Source: s.Name(), Message: "failed to build request", Cause: err}
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, &SourceError{Source: s.Name(), Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &SourceError{Source: s.Name(), Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	var parsed serpAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &SourceError{Source: s.Name(), Message: "failed to decode response", Cause: err}
	}

	jobs := make([]types.DiscoveredJob, 0, len(parsed.JobsResults))
	for _, r := range parsed.JobsResults {
		link := ""
		if len(r.ApplyOptions) > 0 {
			link = r.ApplyOptions[0].Link
		} else if len(r.RelatedLinks) > 0 {
			link = r.RelatedLinks[0].Link
		}
		if link == "" {
			continue
		}
		company := r.CompanyName
		if company == "" {
			company = "Unknown Company"
		}
		loc := r.Location
		if loc == "" {
			loc = q.Location
		}
		jobs = append(jobs, types.DiscoveredJob{
			Title:    r.Title,
			Company:  company,
			Location: loc,
			URL:      link,
			Source:   s.Name(),
		})
	}
	return jobs, nil
}
