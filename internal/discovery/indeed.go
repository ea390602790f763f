package discovery

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/jonathan/autojob/internal/types"
)

const indeedBaseURL = "https://rss.indeed.com/rss"

// IndeedSource reads the public Indeed RSS feed. No API key required.
type IndeedSource struct {
	BaseURL string
	Client  *http.Client
}

// NewIndeedSource creates an Indeed RSS source.
func NewIndeedSource() *IndeedSource {
	return &IndeedSource{
		BaseURL: indeedBaseURL,
		Client:  &http.Client{Timeout: defaultTimeout},
	}
}

func (s *IndeedSource) Name() string { return "Indeed" }

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
}

// Patterns tried in order against the item description to recover the
// company name.
var companyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)company[:\s]+([^<.,]+)`),
	regexp.MustCompile(`(?i)<b>([^<]+)</b>`),
	regexp.MustCompile(`(?i)at\s+([^<,]+)`),
}

// Search fetches the RSS feed sorted by date and parses up to 15 items.
func (s *IndeedSource) Search(ctx context.Context, q Query) ([]types.DiscoveredJob, error) {
	location := q.Location
	if q.Remote {
		location = "remote"
	}
	params := url.Values{
		"q":    {q.Keywords},
		"l":    {location},
		"sort": {"date"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &SourceError{Source: s.Name(), Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, &SourceError{Source: s.Name(), Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &SourceError{Source: s.Name(), Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, &SourceError{Source: s.Name(), Message: "failed to parse RSS", Cause: err}
	}

	jobs := make([]types.DiscoveredJob, 0, len(feed.Channel.Items))
	for i, item := range feed.Channel.Items {
		if i == maxResults {
			break
		}
		title := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(item.Title), "- "))
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}
		jobs = append(jobs, types.DiscoveredJob{
			Title:    title,
			Company:  companyFromDescription(item.Description),
			Location: location,
			URL:      link,
			Source:   s.Name(),
		})
	}
	return jobs, nil
}

func companyFromDescription(description string) string {
	for _, pattern := range companyPatterns {
		if m := pattern.FindStringSubmatch(description); m != nil {
			company := strings.TrimSpace(m[1])
			if len(company) > 100 {
				company = company[:100]
			}
			return company
		}
	}
	return "Unknown Company"
}
