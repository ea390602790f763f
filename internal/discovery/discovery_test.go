package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/autojob/internal/types"
)

type fakeSource struct {
	name string
	jobs []types.DiscoveredJob
	err  error
}

func (f *fakeSource) Name() string { return f.name }
func (f *fakeSource) Search(context.Context, Query) ([]types.DiscoveredJob, error) {
	return f.jobs, f.err
}

func job(url string) types.DiscoveredJob {
	return types.DiscoveredJob{Title: "Engineer", Company: "Acme", URL: url, Source: "test"}
}

func TestAggregatorDedupesByURL(t *testing.T) {
	a := NewAggregator(nil,
		&fakeSource{name: "one", jobs: []types.DiscoveredJob{job("https://a"), job("https://b")}},
		&fakeSource{name: "two", jobs: []types.DiscoveredJob{job("https://b"), job("https://c")}},
	)

	jobs, err := a.Search(context.Background(), types.Preferences{})
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "https://a", jobs[0].URL)
	assert.Equal(t, "https://b", jobs[1].URL)
	assert.Equal(t, "https://c", jobs[2].URL)
}

func TestAggregatorCapsResults(t *testing.T) {
	var many []types.DiscoveredJob
	for i := 0; i < 30; i++ {
		many = append(many, job(fmt.Sprintf("https://example.com/%d", i)))
	}
	a := NewAggregator(nil, &fakeSource{name: "big", jobs: many})

	jobs, err := a.Search(context.Background(), types.Preferences{})
	require.NoError(t, err)
	assert.Len(t, jobs, maxResults)
}

func TestAggregatorToleratesPartialFailure(t *testing.T) {
	a := NewAggregator(nil,
		&fakeSource{name: "down", err: &SourceError{Source: "down", Message: "boom"}},
		&fakeSource{name: "up", jobs: []types.DiscoveredJob{job("https://a")}},
	)

	jobs, err := a.Search(context.Background(), types.Preferences{})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestAggregatorAllSourcesFailed(t *testing.T) {
	a := NewAggregator(nil,
		&fakeSource{name: "one", err: &SourceError{Source: "one", Message: "boom"}},
		&fakeSource{name: "two", err: &SourceError{Source: "two", Message: "boom"}},
	)

	_, err := a.Search(context.Background(), types.Preferences{})
	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
}

func TestQueryFromPreferences(t *testing.T) {
	q := queryFromPreferences(types.Preferences{
		TargetRoles: []string{"Backend Engineer", "SRE"},
		Locations:   []string{"Seattle", "Portland"},
		RemoteOnly:  true,
	})
	assert.Equal(t, "Backend Engineer SRE", q.Keywords)
	assert.Equal(t, "Seattle", q.Location)
	assert.True(t, q.Remote)

	q = queryFromPreferences(types.Preferences{})
	assert.Equal(t, "software engineer", q.Keywords)
	assert.Equal(t, "US", q.Location)
}

func TestAdzunaSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/us/search/1")
		assert.Equal(t, "Backend Engineer", r.URL.Query().Get("what"))
		assert.Equal(t, "remote", r.URL.Query().Get("where"))
		fmt.Fprint(w, `{"results": [
			{"title": "Backend Engineer", "company": {"display_name": "Acme"}, "location": {"display_name": "Seattle, WA"}, "redirect_url": "https://adzuna.example.com/1"},
			{"title": "", "company": {}, "location": {}, "redirect_url": "https://adzuna.example.com/2"},
			{"title": "No Link", "redirect_url": ""}
		]}`)
	}))
	defer srv.Close()

	s := NewAdzunaSource("id", "key")
	s.BaseURL = srv.URL

	jobs, err := s.Search(context.Background(), Query{Keywords: "Backend Engineer", Location: "US", Remote: true})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Acme", jobs[0].Company)
	assert.Equal(t, "Adzuna", jobs[0].Source)
	assert.Equal(t, "Untitled Position", jobs[1].Title)
	assert.Equal(t, "Unknown Company", jobs[1].Company)
}

func TestAdzunaMissingCredentials(t *testing.T) {
	s := NewAdzunaSource("", "")
	_, err := s.Search(context.Background(), Query{})
	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
}

func TestAdzunaHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "exceeded rate limit", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewAdzunaSource("id", "key")
	s.BaseURL = srv.URL

	_, err := s.Search(context.Background(), Query{Location: "US"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestCountryCode(t *testing.T) {
	assert.Equal(t, "us", countryCode("San Francisco, United States"))
	assert.Equal(t, "gb", countryCode("London, UK"))
	assert.Equal(t, "ca", countryCode("Toronto, Canada"))
	assert.Equal(t, "us", countryCode("Remote"))
}

func TestSerpAPISearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "google_jobs", r.URL.Query().Get("engine"))
		fmt.Fprint(w, `{"jobs_results": [
			{"title": "SRE", "company_name": "Acme", "location": "Remote", "apply_options": [{"link": "https://serp.example.com/1"}]},
			{"title": "Platform Engineer", "company_name": "", "related_links": [{"link": "https://serp.example.com/2"}]},
			{"title": "Linkless", "company_name": "Nowhere"}
		]}`)
	}))
	defer srv.Close()

	s := NewSerpAPISource("key")
	s.BaseURL = srv.URL

	jobs, err := s.Search(context.Background(), Query{Keywords: "SRE", Location: "US"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Google Jobs", jobs[0].Source)
	assert.Equal(t, "https://serp.example.com/2", jobs[1].URL)
	assert.Equal(t, "Unknown Company", jobs[1].Company)
}

func TestIndeedSearch(t *testing.T) {
	feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
  <item>
    <title> - Backend Engineer</title>
    <link>https://indeed.example.com/1</link>
    <description>Great role at &lt;b&gt;Acme Corp&lt;/b&gt; building services.</description>
  </item>
  <item>
    <title>Data Engineer</title>
    <link>https://indeed.example.com/2</link>
    <description>Company: Globex. Pipelines all day.</description>
  </item>
  <item>
    <title></title>
    <link>https://indeed.example.com/skip</link>
    <description>no title</description>
  </item>
</channel></rss>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "kafka", r.URL.Query().Get("q"))
		assert.Equal(t, "remote", r.URL.Query().Get("l"))
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feed)
	}))
	defer srv.Close()

	s := NewIndeedSource()
	s.BaseURL = srv.URL

	jobs, err := s.Search(context.Background(), Query{Keywords: "kafka", Location: "US", Remote: true})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Backend Engineer", jobs[0].Title)
	assert.Equal(t, "Globex", jobs[1].Company)
	assert.Equal(t, "Indeed", jobs[1].Source)
}

func TestCompanyFromDescription(t *testing.T) {
	assert.Equal(t, "Globex", companyFromDescription("Company: Globex. Pipelines."))
	assert.Equal(t, "Acme Corp", companyFromDescription("role at <b>Acme Corp</b> here"))
	assert.Equal(t, "Unknown Company", companyFromDescription("nothing useful"))
}
