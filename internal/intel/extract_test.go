package intel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/autojob/internal/fetch"
	"github.com/jonathan/autojob/internal/llm"
	"github.com/jonathan/autojob/internal/types"
)

// mockClient returns canned LLM responses and records the last prompt.
type mockClient struct {
	response   string
	err        error
	lastPrompt string
	lastTier   llm.ModelTier
}

func (m *mockClient) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.lastPrompt = prompt
	m.lastTier = tier
	return m.response, m.err
}

func (m *mockClient) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.lastPrompt = prompt
	m.lastTier = tier
	return m.response, m.err
}

func (m *mockClient) GetModel(llm.ModelTier) string { return "mock-model" }
func (m *mockClient) Close() error                  { return nil }

// mockFetcher serves a fixed page text.
type mockFetcher struct {
	text string
	html string
	err  error
}

func (m *mockFetcher) Fetch(context.Context, string) (*fetch.CachedResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &fetch.CachedResult{
		Result: &fetch.Result{Text: m.text, HTML: m.html, StatusCode: 200},
	}, nil
}

// longPageText is padded past the SPA-detection length so extraction does
// not try to launch a browser.
func longPageText(core string) string {
	pad := ""
	for len(core+pad) < 600 {
		pad += " We are a fast growing company building infrastructure for developers."
	}
	return core + pad
}

const validExtractionJSON = `{
	"title": "Backend Engineer",
	"company": "Acme",
	"location": "Remote",
	"skills": ["Go", "PostgreSQL"],
	"description": "Build and run backend services.",
	"intent_signals": [
		{"type": "Real Hire", "confidence": 0.85, "reasoning": "specific team and stack"},
		{"type": "Evergreen/Pipeline", "confidence": 0.2, "reasoning": "old posting date"}
	]
}`

func newTestExtractor(client llm.Client, fetcher Fetcher) *Extractor {
	e := NewExtractor(client, fetcher)
	e.browse = func(context.Context, string, time.Duration, bool) (string, error) {
		return "", errors.New("no browser in tests")
	}
	e.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return e
}

func TestExtractJob(t *testing.T) {
	client := &mockClient{response: validExtractionJSON}
	fetcher := &mockFetcher{text: longPageText("Backend Engineer at Acme. Go, PostgreSQL.")}
	e := newTestExtractor(client, fetcher)

	record, err := e.ExtractJob(context.Background(), "https://www.linkedin.com/jobs/view/123")
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "Backend Engineer", record.Title)
	assert.Equal(t, "Acme", record.Company)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, record.Skills)
	assert.Equal(t, types.PlatformLinkedIn, record.Platform)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/123", record.ApplyURL)
	assert.Equal(t, 2025, record.ScrapedAt.Year())

	require.NotNil(t, record.Intent)
	assert.Equal(t, types.IntentRealHire, record.Intent.Type, "highest-confidence signal wins")
}

func TestExtractJob_FetchFailureFallsBackToURL(t *testing.T) {
	client := &mockClient{response: validExtractionJSON}
	fetcher := &mockFetcher{err: errors.New("connection refused")}
	e := newTestExtractor(client, fetcher)

	record, err := e.ExtractJob(context.Background(), "https://acme.example/careers/senior-backend-engineer")
	require.NoError(t, err)

	assert.Equal(t, "Senior Backend Engineer", record.Title)
	assert.Equal(t, "Acme", record.Company)
	assert.Empty(t, record.Skills)
	assert.Equal(t, types.PlatformOther, record.Platform)

	// The fallback record still gets an intent judgment from the cheap tier.
	require.NotNil(t, record.Intent)
	assert.Equal(t, types.IntentRealHire, record.Intent.Type)
	assert.Equal(t, llm.TierLite, client.lastTier)
}

func TestExtractJob_FallbackIntentFailureLeavesIntentNil(t *testing.T) {
	client := &mockClient{response: "not json either"}
	fetcher := &mockFetcher{err: errors.New("connection refused")}
	e := newTestExtractor(client, fetcher)

	record, err := e.ExtractJob(context.Background(), "https://acme.example/careers/platform-engineer")
	require.NoError(t, err)
	assert.Equal(t, "Platform Engineer", record.Title)
	assert.Nil(t, record.Intent)
}

func TestExtractJob_LLMFailureFallsBack(t *testing.T) {
	client := &mockClient{err: errors.New("quota exceeded")}
	fetcher := &mockFetcher{text: longPageText("some posting")}
	e := newTestExtractor(client, fetcher)

	record, err := e.ExtractJob(context.Background(), "https://www.indeed.com/viewjob?jk=abc")
	require.NoError(t, err)

	assert.Equal(t, types.PlatformIndeed, record.Platform)
	assert.Equal(t, "Unknown Role", record.Title)
}

func TestExtractJob_MalformedLLMOutputFallsBack(t *testing.T) {
	client := &mockClient{response: "this is not JSON"}
	fetcher := &mockFetcher{text: longPageText("some posting")}
	e := newTestExtractor(client, fetcher)

	record, err := e.ExtractJob(context.Background(), "https://wellfound.com/jobs/9-platform-engineer")
	require.NoError(t, err)

	assert.Equal(t, "Platform Engineer", record.Title)
	assert.Equal(t, "Wellfound", record.Company)
}

func TestExtractJob_MissingTitleFallsBack(t *testing.T) {
	client := &mockClient{response: `{"title": "", "company": "Acme", "skills": [], "description": "x"}`}
	fetcher := &mockFetcher{text: longPageText("some posting")}
	e := newTestExtractor(client, fetcher)

	record, err := e.ExtractJob(context.Background(), "https://acme.example/jobs/123")
	require.NoError(t, err)

	assert.Equal(t, "Unknown Role", record.Title)
}

func TestExtractJob_ContextCancelled(t *testing.T) {
	client := &mockClient{response: validExtractionJSON}
	fetcher := &mockFetcher{err: errors.New("cancelled")}
	e := newTestExtractor(client, fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ExtractJob(ctx, "https://acme.example/jobs/123")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTitleFromURL(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://acme.example/careers/staff-platform-engineer", "Staff Platform Engineer"},
		{"https://wellfound.com/jobs/1234-backend-engineer", "Backend Engineer"},
		{"https://www.linkedin.com/jobs/view/3984271", "Unknown Role"},
		{"https://acme.example/", "Unknown Role"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, titleFromURL(tt.url), tt.url)
	}
}

func TestCompanyFromURL(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.acme.example/jobs/1", "Acme"},
		{"https://jobs.greenhouse.io/acme/1", "Jobs"},
		{"not a url at all", "Unknown Company"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, companyFromURL(tt.url), tt.url)
	}
}

func TestAnalyzeIntent(t *testing.T) {
	client := &mockClient{response: `{"intent_signals": [{"type": "Ghost Job", "confidence": 0.7, "reasoning": "reposted for months"}]}`}
	e := newTestExtractor(client, &mockFetcher{})

	signal, err := e.AnalyzeIntent(context.Background(), &types.JobRecord{ID: "j1", Title: "x", Company: "y"})
	require.NoError(t, err)

	assert.Equal(t, types.IntentGhostJob, signal.Type)
	assert.Equal(t, llm.TierLite, client.lastTier)
}

func TestAnalyzeIntent_APIError(t *testing.T) {
	client := &mockClient{err: errors.New("unavailable")}
	e := newTestExtractor(client, &mockFetcher{})

	_, err := e.AnalyzeIntent(context.Background(), &types.JobRecord{})
	require.Error(t, err)

	var apiErr *APICallError
	assert.ErrorAs(t, err, &apiErr)
}
