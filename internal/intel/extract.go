// Package intel extracts structured job records from posting URLs and scores
// them against the candidate profile.
package intel

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/autojob/internal/fetch"
	"github.com/jonathan/autojob/internal/llm"
	"github.com/jonathan/autojob/internal/schemas"
	"github.com/jonathan/autojob/internal/types"
)

// Fetcher retrieves page content for a posting URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.CachedResult, error)
}

// Extractor turns a raw posting URL into a structured JobRecord.
//
// Extraction degrades rather than fails: when the page cannot be fetched or
// the LLM output is unusable, a minimal valid record derived from the URL is
// returned so the pipeline can continue.
type Extractor struct {
	client  llm.Client
	fetcher Fetcher

	// browse renders JavaScript-heavy pages. Overridable in tests.
	browse func(ctx context.Context, url string, timeout time.Duration, verbose bool) (string, error)
	now    func() time.Time
}

// NewExtractor creates an Extractor.
func NewExtractor(client llm.Client, fetcher Fetcher) *Extractor {
	return &Extractor{
		client:  client,
		fetcher: fetcher,
		browse:  fetch.WithBrowser,
		now:     time.Now,
	}
}

// extractOutput is the LLM's extraction shape.
type extractOutput struct {
	Title         string               `json:"title"`
	Company       string               `json:"company"`
	Location      string               `json:"location"`
	Skills        []string             `json:"skills"`
	Description   string               `json:"description"`
	IntentSignals []types.IntentSignal `json:"intent_signals"`
}

// ExtractJob fetches a posting URL and extracts a JobRecord from it.
// The only error it returns is context cancellation; every other failure
// degrades to a minimal record derived from the URL.
func (e *Extractor) ExtractJob(ctx context.Context, jobURL string) (*types.JobRecord, error) {
	text := e.pageText(ctx, jobURL)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return e.fallback(ctx, jobURL), nil
	}

	prompt := llm.BuildExtractionPrompt(llm.JobPostingSchema(), text)
	raw, err := e.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return e.fallback(ctx, jobURL), nil
	}

	var out extractOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return e.fallback(ctx, jobURL), nil
	}
	if strings.TrimSpace(out.Title) == "" || strings.TrimSpace(out.Company) == "" {
		return e.fallback(ctx, jobURL), nil
	}

	record := &types.JobRecord{
		ID:          uuid.New().String(),
		Title:       out.Title,
		Company:     out.Company,
		Location:    out.Location,
		Skills:      out.Skills,
		Description: out.Description,
		ApplyURL:    jobURL,
		ScrapedAt:   e.now(),
		Platform:    fetch.DetectPlatform(jobURL),
	}
	if record.Skills == nil {
		record.Skills = []string{}
	}
	if signal := strongestSignal(out.IntentSignals); signal != nil {
		record.Intent = signal
	}

	// A record that fails schema validation is discarded in favor of the
	// minimal fallback rather than poisoning downstream stages.
	if doc, err := json.Marshal(record); err == nil {
		if err := schemas.Validate(schemas.JobRecord, string(doc)); err != nil {
			return e.fallback(ctx, jobURL), nil
		}
	}

	return record, nil
}

// pageText fetches the posting page and extracts its main text, falling back
// to a headless browser render when the static HTML looks like an empty SPA
// shell.
func (e *Extractor) pageText(ctx context.Context, jobURL string) string {
	result, err := e.fetcher.Fetch(ctx, jobURL)
	if err != nil || result == nil {
		return ""
	}

	text := result.Text
	if text == "" && result.HTML != "" {
		platform := fetch.DetectPlatform(jobURL)
		text, _ = fetch.ExtractMainText(result.HTML, fetch.PlatformContentSelectors(platform), fetch.PlatformNoiseSelectors(platform)...)
	}

	if fetch.ShouldUseBrowser(text) && e.browse != nil {
		if html, err := e.browse(ctx, jobURL, 30*time.Second, false); err == nil {
			platform := fetch.DetectPlatform(jobURL)
			if rendered, err := fetch.ExtractMainText(html, fetch.PlatformContentSelectors(platform), fetch.PlatformNoiseSelectors(platform)...); err == nil && len(rendered) > len(text) {
				text = rendered
			}
		}
	}

	return text
}

// fallback returns the URL-derived record, enriched with an intent judgment
// when the LLM can produce one. Intent analysis is best-effort; its failure
// leaves Intent nil rather than failing the extraction.
func (e *Extractor) fallback(ctx context.Context, jobURL string) *types.JobRecord {
	record := e.fallbackRecord(jobURL)
	if signal, err := e.AnalyzeIntent(ctx, record); err == nil {
		record.Intent = signal
	}
	return record
}

// fallbackRecord builds the minimal valid record from nothing but the URL.
func (e *Extractor) fallbackRecord(jobURL string) *types.JobRecord {
	return &types.JobRecord{
		ID:          uuid.New().String(),
		Title:       titleFromURL(jobURL),
		Company:     companyFromURL(jobURL),
		Skills:      []string{},
		Description: "",
		ApplyURL:    jobURL,
		ScrapedAt:   e.now(),
		Platform:    fetch.DetectPlatform(jobURL),
	}
}

// strongestSignal picks the intent signal with the highest confidence.
func strongestSignal(signals []types.IntentSignal) *types.IntentSignal {
	var best *types.IntentSignal
	for i := range signals {
		if signals[i].Type == "" {
			continue
		}
		if best == nil || signals[i].Confidence > best.Confidence {
			best = &signals[i]
		}
	}
	return best
}

// titleFromURL derives a human-readable title from the URL path slug.
func titleFromURL(jobURL string) string {
	parsed, err := url.Parse(jobURL)
	if err != nil {
		return "Unknown Role"
	}

	skip := map[string]bool{"jobs": true, "view": true, "viewjob": true, "careers": true, "job": true}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		slug := strings.NewReplacer("-", " ", "_", " ").Replace(segments[i])
		words := strings.Fields(slug)
		// Drop leading numeric ID tokens ("1234-backend-engineer")
		for len(words) > 0 && isNumeric(words[0]) {
			words = words[1:]
		}
		if len(words) == 0 || skip[strings.ToLower(strings.Join(words, ""))] {
			continue
		}
		return titleCase(strings.Join(words, " "))
	}
	return "Unknown Role"
}

// companyFromURL derives a company name from the URL host.
func companyFromURL(jobURL string) string {
	parsed, err := url.Parse(jobURL)
	if err != nil || parsed.Host == "" {
		return "Unknown Company"
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	if idx := strings.IndexByte(host, '.'); idx > 0 {
		host = host[:idx]
	}
	if host == "" {
		return "Unknown Company"
	}
	return titleCase(host)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
