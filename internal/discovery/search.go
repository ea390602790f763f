// Package discovery aggregates job listings from external boards.
package discovery

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/autojob/internal/types"
)

// maxResults caps how many deduplicated jobs one search returns.
const maxResults = 15

// defaultTimeout bounds a single source's HTTP round trip.
const defaultTimeout = 15 * time.Second

// Query is the normalized search request sources consume.
type Query struct {
	Keywords string
	Location string
	Remote   bool
}

// Source is one job board backend.
type Source interface {
	Name() string
	Search(ctx context.Context, q Query) ([]types.DiscoveredJob, error)
}

// Aggregator fans a search out to all configured sources and merges the
// results. A failing source contributes nothing; the search only errors when
// every source fails.
type Aggregator struct {
	sources []Source
	logf    func(format string, args ...any)
}

// NewAggregator builds an aggregator over the given sources. logf may be nil.
func NewAggregator(logf func(format string, args ...any), sources ...Source) *Aggregator {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Aggregator{sources: sources, logf: logf}
}

// Search queries all sources concurrently, deduplicates by URL keeping the
// first occurrence in source order, and caps the result at maxResults.
func (a *Aggregator) Search(ctx context.Context, prefs types.Preferences) ([]types.DiscoveredJob, error) {
	q := queryFromPreferences(prefs)

	results := make([][]types.DiscoveredJob, len(a.sources))
	var mu sync.Mutex
	failures := 0

	g, gctx := errgroup.WithContext(ctx)
	for idx, src := range a.sources {
		g.Go(func() error {
			jobs, err := src.Search(gctx, q)
			if err != nil {
				a.logf("Discovery source %s failed: %v", src.Name(), err)
				mu.Lock()
				failures++
				mu.Unlock()
				return nil
			}
			a.logf("Discovery source %s returned %d jobs", src.Name(), len(jobs))
			results[idx] = jobs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if len(a.sources) > 0 && failures == len(a.sources) {
		return nil, &SourceError{Source: "all", Message: "every discovery source failed"}
	}

	return dedupe(results), nil
}

func queryFromPreferences(prefs types.Preferences) Query {
	keywords := strings.Join(prefs.TargetRoles, " ")
	if keywords == "" {
		keywords = "software engineer"
	}
	location := "US"
	if len(prefs.Locations) > 0 {
		location = prefs.Locations[0]
	}
	return Query{Keywords: keywords, Location: location, Remote: prefs.RemoteOnly}
}

func dedupe(results [][]types.DiscoveredJob) []types.DiscoveredJob {
	seen := make(map[string]bool)
	merged := make([]types.DiscoveredJob, 0, maxResults)
	for _, jobs := range results {
		for _, job := range jobs {
			if job.URL == "" || seen[job.URL] {
				continue
			}
			seen[job.URL] = true
			merged = append(merged, job)
			if len(merged) == maxResults {
				return merged
			}
		}
	}
	return merged
}
