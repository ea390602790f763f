package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DefaultPageCacheTTL is how long a crawled page stays fresh.
const DefaultPageCacheTTL = 7 * 24 * time.Hour

// Fetch status values for crawled pages.
const (
	FetchStatusSuccess          = "success"
	FetchStatusFailed           = "failed"
	FetchStatusPermanentFailure = "permanent_failure"
)

// permanentFailureThreshold is the failure count after which a URL is no
// longer retried.
const permanentFailureThreshold = 3

// CrawledPage is a cached fetch of a job posting URL.
type CrawledPage struct {
	ID           uuid.UUID
	URL          string
	RawHTML      *string
	ParsedText   *string
	HTTPStatus   *int
	FetchStatus  string
	FailureCount int
	FetchedAt    time.Time
	ExpiresAt    *time.Time
}

// GetFreshCrawledPage returns the cached page for a URL if it was fetched
// successfully within the TTL. Returns nil on a cache miss.
func (db *DB) GetFreshCrawledPage(ctx context.Context, url string, ttl time.Duration) (*CrawledPage, error) {
	var page CrawledPage
	err := db.pool.QueryRow(ctx,
		`SELECT id, url, raw_html, parsed_text, http_status, fetch_status, failure_count, fetched_at, expires_at
		 FROM crawled_pages
		 WHERE url = $1 AND fetch_status = $2 AND fetched_at > $3
		   AND (expires_at IS NULL OR expires_at > NOW())`,
		url, FetchStatusSuccess, time.Now().Add(-ttl),
	).Scan(&page.ID, &page.URL, &page.RawHTML, &page.ParsedText, &page.HTTPStatus,
		&page.FetchStatus, &page.FailureCount, &page.FetchedAt, &page.ExpiresAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check page cache: %w", err)
	}
	return &page, nil
}

// GetCrawledPageByURL returns the cached page regardless of freshness.
func (db *DB) GetCrawledPageByURL(ctx context.Context, url string) (*CrawledPage, error) {
	var page CrawledPage
	err := db.pool.QueryRow(ctx,
		`SELECT id, url, raw_html, parsed_text, http_status, fetch_status, failure_count, fetched_at, expires_at
		 FROM crawled_pages WHERE url = $1`,
		url,
	).Scan(&page.ID, &page.URL, &page.RawHTML, &page.ParsedText, &page.HTTPStatus,
		&page.FetchStatus, &page.FailureCount, &page.FetchedAt, &page.ExpiresAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached page: %w", err)
	}
	return &page, nil
}

// UpsertCrawledPage stores a page fetch result, assigning an ID when absent.
func (db *DB) UpsertCrawledPage(ctx context.Context, page *CrawledPage) error {
	if page.ID == uuid.Nil {
		page.ID = uuid.New()
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO crawled_pages (id, url, raw_html, parsed_text, http_status, fetch_status, failure_count, fetched_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), $8)
		 ON CONFLICT (url) DO UPDATE SET
		   raw_html = $3, parsed_text = $4, http_status = $5, fetch_status = $6,
		   failure_count = $7, fetched_at = NOW(), expires_at = $8`,
		page.ID, page.URL, page.RawHTML, page.ParsedText, page.HTTPStatus,
		page.FetchStatus, page.FailureCount, page.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cached page: %w", err)
	}
	return nil
}

// RecordFailedFetch increments the failure count for a URL, marking it a
// permanent failure once the threshold is crossed.
func (db *DB) RecordFailedFetch(ctx context.Context, url string, httpStatus int, errMsg string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO crawled_pages (id, url, http_status, fetch_status, failure_count, failure_reason, fetched_at)
		 VALUES ($1, $2, $3, $4, 1, $5, NOW())
		 ON CONFLICT (url) DO UPDATE SET
		   http_status = $3,
		   failure_count = crawled_pages.failure_count + 1,
		   failure_reason = $5,
		   fetch_status = CASE
		     WHEN crawled_pages.failure_count + 1 >= $6 THEN $7
		     ELSE $4
		   END,
		   fetched_at = NOW()`,
		uuid.New(), url, httpStatus, FetchStatusFailed, errMsg,
		permanentFailureThreshold, FetchStatusPermanentFailure,
	)
	if err != nil {
		return fmt.Errorf("failed to record fetch failure for %s: %w", url, err)
	}
	return nil
}

// ShouldSkipURL reports whether a URL is known to fail permanently.
func (db *DB) ShouldSkipURL(ctx context.Context, url string) (bool, string, error) {
	var status string
	var failures int
	err := db.pool.QueryRow(ctx,
		`SELECT fetch_status, failure_count FROM crawled_pages WHERE url = $1`,
		url,
	).Scan(&status, &failures)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, "", nil
		}
		return false, "", fmt.Errorf("failed to check skip status: %w", err)
	}

	if status == FetchStatusPermanentFailure {
		return true, fmt.Sprintf("permanent failure after %d attempts", failures), nil
	}
	return false, "", nil
}
