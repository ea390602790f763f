// Package fetch - platform.go provides platform detection and platform-specific selectors.
package fetch

import (
	"net/url"
	"strings"

	"github.com/jonathan/autojob/internal/types"
)

// DetectPlatform identifies the job board platform from a URL.
func DetectPlatform(urlStr string) types.Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return types.PlatformOther
	}

	host := strings.ToLower(parsed.Host)

	if strings.Contains(host, "linkedin.com") {
		return types.PlatformLinkedIn
	}

	if strings.Contains(host, "indeed.com") {
		return types.PlatformIndeed
	}

	if strings.Contains(host, "wellfound.com") ||
		strings.Contains(host, "angel.co") {
		return types.PlatformWellfound
	}

	return types.PlatformOther
}

// PlatformContentSelectors returns content selectors optimized for a specific platform.
func PlatformContentSelectors(platform types.Platform) []string {
	switch platform {
	case types.PlatformLinkedIn:
		return []string{
			".description__text",
			".show-more-less-html__markup",
			".jobs-description-content",
			".jobs-box__html-content",
			"#job-details",
		}
	case types.PlatformIndeed:
		return []string{
			"#jobDescriptionText",
			".jobsearch-JobComponent-description",
			".jobsearch-jobDescriptionText",
			".job-description",
		}
	case types.PlatformWellfound:
		return []string{
			"[data-test='JobDescription']",
			".job-description",
			".listing-description",
			"main",
		}
	default:
		return JobPostingSelectors()
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific platform.
func PlatformNoiseSelectors(platform types.Platform) []string {
	// Common noise selectors for all platforms
	common := []string{
		// Application forms
		"form",
		"#application-form",
		".application-form",
		".apply-button-container",
		"[data-testid='application-form']",

		// Similar-jobs and recommendation rails
		".similar-jobs",
		".recommended-jobs",
		".jobs-similar",

		// EEO and legal
		".eeo-statement",
		".legal-disclosure",
		".self-identification",

		// Social and share buttons
		".social-share",
		".share-buttons",

		// Cookie and GDPR
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",
	}

	// Platform-specific noise selectors
	switch platform {
	case types.PlatformLinkedIn:
		return append(common,
			".top-card-layout__cta-container",
			".sign-in-modal",
			".join-form",
			".similar-jobs__list",
		)
	case types.PlatformIndeed:
		return append(common,
			"#applyButtonLinkContainer",
			".jobsearch-OtherJobs",
			".jobsearch-SerpJobCard",
			".icl-Card",
		)
	case types.PlatformWellfound:
		return append(common,
			"[data-test='ApplyButton']",
			".startup-links",
			".browse-similar",
		)
	default:
		return common
	}
}
