package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/autojob/internal/types"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected types.Platform
	}{
		{
			name:     "linkedin job",
			url:      "https://www.linkedin.com/jobs/view/1234567890",
			expected: types.PlatformLinkedIn,
		},
		{
			name:     "indeed job",
			url:      "https://www.indeed.com/viewjob?jk=abc123",
			expected: types.PlatformIndeed,
		},
		{
			name:     "wellfound job",
			url:      "https://wellfound.com/jobs/1234-backend-engineer",
			expected: types.PlatformWellfound,
		},
		{
			name:     "legacy angellist domain",
			url:      "https://angel.co/company/acme/jobs/1234",
			expected: types.PlatformWellfound,
		},
		{
			name:     "company careers page",
			url:      "https://acme.example/careers/backend-engineer",
			expected: types.PlatformOther,
		},
		{
			name:     "unparseable url",
			url:      "://bad",
			expected: types.PlatformOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.url))
		})
	}
}

func TestPlatformContentSelectors(t *testing.T) {
	linkedin := PlatformContentSelectors(types.PlatformLinkedIn)
	assert.Contains(t, linkedin, ".description__text")

	indeed := PlatformContentSelectors(types.PlatformIndeed)
	assert.Contains(t, indeed, "#jobDescriptionText")

	other := PlatformContentSelectors(types.PlatformOther)
	assert.Contains(t, other, ".job-description")
}

func TestPlatformNoiseSelectors_IncludeCommon(t *testing.T) {
	for _, platform := range []types.Platform{
		types.PlatformLinkedIn,
		types.PlatformIndeed,
		types.PlatformWellfound,
		types.PlatformOther,
	} {
		selectors := PlatformNoiseSelectors(platform)
		assert.Contains(t, selectors, "form")
		assert.Contains(t, selectors, ".cookie-banner")
	}
}
