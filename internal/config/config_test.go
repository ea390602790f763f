package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"job_url": "https://example.com/job/42",
		"api_key": "test-key",
		"style": "Results Driven",
		"match_threshold": 75,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://example.com/job/42", cfg.JobURL)
	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, "Results Driven", cfg.Style)
	assert.Equal(t, 75, cfg.MatchThreshold)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate_ThresholdRange(t *testing.T) {
	cfg := &Config{MatchThreshold: 120}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "match_threshold")

	cfg = &Config{MatchThreshold: 75}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ProfileNotFound(t *testing.T) {
	cfg := &Config{Profile: "/nonexistent/profile.json"}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "profile file not found")
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("AUTOMATION_SERVER_URL", "http://localhost:3001")
	t.Setenv("AUTOJOB_MATCH_THRESHOLD", "65")

	cfg := FromEnv()
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "http://localhost:3001", cfg.AutomationURL)
	assert.Equal(t, 65, cfg.MatchThreshold)
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := Config{
		APIKey:         "default-key",
		DatabaseURL:    "postgres://localhost/autojob",
		Style:          "Chill but Professional",
		MatchThreshold: 70,
	}

	partial := Config{
		APIKey: "custom-key",
		JobURL: "https://example.com/job/1",
	}

	merged := partial.MergeWithDefaults(defaults)

	// Custom values should be preserved
	assert.Equal(t, "custom-key", merged.APIKey)
	assert.Equal(t, "https://example.com/job/1", merged.JobURL)

	// Default values should fill in empty fields
	assert.Equal(t, "postgres://localhost/autojob", merged.DatabaseURL)
	assert.Equal(t, "Chill but Professional", merged.Style)
	assert.Equal(t, 70, merged.MatchThreshold)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{
		JobURL: "https://example.com/job/1",
		APIKey: "key",
	}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "https://example.com/job/1", merged.JobURL)
	assert.Equal(t, "key", merged.APIKey)
}
