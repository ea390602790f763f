// Package config provides configuration loading and validation for the agent.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config represents the agent configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults, environment
// fallbacks, or must be provided via CLI flags.
type Config struct {
	// Inputs
	Profile string `json:"profile,omitempty"` // Path to the user profile JSON file
	JobURL  string `json:"job_url,omitempty"` // Job posting URL for single runs

	// Services
	APIKey        string `json:"api_key,omitempty"`        // Gemini API key
	DatabaseURL   string `json:"database_url,omitempty"`   // PostgreSQL connection URL
	AutomationURL string `json:"automation_url,omitempty"` // Browser automation server; empty means manual handoff
	AdzunaAppID   string `json:"adzuna_app_id,omitempty"`
	AdzunaAppKey  string `json:"adzuna_app_key,omitempty"`
	SerpAPIKey    string `json:"serp_api_key,omitempty"`

	// Behavior
	Style          string `json:"style,omitempty"`           // Default cover letter style
	MatchThreshold int    `json:"match_threshold,omitempty"` // Bulk skip threshold (0 uses the profile's)
	UseBrowser     bool   `json:"use_browser,omitempty"`     // Use headless browser for SPA sites
	Verbose        bool   `json:"verbose,omitempty"`         // Print detailed box output

	// API surface
	ListenAddr      string `json:"listen_addr,omitempty"`       // serve bind address
	OperatorKeyHash string `json:"operator_key_hash,omitempty"` // bcrypt hash of the operator key
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv fills a Config from environment variables. Used as the lowest
// priority layer under the config file and CLI flags.
func FromEnv() Config {
	threshold := 0
	if v := os.Getenv("AUTOJOB_MATCH_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			threshold = n
		}
	}
	return Config{
		APIKey:          os.Getenv("GEMINI_API_KEY"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		AutomationURL:   os.Getenv("AUTOMATION_SERVER_URL"),
		AdzunaAppID:     os.Getenv("ADZUNA_APP_ID"),
		AdzunaAppKey:    os.Getenv("ADZUNA_APP_KEY"),
		SerpAPIKey:      os.Getenv("SERP_API_KEY"),
		ListenAddr:      os.Getenv("AUTOJOB_LISTEN_ADDR"),
		OperatorKeyHash: os.Getenv("OPERATOR_KEY_HASH"),
		MatchThreshold:  threshold,
	}
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.MatchThreshold < 0 || c.MatchThreshold > 100 {
		return fmt.Errorf("config error: 'match_threshold' must be between 0 and 100")
	}

	if c.Profile != "" {
		if _, err := os.Stat(c.Profile); os.IsNotExist(err) {
			return fmt.Errorf("config error: profile file not found: %s", c.Profile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to layer a config file over environment fallbacks.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Profile == "" {
		result.Profile = defaults.Profile
	}
	if result.JobURL == "" {
		result.JobURL = defaults.JobURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.AutomationURL == "" {
		result.AutomationURL = defaults.AutomationURL
	}
	if result.AdzunaAppID == "" {
		result.AdzunaAppID = defaults.AdzunaAppID
	}
	if result.AdzunaAppKey == "" {
		result.AdzunaAppKey = defaults.AdzunaAppKey
	}
	if result.SerpAPIKey == "" {
		result.SerpAPIKey = defaults.SerpAPIKey
	}
	if result.Style == "" {
		result.Style = defaults.Style
	}
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}
	if result.OperatorKeyHash == "" {
		result.OperatorKeyHash = defaults.OperatorKeyHash
	}
	if result.MatchThreshold == 0 {
		result.MatchThreshold = defaults.MatchThreshold
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
