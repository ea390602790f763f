package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/autojob/internal/command"
	"github.com/jonathan/autojob/internal/config"
	"github.com/jonathan/autojob/internal/db"
	"github.com/jonathan/autojob/internal/discovery"
	"github.com/jonathan/autojob/internal/dispatch"
	"github.com/jonathan/autojob/internal/fetch"
	"github.com/jonathan/autojob/internal/intel"
	"github.com/jonathan/autojob/internal/llm"
	"github.com/jonathan/autojob/internal/materials"
	"github.com/jonathan/autojob/internal/observability"
	"github.com/jonathan/autojob/internal/pipeline"
	"github.com/jonathan/autojob/internal/risk"
	"github.com/jonathan/autojob/internal/strategy"
	"github.com/jonathan/autojob/internal/types"
)

// loadLayeredConfig loads the optional config file and layers it over
// environment fallbacks. CLI flags are applied by each command afterwards.
func loadLayeredConfig(configPath string) (config.Config, error) {
	cfg := config.Config{}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}
	cfg = cfg.MergeWithDefaults(config.FromEnv())
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadProfile reads and validates a candidate profile JSON file.
func loadProfile(path string) (*types.UserProfile, error) {
	if path == "" {
		return nil, fmt.Errorf("a profile file is required (via --profile or config)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	var profile types.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	return &profile, nil
}

// agent bundles the wired subsystems a CLI command drives.
type agent struct {
	runner     *pipeline.Runner
	shield     *risk.Shield
	controller *strategy.Controller
	planner    *strategy.Planner
	cmdRouter  *command.Router
	searcher   *discovery.Aggregator
	journal    *observability.Journal
	database   *db.DB
	client     llm.Client
}

// newAgent wires the agent subsystems from configuration. The returned
// cleanup function closes the LLM client and database connection.
func newAgent(ctx context.Context, cfg config.Config) (*agent, func(), error) {
	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	client, err := llm.NewClient(ctx, llm.DefaultGeminiConfig(), cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	a := &agent{client: client}

	var ledger pipeline.Ledger
	var history pipeline.History
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.database = database
		ledger = database
		history = database
	}

	a.journal = observability.NewJournal(observability.DefaultJournalCap)
	a.shield = risk.NewShield()
	a.controller = strategy.NewController()
	a.planner = strategy.NewPlanner(client)

	fetcher := fetch.NewCachedFetcher(a.database, nil)
	a.runner = pipeline.NewRunner(pipeline.RunnerOptions{
		Extractor:  intel.NewExtractor(client, fetcher),
		Matcher:    intel.NewMatcher(client),
		Materials:  materials.NewGenerator(client),
		Dispatcher: dispatch.NewDispatcher(cfg.AutomationURL),
		Shield:     a.shield,
		Journal:    a.journal,
		Ledger:     ledger,
		History:    history,
		Quota:      a.controller.DailyQuota,
	})

	sources := []discovery.Source{discovery.NewIndeedSource()}
	if cfg.AdzunaAppID != "" && cfg.AdzunaAppKey != "" {
		sources = append(sources, discovery.NewAdzunaSource(cfg.AdzunaAppID, cfg.AdzunaAppKey))
	}
	if cfg.SerpAPIKey != "" {
		sources = append(sources, discovery.NewSerpAPISource(cfg.SerpAPIKey))
	}
	a.searcher = discovery.NewAggregator(a.journal.Logf, sources...)

	a.cmdRouter = command.NewRouter(
		command.NewInterpreter(client), a.shield, a.controller, a.planner, a.searcher, a.journal)

	cleanup := func() {
		client.Close() //nolint:errcheck
		if a.database != nil {
			a.database.Close()
		}
	}
	return a, cleanup, nil
}
