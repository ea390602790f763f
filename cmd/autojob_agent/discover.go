package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/autojob/internal/discovery"
	"github.com/jonathan/autojob/internal/observability"
	"github.com/jonathan/autojob/internal/types"
)

var discoverCommand = &cobra.Command{
	Use:   "discover",
	Short: "Search job boards for matching listings",
	Long:  `Fans out across the configured job sources (Adzuna, SerpAPI, Indeed RSS) and prints a deduplicated list of listings. Source credentials come from the config file or environment.`,
	RunE:  runDiscoverCmd,
}

var (
	discoverConfigPath  string
	discoverProfilePath string
	discoverRole        string
	discoverLocation    string
	discoverRemote      bool
)

func init() {
	discoverCommand.Flags().StringVar(&discoverConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	discoverCommand.Flags().StringVarP(&discoverProfilePath, "profile", "p", "", "Path to candidate profile JSON file (optional, supplies stored preferences)")
	discoverCommand.Flags().StringVar(&discoverRole, "role", "", "Role keywords to search for")
	discoverCommand.Flags().StringVar(&discoverLocation, "location", "", "Location to search in")
	discoverCommand.Flags().BoolVar(&discoverRemote, "remote", false, "Only remote listings")

	rootCmd.AddCommand(discoverCommand)
}

func runDiscoverCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadLayeredConfig(discoverConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("profile") {
		cfg.Profile = discoverProfilePath
	}

	prefs := types.Preferences{}
	if cfg.Profile != "" {
		profile, err := loadProfile(cfg.Profile)
		if err != nil {
			return err
		}
		prefs = profile.Preferences
	}
	if discoverRole != "" {
		prefs.TargetRoles = []string{discoverRole}
	}
	if discoverLocation != "" {
		prefs.Locations = []string{discoverLocation}
	}
	if cmd.Flags().Changed("remote") {
		prefs.RemoteOnly = discoverRemote
	}

	// Discovery needs no LLM, so skip the full agent wiring.
	sources := []discovery.Source{discovery.NewIndeedSource()}
	if cfg.AdzunaAppID != "" && cfg.AdzunaAppKey != "" {
		sources = append(sources, discovery.NewAdzunaSource(cfg.AdzunaAppID, cfg.AdzunaAppKey))
	}
	if cfg.SerpAPIKey != "" {
		sources = append(sources, discovery.NewSerpAPISource(cfg.SerpAPIKey))
	}
	journal := observability.NewJournal(0)
	searcher := discovery.NewAggregator(journal.Logf, sources...)

	jobs, err := searcher.Search(ctx, prefs)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d jobs\n", len(jobs))
	for i, job := range jobs {
		fmt.Printf("%2d. %s at %s (%s) [%s]\n    %s\n", i+1, job.Title, job.Company, job.Location, job.Source, job.URL)
	}
	return nil
}
