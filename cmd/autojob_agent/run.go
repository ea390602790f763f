package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/autojob/internal/dispatch"
	"github.com/jonathan/autojob/internal/observability"
	"github.com/jonathan/autojob/internal/pipeline"
	"github.com/jonathan/autojob/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Apply to a single job end-to-end",
	Long: `Drives one job posting through the full pipeline: extraction -> matching -> cover letter -> resume tailoring -> risk check -> dispatch.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runApplyCmd,
}

var (
	runConfigPath  string
	runJobURL      string
	runProfilePath string
	runStyle       string
	runSkill       string
	runAPIKey      string
	runDatabaseURL string
	runPackagePath string
	runVerbose     bool
)

func init() {
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	runCommand.Flags().StringVar(&runJobURL, "job-url", "", "URL of the job posting to apply to")
	runCommand.Flags().StringVarP(&runProfilePath, "profile", "p", "", "Path to candidate profile JSON file")
	runCommand.Flags().StringVarP(&runStyle, "style", "s", "", "Cover letter style (ultra-concise, results-driven, founder-friendly, technical-deep-cut, chill-professional)")
	runCommand.Flags().StringVar(&runSkill, "add-skill", "", "Augment the resume with this skill before matching")
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	runCommand.Flags().StringVar(&runPackagePath, "save-package", "", "Write the application package (cover letter, resume, report) to this file")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed pipeline output")

	rootCmd.AddCommand(runCommand)
}

func runApplyCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadLayeredConfig(runConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("job-url") {
		cfg.JobURL = runJobURL
	}
	if cmd.Flags().Changed("profile") {
		cfg.Profile = runProfilePath
	}
	if cmd.Flags().Changed("style") {
		cfg.Style = runStyle
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}

	if cfg.JobURL == "" {
		return fmt.Errorf("--job-url must be provided (via flag or config)")
	}
	profile, err := loadProfile(cfg.Profile)
	if err != nil {
		return err
	}

	a, cleanup, err := newAgent(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	style := types.ParseStyle(cfg.Style)
	printer := observability.NewPrinter(os.Stdout)

	var entry *types.ApplicationLogEntry
	if runSkill == "" {
		entry, err = a.runner.Run(ctx, cfg.JobURL, profile, style)
	} else {
		entry, err = runWithAugmentation(ctx, a.runner, cfg.JobURL, profile, style, runSkill)
	}
	if err != nil {
		var riskErr *pipeline.RiskDeniedError
		if errors.As(err, &riskErr) {
			printer.PrintRiskState(&riskErr.State)
		}
		return err
	}

	fmt.Printf("Application submitted: %s at %s\n", entry.JobTitle, entry.Company)
	if runPackagePath != "" {
		if err := writeApplicationPackage(runPackagePath, entry, profile); err != nil {
			return err
		}
		fmt.Printf("Application package written to %s\n", runPackagePath)
	}
	if runVerbose {
		if entry.MutationReport != nil {
			printer.PrintMutationReport(entry.MutationReport)
		}
		fmt.Println(entry.CoverLetter)
	}
	return nil
}

// writeApplicationPackage renders the completed application as a plain-text
// bundle for the operator's records.
func writeApplicationPackage(path string, entry *types.ApplicationLogEntry, profile *types.UserProfile) error {
	job := &types.JobRecord{
		Title:    entry.JobTitle,
		Company:  entry.Company,
		ApplyURL: entry.URL,
		Location: entry.Location,
	}
	materials := &types.ApplicationMaterials{
		CoverLetter: entry.CoverLetter,
		Report:      entry.MutationReport,
	}
	if entry.MutatedResume != nil {
		materials.Resume = *entry.MutatedResume
	}
	pkg := dispatch.BuildApplicationPackage(job, profile, materials, entry.Timestamp)
	return os.WriteFile(path, []byte(pkg), 0o644)
}

// runWithAugmentation splits the run so the skill augmentation pass lands
// between scoring and materials generation.
func runWithAugmentation(ctx context.Context, runner *pipeline.Runner, jobURL string, profile *types.UserProfile, style types.CoverLetterStyle, skill string) (*types.ApplicationLogEntry, error) {
	prep, err := runner.Prepare(ctx, jobURL, profile)
	if err != nil {
		return nil, err
	}
	if err := runner.Augment(ctx, prep, profile, skill); err != nil {
		return nil, err
	}
	return runner.Complete(ctx, prep, profile, style)
}
