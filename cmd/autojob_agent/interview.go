package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/autojob/internal/fetch"
	"github.com/jonathan/autojob/internal/intel"
	"github.com/jonathan/autojob/internal/llm"
	"github.com/jonathan/autojob/internal/materials"
)

var interviewCommand = &cobra.Command{
	Use:   "interview",
	Short: "Generate practice interview questions for a job",
	Long:  `Extracts a job posting and generates role-specific practice interview questions grounded in the posting's requirements and the candidate's background.`,
	RunE:  runInterviewCmd,
}

var (
	interviewConfigPath  string
	interviewJobURL      string
	interviewProfilePath string
	interviewAPIKey      string
)

func init() {
	interviewCommand.Flags().StringVar(&interviewConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	interviewCommand.Flags().StringVar(&interviewJobURL, "job-url", "", "URL of the job posting")
	interviewCommand.Flags().StringVarP(&interviewProfilePath, "profile", "p", "", "Path to candidate profile JSON file")
	interviewCommand.Flags().StringVar(&interviewAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	rootCmd.AddCommand(interviewCommand)
}

func runInterviewCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadLayeredConfig(interviewConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("job-url") {
		cfg.JobURL = interviewJobURL
	}
	if cmd.Flags().Changed("profile") {
		cfg.Profile = interviewProfilePath
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = interviewAPIKey
	}

	if cfg.JobURL == "" {
		return fmt.Errorf("--job-url must be provided (via flag or config)")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	profile, err := loadProfile(cfg.Profile)
	if err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, llm.DefaultGeminiConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close() //nolint:errcheck

	extractor := intel.NewExtractor(client, fetch.NewCachedFetcher(nil, nil))
	job, err := extractor.ExtractJob(ctx, cfg.JobURL)
	if err != nil {
		return err
	}

	questions, err := materials.NewGenerator(client).GenerateInterviewQuestions(ctx, job, profile)
	if err != nil {
		return err
	}

	fmt.Printf("Practice questions for %s at %s:\n\n", job.Title, job.Company)
	for i, q := range questions {
		fmt.Printf("%2d. [%s] %s\n", i+1, q.Category, q.Question)
		if q.Hint != "" {
			fmt.Printf("    Hint: %s\n", q.Hint)
		}
	}
	return nil
}
