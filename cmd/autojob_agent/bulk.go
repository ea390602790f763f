package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/autojob/internal/types"
)

var bulkCommand = &cobra.Command{
	Use:   "bulk [job-url ...]",
	Short: "Apply to a queue of jobs in order",
	Long: `Processes a queue of job postings strictly in order, one at a time. Jobs scoring below the profile's match threshold are skipped before any materials are generated.

Ctrl-C aborts gracefully: the in-flight job finishes, remaining jobs are marked aborted.`,
	RunE: runBulkCmd,
}

var (
	bulkConfigPath  string
	bulkProfilePath string
	bulkJobsFile    string
	bulkStyle       string
	bulkAPIKey      string
	bulkDatabaseURL string
	bulkDiscover    bool
)

func init() {
	bulkCommand.Flags().StringVar(&bulkConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	bulkCommand.Flags().StringVarP(&bulkProfilePath, "profile", "p", "", "Path to candidate profile JSON file")
	bulkCommand.Flags().StringVar(&bulkJobsFile, "jobs-file", "", "File with one job URL per line (alternative to positional args)")
	bulkCommand.Flags().StringVarP(&bulkStyle, "style", "s", "", "Cover letter style")
	bulkCommand.Flags().StringVar(&bulkAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	bulkCommand.Flags().StringVar(&bulkDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	bulkCommand.Flags().BoolVar(&bulkDiscover, "discover", false, "Fill the queue from job discovery using the profile's preferences")

	rootCmd.AddCommand(bulkCommand)
}

func runBulkCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadLayeredConfig(bulkConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("profile") {
		cfg.Profile = bulkProfilePath
	}
	if cmd.Flags().Changed("style") {
		cfg.Style = bulkStyle
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = bulkAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = bulkDatabaseURL
	}

	queue, err := collectQueue(args, bulkJobsFile)
	if err != nil {
		return err
	}
	if len(queue) == 0 && !bulkDiscover {
		return fmt.Errorf("no job URLs provided (positional args, --jobs-file, or --discover)")
	}

	profile, err := loadProfile(cfg.Profile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ctrl-C requests a graceful abort at the next item boundary.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		<-sigs
		fmt.Fprintln(os.Stderr, "\nAbort requested; finishing the current job...")
		cancel()
	}()

	a, cleanup, err := newAgent(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if bulkDiscover {
		jobs, err := a.searcher.Search(ctx, profile.Preferences)
		if err != nil {
			return fmt.Errorf("discovery failed: %w", err)
		}
		for _, job := range jobs {
			queue = append(queue, job.URL)
		}
		fmt.Printf("Discovered %d listings\n", len(jobs))
		if len(queue) == 0 {
			return fmt.Errorf("discovery returned no listings matching the profile's preferences")
		}
	}

	summary, err := a.runner.RunBulk(ctx, queue, profile, types.ParseStyle(cfg.Style))
	if err != nil {
		return err
	}

	fmt.Printf("Bulk run finished: %d/%d completed, %d failed, %d skipped, %d aborted\n",
		summary.Completed, summary.Total, summary.Failed, summary.Skipped, summary.Aborted)
	for _, outcome := range summary.Outcomes {
		line := fmt.Sprintf("  [%d] %-9s %s", outcome.Index+1, outcome.Status, outcome.JobRef)
		if outcome.Reason != "" {
			line += " (" + outcome.Reason + ")"
		}
		fmt.Println(line)
	}
	return nil
}

// collectQueue merges positional URLs with the optional jobs file, keeping
// the file's order first.
func collectQueue(args []string, jobsFile string) ([]string, error) {
	var queue []string
	if jobsFile != "" {
		f, err := os.Open(jobsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open jobs file: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			queue = append(queue, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read jobs file: %w", err)
		}
	}
	return append(queue, args...), nil
}
