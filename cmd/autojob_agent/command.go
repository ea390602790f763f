package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/autojob/internal/observability"
)

var commandCommand = &cobra.Command{
	Use:   "command <instruction>",
	Short: "Give the agent a natural-language instruction",
	Long: `Interprets an instruction such as "apply to remote Go jobs in Berlin" or "pause everything" and routes it to the matching subsystem. Instructions that cannot be confidently interpreted are blocked, never guessed at.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommandCmd,
}

var (
	commandConfigPath  string
	commandProfilePath string
	commandAPIKey      string
)

func init() {
	commandCommand.Flags().StringVar(&commandConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	commandCommand.Flags().StringVarP(&commandProfilePath, "profile", "p", "", "Path to candidate profile JSON file")
	commandCommand.Flags().StringVar(&commandAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	rootCmd.AddCommand(commandCommand)
}

func runCommandCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadLayeredConfig(commandConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("profile") {
		cfg.Profile = commandProfilePath
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = commandAPIKey
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

	instruction := strings.Join(args, " ")
	outcome, err := a.cmdRouter.Execute(ctx, instruction, profile)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintCommand(outcome.Command)
	fmt.Println(outcome.Message)

	for _, job := range outcome.Jobs {
		fmt.Printf("  %s at %s (%s) [%s]\n  %s\n", job.Title, job.Company, job.Location, job.Source, job.URL)
	}
	if outcome.Plan != nil {
		printer.PrintStrategyPlan(outcome.Plan)
	}
	if outcome.Risk != nil {
		printer.PrintRiskState(outcome.Risk)
	}
	return nil
}
