package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/autojob/internal/server"
	"github.com/jonathan/autojob/internal/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the agent: single and bulk applications, natural-language commands, risk controls, strategy plans, and the application ledger.`,
	RunE:  runServe,
}

var (
	serveConfigPath  string
	serveAddr        string
	serveProfilePath string
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (default :8080, or AUTOJOB_LISTEN_ADDR)")
	serveCmd.Flags().StringVarP(&serveProfilePath, "profile", "p", "", "Path to candidate profile JSON file")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadLayeredConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.ListenAddr = serveAddr
	}
	if cmd.Flags().Changed("profile") {
		cfg.Profile = serveProfilePath
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	profile, err := loadProfile(cfg.Profile)
	if err != nil {
		return err
	}

	srv, err := server.New(context.Background(), server.Config{
		Addr:            cfg.ListenAddr,
		Profile:         profile,
		APIKey:          cfg.APIKey,
		DatabaseURL:     cfg.DatabaseURL,
		AutomationURL:   cfg.AutomationURL,
		AdzunaAppID:     cfg.AdzunaAppID,
		AdzunaAppKey:    cfg.AdzunaAppKey,
		SerpAPIKey:      cfg.SerpAPIKey,
		Style:           types.ParseStyle(cfg.Style),
		OperatorKeyHash: cfg.OperatorKeyHash,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
