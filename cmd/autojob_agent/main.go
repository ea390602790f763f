// Package main provides the entry point for the autojob application agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "autojob_agent",
	Short: "Autonomous job application agent",
	Long:  "Autojob discovers job listings, scores them against a candidate profile, tailors application materials, and submits applications under a risk-gated pipeline.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
