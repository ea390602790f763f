package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/autojob/internal/config"
)

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key <operator-key>",
	Short: "Hash an operator key for OPERATOR_KEY_HASH",
	Long:  `Produces a bcrypt hash of the given operator key. Set the output as OPERATOR_KEY_HASH (or operator_key_hash in the config file) to require authentication on the API server's mutating endpoints.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHashKey,
}

func init() {
	rootCmd.AddCommand(hashKeyCmd)
}

func runHashKey(_ *cobra.Command, args []string) error {
	operatorCfg, err := config.NewOperatorConfig()
	if err != nil {
		return err
	}

	hash, err := operatorCfg.HashKey(args[0])
	if err != nil {
		return fmt.Errorf("failed to hash key: %w", err)
	}

	fmt.Println(hash)
	return nil
}
