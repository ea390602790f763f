package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// OperatorConfig holds configuration for hashing and verifying the operator
// key that protects the HTTP API.
type OperatorConfig struct {
	BcryptCost int
	Pepper     string // optional global secret for additional security
}

// NewOperatorConfig creates a new operator key configuration from environment
// variables. It reads BCRYPT_COST (default: 12) and optionally KEY_PEPPER.
func NewOperatorConfig() (*OperatorConfig, error) {
	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		costStr = "12" // default
	}

	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}

	config := &OperatorConfig{
		BcryptCost: cost,
		Pepper:     os.Getenv("KEY_PEPPER"), // empty if not set
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *OperatorConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	return nil
}

// HashKey hashes an operator key using bcrypt (with optional pepper).
func (c *OperatorConfig) HashKey(key string) (string, error) {
	input := key
	if c.Pepper != "" {
		input = key + c.Pepper
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash operator key: %w", err)
	}

	return string(hash), nil
}

// VerifyKey verifies an operator key against a stored hash (with optional
// pepper).
func (c *OperatorConfig) VerifyKey(key, storedHash string) bool {
	input := key
	if c.Pepper != "" {
		input = key + c.Pepper
	}

	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(input))
	return err == nil
}
