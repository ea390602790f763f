package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOperatorConfig_Defaults(t *testing.T) {
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("KEY_PEPPER", "")

	cfg, err := NewOperatorConfig()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Empty(t, cfg.Pepper)
}

func TestNewOperatorConfig_InvalidCost(t *testing.T) {
	t.Setenv("BCRYPT_COST", "not-a-number")
	_, err := NewOperatorConfig()
	assert.Error(t, err)

	t.Setenv("BCRYPT_COST", "20")
	_, err = NewOperatorConfig()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestHashAndVerifyKey(t *testing.T) {
	cfg := &OperatorConfig{BcryptCost: 10}

	hash, err := cfg.HashKey("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, cfg.VerifyKey("correct horse battery staple", hash))
	assert.False(t, cfg.VerifyKey("wrong key", hash))
}

func TestVerifyKeyWithPepper(t *testing.T) {
	peppered := &OperatorConfig{BcryptCost: 10, Pepper: "side-secret"}
	plain := &OperatorConfig{BcryptCost: 10}

	hash, err := peppered.HashKey("operator-key")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyKey("operator-key", hash))
	// Without the pepper the same key must not verify.
	assert.False(t, plain.VerifyKey("operator-key", hash))
}
