package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/autojob/internal/types"
)

// SaveProfile upserts a candidate profile, keyed by email. The full profile
// document is stored as JSONB so resume tracks evolve without migrations.
func (db *DB) SaveProfile(ctx context.Context, profile *types.UserProfile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO profiles (email, full_name, document)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE SET full_name = $2, document = $3, updated_at = NOW()`,
		profile.Email, profile.FullName, doc,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GetProfile retrieves a candidate profile by email. Returns nil when no
// profile exists.
func (db *DB) GetProfile(ctx context.Context, email string) (*types.UserProfile, error) {
	var doc []byte
	err := db.pool.QueryRow(ctx,
		`SELECT document FROM profiles WHERE email = $1`, email,
	).Scan(&doc)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var profile types.UserProfile
	if err := json.Unmarshal(doc, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile document: %w", err)
	}
	return &profile, nil
}
