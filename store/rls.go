package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// RLS records the current team in the database session so row-level security
// policies can filter on it. An empty team id clears the value.
type RLS interface {
	SetCurrentTeam(ctx context.Context, teamID string) error
}

// NewRLS picks the implementation for the connected dialect.
func NewRLS(db *gorm.DB) RLS {
	if db.Dialector.Name() == "postgres" {
		return &PostgresRLS{db: db}
	}
	return NopRLS{}
}

// PostgresRLS calls the set_current_team_id function installed by the migration.
// The setting is session-wide and last-writer-wins.
type PostgresRLS struct{ db *gorm.DB }

func NewPostgresRLS(db *gorm.DB) *PostgresRLS { return &PostgresRLS{db: db} }

func (r *PostgresRLS) SetCurrentTeam(ctx context.Context, teamID string) error {
	if err := r.db.WithContext(ctx).Exec("SELECT set_current_team_id(?)", teamID).Error; err != nil {
		return fmt.Errorf("set_current_team_id: %w", err)
	}
	return nil
}

// NopRLS is used on sqlite, which has no row-level security.
type NopRLS struct{}

func (NopRLS) SetCurrentTeam(context.Context, string) error { return nil }
