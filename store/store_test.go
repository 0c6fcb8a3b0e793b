package store

import (
	"context"
	"testing"

	"delliapp/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func createTeam(t *testing.T, db *gorm.DB, slug string) *models.Team {
	t.Helper()
	team := &models.Team{Name: slug, Slug: slug, IsActive: true, Settings: models.DefaultSettings()}
	require.NoError(t, NewTeamRepo(db).Create(context.Background(), team))
	return team
}

// seedTwoTeams returns teams T and U, each with two products.
func seedTwoTeams(t *testing.T, db *gorm.DB) (*models.Team, *models.Team) {
	t.Helper()
	ctx := context.Background()
	tt := createTeam(t, db, "loja1")
	uu := createTeam(t, db, "loja2")
	for _, team := range []*models.Team{tt, uu} {
		scope := NewScoped(db, team.ID)
		for _, name := range []string{"X-Burger", "Suco"} {
			require.NoError(t, Products(scope).Create(ctx, &models.Product{Name: name + " " + team.Slug, Price: 10, IsAvailable: true}))
		}
	}
	return tt, uu
}
