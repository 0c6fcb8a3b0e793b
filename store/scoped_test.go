package store

import (
	"context"
	"testing"

	"delliapp/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_ListNeverLeaksAcrossTeams(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	tt, uu := seedTwoTeams(t, db)

	for _, team := range []*models.Team{tt, uu} {
		rows, err := Products(NewScoped(db, team.ID)).List(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		for _, p := range rows {
			assert.Equal(t, team.ID, p.TeamID)
			assert.NotEmpty(t, p.OutletID)
		}
	}
}

func TestTable_CrossTeamGetUpdateDeleteAreNotFound(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	tt, uu := seedTwoTeams(t, db)

	foreign, err := Products(NewScoped(db, uu.ID)).List(ctx)
	require.NoError(t, err)
	victim := foreign[0]

	scope := NewScoped(db, tt.ID)
	_, err = Products(scope).Get(ctx, victim.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = Products(scope).Update(ctx, victim.ID, map[string]any{"price": 0.01})
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, Products(scope).Delete(ctx, victim.ID), ErrNotFound)

	still, err := Products(NewScoped(db, uu.ID)).Get(ctx, victim.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, still.Price)
}

func TestTable_WithoutTenant(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedTwoTeams(t, db)

	var before int64
	require.NoError(t, db.Model(&models.Product{}).Count(&before).Error)

	none := NewScoped(db, "")
	rows, err := Products(none).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	err = Products(none).Create(ctx, &models.Product{Name: "Orphan", Price: 1})
	require.ErrorIs(t, err, ErrNoTenant)

	_, err = Products(none).Update(ctx, "any", map[string]any{"name": "x"})
	require.ErrorIs(t, err, ErrNoTenant)
	require.ErrorIs(t, Products(none).Delete(ctx, "any"), ErrNoTenant)

	var after int64
	require.NoError(t, db.Model(&models.Product{}).Count(&after).Error)
	assert.Equal(t, before, after)
}

func TestTable_CreateRequiresDefaultOutlet(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	bare := &models.Team{Name: "Sem loja", Slug: "semloja", IsActive: true}
	require.NoError(t, db.Create(bare).Error)

	err := Products(NewScoped(db, bare.ID)).Create(ctx, &models.Product{Name: "P", Price: 1})
	require.ErrorIs(t, err, ErrNoOutlet)
}

func TestTable_UpdateCannotMoveRowToAnotherTeam(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	tt, uu := seedTwoTeams(t, db)
	scope := NewScoped(db, tt.ID)

	rows, err := Products(scope).List(ctx)
	require.NoError(t, err)

	got, err := Products(scope).Update(ctx, rows[0].ID, map[string]any{"team_id": uu.ID, "name": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, tt.ID, got.TeamID)
	assert.Equal(t, "Renamed", got.Name)
}

func TestTable_ListOptions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	tt := createTeam(t, db, "loja1")
	scope := NewScoped(db, tt.ID)
	require.NoError(t, Products(scope).Create(ctx, &models.Product{Name: "B", Price: 2, Category: "bebidas", IsAvailable: true}))
	require.NoError(t, Products(scope).Create(ctx, &models.Product{Name: "A", Price: 3, Category: "lanches", IsAvailable: true}))
	off := &models.Product{Name: "C", Price: 4, Category: "lanches", IsAvailable: true}
	require.NoError(t, Products(scope).Create(ctx, off))
	_, err := Products(scope).Update(ctx, off.ID, map[string]any{"is_available": false})
	require.NoError(t, err)

	menu, err := MenuProducts(ctx, scope, "")
	require.NoError(t, err)
	require.Len(t, menu, 2)
	assert.Equal(t, "B", menu[0].Name)

	lanches, err := MenuProducts(ctx, scope, "lanches")
	require.NoError(t, err)
	require.Len(t, lanches, 1)
	assert.Equal(t, "A", lanches[0].Name)
}

func TestMembers_RoleOfAndUpsert(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	tt, uu := seedTwoTeams(t, db)
	user := &models.Profile{Name: "Ana", Email: "Ana@Example.com", Role: models.RoleChef}
	require.NoError(t, NewProfileRepo(db).Create(ctx, user))
	assert.Equal(t, "ana@example.com", user.Email)

	_, err := Members(NewScoped(db, tt.ID)).Upsert(ctx, user.ID, " Chef ")
	require.NoError(t, err)

	role, err := Members(NewScoped(db, tt.ID)).RoleOf(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "chef", role)

	role, err = Members(NewScoped(db, uu.ID)).RoleOf(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, role)

	_, err = Members(NewScoped(db, tt.ID)).Upsert(ctx, user.ID, "dono")
	require.NoError(t, err)
	members, err := Members(NewScoped(db, tt.ID)).List(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "dono", members[0].Role)
	assert.Equal(t, "Ana", members[0].User.Name)
}
