package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"delliapp/models"

	"gorm.io/gorm"
)

var ErrSlugTaken = errors.New("slug already in use")

// TeamRepo is the platform-level (unscoped) access to teams.
type TeamRepo struct{ db *gorm.DB }

func NewTeamRepo(db *gorm.DB) *TeamRepo { return &TeamRepo{db: db} }

// FindBySlug returns (nil, nil) when no team has the slug.
func (r *TeamRepo) FindBySlug(ctx context.Context, slug string) (*models.Team, error) {
	var t models.Team
	err := r.db.WithContext(ctx).Where("slug = ?", strings.ToLower(slug)).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find team by slug: %w", err)
	}
	return &t, nil
}

func (r *TeamRepo) ByID(ctx context.Context, id string) (*models.Team, error) {
	var t models.Team
	err := r.db.WithContext(ctx).Preload("Outlets").First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find team: %w", err)
	}
	return &t, nil
}

func (r *TeamRepo) List(ctx context.Context, activeOnly bool) ([]models.Team, error) {
	teams := []models.Team{}
	q := r.db.WithContext(ctx).Order("name")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

// Create inserts a team together with its default outlet.
func (r *TeamRepo) Create(ctx context.Context, t *models.Team) error {
	t.Slug = strings.ToLower(strings.TrimSpace(t.Slug))
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Team{}).Where("slug = ?", t.Slug).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrSlugTaken
		}
		if err := tx.Create(t).Error; err != nil {
			return fmt.Errorf("create team: %w", err)
		}
		outlet := models.Outlet{TeamID: t.ID, Name: t.Name, IsDefault: true}
		if err := tx.Create(&outlet).Error; err != nil {
			return fmt.Errorf("create default outlet: %w", err)
		}
		t.Outlets = []models.Outlet{outlet}
		return nil
	})
}

// Update changes name and active flag. Teams are never hard-deleted.
func (r *TeamRepo) Update(ctx context.Context, id string, name *string, active *bool) (*models.Team, error) {
	fields := map[string]any{}
	if name != nil {
		fields["name"] = *name
	}
	if active != nil {
		fields["is_active"] = *active
	}
	if len(fields) > 0 {
		if err := r.db.WithContext(ctx).Model(&models.Team{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return nil, fmt.Errorf("update team: %w", err)
		}
	}
	return r.ByID(ctx, id)
}

// UpdateSettings replaces the settings blob.
func (r *TeamRepo) UpdateSettings(ctx context.Context, id string, s models.TeamSettings) (*models.Team, error) {
	res := r.db.WithContext(ctx).Model(&models.Team{Base: models.Base{ID: id}}).
		Select("settings").
		Updates(models.Team{Settings: s})
	if res.Error != nil {
		return nil, fmt.Errorf("update team settings: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.ByID(ctx, id)
}
