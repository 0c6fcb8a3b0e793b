package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"delliapp/models"

	"gorm.io/gorm"
)

func Products(s *Scoped) Table[models.Product] { return Of[models.Product](s) }

func Combos(s *Scoped) Table[models.Combo] { return Of[models.Combo](s) }

func Orders(s *Scoped) Table[models.Order] { return Of[models.Order](s) }

// MenuProducts lists available products, optionally for one category.
func MenuProducts(ctx context.Context, s *Scoped, category string) ([]models.Product, error) {
	opts := []Option{Where("is_available", true), OrderBy("category", false), OrderBy("sort_order", false), OrderBy("name", false)}
	if category != "" {
		opts = append(opts, Where("category", category))
	}
	return Products(s).List(ctx, opts...)
}

// MemberRepo manages team membership inside a scope.
type MemberRepo struct{ scope *Scoped }

func Members(s *Scoped) MemberRepo { return MemberRepo{scope: s} }

func (m MemberRepo) List(ctx context.Context) ([]models.TeamMember, error) {
	members := []models.TeamMember{}
	q, err := m.scope.DB(ctx)
	if errors.Is(err, ErrNoTenant) {
		return members, nil
	}
	if err := q.Preload("User").Order("role").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// RoleOf returns the caller's tenant-scoped role, or "" when not a member.
func (m MemberRepo) RoleOf(ctx context.Context, userID string) (string, error) {
	q, err := m.scope.DB(ctx)
	if err != nil {
		return "", nil
	}
	var member models.TeamMember
	err = q.Where("user_id = ?", userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load member role: %w", err)
	}
	return member.Role, nil
}

// Upsert adds userID to the team or changes its role.
func (m MemberRepo) Upsert(ctx context.Context, userID, role string) (*models.TeamMember, error) {
	if !m.scope.Has() {
		return nil, ErrNoTenant
	}
	member := models.TeamMember{TeamID: m.scope.teamID, UserID: userID}
	err := m.scope.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", m.scope.teamID, userID).
		Assign(map[string]any{"role": models.NormalizeRole(role)}).
		FirstOrCreate(&member).Error
	if err != nil {
		return nil, fmt.Errorf("upsert member: %w", err)
	}
	return &member, nil
}

// ProfileRepo is unscoped access to user profiles.
type ProfileRepo struct{ db *gorm.DB }

func NewProfileRepo(db *gorm.DB) *ProfileRepo { return &ProfileRepo{db: db} }

func (r *ProfileRepo) ByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepo) ByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).First(&p, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find profile by email: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepo) Create(ctx context.Context, p *models.Profile) error {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (r *ProfileRepo) Update(ctx context.Context, id string, fields map[string]any) (*models.Profile, error) {
	if len(fields) > 0 {
		if err := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}
	return r.ByID(ctx, id)
}

func (r *ProfileRepo) List(ctx context.Context, role string) ([]models.Profile, error) {
	users := []models.Profile{}
	q := r.db.WithContext(ctx).Order("created_at desc")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return users, nil
}
