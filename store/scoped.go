package store

import (
	"context"
	"errors"
	"fmt"

	"delliapp/models"

	"gorm.io/gorm"
)

var (
	ErrNoTenant = errors.New("no tenant resolved")
	ErrNoOutlet = errors.New("tenant has no default outlet")
	ErrNotFound = errors.New("record not found")
)

// Owned is implemented by rows that belong to a team (see models.TeamOwned).
type Owned interface {
	SetOwner(teamID, outletID string)
}

// Scoped is the tenant boundary for row access. Every statement it builds carries a
// team_id equality filter; without a team, reads are empty and writes fail.
type Scoped struct {
	db     *gorm.DB
	teamID string
}

func NewScoped(db *gorm.DB, teamID string) *Scoped {
	return &Scoped{db: db, teamID: teamID}
}

func (s *Scoped) TeamID() string { return s.teamID }

// Has reports whether a team is bound.
func (s *Scoped) Has() bool { return s != nil && s.teamID != "" }

// DB returns a session filtered to the team, for queries the helpers do not cover.
func (s *Scoped) DB(ctx context.Context) (*gorm.DB, error) {
	if !s.Has() {
		return nil, ErrNoTenant
	}
	return s.db.WithContext(ctx).Where("team_id = ?", s.teamID), nil
}

// Transaction runs fn with a Scoped bound to the same team inside a transaction.
func (s *Scoped) Transaction(ctx context.Context, fn func(tx *Scoped) error) error {
	if !s.Has() {
		return ErrNoTenant
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Scoped{db: tx, teamID: s.teamID})
	})
}

// DefaultOutlet returns the team's default outlet.
func (s *Scoped) DefaultOutlet(ctx context.Context) (*models.Outlet, error) {
	if !s.Has() {
		return nil, ErrNoTenant
	}
	var outlet models.Outlet
	err := s.db.WithContext(ctx).
		Where("team_id = ? AND is_default = ?", s.teamID, true).
		First(&outlet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoOutlet
	}
	if err != nil {
		return nil, fmt.Errorf("load default outlet: %w", err)
	}
	return &outlet, nil
}

// Option adjusts a list query.
type Option func(*gorm.DB) *gorm.DB

// OrderBy sorts by a column.
func OrderBy(col string, desc bool) Option {
	return func(q *gorm.DB) *gorm.DB {
		if desc {
			return q.Order(col + " desc")
		}
		return q.Order(col)
	}
}

// Where adds an equality filter.
func Where(col string, value any) Option {
	return func(q *gorm.DB) *gorm.DB { return q.Where(col+" = ?", value) }
}

func Limit(n int) Option {
	return func(q *gorm.DB) *gorm.DB { return q.Limit(n) }
}

// Preload loads an association; args are passed through to gorm.
func Preload(rel string, args ...any) Option {
	return func(q *gorm.DB) *gorm.DB { return q.Preload(rel, args...) }
}

// Table exposes list/get/create/update/delete for one team-owned model.
type Table[T any] struct {
	scope *Scoped
}

// Of binds a model type to a scope.
func Of[T any](s *Scoped) Table[T] {
	return Table[T]{scope: s}
}

// List returns the team's rows; an unbound scope yields an empty slice.
func (t Table[T]) List(ctx context.Context, opts ...Option) ([]T, error) {
	rows := []T{}
	q, err := t.scope.DB(ctx)
	if errors.Is(err, ErrNoTenant) {
		return rows, nil
	}
	for _, o := range opts {
		q = o(q)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %T: %w", rows, err)
	}
	return rows, nil
}

// Get loads one row by id inside the team.
func (t Table[T]) Get(ctx context.Context, id string, opts ...Option) (*T, error) {
	q, err := t.scope.DB(ctx)
	if err != nil {
		return nil, ErrNotFound
	}
	for _, o := range opts {
		q = o(q)
	}
	var row T
	err = q.Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %T: %w", row, err)
	}
	return &row, nil
}

// Create stamps the team and its default outlet on row and inserts it.
func (t Table[T]) Create(ctx context.Context, row *T) error {
	if !t.scope.Has() {
		return ErrNoTenant
	}
	owned, ok := any(row).(Owned)
	if !ok {
		return fmt.Errorf("store: %T is not team-owned", row)
	}
	outlet, err := t.scope.DefaultOutlet(ctx)
	if err != nil {
		return err
	}
	owned.SetOwner(t.scope.teamID, outlet.ID)
	if err := t.scope.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("create %T: %w", row, err)
	}
	return nil
}

// Update applies fields to the row with id. Ownership columns cannot be changed.
func (t Table[T]) Update(ctx context.Context, id string, fields map[string]any) (*T, error) {
	q, err := t.scope.DB(ctx)
	if err != nil {
		return nil, err
	}
	clean := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case "id", "team_id", "outlet_id", "created_at", "updated_at":
			continue
		}
		clean[k] = v
	}
	if len(clean) == 0 {
		return t.Get(ctx, id)
	}
	var model T
	if err := q.Model(&model).Where("id = ?", id).Updates(clean).Error; err != nil {
		return nil, fmt.Errorf("update %T: %w", model, err)
	}
	return t.Get(ctx, id)
}

// Delete removes the row with id.
func (t Table[T]) Delete(ctx context.Context, id string) error {
	q, err := t.scope.DB(ctx)
	if err != nil {
		return err
	}
	var model T
	res := q.Where("id = ?", id).Delete(&model)
	if res.Error != nil {
		return fmt.Errorf("delete %T: %w", model, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
