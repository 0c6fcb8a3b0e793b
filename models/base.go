package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the UUID primary key and timestamps shared by every table.
type Base struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not set one.
func (b *Base) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// TeamOwned is embedded by every tenant-scoped row.
type TeamOwned struct {
	TeamID   string `json:"team_id" gorm:"size:36;not null;index"`
	OutletID string `json:"outlet_id" gorm:"size:36;index"`
}

// SetOwner stamps the tenant and parent outlet on a row before insert.
func (o *TeamOwned) SetOwner(teamID, outletID string) {
	o.TeamID = teamID
	o.OutletID = outletID
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&Team{},
		&Outlet{},
		&Profile{},
		&TeamMember{},
		&Product{},
		&Combo{},
		&ComboItem{},
		&Order{},
		&OrderItem{},
		&OrderStatusHistory{},
	}
}
