package models

// Team is a tenant: one restaurant account, addressed by its slug subdomain.
type Team struct {
	Base
	Name     string       `json:"name" gorm:"not null"`
	Slug     string       `json:"slug" gorm:"uniqueIndex;not null"`
	IsActive bool         `json:"is_active" gorm:"not null;default:true"`
	Settings TeamSettings `json:"settings" gorm:"serializer:json"`
	Outlets  []Outlet     `json:"outlets,omitempty" gorm:"foreignKey:TeamID"`
}

// TeamSettings holds shipping and storefront configuration.
type TeamSettings struct {
	DeliveryFee       float64 `json:"delivery_fee"`
	DeliveryRadiusKm  float64 `json:"delivery_radius_km"`
	MinOrderValue     float64 `json:"min_order_value"`
	FreeDeliveryAbove float64 `json:"free_delivery_above"` // 0 disables
	AcceptsDelivery   bool    `json:"accepts_delivery"`
	AcceptsPickup     bool    `json:"accepts_pickup"`
	AcceptsDineIn     bool    `json:"accepts_dine_in"`
	OpeningHours      string  `json:"opening_hours"`
	WhatsApp          string  `json:"whatsapp"`
}

// DefaultSettings is applied to newly created teams.
func DefaultSettings() TeamSettings {
	return TeamSettings{
		AcceptsDelivery: true,
		AcceptsPickup:   true,
		AcceptsDineIn:   true,
	}
}

// DeliveryFeeFor returns the fee charged on a delivery order with the given subtotal.
func (s TeamSettings) DeliveryFeeFor(subtotal float64) float64 {
	if s.FreeDeliveryAbove > 0 && subtotal >= s.FreeDeliveryAbove {
		return 0
	}
	return s.DeliveryFee
}

// Outlet is a team-owned location. Catalog rows are inserted under the default outlet.
type Outlet struct {
	Base
	TeamID    string `json:"team_id" gorm:"size:36;not null;index"`
	Name      string `json:"name" gorm:"not null"`
	Address   string `json:"address"`
	IsDefault bool   `json:"is_default" gorm:"not null;default:false"`
}
