package models

type Product struct {
	Base
	TeamOwned
	Name        string  `json:"name" gorm:"not null"`
	Description string  `json:"description"`
	Price       float64 `json:"price" gorm:"not null"`
	Category    string  `json:"category" gorm:"index"`
	ImageURL    string  `json:"image_url"`
	IsAvailable bool    `json:"is_available" gorm:"not null;default:true"`
	SortOrder   int     `json:"sort_order"`
}

// Combo is a priced bundle of products.
type Combo struct {
	Base
	TeamOwned
	Name        string      `json:"name" gorm:"not null"`
	Description string      `json:"description"`
	Price       float64     `json:"price" gorm:"not null"`
	ImageURL    string      `json:"image_url"`
	IsAvailable bool        `json:"is_available" gorm:"not null;default:true"`
	Items       []ComboItem `json:"items,omitempty" gorm:"foreignKey:ComboID;constraint:OnDelete:CASCADE"`
}

type ComboItem struct {
	Base
	ComboID   string  `json:"combo_id" gorm:"size:36;not null;index"`
	ProductID string  `json:"product_id" gorm:"size:36;not null"`
	Product   Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity  int     `json:"quantity" gorm:"not null;default:1"`
}
