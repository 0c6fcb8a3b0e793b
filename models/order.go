package models

// OrderStatus is a state of the kitchen/delivery lifecycle
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusReady          OrderStatus = "ready"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

type OrderType string

const (
	OrderDelivery OrderType = "delivery"
	OrderPickup   OrderType = "pickup"
	OrderDineIn   OrderType = "dine_in"
)

type PaymentMethod string

const (
	PayCash           PaymentMethod = "cash"
	PayCardOnDelivery PaymentMethod = "card_on_delivery"
	PayPix            PaymentMethod = "pix"
	PayCheckout       PaymentMethod = "checkout"
)

// Online reports whether the method goes through the payment function.
func (m PaymentMethod) Online() bool {
	return m == PayPix || m == PayCheckout
}

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

type Order struct {
	Base
	TeamOwned
	CustomerID    *string              `json:"customer_id" gorm:"size:36;index"`
	CustomerName  string               `json:"customer_name" gorm:"not null"`
	CustomerPhone string               `json:"customer_phone"`
	Type          OrderType            `json:"type" gorm:"not null"`
	TableLabel    string               `json:"table_label"`
	Address       string               `json:"address"`
	Status        OrderStatus          `json:"status" gorm:"not null;default:'pending';index"`
	Subtotal      float64              `json:"subtotal"`
	DeliveryFee   float64              `json:"delivery_fee"`
	Total         float64              `json:"total"`
	PaymentMethod PaymentMethod        `json:"payment_method" gorm:"not null"`
	PaymentStatus PaymentStatus        `json:"payment_status" gorm:"not null;default:'unpaid'"`
	Notes         string               `json:"notes"`
	Items         []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem snapshots name and price at the time of checkout
type OrderItem struct {
	Base
	OrderID   string  `json:"order_id" gorm:"size:36;not null;index"`
	ProductID *string `json:"product_id" gorm:"size:36"`
	ComboID   *string `json:"combo_id" gorm:"size:36"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price" gorm:"not null"`
	Quantity  int     `json:"quantity" gorm:"not null"`
	Notes     string  `json:"notes"`
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	Base
	OrderID    string      `json:"order_id" gorm:"size:36;not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  string      `json:"changed_by"`
	Note       string      `json:"note"`
}
