package client

import (
	"context"
	"errors"
	"time"

	"delliapp/models"
	"delliapp/payment"
)

var ErrEmptyCart = errors.New("cart is empty")

type CheckoutDetails struct {
	CustomerName  string               `json:"customer_name"`
	CustomerPhone string               `json:"customer_phone"`
	Type          models.OrderType     `json:"type"`
	TableLabel    string               `json:"table_label,omitempty"`
	Address       string               `json:"address,omitempty"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Notes         string               `json:"notes,omitempty"`
}

type checkoutItem struct {
	ProductID string `json:"product_id,omitempty"`
	ComboID   string `json:"combo_id,omitempty"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes,omitempty"`
}

type checkoutBody struct {
	CheckoutDetails
	Items []checkoutItem `json:"items"`
}

type PlacedOrder struct {
	Order         models.Order `json:"order"`
	TrackingToken string       `json:"tracking_token,omitempty"`
}

// AnonOrder is an order placed without an account, kept so the visitor can follow it.
type AnonOrder struct {
	OrderID  string    `json:"order_id"`
	Token    string    `json:"token"`
	Host     string    `json:"host"`
	PlacedAt time.Time `json:"placed_at"`
}

// Menu is the storefront catalog of the current restaurant.
type Menu struct {
	Products []models.Product `json:"products"`
	Combos   []models.Combo   `json:"combos"`
}

func (c *Client) Menu(ctx context.Context, category string) (*Menu, error) {
	var m Menu
	req := c.r(ctx).SetResult(&m)
	if category != "" {
		req.SetQueryParam("category", category)
	}
	if err := check(req.Get("/api/menu")); err != nil {
		return nil, err
	}
	return &m, nil
}

// Checkout places the cart as an order. On success the cart is emptied and, for
// anonymous visitors, the order is remembered in store.
func (c *Client) Checkout(ctx context.Context, cart *Cart, d CheckoutDetails, store *LocalStore) (*PlacedOrder, error) {
	lines := cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	body := checkoutBody{CheckoutDetails: d}
	for _, l := range lines {
		body.Items = append(body.Items, checkoutItem{ProductID: l.ProductID, ComboID: l.ComboID, Quantity: l.Quantity, Notes: l.Notes})
	}

	var placed PlacedOrder
	if err := check(c.r(ctx).SetBody(body).SetResult(&placed).Post("/api/orders")); err != nil {
		return nil, err
	}
	if err := cart.Clear(); err != nil {
		return &placed, err
	}
	if placed.TrackingToken != "" && store != nil {
		if err := rememberAnonOrder(store, AnonOrder{
			OrderID:  placed.Order.ID,
			Token:    placed.TrackingToken,
			Host:     c.host,
			PlacedAt: time.Now().UTC(),
		}); err != nil {
			return &placed, err
		}
	}
	return &placed, nil
}

func rememberAnonOrder(store *LocalStore, o AnonOrder) error {
	orders, err := AnonOrders(store)
	if err != nil {
		return err
	}
	return store.Set(KeyAnonOrders, append(orders, o))
}

// AnonOrders lists the orders this device placed without an account.
func AnonOrders(store *LocalStore) ([]AnonOrder, error) {
	var orders []AnonOrder
	_, err := store.Get(KeyAnonOrders, &orders)
	return orders, err
}

// Track loads an anonymous order by its tracking token.
func (c *Client) Track(ctx context.Context, token string) (*models.Order, error) {
	var resp struct {
		Order models.Order `json:"order"`
	}
	if err := check(c.r(ctx).SetQueryParam("token", token).SetResult(&resp).Get("/api/orders/track")); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

// Pay requests the payment preference of an online order. token is the tracking
// token for anonymous orders and may be empty when signed in.
func (c *Client) Pay(ctx context.Context, orderID, token string) (*payment.Preference, error) {
	var resp struct {
		Payment payment.Preference `json:"payment"`
	}
	req := c.r(ctx).SetResult(&resp)
	if token != "" {
		req.SetQueryParam("token", token)
	}
	if err := check(req.Post("/api/orders/" + orderID + "/payment")); err != nil {
		return nil, err
	}
	return &resp.Payment, nil
}
