package client

import (
	"errors"
	"math"
	"sync"
)

var ErrInvalidLine = errors.New("cart line needs exactly one of product or combo and a positive quantity")

// Line is one cart entry. Lines for the same product or combo are kept apart when
// their notes differ.
type Line struct {
	ProductID string  `json:"product_id,omitempty"`
	ComboID   string  `json:"combo_id,omitempty"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Notes     string  `json:"notes,omitempty"`
}

// Key identifies the line inside a cart.
func (l Line) Key() string {
	if l.ComboID != "" {
		return "combo:" + l.ComboID + "|" + l.Notes
	}
	return "product:" + l.ProductID + "|" + l.Notes
}

// Cart is the visitor's basket, saved to the local store on every change.
type Cart struct {
	store *LocalStore

	mu    sync.Mutex
	lines []Line
}

// NewCart restores the saved cart from store. store may be nil for a memory-only cart.
func NewCart(store *LocalStore) (*Cart, error) {
	c := &Cart{store: store}
	if store != nil {
		if _, err := store.Get(KeyCart, &c.lines); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add merges l into a line with the same product or combo and notes, or appends it.
func (c *Cart) Add(l Line) error {
	if (l.ProductID == "") == (l.ComboID == "") || l.Quantity <= 0 {
		return ErrInvalidLine
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	key := l.Key()
	for i := range c.lines {
		if c.lines[i].Key() == key {
			c.lines[i].Quantity += l.Quantity
			return c.save()
		}
	}
	c.lines = append(c.lines, l)
	return c.save()
}

// SetQuantity changes the line with key; zero or less removes it.
func (c *Cart) SetQuantity(key string, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].Key() != key {
			continue
		}
		if qty <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		} else {
			c.lines[i].Quantity = qty
		}
		return c.save()
	}
	return nil
}

func (c *Cart) Remove(key string) error { return c.SetQuantity(key, 0) }

func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	return c.save()
}

func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}

// Count is the number of units in the cart.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.Lines() {
		n += l.Quantity
	}
	return n
}

// Total is the price shown to the visitor; the API recomputes it at checkout.
func (c *Cart) Total() float64 {
	var t float64
	for _, l := range c.Lines() {
		t += l.UnitPrice * float64(l.Quantity)
	}
	return math.Round(t*100) / 100
}

func (c *Cart) save() error {
	if c.store == nil {
		return nil
	}
	if len(c.lines) == 0 {
		return c.store.Delete(KeyCart)
	}
	return c.store.Set(KeyCart, c.lines)
}
