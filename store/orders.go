package store

import (
	"context"
	"errors"
	"fmt"

	"delliapp/models"

	"gorm.io/gorm"
)

// ErrStaleStatus means the order changed status since it was read.
var ErrStaleStatus = errors.New("order status changed concurrently")

// PlaceOrder inserts order with its items and the initial history entry.
func PlaceOrder(ctx context.Context, s *Scoped, order *models.Order, placedBy string) error {
	return s.Transaction(ctx, func(tx *Scoped) error {
		if err := Orders(tx).Create(ctx, order); err != nil {
			return err
		}
		history := models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  order.Status,
			ChangedBy: placedBy,
			Note:      "Order placed",
		}
		if err := tx.db.WithContext(ctx).Create(&history).Error; err != nil {
			return fmt.Errorf("record history: %w", err)
		}
		return nil
	})
}

// ChangeStatus moves order from its current status to `to` and records history.
// The update only applies if the stored status still equals order.Status.
func ChangeStatus(ctx context.Context, s *Scoped, order *models.Order, to models.OrderStatus, by, note string) error {
	return s.Transaction(ctx, func(tx *Scoped) error {
		q, err := tx.DB(ctx)
		if err != nil {
			return err
		}
		res := q.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Update("status", to)
		if res.Error != nil {
			return fmt.Errorf("update status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}
		history := models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: order.Status,
			ToStatus:   to,
			ChangedBy:  by,
			Note:       note,
		}
		if err := tx.db.WithContext(ctx).Create(&history).Error; err != nil {
			return fmt.Errorf("record history: %w", err)
		}
		order.Status = to
		return nil
	})
}

// OrderDetail loads an order with its items and history.
func OrderDetail(ctx context.Context, s *Scoped, id string) (*models.Order, error) {
	return Orders(s).Get(ctx, id, Preload("Items"), Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at")
	}))
}

// AllOrders lists orders across every team. Only platform administration uses it.
func AllOrders(ctx context.Context, db *gorm.DB, status, teamID string) ([]models.Order, error) {
	orders := []models.Order{}
	q := db.WithContext(ctx).Preload("Items")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if teamID != "" {
		q = q.Where("team_id = ?", teamID)
	}
	if err := q.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}
	return orders, nil
}

// ReplaceComboItems swaps the combo's item list.
func ReplaceComboItems(ctx context.Context, s *Scoped, comboID string, items []models.ComboItem) error {
	return s.Transaction(ctx, func(tx *Scoped) error {
		if _, err := Combos(tx).Get(ctx, comboID); err != nil {
			return err
		}
		db := tx.db.WithContext(ctx)
		if err := db.Where("combo_id = ?", comboID).Delete(&models.ComboItem{}).Error; err != nil {
			return fmt.Errorf("clear combo items: %w", err)
		}
		for i := range items {
			items[i].ComboID = comboID
		}
		if len(items) > 0 {
			if err := db.Omit("Product").Create(&items).Error; err != nil {
				return fmt.Errorf("insert combo items: %w", err)
			}
		}
		return nil
	})
}

// DeleteCombo removes a combo and its items.
func DeleteCombo(ctx context.Context, s *Scoped, comboID string) error {
	return s.Transaction(ctx, func(tx *Scoped) error {
		if err := Combos(tx).Delete(ctx, comboID); err != nil {
			return err
		}
		return tx.db.WithContext(ctx).Where("combo_id = ?", comboID).Delete(&models.ComboItem{}).Error
	})
}
