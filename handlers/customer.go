package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"delliapp/events"
	"delliapp/middleware"
	"delliapp/models"
	"delliapp/payment"
	"delliapp/statemachine"
	"delliapp/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CheckoutItem struct {
	ProductID string `json:"product_id"`
	ComboID   string `json:"combo_id"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Notes     string `json:"notes"`
}

type CheckoutRequest struct {
	CustomerName  string               `json:"customer_name" binding:"required"`
	CustomerPhone string               `json:"customer_phone" binding:"required"`
	Type          models.OrderType     `json:"type" binding:"required"`
	TableLabel    string               `json:"table_label"`
	Address       string               `json:"address"`
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required"`
	Notes         string               `json:"notes"`
	Items         []CheckoutItem       `json:"items" binding:"required,min=1,dive"`
}

func roundMoney(v float64) float64 { return math.Round(v*100) / 100 }

func validateCheckout(req *CheckoutRequest, s models.TeamSettings) error {
	switch req.Type {
	case models.OrderDelivery:
		if !s.AcceptsDelivery {
			return errors.New("This restaurant does not deliver")
		}
		if strings.TrimSpace(req.Address) == "" {
			return errors.New("Delivery address is required")
		}
	case models.OrderPickup:
		if !s.AcceptsPickup {
			return errors.New("This restaurant does not accept pickup orders")
		}
	case models.OrderDineIn:
		if !s.AcceptsDineIn {
			return errors.New("This restaurant does not accept table orders")
		}
		if strings.TrimSpace(req.TableLabel) == "" {
			return errors.New("Table is required for dine-in orders")
		}
	default:
		return fmt.Errorf("Invalid order type %q", req.Type)
	}
	switch req.PaymentMethod {
	case models.PayCash, models.PayCardOnDelivery, models.PayPix, models.PayCheckout:
	default:
		return fmt.Errorf("Invalid payment method %q", req.PaymentMethod)
	}
	for _, it := range req.Items {
		if (it.ProductID == "") == (it.ComboID == "") {
			return errors.New("Each item needs exactly one of product_id or combo_id")
		}
	}
	return nil
}

// PlaceOrder creates a new order for the current team. Prices come from the catalog,
// never from the request.
func (h *Handler) PlaceOrder(c *gin.Context) {
	ctx := c.Request.Context()
	team := middleware.CurrentTeam(c)
	scope := h.scope(c)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateCheckout(&req, team.Settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Build order items and calculate subtotal
	var items []models.OrderItem
	var subtotal float64
	for _, it := range req.Items {
		item := models.OrderItem{Quantity: it.Quantity, Notes: it.Notes}
		if it.ProductID != "" {
			p, err := store.Products(scope).Get(ctx, it.ProductID)
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Product not found: " + it.ProductID})
				return
			}
			if err != nil {
				h.storeError(c, err, "product")
				return
			}
			if !p.IsAvailable {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Product '" + p.Name + "' is not available"})
				return
			}
			id := p.ID
			item.ProductID, item.Name, item.UnitPrice = &id, p.Name, p.Price
		} else {
			cb, err := store.Combos(scope).Get(ctx, it.ComboID, store.Preload("Items.Product"))
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Combo not found: " + it.ComboID})
				return
			}
			if err != nil {
				h.storeError(c, err, "combo")
				return
			}
			if !cb.IsAvailable {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Combo '" + cb.Name + "' is not available"})
				return
			}
			for _, ci := range cb.Items {
				// a deleted component preloads as the zero Product
				if ci.Product.ID == "" || !ci.Product.IsAvailable {
					c.JSON(http.StatusBadRequest, gin.H{"error": "Combo '" + cb.Name + "' contains an unavailable product"})
					return
				}
			}
			id := cb.ID
			item.ComboID, item.Name, item.UnitPrice = &id, cb.Name, cb.Price
		}
		subtotal += item.UnitPrice * float64(item.Quantity)
		items = append(items, item)
	}
	subtotal = roundMoney(subtotal)

	settings := team.Settings
	if subtotal < settings.MinOrderValue {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":           "Order is below the minimum value",
			"min_order_value": settings.MinOrderValue,
			"subtotal":        subtotal,
		})
		return
	}
	var fee float64
	if req.Type == models.OrderDelivery {
		fee = settings.DeliveryFeeFor(subtotal)
	}

	order := models.Order{
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: req.CustomerPhone,
		Type:          req.Type,
		TableLabel:    req.TableLabel,
		Address:       req.Address,
		Status:        models.StatusPending,
		Subtotal:      subtotal,
		DeliveryFee:   fee,
		Total:         roundMoney(subtotal + fee),
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: models.PaymentUnpaid,
		Notes:         req.Notes,
		Items:         items,
	}
	placedBy := "visitor"
	if uid := middleware.GetUserID(c); uid != "" {
		order.CustomerID = &uid
		placedBy = uid
	}
	if req.PaymentMethod.Online() {
		order.PaymentStatus = models.PaymentPending
	}

	if err := store.PlaceOrder(ctx, scope, &order, placedBy); err != nil {
		h.storeError(c, err, "order")
		return
	}
	if h.Metrics != nil {
		h.Metrics.OrdersPlaced.WithLabelValues(string(order.Type)).Inc()
	}
	h.publish(ctx, events.OrderPlaced, team.ID, gin.H{
		"order_id": order.ID,
		"type":     order.Type,
		"total":    order.Total,
		"status":   order.Status,
	})

	resp := gin.H{
		"message": "Order placed successfully",
		"order":   order,
	}
	if order.CustomerID == nil {
		token, err := h.Tokens.IssueTracking(order.ID, team.ID)
		if err != nil {
			h.Log.Error("issue tracking token", zap.String("order_id", order.ID), zap.Error(err))
		} else {
			resp["tracking_token"] = token
		}
	}
	c.JSON(http.StatusCreated, resp)
}

// TrackOrder lets anonymous visitors follow an order with its tracking token.
func (h *Handler) TrackOrder(c *gin.Context) {
	claims, err := h.Tokens.ParseTracking(c.Query("token"))
	if err != nil || claims.TeamID != middleware.CurrentTeamID(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid tracking token"})
		return
	}
	order, err := store.OrderDetail(c.Request.Context(), h.scope(c), claims.OrderID)
	if err != nil {
		h.storeError(c, err, "order")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":       order,
		"is_terminal": statemachine.IsTerminal(order.Status),
	})
}

// GetMyOrders returns the logged-in customer's orders at the current team
func (h *Handler) GetMyOrders(c *gin.Context) {
	orders, err := store.Orders(h.scope(c)).List(c.Request.Context(),
		store.Where("customer_id", middleware.GetUserID(c)),
		store.Preload("Items"),
		store.OrderBy("created_at", true))
	if err != nil {
		h.storeError(c, err, "orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// CancelOrder cancels an order (customer can cancel pending or confirmed)
func (h *Handler) CancelOrder(c *gin.Context) {
	ctx := c.Request.Context()
	scope := h.scope(c)
	customerID := middleware.GetUserID(c)

	order, err := store.Orders(scope).Get(ctx, c.Param("id"))
	if err != nil {
		h.storeError(c, err, "order")
		return
	}
	if order.CustomerID == nil || *order.CustomerID != customerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}
	if err := statemachine.CanTransition(order.Status, models.StatusCancelled, order.Type, statemachine.ActorCustomer); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":         "Cannot cancel order",
			"reason":        err.Error(),
			"current_state": order.Status,
		})
		return
	}
	if err := store.ChangeStatus(ctx, scope, order, models.StatusCancelled, customerID, "Order cancelled by customer"); err != nil {
		h.storeError(c, err, "order")
		return
	}
	h.publish(ctx, events.OrderStatus, order.TeamID, gin.H{"order_id": order.ID, "status": order.Status})
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order_id": order.ID})
}

// CreatePayment requests a payment preference for an online-paid order.
func (h *Handler) CreatePayment(c *gin.Context) {
	ctx := c.Request.Context()
	order, err := store.Orders(h.scope(c)).Get(ctx, c.Param("id"), store.Preload("Items"))
	if err != nil {
		h.storeError(c, err, "order")
		return
	}
	if !h.canPay(c, order) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}
	if !order.PaymentMethod.Online() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order is paid on delivery"})
		return
	}
	if order.PaymentStatus == models.PaymentPaid || order.Status == models.StatusCancelled {
		c.JSON(http.StatusConflict, gin.H{"error": "Order cannot be paid"})
		return
	}

	req := payment.Request{
		OrderID: order.ID,
		TeamID:  order.TeamID,
		Method:  string(order.PaymentMethod),
		Amount:  order.Total,
		Payer:   payment.Payer{Name: order.CustomerName, Phone: order.CustomerPhone},
	}
	for _, it := range order.Items {
		req.Items = append(req.Items, payment.Item{Title: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	if order.DeliveryFee > 0 {
		req.Items = append(req.Items, payment.Item{Title: "Delivery fee", Quantity: 1, UnitPrice: order.DeliveryFee})
	}

	pref, err := h.Payments.CreatePreference(ctx, req)
	if err != nil {
		h.Log.Error("payment preference", zap.String("order_id", order.ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider is unavailable, try again"})
		return
	}
	h.publish(ctx, events.OrderPayment, order.TeamID, gin.H{"order_id": order.ID, "method": order.PaymentMethod})
	c.JSON(http.StatusOK, gin.H{"order_id": order.ID, "payment": pref})
}

// canPay accepts the order's customer or a matching tracking token.
func (h *Handler) canPay(c *gin.Context, order *models.Order) bool {
	if uid := middleware.GetUserID(c); uid != "" && order.CustomerID != nil && *order.CustomerID == uid {
		return true
	}
	claims, err := h.Tokens.ParseTracking(c.Query("token"))
	return err == nil && claims.OrderID == order.ID
}
