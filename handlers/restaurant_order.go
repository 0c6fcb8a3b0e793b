package handlers

import (
	"io"
	"net/http"

	"delliapp/events"
	"delliapp/middleware"
	"delliapp/models"
	"delliapp/statemachine"
	"delliapp/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetTeamOrders returns the current team's orders for the staff board
func (h *Handler) GetTeamOrders(c *gin.Context) {
	opts := []store.Option{store.Preload("Items"), store.OrderBy("created_at", true)}
	// Filter by status
	if status := c.Query("status"); status != "" {
		opts = append(opts, store.Where("status", status))
	}
	if typ := c.Query("type"); typ != "" {
		opts = append(opts, store.Where("type", typ))
	}
	orders, err := store.Orders(h.scope(c)).List(c.Request.Context(), opts...)
	if err != nil {
		h.storeError(c, err, "orders")
		return
	}

	// Group counts by status for the dashboard summary
	summary := map[string]int{}
	for _, o := range orders {
		summary[string(o.Status)]++
	}

	c.JSON(http.StatusOK, gin.H{
		"team":          middleware.CurrentTeam(c).Name,
		"order_summary": summary,
		"count":         len(orders),
		"orders":        orders,
	})
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

// UpdateOrderStatus applies a state transition as the caller's member role
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	ctx := c.Request.Context()
	scope := h.scope(c)

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := store.Orders(scope).Get(ctx, c.Param("id"))
	if err != nil {
		h.storeError(c, err, "order")
		return
	}

	role := middleware.MemberRole(c)
	if err := statemachine.CanTransition(order.Status, req.Status, order.Type, role); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "Invalid state transition",
			"current_status":    order.Status,
			"requested":         req.Status,
			"reason":            err.Error(),
			"valid_next_states": statemachine.ValidTransitionsFrom(order.Status, order.Type),
		})
		return
	}

	prevStatus := order.Status
	if err := store.ChangeStatus(ctx, scope, order, req.Status, middleware.GetUserID(c), req.Note); err != nil {
		h.storeError(c, err, "order")
		return
	}
	h.publish(ctx, events.OrderStatus, order.TeamID, gin.H{
		"order_id": order.ID,
		"from":     prevStatus,
		"status":   order.Status,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status updated",
		"order_id":        order.ID,
		"previous_status": string(prevStatus),
		"current_status":  string(order.Status),
	})
}

// StreamOrders pushes the team's order events as server-sent events.
func (h *Handler) StreamOrders(c *gin.Context) {
	teamID := middleware.CurrentTeamID(c)
	ch, cancel, err := h.Bus.Subscribe(c.Request.Context(), events.OrdersTopic(teamID))
	if err != nil {
		h.Log.Error("subscribe orders", zap.String("team_id", teamID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open stream"})
		return
	}
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"team_id": teamID})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case e, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(e.Type, e)
			return true
		}
	})
}
