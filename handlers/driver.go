package handlers

import (
	"net/http"

	"delliapp/models"
	"delliapp/store"

	"github.com/gin-gonic/gin"
)

// GetAvailableDeliveries shows delivery orders ready to leave the kitchen
func (h *Handler) GetAvailableDeliveries(c *gin.Context) {
	orders, err := store.Orders(h.scope(c)).List(c.Request.Context(),
		store.Where("type", models.OrderDelivery),
		store.Where("status", models.StatusReady),
		store.OrderBy("created_at", false))
	if err != nil {
		h.storeError(c, err, "orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOnTheRoad returns delivery orders currently out for delivery
func (h *Handler) GetOnTheRoad(c *gin.Context) {
	orders, err := store.Orders(h.scope(c)).List(c.Request.Context(),
		store.Where("status", models.StatusOutForDelivery),
		store.Preload("Items"),
		store.OrderBy("updated_at", true))
	if err != nil {
		h.storeError(c, err, "orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}
