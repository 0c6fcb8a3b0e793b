package handlers

import (
	"net/http"
	"strings"

	"delliapp/middleware"
	"delliapp/models"
	"delliapp/statemachine"
	"delliapp/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetTenant returns the team resolved from the request host.
func (h *Handler) GetTenant(c *gin.Context) {
	info := middleware.HostInfo(c)
	c.JSON(http.StatusOK, gin.H{
		"team":      middleware.CurrentTeam(c),
		"subdomain": info.Subdomain,
		"mode":      "client",
	})
}

// GetTeamBySlug is the lookup used by client-side resolvers. Missing and inactive
// teams are both answered 404.
func (h *Handler) GetTeamBySlug(c *gin.Context) {
	team, err := h.Cache.FindBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.Log.Error("team lookup", zap.String("slug", c.Param("slug")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load restaurant"})
		return
	}
	if team == nil || !team.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"team": team})
}

// GetMenu returns the available products and combos of the current team
func (h *Handler) GetMenu(c *gin.Context) {
	ctx := c.Request.Context()
	scope := h.scope(c)

	category := strings.TrimSpace(c.Query("category"))
	products, err := store.MenuProducts(ctx, scope, category)
	if err != nil {
		h.storeError(c, err, "menu")
		return
	}
	combos, err := store.Combos(scope).List(ctx,
		store.Where("is_available", true),
		store.Preload("Items.Product"),
		store.OrderBy("name", false))
	if err != nil {
		h.storeError(c, err, "menu")
		return
	}

	// Group by category for the storefront
	categories := map[string][]models.Product{}
	for _, p := range products {
		categories[p.Category] = append(categories[p.Category], p)
	}

	c.JSON(http.StatusOK, gin.H{
		"team":       middleware.CurrentTeam(c).Name,
		"count":      len(products),
		"products":   products,
		"categories": categories,
		"combos":     combos,
	})
}

// SetCurrentTeamID pushes a team id to the database session for row-level security.
func (h *Handler) SetCurrentTeamID(c *gin.Context) {
	var req struct {
		TeamID string `json:"team_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.RLS.SetCurrentTeam(c.Request.Context(), req.TeamID); err != nil {
		h.Log.Warn("set_current_team_id failed", zap.String("team_id", req.TeamID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set current team"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"team_id": req.TeamID})
}

// GetStateMachineInfo returns the full order lifecycle for informational purposes
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": []models.OrderStatus{models.StatusDelivered, models.StatusCancelled},
		"owner_role":      models.MemberOwner,
		"description":     "Order lifecycle; the owner may perform every staff transition",
	})
}
