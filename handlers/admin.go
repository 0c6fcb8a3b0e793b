package handlers

import (
	"errors"
	"net/http"

	"delliapp/models"
	"delliapp/store"
	"delliapp/tenancy"

	"github.com/gin-gonic/gin"
)


// AdminListTeams returns every team, active or not
func (h *Handler) AdminListTeams(c *gin.Context) {
	teams, err := h.Teams.List(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		h.storeError(c, err, "teams")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(teams), "teams": teams})
}

type CreateTeamRequest struct {
	Name       string `json:"name" binding:"required"`
	Slug       string `json:"slug" binding:"required"`
	OwnerEmail string `json:"owner_email" binding:"omitempty,email"`
}

// AdminCreateTeam creates a team with its default outlet and optional owner
func (h *Handler) AdminCreateTeam(c *gin.Context) {
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	slug, err := tenancy.NormalizeSlug(req.Slug, h.Host)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slug"})
		return
	}

	ctx := c.Request.Context()
	var owner *models.Profile
	if req.OwnerEmail != "" {
		p, err := h.Profiles.ByEmail(ctx, req.OwnerEmail)
		if err != nil {
			h.storeError(c, err, "owner")
			return
		}
		owner = p
	}

	team := models.Team{Name: req.Name, Slug: slug, IsActive: true, Settings: models.DefaultSettings()}
	if err := h.Teams.Create(ctx, &team); err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Slug already in use"})
			return
		}
		h.storeError(c, err, "team")
		return
	}
	if owner != nil {
		if _, err := store.Members(store.NewScoped(h.DB, team.ID)).Upsert(ctx, owner.ID, models.MemberOwner); err != nil {
			h.storeError(c, err, "member")
			return
		}
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Team created", "team": team})
}

type UpdateTeamRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

// AdminUpdateTeam renames or (de)activates a team. Teams are never deleted.
func (h *Handler) AdminUpdateTeam(c *gin.Context) {
	var req UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	team, err := h.Teams.Update(ctx, c.Param("id"), req.Name, req.IsActive)
	if err != nil {
		h.storeError(c, err, "team")
		return
	}
	h.Cache.Invalidate(ctx, team.Slug)
	c.JSON(http.StatusOK, gin.H{"message": "Team updated", "team": team})
}

// AdminGetAllOrders returns orders across every team with a status summary
func (h *Handler) AdminGetAllOrders(c *gin.Context) {
	orders, err := store.AllOrders(c.Request.Context(), h.DB, c.Query("status"), c.Query("team_id"))
	if err != nil {
		h.storeError(c, err, "orders")
		return
	}

	// Admin dashboard: aggregate by status
	summary := map[string]int{}
	var totalRevenue float64
	for _, o := range orders {
		summary[string(o.Status)]++
		if o.Status == models.StatusDelivered {
			totalRevenue += o.Total
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"total_revenue": roundMoney(totalRevenue),
		"count":         len(orders),
		"orders":        orders,
	})
}

// AdminGetAllUsers returns all profiles, optionally filtered by role
func (h *Handler) AdminGetAllUsers(c *gin.Context) {
	users, err := h.Profiles.List(c.Request.Context(), c.Query("role"))
	if err != nil {
		h.storeError(c, err, "users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}
