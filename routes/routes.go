package routes

import (
	"net/http"

	"delliapp/auth"
	"delliapp/handlers"
	"delliapp/metrics"
	"delliapp/middleware"
	"delliapp/models"
	"delliapp/tenancy"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the route tree.
type Options struct {
	Host       tenancy.HostConfig
	Resolver   *tenancy.Resolver
	Tokens     *auth.Tokens
	Debouncer  *tenancy.Debouncer
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer // nil hides /metrics
	StorageDir string
	// RedirectTo is where denied staff pages send the visitor.
	RedirectTo string
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, o Options) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "delli-api"})
	})
	if o.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(o.Gatherer, promhttp.HandlerOpts{})))
	}
	if o.StorageDir != "" {
		r.Static("/storage", o.StorageDir)
	}
	if o.RedirectTo == "" {
		o.RedirectTo = "/"
	}

	staffGuard := tenancy.NewGuard(o.Debouncer, models.StaffRoles...)
	ownerGuard := tenancy.NewGuard(o.Debouncer, models.MemberOwner)

	api := r.Group("/api")
	api.Use(middleware.OptionalAuth(o.Tokens), middleware.Tenant(o.Host, o.Resolver))

	// ── Public routes ──────────────────────────────────────────────
	{
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.POST("/auth/otp", h.SendOTP)
		api.POST("/auth/otp/verify", h.VerifyOTP)

		api.GET("/teams/:slug", h.GetTeamBySlug)
		api.POST("/rpc/set_current_team_id", h.SetCurrentTeamID)
		api.GET("/state-machine", h.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	authed := api.Group("")
	authed.Use(middleware.AuthRequired(o.Tokens))
	{
		authed.GET("/profile", h.GetProfile)
		authed.PUT("/profile", h.UpdateProfile)
	}

	// ── Storefront (client mode) ───────────────────────────────────
	tenant := api.Group("")
	tenant.Use(middleware.RequireTenant())
	{
		tenant.GET("/tenant", h.GetTenant)
		tenant.GET("/menu", h.GetMenu)
		tenant.POST("/orders", h.PlaceOrder)
		tenant.GET("/orders/track", h.TrackOrder)
		tenant.POST("/orders/:id/payment", h.CreatePayment)
	}

	customer := tenant.Group("/me")
	customer.Use(middleware.AuthRequired(o.Tokens))
	{
		customer.GET("/orders", h.GetMyOrders)
		customer.PUT("/orders/:id/cancel", h.CancelOrder)
	}

	// ── Staff routes ───────────────────────────────────────────────
	staff := tenant.Group("/staff")
	staff.Use(middleware.AuthRequired(o.Tokens), middleware.RoleGuard(h.DB, staffGuard, o.RedirectTo, h.Log, o.Metrics))
	{
		staff.GET("/orders", h.GetTeamOrders)
		staff.PUT("/orders/:id/status", h.UpdateOrderStatus)
		staff.GET("/orders/stream", h.StreamOrders)
		staff.GET("/deliveries/available", h.GetAvailableDeliveries)
		staff.GET("/deliveries/on-the-road", h.GetOnTheRoad)
	}

	// ── Owner routes ───────────────────────────────────────────────
	owner := tenant.Group("/owner")
	owner.Use(middleware.AuthRequired(o.Tokens), middleware.RoleGuard(h.DB, ownerGuard, o.RedirectTo, h.Log, o.Metrics))
	{
		owner.GET("/products", h.ListProducts)
		owner.POST("/products", h.AddProduct)
		owner.PUT("/products/:id", h.UpdateProduct)
		owner.DELETE("/products/:id", h.DeleteProduct)
		owner.POST("/products/:id/image", h.UploadProductImage)

		owner.GET("/combos", h.ListCombos)
		owner.POST("/combos", h.AddCombo)
		owner.PUT("/combos/:id", h.UpdateCombo)
		owner.DELETE("/combos/:id", h.DeleteCombo)

		owner.GET("/shipping", h.GetShipping)
		owner.PUT("/shipping", h.UpdateShipping)

		owner.GET("/members", h.ListMembers)
		owner.POST("/members", h.AddMember)

		owner.GET("/orders/export", h.ExportOrders)
	}

	// ── Platform admin routes ──────────────────────────────────────
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(o.Tokens), middleware.RoleRequired(models.RoleAdmin), middleware.RequireAdminMode())
	{
		admin.GET("/teams", h.AdminListTeams)
		admin.POST("/teams", h.AdminCreateTeam)
		admin.PUT("/teams/:id", h.AdminUpdateTeam)
		admin.GET("/orders", h.AdminGetAllOrders)
		admin.GET("/users", h.AdminGetAllUsers)
	}
}
