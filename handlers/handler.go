package handlers

import (
	"context"
	"errors"
	"net/http"

	"delliapp/auth"
	"delliapp/events"
	"delliapp/metrics"
	"delliapp/middleware"
	"delliapp/payment"
	"delliapp/storage"
	"delliapp/store"
	"delliapp/tenancy"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentCreator asks the payment provider for a checkout preference.
type PaymentCreator interface {
	CreatePreference(ctx context.Context, req payment.Request) (*payment.Preference, error)
}

// Handler carries the dependencies shared by every route.
type Handler struct {
	DB       *gorm.DB
	Teams    *store.TeamRepo
	Cache    *store.CachedTeams
	Profiles *store.ProfileRepo
	RLS      store.RLS
	Tokens   *auth.Tokens
	OTP      *auth.OTP
	Bus      events.Bus
	Outbound events.Publisher
	Payments PaymentCreator
	Bucket   *storage.Bucket
	Metrics  *metrics.Metrics
	Log      *zap.Logger
	Host     tenancy.HostConfig
}

func (h *Handler) scope(c *gin.Context) *store.Scoped {
	return store.NewScoped(h.DB, middleware.CurrentTeamID(c))
}

// publish fans an event out to realtime subscribers and the outbound broker.
// Failures are logged; the request that caused the event has already succeeded.
func (h *Handler) publish(ctx context.Context, typ, teamID string, payload any) {
	e, err := events.New(typ, teamID, payload)
	if err != nil {
		h.Log.Error("build event", zap.String("type", typ), zap.Error(err))
		return
	}
	if teamID != "" && h.Bus != nil {
		if err := h.Bus.Publish(ctx, events.OrdersTopic(teamID), e); err != nil {
			h.Log.Warn("realtime publish failed", zap.String("type", typ), zap.Error(err))
		}
	}
	if h.Outbound != nil {
		if err := h.Outbound.Publish(ctx, typ, e); err != nil {
			h.Log.Warn("outbound publish failed", zap.String("type", typ), zap.Error(err))
		}
	}
}

// storeError maps store sentinels to responses; anything else is logged and answered 500.
func (h *Handler) storeError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
	case errors.Is(err, store.ErrNoTenant):
		c.JSON(http.StatusNotFound, gin.H{"error": "No restaurant selected"})
	case errors.Is(err, store.ErrNoOutlet):
		c.JSON(http.StatusConflict, gin.H{"error": "Restaurant has no default outlet"})
	case errors.Is(err, store.ErrStaleStatus):
		c.JSON(http.StatusConflict, gin.H{"error": "Order was updated by someone else, reload and try again"})
	default:
		h.Log.Error("store failure", zap.String("entity", what), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process " + what})
	}
}
