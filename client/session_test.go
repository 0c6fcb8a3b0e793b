package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"delliapp/models"
	"delliapp/tenancy"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves the handful of endpoints the session talks to.
type fakeAPI struct {
	mu     sync.Mutex
	hosts  []string
	rpc    []string
	orders []checkoutBody
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		f.mu.Lock()
		f.hosts = append(f.hosts, c.Request.Host)
		f.mu.Unlock()
	})
	api := r.Group("/api")
	api.GET("/teams/:slug", func(c *gin.Context) {
		if c.Param("slug") != "loja1" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"team": models.Team{Base: models.Base{ID: "t1"}, Name: "Loja 1", Slug: "loja1", IsActive: true}})
	})
	api.POST("/rpc/set_current_team_id", func(c *gin.Context) {
		var body struct {
			TeamID string `json:"team_id"`
		}
		_ = c.ShouldBindJSON(&body)
		f.mu.Lock()
		f.rpc = append(f.rpc, body.TeamID)
		f.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{"team_id": body.TeamID})
	})
	api.POST("/auth/login", func(c *gin.Context) {
		var body map[string]string
		_ = c.ShouldBindJSON(&body)
		if body["password"] != "secret" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token":      "tok-1",
			"expires_at": time.Now().Add(time.Hour),
			"user":       gin.H{"id": "u1", "name": "Ana", "email": body["email"], "role": "customer"},
		})
	})
	api.GET("/profile", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer tok-1" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": gin.H{"id": "u1", "name": "Ana", "role": "customer"}, "member_role": ""})
	})
	api.POST("/orders", func(c *gin.Context) {
		var body checkoutBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f.mu.Lock()
		f.orders = append(f.orders, body)
		f.mu.Unlock()
		resp := gin.H{"order": gin.H{"id": "o1", "status": "pending", "total": 40}}
		if c.GetHeader("Authorization") == "" {
			resp["tracking_token"] = "track-o1"
		}
		c.JSON(http.StatusCreated, resp)
	})
	api.GET("/orders/track", func(c *gin.Context) {
		if c.Query("token") != "track-o1" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid tracking token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": gin.H{"id": "o1", "status": "preparing"}})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newTestSession(t *testing.T, srv *httptest.Server, host, statePath string) *Session {
	t.Helper()
	s, err := NewSession(context.Background(), SessionConfig{
		BaseURL:    srv.URL,
		Host:       host,
		HostConfig: tenancy.DefaultHostConfig(),
		StatePath:  statePath,
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestSession_ResolvesTenantFromHost(t *testing.T) {
	api := &fakeAPI{}
	srv := api.server(t)

	s := newTestSession(t, srv, "loja1.delliapp.com.br", "")
	assert.Equal(t, "t1", s.Tenant.TeamID())
	assert.Equal(t, []string{"t1"}, api.rpc)
	assert.Contains(t, api.hosts, "loja1.delliapp.com.br")

	missing := newTestSession(t, srv, "nope.delliapp.com.br", "")
	cur := missing.Tenant.Current()
	assert.Nil(t, cur.Team)
	require.Error(t, cur.Err)
	assert.True(t, errors.Is(cur.Err, tenancy.ErrTenantNotFound))
}

func TestSession_LoopbackClientParam(t *testing.T) {
	srv := (&fakeAPI{}).server(t)
	s, err := NewSession(context.Background(), SessionConfig{
		BaseURL:     srv.URL,
		Host:        "localhost:8080",
		ClientParam: "LOJA1",
		HostConfig:  tenancy.DefaultHostConfig(),
	})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "loja1", s.Tenant.HostInfo().Subdomain)
	assert.Equal(t, "t1", s.Tenant.TeamID())
}

func TestSession_SignInPersistsAndRestores(t *testing.T) {
	srv := (&fakeAPI{}).server(t)
	path := filepath.Join(t.TempDir(), "state.json")

	s := newTestSession(t, srv, "loja1.delliapp.com.br", path)
	_, err := s.Auth.SignIn(context.Background(), "ana@example.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Nil(t, s.Observer.Identity())

	_, err = s.Auth.SignIn(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)
	require.NotNil(t, s.Observer.Profile())
	assert.Equal(t, "Ana", s.Observer.Profile().Name)
	assert.Equal(t, "customer", s.Observer.Role())

	restored := newTestSession(t, srv, "loja1.delliapp.com.br", path)
	require.NotNil(t, restored.Auth.Session())
	assert.Equal(t, "tok-1", restored.Auth.Session().Token)
	require.NotNil(t, restored.Observer.Profile())

	restored.Auth.SignOut()
	assert.Nil(t, restored.Observer.Identity())
	again := newTestSession(t, srv, "loja1.delliapp.com.br", path)
	assert.Nil(t, again.Auth.Session())
}

func TestSession_AnonymousCheckoutIsRemembered(t *testing.T) {
	api := &fakeAPI{}
	srv := api.server(t)
	s := newTestSession(t, srv, "loja1.delliapp.com.br", "")

	_, err := s.Client.Checkout(context.Background(), s.Cart, CheckoutDetails{}, s.Store)
	require.ErrorIs(t, err, ErrEmptyCart)

	require.NoError(t, s.Cart.Add(Line{ProductID: "p1", Name: "X-Burger", UnitPrice: 20, Quantity: 2, Notes: "sem cebola"}))
	placed, err := s.Client.Checkout(context.Background(), s.Cart, CheckoutDetails{
		CustomerName:  "Ana",
		CustomerPhone: "11999999999",
		Type:          models.OrderPickup,
		PaymentMethod: models.PayCash,
	}, s.Store)
	require.NoError(t, err)
	assert.Equal(t, "o1", placed.Order.ID)
	assert.Empty(t, s.Cart.Lines())

	require.Len(t, api.orders, 1)
	require.Len(t, api.orders[0].Items, 1)
	assert.Equal(t, "sem cebola", api.orders[0].Items[0].Notes)
	assert.Equal(t, 2, api.orders[0].Items[0].Quantity)

	anon, err := AnonOrders(s.Store)
	require.NoError(t, err)
	require.Len(t, anon, 1)
	assert.Equal(t, "o1", anon[0].OrderID)
	assert.Equal(t, "loja1.delliapp.com.br", anon[0].Host)

	order, err := s.Client.Track(context.Background(), anon[0].Token)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatus("preparing"), order.Status)

	_, err = s.Client.Track(context.Background(), "forged")
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), "track-o1"))
}
