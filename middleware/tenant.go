package middleware

import (
	"errors"
	"net/http"

	"delliapp/models"
	"delliapp/tenancy"

	"github.com/gin-gonic/gin"
)

const (
	ctxHost      = "tenant.host"
	ctxTeam      = "tenant.team"
	ctxTenantErr = "tenant.err"
)

// Tenant parses the request host and resolves the current team. It never aborts;
// RequireTenant and RequireAdminMode decide what a handler needs.
func Tenant(cfg tenancy.HostConfig, resolver *tenancy.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		info := tenancy.ParseHost(c.Request.Host, c.Query("client"), string(GetRole(c)), cfg)
		c.Set(ctxHost, info)

		team, err := resolver.Resolve(c.Request.Context(), info)
		if err != nil {
			c.Set(ctxTenantErr, err)
		} else if team != nil {
			c.Set(ctxTeam, team)
		}
		c.Next()
	}
}

// HostInfo returns the parsed host of the request.
func HostInfo(c *gin.Context) tenancy.HostInfo {
	v, _ := c.Get(ctxHost)
	info, _ := v.(tenancy.HostInfo)
	return info
}

// CurrentTeam is nil outside client mode.
func CurrentTeam(c *gin.Context) *models.Team {
	v, _ := c.Get(ctxTeam)
	team, _ := v.(*models.Team)
	return team
}

// CurrentTeamID is empty outside client mode.
func CurrentTeamID(c *gin.Context) string {
	if team := CurrentTeam(c); team != nil {
		return team.ID
	}
	return ""
}

// RequireTenant aborts unless the request runs in client mode with a resolved team.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentTeam(c) != nil {
			c.Next()
			return
		}
		if v, ok := c.Get(ctxTenantErr); ok {
			err, _ := v.(error)
			var rerr *tenancy.ResolveError
			if errors.As(err, &rerr) {
				status := http.StatusServiceUnavailable
				if errors.Is(err, tenancy.ErrTenantNotFound) {
					status = http.StatusNotFound
				}
				c.AbortWithStatusJSON(status, gin.H{"error": rerr.Message()})
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "This address does not belong to a restaurant"})
	}
}

// RequireAdminMode aborts unless the request is privileged on the admin host.
func RequireAdminMode() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !HostInfo(c).IsAdminMode {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Platform administration is only available on the admin host"})
			return
		}
		c.Next()
	}
}
