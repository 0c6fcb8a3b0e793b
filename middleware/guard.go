package middleware

import (
	"net/http"
	"net/url"
	"strconv"

	"delliapp/metrics"
	"delliapp/store"
	"delliapp/tenancy"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoleGuard gates a route group to tenant member roles. The member role is looked up
// for the current team and caller; repeated denials inside the cool-down answer 403
// instead of redirecting again.
func RoleGuard(db *gorm.DB, guard *tenancy.Guard, redirectTo string, log *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		info := HostInfo(c)
		userID := GetUserID(c)

		var role string
		if teamID := CurrentTeamID(c); teamID != "" && userID != "" {
			r, err := store.Members(store.NewScoped(db, teamID)).RoleOf(c.Request.Context(), userID)
			if err != nil {
				log.Error("member role lookup failed", zap.String("team_id", teamID), zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check permissions"})
				return
			}
			role = r
			c.Set("memberRole", role)
		}

		d := guard.Check(userID+"|"+info.Subdomain, info, role)
		if d.Allowed {
			c.Next()
			return
		}
		if m != nil {
			m.GuardDenials.WithLabelValues(strconv.FormatBool(d.Redirect)).Inc()
		}
		if d.Redirect {
			c.Redirect(http.StatusSeeOther, redirectTo+"?notice="+url.QueryEscape(d.Notice))
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied", "notice": d.Notice})
	}
}

// MemberRole is the caller's role in the current team, set by RoleGuard.
func MemberRole(c *gin.Context) string {
	return c.GetString("memberRole")
}
