package middleware

import (
	"context"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"

	"queueless/internal/domain"
	"queueless/internal/pkg/apperr"
)

const (
	keyCompanyID  = "company_id"
	keyMemberRole = "member_role"
)

type MembershipLookup interface {
	Get(ctx context.Context, companyID, userID int64) (*domain.CompanyMembership, error)
}

// RequirePlatformAdmin must run after Auth.
func RequirePlatformAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			abortWith(c, errAuthRequired)
			return
		}
		if !actor.IsPlatformAdmin() {
			abortWith(c, apperr.Forbidden("Platform admin access required"))
			return
		}
		c.Next()
	}
}

// CompanyAccess lets through active members of the company in the :id path
// param whose role is in roles (any role when empty). Platform admins always
// pass.
func CompanyAccess(members MembershipLookup, roles ...domain.MemberRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			abortWith(c, errAuthRequired)
			return
		}

		companyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || companyID <= 0 {
			abortWith(c, apperr.Validation("Invalid company ID"))
			return
		}
		c.Set(keyCompanyID, companyID)

		if actor.IsPlatformAdmin() {
			c.Next()
			return
		}

		m, err := members.Get(c.Request.Context(), companyID, actor.UserID)
		if err != nil {
			abortWith(c, apperr.Internal("Failed to check company access", err))
			return
		}
		if m == nil || !m.IsActive {
			abortWith(c, apperr.Forbidden("You are not a member of this company"))
			return
		}
		if len(roles) > 0 && !slices.Contains(roles, m.Role) {
			abortWith(c, apperr.Forbidden("Access denied: insufficient permissions"))
			return
		}

		c.Set(keyMemberRole, string(m.Role))
		c.Next()
	}
}

// CompanyIDFrom returns the company id validated by CompanyAccess.
func CompanyIDFrom(c *gin.Context) int64 {
	return c.GetInt64(keyCompanyID)
}
