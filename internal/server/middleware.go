package server

import (
	"github.com/gin-gonic/gin"
	"github.com/invorahq/invora/internal/tenantctx"
)

// AuthRequired authenticates the session cookie and loads the caller's
// company onto the request context. Every /api handler downstream assumes
// both identities are present.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		session, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := tenantctx.WithUserID(c.Request.Context(), session.UserID)

		company, err := s.companyRepo.FindByOwner(ctx, s.db, session.UserID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if company != nil {
			ctx = tenantctx.WithCompanyID(ctx, company.ID)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// PublicRateLimit throttles anonymous traffic per client IP.
func (s *Server) PublicRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.publicLimiter.Allow(c.Request.Context(), c.ClientIP()) {
			s.obsMetrics.RateLimitDenied("public")
			AbortWithError(c, ErrTooManyReqs)
			return
		}
		c.Next()
	}
}
