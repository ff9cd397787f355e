package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/startin-app/startin/internal/middleware"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentUserID returns the authenticated account id set by the auth middleware.
func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.CtxUserIDKey)
}

// currentUniversityID returns the tenant of the authenticated account, empty
// for admins.
func currentUniversityID(c *gin.Context) string {
	return c.GetString(middleware.CtxUniversityIDKey)
}
