package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/startin-app/startin/internal/auth"
	"github.com/startin-app/startin/pkg/errors"
	"github.com/startin-app/startin/pkg/response"
)

const (
	CtxClaimsKey       = "authClaims"
	CtxUserIDKey       = "userID"
	CtxUniversityIDKey = "universityID"
	CtxUserTypeKey     = "userType"
)

// Auth enforces JWT authentication using the supplied JWT service.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		// Propagate identity into request context
		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUserTypeKey, claims.UserType)
		if claims.UniversityID != "" {
			c.Set(CtxUniversityIDKey, claims.UniversityID)
		}

		c.Next()
	}
}

// RequireUserType gates a route group to the listed account types. It must
// run after Auth.
func RequireUserType(userTypes ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(userTypes))
	for _, userType := range userTypes {
		allowed[userType] = struct{}{}
	}

	return func(c *gin.Context) {
		userType := c.GetString(CtxUserTypeKey)
		if _, ok := allowed[userType]; !ok {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
