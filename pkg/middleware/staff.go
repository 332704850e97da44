package middleware

import (
	"strings"

	"character-chat/backend/pkg/errors"
	"character-chat/backend/pkg/jwt"
	"character-chat/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Predicate checks one property of an authenticated request.
type Predicate func(c *gin.Context) *errors.AppError

// IsAuthenticated requires claims set by JWTAuth.
func IsAuthenticated(c *gin.Context) *errors.AppError {
	if _, exists := c.Get("claims"); !exists {
		return errors.NewUnauthorizedError("AUTH_REQUIRED", "Authentication required")
	}
	return nil
}

// IsStaff requires the staff flag on the token claims.
func IsStaff(c *gin.Context) *errors.AppError {
	claims, exists := c.Get("claims")
	if !exists {
		return errors.NewUnauthorizedError("AUTH_REQUIRED", "Authentication required")
	}
	jwtClaims, ok := claims.(*jwt.Claims)
	if !ok {
		return errors.NewInternalServerError("INVALID_CLAIMS", "Invalid token claims format")
	}
	if !jwtClaims.IsStaff {
		return errors.NewForbiddenError("STAFF_REQUIRED", "Staff access required")
	}
	return nil
}

// Require composes predicates into one guard middleware. The admin route
// group uses Require(IsAuthenticated, IsStaff).
func Require(predicates ...Predicate) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, predicate := range predicates {
			if err := predicate(c); err != nil {
				c.Error(err)
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

// JWTAuth checks that the request has a valid JWT and adds claims to the context
func JWTAuth(jwtService *jwt.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.Error(errors.NewUnauthorizedError("AUTH_REQUIRED", "Authorization header is required"))
			c.Abort()
			return
		}

		token = strings.TrimPrefix(token, "Bearer ")

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			log.Warn("Invalid JWT token", "error", err.Error())
			c.Error(errors.NewUnauthorizedError("INVALID_TOKEN", "Invalid or expired token"))
			c.Abort()
			return
		}

		c.Set("claims", claims)
		c.Set("userId", claims.UserID)

		c.Next()
	}
}
