// auth.go - Bearer token authentication middleware

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go-inventory-backend/auth"
	"go-inventory-backend/models"

	"github.com/gin-gonic/gin"
)

const userKey = "user"

// TokenResolver maps a bearer token to its user.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// Auth - Returns a Gin middleware that requires a bearer token
// This middleware resolves the token to a user row and stores it in the
// context for handlers.
//
// How it works:
// 1. Checks for "Authorization: Bearer <token>" (scheme in any case)
// 2. Verifies signature and expiry and loads the user the token names
// 3. Answers 401 with WWW-Authenticate when the token is rejected
// 4. Stores the user under "user" and continues
func Auth(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		// STEP 1: Extract the bearer token
		// A missing header, another scheme or an empty token is a 401
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			unauthorized(c)
			return
		}

		// STEP 2: Verify it and load the current user row
		// Only a rejected token is a 401; a failing user store is a 500
		user, err := resolver.Resolve(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
				return
			}
			unauthorized(c)
			return
		}

		c.Set(userKey, user) // Read back with CurrentUser
		c.Next()             // Continue to the handler
	}
}

// CurrentUser returns the user stored by Auth.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
}
