// Package jwtmw はトークンの発行・検証と、それを使うGinミドルウェアを提供します。
package jwtmw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"workzone_backend/internal/api"
	"workzone_backend/internal/feature/auth/domain/entity"
	"workzone_backend/internal/feature/auth/usecase"
)

// ContextIdentity はリクエストコンテキストに認証済みIDを格納するキーです。
const ContextIdentity = "identity"

// TokenVerifier はトークンを検証し、対応するIDを返します。
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*entity.Identity, error)
}

// AuthRequired returns a Gin middleware function that validates tokens
// and restricts access to authenticated, active identities.
func AuthRequired(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := strings.TrimSpace(c.GetHeader("Authorization"))
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.Fail("Not authorized, no token"))
			return
		}

		identity, err := verifier.VerifyToken(c.Request.Context(), auth)
		switch {
		case err == nil:
		case errors.Is(err, usecase.ErrAccountDisabled):
			c.AbortWithStatusJSON(http.StatusForbidden, api.Fail("Account is disabled"))
			return
		case errors.Is(err, usecase.ErrUnauthenticated):
			slog.Debug("token rejected", "error", err, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.Fail("Not authorized, token failed"))
			return
		default:
			slog.Error("token verification failed", "error", err, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.Fail("Internal server error"))
			return
		}

		c.Set(ContextIdentity, identity)
		c.Next()
	}
}

// RequireRole returns a middleware that allows only the given roles.
// AuthRequiredの後に配置する必要があります。
func RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.Fail("Not authorized, no token"))
			return
		}
		if err := usecase.RequireRole(identity, roles...); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden,
				api.Fail("Role "+string(identity.Role)+" is not authorized to access this resource"))
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity stored by AuthRequired.
func CurrentIdentity(c *gin.Context) (*entity.Identity, bool) {
	v, exists := c.Get(ContextIdentity)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*entity.Identity)
	return identity, ok && identity != nil
}
