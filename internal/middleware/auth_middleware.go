package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/bobasi/bursary/internal/app/auth"
	"github.com/bobasi/bursary/internal/app/models/dto"
	jwtauth "github.com/bobasi/bursary/internal/pkg/auth"
	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// Authenticator turns a bearer token into the calling actor
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Actor, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	authenticator Authenticator
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// JWTAuth validates the bearer token and stores the actor on the context
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeAuthRequired, "Authentication required").
				WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.APIResponse{Error: errorDetail})
			return
		}

		tokenString, err := jwtauth.ExtractBearerToken(authHeader)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Authentication failed").
				WithDetails("Invalid token format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.APIResponse{Error: errorDetail})
			return
		}

		actor, err := m.authenticator.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// RolesRequired lets the request through only when the actor may perform op.
// Services check again; this rejects early without touching storage.
func (m *AuthMiddleware) RolesRequired(op auth.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeAuthRequired, "Authentication required")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.APIResponse{Error: errorDetail})
			return
		}

		if err := auth.Authorize(actor, op); err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}

// ErrNoActor is returned by MustActor when the route was not authenticated
var ErrNoActor = errors.New("no authenticated actor on request")

// ActorFrom returns the actor stored by JWTAuth
func ActorFrom(c *gin.Context) (auth.Actor, bool) {
	value, exists := c.Get(actorKey)
	if !exists {
		return auth.Actor{}, false
	}
	actor, ok := value.(auth.Actor)
	return actor, ok
}

// MustActor returns the actor or writes a 401 response and reports false
func MustActor(c *gin.Context) (auth.Actor, bool) {
	actor, ok := ActorFrom(c)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeAuthRequired, "Authentication required").
			WithDetails(ErrNoActor.Error())
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.APIResponse{Error: errorDetail})
	}
	return actor, ok
}
