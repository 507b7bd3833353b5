package middleware

import (
	"context"
	"net/http"
	"strings"

	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (model.Identity, error)
}

// RequireAuth rejects requests without a valid "Authorization: Bearer" access
// token. Missing, malformed, forged, expired and revoked tokens all get the
// same 401.
func RequireAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortInvalidToken(c)
			return
		}

		id, err := a.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
		case customErrors.IsInvalidToken(err):
			abortInvalidToken(c)
			return
		default:
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"status":  "failure",
				"message": "internal server error",
			})
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

func abortInvalidToken(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  "failure",
		"message": customErrors.ErrInvalidToken.Error(),
	})
}

func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// IdentityFrom returns the identity set by RequireAuth.
func IdentityFrom(c *gin.Context) (model.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return model.Identity{}, false
	}
	id, ok := v.(model.Identity)
	return id, ok
}
