package http

import (
	"net/http"

	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
)

func success(c *gin.Context, code int, message string, extra gin.H) {
	body := gin.H{"status": "success", "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(code, body)
}

func failure(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"status": "failure", "message": message})
}

// handleError maps domain errors to HTTP statuses. Internal details only
// reach the log through c.Error.
func handleError(c *gin.Context, err error) {
	switch {
	case customErrors.IsInvalidArgument(err):
		failure(c, http.StatusBadRequest, err.Error())
	case customErrors.IsInvalidCredentials(err):
		failure(c, http.StatusUnauthorized, "invalid credentials")
	case customErrors.IsInvalidToken(err):
		failure(c, http.StatusUnauthorized, "invalid token")
	case customErrors.IsForbidden(err):
		failure(c, http.StatusForbidden, customErrors.ErrForbidden.Error())
	case customErrors.IsNotFound(err):
		failure(c, http.StatusNotFound, err.Error())
	case customErrors.IsAlreadyExists(err):
		failure(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		failure(c, http.StatusInternalServerError, "internal server error")
	}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		failure(c, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}
