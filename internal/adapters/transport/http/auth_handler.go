package http

import (
	"net/http"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/dto"
	appsvc "github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/service"
	lg "github.com/Miraines/MoonyAndStarry/social-service/internal/infra/log"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type authHandler struct {
	svc appsvc.Service
	log *zap.Logger
}

func (h *authHandler) signup(c *gin.Context) {
	var body dto.SignupDTO
	if !bindJSON(c, &body) {
		return
	}
	h.log.Info("/signup", lg.Hashed("user", body.Username))

	acc, err := h.svc.Signup(c.Request.Context(), body)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusCreated, "user created", gin.H{"data": acc.Public()})
}

func (h *authHandler) login(c *gin.Context) {
	var body dto.LoginDTO
	if !bindJSON(c, &body) {
		return
	}
	h.log.Info("/login", lg.Hashed("user", body.Username))

	acc, pair, err := h.svc.Login(c.Request.Context(), body)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, "logged in", gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"expiresIn":    int(pair.AccessTTL.Seconds()),
		"data":         acc.Public(),
	})
}

func (h *authHandler) logout(c *gin.Context) {
	var body dto.LogoutDTO
	if !bindJSON(c, &body) {
		return
	}
	if err := h.svc.Logout(c.Request.Context(), body); err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, "logged out", nil)
}

func (h *authHandler) refresh(c *gin.Context) {
	var body dto.RefreshDTO
	if !bindJSON(c, &body) {
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), body)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, "token refreshed", gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"expiresIn":    int(pair.AccessTTL.Seconds()),
	})
}
