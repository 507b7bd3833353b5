package http

import (
	"net/http"
	"strconv"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/middleware"
	socialsvc "github.com/Miraines/MoonyAndStarry/social-service/internal/app/social/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type userHandler struct {
	svc socialsvc.AccountService
}

func (h *userHandler) search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	res, err := h.svc.Search(c.Request.Context(), c.Query("search"), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, "users found", gin.H{"data": toSummaries(res)})
}

func (h *userHandler) byUsername(c *gin.Context) {
	acc, err := h.svc.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, "user found", gin.H{"data": acc.Public()})
}

func (h *userHandler) byID(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	acc, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, "user found", gin.H{"data": acc.Public()})
}

func (h *userHandler) followers(c *gin.Context) {
	res, err := h.svc.Followers(c.Request.Context(), c.Param("username"))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, "followers", gin.H{"data": toSummaries(res)})
}

func (h *userHandler) followings(c *gin.Context) {
	res, err := h.svc.Followings(c.Request.Context(), c.Param("username"))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, "followings", gin.H{"data": toSummaries(res)})
}

func (h *userHandler) update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var body dto.UpdateUserDTO
	if !bindJSON(c, &body) {
		return
	}
	who, _ := middleware.IdentityFrom(c)

	acc, err := h.svc.Update(c.Request.Context(), who, id, body)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, "user updated", gin.H{"data": acc.Public()})
}

func (h *userHandler) follow(c *gin.Context) {
	who, _ := middleware.IdentityFrom(c)
	if err := h.svc.Follow(c.Request.Context(), who, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, "followed "+c.Param("id"), nil)
}

func (h *userHandler) unfollow(c *gin.Context) {
	who, _ := middleware.IdentityFrom(c)
	if err := h.svc.Unfollow(c.Request.Context(), who, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, "unfollowed "+c.Param("id"), nil)
}

type avatarRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

func (h *userHandler) avatar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var body avatarRequest
	if !bindJSON(c, &body) {
		return
	}
	who, _ := middleware.IdentityFrom(c)

	av, err := h.svc.PresignAvatar(c.Request.Context(), who, id, body.ContentType)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, "upload url issued", gin.H{"data": av})
}

func paramID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		failure(c, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
