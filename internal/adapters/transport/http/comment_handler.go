package http

import (
	"net/http"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/middleware"
	socialsvc "github.com/Miraines/MoonyAndStarry/social-service/internal/app/social/service"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/social/model"
	"github.com/gin-gonic/gin"
)

type commentHandler struct {
	svc socialsvc.CommentService
}

func (h *commentHandler) create(c *gin.Context) {
	var body dto.CommentDTO
	if !bindJSON(c, &body) {
		return
	}
	who, _ := middleware.IdentityFrom(c)

	cm, err := h.svc.Add(c.Request.Context(), who, body)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusCreated, "comment added", gin.H{"data": toCommentViews([]model.Comment{cm})[0]})
}

func (h *commentHandler) byArticle(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	res, err := h.svc.ListByArticle(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, "comments", gin.H{"data": toCommentViews(res)})
}
