package http

import (
	"net/http"
	"strconv"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/middleware"
	socialsvc "github.com/Miraines/MoonyAndStarry/social-service/internal/app/social/service"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/social/model"
	"github.com/gin-gonic/gin"
)

type articleHandler struct {
	svc socialsvc.ArticleService
}

func (h *articleHandler) create(c *gin.Context) {
	var body dto.ArticleDTO
	if !bindJSON(c, &body) {
		return
	}
	who, _ := middleware.IdentityFrom(c)

	a, err := h.svc.Create(c.Request.Context(), who, body)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusCreated, "article created", gin.H{"data": toArticleView(a)})
}

func (h *articleHandler) update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var body dto.UpdateArticleDTO
	if !bindJSON(c, &body) {
		return
	}
	who, _ := middleware.IdentityFrom(c)

	a, err := h.svc.Update(c.Request.Context(), who, id, body)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, "article updated", gin.H{"data": toArticleView(a)})
}

func (h *articleHandler) remove(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	who, _ := middleware.IdentityFrom(c)

	if err := h.svc.Delete(c.Request.Context(), who, id); err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, "article deleted", nil)
}

func (h *articleHandler) get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	a, comments, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, "article found", gin.H{
		"data":     toArticleView(a),
		"comments": toCommentViews(comments),
	})
}

func (h *articleHandler) byUsername(c *gin.Context) {
	res, err := h.svc.ListByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, "articles found", gin.H{"data": toArticleViews(res)})
}

func (h *articleHandler) timeline(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	who, _ := middleware.IdentityFrom(c)

	tl, err := h.svc.Timeline(c.Request.Context(), who, model.Page{Number: page, Limit: limit})
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, "timeline", gin.H{
		"data":  toArticleViews(tl.Articles),
		"total": tl.Total,
		"page":  tl.Page.Number,
		"limit": tl.Page.Limit,
	})
}

func (h *articleHandler) like(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	who, _ := middleware.IdentityFrom(c)

	liked, err := h.svc.ToggleLike(c.Request.Context(), who, id)
	if err != nil {
		handleError(c, err)
		return
	}
	msg := "article unliked"
	if liked {
		msg = "article liked"
	}
	success(c, http.StatusOK, msg, gin.H{"liked": liked})
}
