package http

import (
	"time"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	socialModel "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/social/model"
	"github.com/google/uuid"
)

type articleView struct {
	ID        uuid.UUID   `json:"_id"`
	Owner     uuid.UUID   `json:"owner"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Likes     []uuid.UUID `json:"likes"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func toArticleView(a socialModel.Article) articleView {
	likes := a.Likes
	if likes == nil {
		likes = []uuid.UUID{}
	}
	return articleView{
		ID: a.ID, Owner: a.OwnerID, Title: a.Title, Content: a.Content,
		Likes: likes, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
	}
}

func toArticleViews(as []socialModel.Article) []articleView {
	out := make([]articleView, 0, len(as))
	for _, a := range as {
		out = append(out, toArticleView(a))
	}
	return out
}

type commentView struct {
	ID        uuid.UUID `json:"_id"`
	ArticleID uuid.UUID `json:"articleId"`
	Owner     uuid.UUID `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCommentViews(cs []socialModel.Comment) []commentView {
	out := make([]commentView, 0, len(cs))
	for _, c := range cs {
		out = append(out, commentView{
			ID: c.ID, ArticleID: c.ArticleID, Owner: c.OwnerID, Content: c.Content, CreatedAt: c.CreatedAt,
		})
	}
	return out
}

func toSummaries(accs []model.Account) []model.Summary {
	out := make([]model.Summary, 0, len(accs))
	for _, a := range accs {
		out = append(out, a.Summary())
	}
	return out
}
