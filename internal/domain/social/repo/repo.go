package repo

import (
	"context"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/social/model"
	"github.com/google/uuid"
)

type ArticleRepo interface {
	CreateArticle(ctx context.Context, a model.Article) (uuid.UUID, error)

	GetArticleByID(ctx context.Context, id uuid.UUID) (model.Article, error)

	UpdateArticle(ctx context.Context, a model.Article) error

	DeleteArticle(ctx context.Context, id uuid.UUID) error

	ListByOwners(ctx context.Context, owners []uuid.UUID, page model.Page) ([]model.Article, int64, error)

	Like(ctx context.Context, articleID, userID uuid.UUID) error

	Unlike(ctx context.Context, articleID, userID uuid.UUID) error
}

type CommentRepo interface {
	CreateComment(ctx context.Context, c model.Comment) (uuid.UUID, error)

	ListByArticle(ctx context.Context, articleID uuid.UUID) ([]model.Comment, error)
}
