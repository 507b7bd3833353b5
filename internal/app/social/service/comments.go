package service

import (
	"context"
	"time"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	authModel "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/social/model"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/social/repo"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type CommentService interface {
	Add(ctx context.Context, who authModel.Identity, in dto.CommentDTO) (model.Comment, error)
	ListByArticle(ctx context.Context, articleID uuid.UUID) ([]model.Comment, error)
}

type commentService struct {
	articles repo.ArticleRepo
	comments repo.CommentRepo
	v        *validator.Validate
	now      func() time.Time
}

func NewCommentService(a repo.ArticleRepo, c repo.CommentRepo, v *validator.Validate) CommentService {
	return &commentService{articles: a, comments: c, v: v, now: time.Now}
}

func (s *commentService) Add(ctx context.Context, who authModel.Identity, in dto.CommentDTO) (model.Comment, error) {
	if err := s.v.Struct(in); err != nil {
		return model.Comment{}, customErrors.NewInvalidArgument(err.Error())
	}
	articleID, err := uuid.Parse(in.ArticleID)
	if err != nil {
		return model.Comment{}, customErrors.NewInvalidArgument("invalid article id")
	}

	if _, err := s.articles.GetArticleByID(ctx, articleID); err != nil {
		return model.Comment{}, notFound(err, "article", "Add")
	}

	c := model.Comment{
		ID:        uuid.New(),
		ArticleID: articleID,
		OwnerID:   who.ID,
		Content:   in.Content,
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.comments.CreateComment(ctx, c); err != nil {
		return model.Comment{}, customErrors.WrapInternal(err, "CreateComment")
	}
	return c, nil
}

func (s *commentService) ListByArticle(ctx context.Context, articleID uuid.UUID) ([]model.Comment, error) {
	if _, err := s.articles.GetArticleByID(ctx, articleID); err != nil {
		return nil, notFound(err, "article", "ListByArticle")
	}
	res, err := s.comments.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ListByArticle")
	}
	return res, nil
}
