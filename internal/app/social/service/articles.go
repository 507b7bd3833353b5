package service

import (
	"context"
	"errors"
	"time"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/access"
	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	authModel "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	authRepo "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/repo"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/social/model"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/social/repo"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type Timeline struct {
	Articles []model.Article
	Total    int64
	Page     model.Page
}

type ArticleService interface {
	Create(ctx context.Context, who authModel.Identity, in dto.ArticleDTO) (model.Article, error)
	Update(ctx context.Context, who authModel.Identity, id uuid.UUID, in dto.UpdateArticleDTO) (model.Article, error)
	Delete(ctx context.Context, who authModel.Identity, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (model.Article, []model.Comment, error)
	ListByUsername(ctx context.Context, username string) ([]model.Article, error)
	Timeline(ctx context.Context, who authModel.Identity, page model.Page) (Timeline, error)
	// ToggleLike likes the article, or removes an existing like, and reports
	// whether the caller now likes it.
	ToggleLike(ctx context.Context, who authModel.Identity, id uuid.UUID) (bool, error)
}

type articleService struct {
	articles repo.ArticleRepo
	comments repo.CommentRepo
	users    authRepo.UserRepo
	v        *validator.Validate
	now      func() time.Time
}

func NewArticleService(a repo.ArticleRepo, c repo.CommentRepo, u authRepo.UserRepo, v *validator.Validate) ArticleService {
	return &articleService{articles: a, comments: c, users: u, v: v, now: time.Now}
}

func (s *articleService) Create(ctx context.Context, who authModel.Identity, in dto.ArticleDTO) (model.Article, error) {
	if err := s.v.Struct(in); err != nil {
		return model.Article{}, customErrors.NewInvalidArgument(err.Error())
	}

	now := s.now().UTC()
	a := model.Article{
		ID:        uuid.New(),
		OwnerID:   who.ID,
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.articles.CreateArticle(ctx, a); err != nil {
		return model.Article{}, customErrors.WrapInternal(err, "CreateArticle")
	}
	return a, nil
}

func (s *articleService) Update(ctx context.Context, who authModel.Identity, id uuid.UUID, in dto.UpdateArticleDTO) (model.Article, error) {
	if err := s.v.Struct(in); err != nil {
		return model.Article{}, customErrors.NewInvalidArgument(err.Error())
	}

	a, err := s.load(ctx, id)
	if err != nil {
		return model.Article{}, err
	}
	if err := access.Authorize(who, a.OwnerID, access.OpUpdate); err != nil {
		return model.Article{}, err
	}

	if in.Title != nil {
		a.Title = *in.Title
	}
	if in.Content != nil {
		a.Content = *in.Content
	}
	a.UpdatedAt = s.now().UTC()
	if err := s.articles.UpdateArticle(ctx, a); err != nil {
		return model.Article{}, notFound(err, "article", "UpdateArticle")
	}
	return a, nil
}

func (s *articleService) Delete(ctx context.Context, who authModel.Identity, id uuid.UUID) error {
	a, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Authorize(who, a.OwnerID, access.OpDelete); err != nil {
		return err
	}
	if err := s.articles.DeleteArticle(ctx, id); err != nil {
		return notFound(err, "article", "DeleteArticle")
	}
	return nil
}

func (s *articleService) Get(ctx context.Context, id uuid.UUID) (model.Article, []model.Comment, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return model.Article{}, nil, err
	}
	comments, err := s.comments.ListByArticle(ctx, id)
	if err != nil {
		return model.Article{}, nil, customErrors.WrapInternal(err, "ListByArticle")
	}
	return a, comments, nil
}

func (s *articleService) ListByUsername(ctx context.Context, username string) ([]model.Article, error) {
	owner, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "user", "ListByUsername")
	}
	res, _, err := s.articles.ListByOwners(ctx, []uuid.UUID{owner.ID}, model.Page{})
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ListByUsername")
	}
	return res, nil
}

func (s *articleService) Timeline(ctx context.Context, who authModel.Identity, page model.Page) (Timeline, error) {
	page = normalizePage(page)

	me, err := s.users.GetUserByID(ctx, who.ID)
	if err != nil {
		return Timeline{}, notFound(err, "user", "Timeline")
	}
	owners := append([]uuid.UUID{me.ID}, me.Followings...)

	res, total, err := s.articles.ListByOwners(ctx, owners, page)
	if err != nil {
		return Timeline{}, customErrors.WrapInternal(err, "Timeline")
	}
	return Timeline{Articles: res, Total: total, Page: page}, nil
}

func (s *articleService) ToggleLike(ctx context.Context, who authModel.Identity, id uuid.UUID) (bool, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return false, err
	}

	if a.LikedBy(who.ID) {
		err = s.articles.Unlike(ctx, id, who.ID)
		if err != nil && !errors.Is(err, customErrors.ErrNotFound) {
			return false, customErrors.WrapInternal(err, "Unlike")
		}
		return false, nil
	}

	err = s.articles.Like(ctx, id, who.ID)
	if err != nil && !errors.Is(err, customErrors.ErrAlreadyExists) {
		return false, customErrors.WrapInternal(err, "Like")
	}
	return true, nil
}

func (s *articleService) load(ctx context.Context, id uuid.UUID) (model.Article, error) {
	a, err := s.articles.GetArticleByID(ctx, id)
	if err != nil {
		return model.Article{}, notFound(err, "article", "GetArticleByID")
	}
	return a, nil
}

func normalizePage(p model.Page) model.Page {
	if p.Number < 1 {
		p.Number = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}
