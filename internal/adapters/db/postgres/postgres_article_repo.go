package postgres

import (
	"context"
	"errors"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/social/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresArticleRepo struct {
	db *gorm.DB
}

func NewPostgresArticleRepo(db *gorm.DB) *PostgresArticleRepo {
	return &PostgresArticleRepo{db: db}
}

func (p *PostgresArticleRepo) CreateArticle(ctx context.Context, a model.Article) (uuid.UUID, error) {
	rec := articleRecord{
		ID:        a.ID,
		OwnerID:   a.OwnerID,
		Title:     a.Title,
		Content:   a.Content,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if err := p.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return uuid.Nil, customErrors.WrapInternal(err, "CreateArticle")
	}
	return rec.ID, nil
}

func (p *PostgresArticleRepo) GetArticleByID(ctx context.Context, id uuid.UUID) (model.Article, error) {
	var rec articleRecord
	res := p.db.WithContext(ctx).Where("id = ?", id).First(&rec)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Article{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Article{}, customErrors.WrapInternal(err, "GetArticleByID")
	}

	likes, err := p.likesFor(ctx, []uuid.UUID{rec.ID})
	if err != nil {
		return model.Article{}, customErrors.WrapInternal(err, "GetArticleByID")
	}
	return rec.toModel(likes[rec.ID]), nil
}

func (p *PostgresArticleRepo) UpdateArticle(ctx context.Context, a model.Article) error {
	res := p.db.WithContext(ctx).Model(&articleRecord{}).Where("id = ?", a.ID).Updates(map[string]any{
		"title":      a.Title,
		"content":    a.Content,
		"updated_at": time.Now().UTC(),
	})
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "UpdateArticle")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

// DeleteArticle removes the article together with its likes and comments.
func (p *PostgresArticleRepo) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).Delete(&likeRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&commentRecord{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&articleRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return customErrors.ErrNotFound
		}
		return nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, customErrors.ErrNotFound):
		return customErrors.ErrNotFound
	default:
		return customErrors.WrapInternal(err, "DeleteArticle")
	}
}

// ListByOwners returns the newest articles first together with the total
// count. A zero page limit returns everything.
func (p *PostgresArticleRepo) ListByOwners(ctx context.Context, owners []uuid.UUID, page model.Page) ([]model.Article, int64, error) {
	if len(owners) == 0 {
		return nil, 0, nil
	}

	var total int64
	if err := p.db.WithContext(ctx).Model(&articleRecord{}).Where("owner_id IN ?", owners).Count(&total).Error; err != nil {
		return nil, 0, customErrors.WrapInternal(err, "ListByOwners")
	}

	db := p.db.WithContext(ctx).Where("owner_id IN ?", owners).Order("created_at DESC").Order("id")
	if page.Limit > 0 {
		db = db.Offset(page.Offset()).Limit(page.Limit)
	}
	var recs []articleRecord
	if err := db.Find(&recs).Error; err != nil {
		return nil, 0, customErrors.WrapInternal(err, "ListByOwners")
	}

	ids := make([]uuid.UUID, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	likes, err := p.likesFor(ctx, ids)
	if err != nil {
		return nil, 0, customErrors.WrapInternal(err, "ListByOwners")
	}

	out := make([]model.Article, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toModel(likes[r.ID]))
	}
	return out, total, nil
}

func (p *PostgresArticleRepo) likesFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var recs []likeRecord
	if err := p.db.WithContext(ctx).Where("article_id IN ?", ids).Order("created_at").Find(&recs).Error; err != nil {
		return nil, err
	}
	for _, l := range recs {
		out[l.ArticleID] = append(out[l.ArticleID], l.UserID)
	}
	return out, nil
}

func (p *PostgresArticleRepo) Like(ctx context.Context, articleID, userID uuid.UUID) error {
	rec := likeRecord{ArticleID: articleID, UserID: userID}
	if err := p.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return customErrors.ErrAlreadyExists
		}
		return customErrors.WrapInternal(err, "Like")
	}
	return nil
}

func (p *PostgresArticleRepo) Unlike(ctx context.Context, articleID, userID uuid.UUID) error {
	res := p.db.WithContext(ctx).
		Where("article_id = ? AND user_id = ?", articleID, userID).
		Delete(&likeRecord{})
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "Unlike")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}
