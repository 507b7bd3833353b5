package postgres

import (
	"context"

	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/social/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresCommentRepo struct {
	db *gorm.DB
}

func NewPostgresCommentRepo(db *gorm.DB) *PostgresCommentRepo {
	return &PostgresCommentRepo{db: db}
}

func (p *PostgresCommentRepo) CreateComment(ctx context.Context, c model.Comment) (uuid.UUID, error) {
	rec := commentRecord{
		ID:        c.ID,
		ArticleID: c.ArticleID,
		OwnerID:   c.OwnerID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
	if err := p.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return uuid.Nil, customErrors.WrapInternal(err, "CreateComment")
	}
	return rec.ID, nil
}

// ListByArticle returns comments oldest first.
func (p *PostgresCommentRepo) ListByArticle(ctx context.Context, articleID uuid.UUID) ([]model.Comment, error) {
	var recs []commentRecord
	err := p.db.WithContext(ctx).Where("article_id = ?", articleID).Order("created_at").Order("id").Find(&recs).Error
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ListByArticle")
	}
	out := make([]model.Comment, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toModel())
	}
	return out, nil
}
