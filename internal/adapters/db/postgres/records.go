package postgres

import (
	"errors"
	"strings"
	"time"

	authModel "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	socialModel "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/social/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Records mirror scripts/db/migrations; AutoMigrate is only used by tests.

type userRecord struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username       string    `gorm:"uniqueIndex;not null"`
	Email          string    `gorm:"not null"`
	PasswordHash   string    `gorm:"not null"`
	Role           string    `gorm:"not null;default:user"`
	ProfilePicture string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (userRecord) TableName() string { return "users" }

type followRecord struct {
	FollowerID uuid.UUID `gorm:"type:uuid;primaryKey"`
	FolloweeID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt  time.Time
}

func (followRecord) TableName() string { return "follows" }

type articleRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Title     string    `gorm:"not null"`
	Content   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (articleRecord) TableName() string { return "articles" }

type likeRecord struct {
	ArticleID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

func (likeRecord) TableName() string { return "article_likes" }

type commentRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ArticleID uuid.UUID `gorm:"type:uuid;index;not null"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null"`
	Content   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (commentRecord) TableName() string { return "comments" }

// Models lists every record type for gorm.AutoMigrate.
func Models() []any {
	return []any{&userRecord{}, &followRecord{}, &articleRecord{}, &likeRecord{}, &commentRecord{}}
}

func toUserRecord(a authModel.Account) userRecord {
	return userRecord{
		ID:             a.ID,
		Username:       a.Username,
		Email:          a.Email,
		PasswordHash:   a.PasswordHash,
		Role:           string(a.Role),
		ProfilePicture: a.ProfilePicture,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func (r userRecord) toModel() authModel.Account {
	return authModel.Account{
		ID:             r.ID,
		Username:       r.Username,
		Email:          r.Email,
		PasswordHash:   r.PasswordHash,
		Role:           authModel.Role(r.Role),
		ProfilePicture: r.ProfilePicture,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (r articleRecord) toModel(likes []uuid.UUID) socialModel.Article {
	return socialModel.Article{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Title:     r.Title,
		Content:   r.Content,
		Likes:     likes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (r commentRecord) toModel() socialModel.Comment {
	return socialModel.Comment{
		ID:        r.ID,
		ArticleID: r.ArticleID,
		OwnerID:   r.OwnerID,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
	}
}

// isUniqueViolation recognises both the raw postgres error and the
// translated gorm error (gorm.Config.TranslateError).
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
