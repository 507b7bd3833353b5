package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresUserRepo struct {
	db *gorm.DB
}

func NewPostgresUserRepo(db *gorm.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

func (p *PostgresUserRepo) CreateUser(ctx context.Context, user model.Account) (uuid.UUID, error) {
	rec := toUserRecord(user)
	res := p.db.WithContext(ctx).Create(&rec)
	if err := res.Error; err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, customErrors.ErrAlreadyExists
		}
		return uuid.Nil, customErrors.WrapInternal(err, "CreateUser")
	}
	return rec.ID, nil
}

func (p *PostgresUserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (model.Account, error) {
	return p.getBy(ctx, "id = ?", id, "GetUserByID")
}

func (p *PostgresUserRepo) GetUserByUsername(ctx context.Context, username string) (model.Account, error) {
	return p.getBy(ctx, "username = ?", username, "GetUserByUsername")
}

func (p *PostgresUserRepo) getBy(ctx context.Context, cond string, arg any, op string) (model.Account, error) {
	var rec userRecord
	res := p.db.WithContext(ctx).Where(cond, arg).First(&rec)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Account{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Account{}, customErrors.WrapInternal(err, op)
	}

	u := rec.toModel()
	if err := p.loadFollows(ctx, &u); err != nil {
		return model.Account{}, customErrors.WrapInternal(err, op)
	}
	return u, nil
}

func (p *PostgresUserRepo) loadFollows(ctx context.Context, u *model.Account) error {
	db := p.db.WithContext(ctx).Model(&followRecord{})
	if err := db.Where("follower_id = ?", u.ID).Order("created_at").Pluck("followee_id", &u.Followings).Error; err != nil {
		return err
	}
	return p.db.WithContext(ctx).Model(&followRecord{}).
		Where("followee_id = ?", u.ID).Order("created_at").Pluck("follower_id", &u.Followers).Error
}

// GetUsersByIDs returns the accounts that exist, without follow sets, ordered
// by username.
func (p *PostgresUserRepo) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var recs []userRecord
	if err := p.db.WithContext(ctx).Where("id IN ?", ids).Order("username").Find(&recs).Error; err != nil {
		return nil, customErrors.WrapInternal(err, "GetUsersByIDs")
	}
	return toAccounts(recs), nil
}

func (p *PostgresUserRepo) SearchUsers(ctx context.Context, query string, limit int) ([]model.Account, error) {
	db := p.db.WithContext(ctx).Order("username")
	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
		db = db.Where(`LOWER(username) LIKE ? ESCAPE '\'`, pattern)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}

	var recs []userRecord
	if err := db.Find(&recs).Error; err != nil {
		return nil, customErrors.WrapInternal(err, "SearchUsers")
	}
	return toAccounts(recs), nil
}

func (p *PostgresUserRepo) UpdateUser(ctx context.Context, user model.Account) error {
	res := p.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", user.ID).Updates(map[string]any{
		"username":        user.Username,
		"email":           user.Email,
		"password_hash":   user.PasswordHash,
		"role":            string(user.Role),
		"profile_picture": user.ProfilePicture,
		"updated_at":      time.Now().UTC(),
	})
	if err := res.Error; err != nil {
		if isUniqueViolation(err) {
			return customErrors.ErrAlreadyExists
		}
		return customErrors.WrapInternal(err, "UpdateUser")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func (p *PostgresUserRepo) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	rec := followRecord{FollowerID: followerID, FolloweeID: followeeID}
	if err := p.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return customErrors.ErrAlreadyExists
		}
		return customErrors.WrapInternal(err, "Follow")
	}
	return nil
}

func (p *PostgresUserRepo) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	res := p.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&followRecord{})
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "Unfollow")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func toAccounts(recs []userRecord) []model.Account {
	out := make([]model.Account, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toModel())
	}
	return out
}
