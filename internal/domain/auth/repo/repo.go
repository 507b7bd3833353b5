package repo

import (
	"context"
	"time"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	"github.com/google/uuid"
)

type UserRepo interface {
	CreateUser(ctx context.Context, u model.Account) (uuid.UUID, error)

	GetUserByID(ctx context.Context, id uuid.UUID) (model.Account, error)

	GetUserByUsername(ctx context.Context, username string) (model.Account, error)

	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Account, error)

	SearchUsers(ctx context.Context, query string, limit int) ([]model.Account, error)

	UpdateUser(ctx context.Context, u model.Account) error

	Follow(ctx context.Context, followerID, followeeID uuid.UUID) error

	Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error
}

// TokenRepo records revoked token ids until the token itself would have
// expired. A zero expiresAt means the token never expires.
type TokenRepo interface {
	RevokeAccess(ctx context.Context, jti string, expiresAt time.Time) error

	IsAccessRevoked(ctx context.Context, jti string) (bool, error)

	Revoke(ctx context.Context, jti string, expiresAt time.Time) error

	IsRevoked(ctx context.Context, jti string) (bool, error)
}
