package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/access"
	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	repo "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/repo"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const DefaultSearchLimit = 10

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// AvatarStore hands out upload URLs for profile pictures.
type AvatarStore interface {
	PresignPut(ctx context.Context, key, contentType string) (string, error)
	ObjectURL(key string) string
}

type Avatar struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	URL       string `json:"url"`
}

type AccountService interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.Account, error)
	GetByUsername(ctx context.Context, username string) (model.Account, error)
	Search(ctx context.Context, query string, limit int) ([]model.Account, error)
	Followers(ctx context.Context, username string) ([]model.Account, error)
	Followings(ctx context.Context, username string) ([]model.Account, error)
	Update(ctx context.Context, who model.Identity, id uuid.UUID, in dto.UpdateUserDTO) (model.Account, error)
	Follow(ctx context.Context, who model.Identity, username string) error
	Unfollow(ctx context.Context, who model.Identity, username string) error
	PresignAvatar(ctx context.Context, who model.Identity, id uuid.UUID, contentType string) (Avatar, error)
}

type accountService struct {
	users   repo.UserRepo
	hasher  PasswordHasher
	avatars AvatarStore
	v       *validator.Validate
	now     func() time.Time
}

// NewAccountService builds the account service. avatars may be nil, in which
// case PresignAvatar reports ErrInvalidArgument.
func NewAccountService(users repo.UserRepo, h PasswordHasher, avatars AvatarStore, v *validator.Validate) AccountService {
	return &accountService{users: users, hasher: h, avatars: avatars, v: v, now: time.Now}
}

func (s *accountService) GetByID(ctx context.Context, id uuid.UUID) (model.Account, error) {
	acc, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return model.Account{}, notFound(err, "user", "GetByID")
	}
	return acc, nil
}

func (s *accountService) GetByUsername(ctx context.Context, username string) (model.Account, error) {
	acc, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return model.Account{}, notFound(err, "user", "GetByUsername")
	}
	return acc, nil
}

func (s *accountService) Search(ctx context.Context, query string, limit int) ([]model.Account, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	res, err := s.users.SearchUsers(ctx, strings.TrimSpace(query), limit)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "Search")
	}
	return res, nil
}

func (s *accountService) Followers(ctx context.Context, username string) ([]model.Account, error) {
	acc, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, acc.Followers, "Followers")
}

func (s *accountService) Followings(ctx context.Context, username string) ([]model.Account, error) {
	acc, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, acc.Followings, "Followings")
}

func (s *accountService) resolve(ctx context.Context, ids []uuid.UUID, op string) ([]model.Account, error) {
	res, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, customErrors.WrapInternal(err, op)
	}
	return res, nil
}

func (s *accountService) Update(ctx context.Context, who model.Identity, id uuid.UUID, in dto.UpdateUserDTO) (model.Account, error) {
	if err := s.v.Struct(in); err != nil {
		return model.Account{}, customErrors.NewInvalidArgument(err.Error())
	}

	acc, err := s.GetByID(ctx, id)
	if err != nil {
		return model.Account{}, err
	}
	if err := access.Authorize(who, acc.ID, access.OpUpdate); err != nil {
		return model.Account{}, err
	}

	if in.Username != nil {
		acc.Username = *in.Username
	}
	if in.Email != nil {
		acc.Email = *in.Email
	}
	if in.Password != nil {
		h, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return model.Account{}, customErrors.WrapInternal(err, "Update")
		}
		acc.PasswordHash = h
	}
	acc.UpdatedAt = s.now().UTC()

	if err := s.users.UpdateUser(ctx, acc); err != nil {
		switch {
		case errors.Is(err, customErrors.ErrAlreadyExists):
			return model.Account{}, customErrors.NewAlreadyExists("username is already taken")
		case errors.Is(err, customErrors.ErrNotFound):
			return model.Account{}, customErrors.NewNotFound("user")
		}
		return model.Account{}, customErrors.WrapInternal(err, "Update")
	}
	return acc, nil
}

func (s *accountService) Follow(ctx context.Context, who model.Identity, username string) error {
	target, err := s.followTarget(ctx, who, username, "follow")
	if err != nil {
		return err
	}

	err = s.users.Follow(ctx, who.ID, target.ID)
	switch {
	case errors.Is(err, customErrors.ErrAlreadyExists):
		return customErrors.NewInvalidArgument("you already follow this user")
	case err != nil:
		return customErrors.WrapInternal(err, "Follow")
	}
	return nil
}

func (s *accountService) Unfollow(ctx context.Context, who model.Identity, username string) error {
	target, err := s.followTarget(ctx, who, username, "unfollow")
	if err != nil {
		return err
	}

	err = s.users.Unfollow(ctx, who.ID, target.ID)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return customErrors.NewInvalidArgument("you don't follow this user")
	case err != nil:
		return customErrors.WrapInternal(err, "Unfollow")
	}
	return nil
}

func (s *accountService) followTarget(ctx context.Context, who model.Identity, username, verb string) (model.Account, error) {
	if username == who.Username {
		return model.Account{}, customErrors.NewInvalidArgument(fmt.Sprintf("you can't %s yourself", verb))
	}
	target, err := s.GetByUsername(ctx, username)
	if err != nil {
		return model.Account{}, err
	}
	if target.ID == who.ID {
		return model.Account{}, customErrors.NewInvalidArgument(fmt.Sprintf("you can't %s yourself", verb))
	}
	return target, nil
}

func (s *accountService) PresignAvatar(ctx context.Context, who model.Identity, id uuid.UUID, contentType string) (Avatar, error) {
	if s.avatars == nil {
		return Avatar{}, customErrors.NewInvalidArgument("avatar uploads are disabled")
	}
	ext, ok := imageExt[contentType]
	if !ok {
		return Avatar{}, customErrors.NewInvalidArgument("unsupported content type " + contentType)
	}

	acc, err := s.GetByID(ctx, id)
	if err != nil {
		return Avatar{}, err
	}
	if err := access.Authorize(who, acc.ID, access.OpUpdate); err != nil {
		return Avatar{}, err
	}

	key := fmt.Sprintf("avatars/%s/%s%s", acc.ID, uuid.NewString(), ext)
	uploadURL, err := s.avatars.PresignPut(ctx, key, contentType)
	if err != nil {
		return Avatar{}, customErrors.WrapInternal(err, "PresignAvatar")
	}

	acc.ProfilePicture = s.avatars.ObjectURL(key)
	acc.UpdatedAt = s.now().UTC()
	if err := s.users.UpdateUser(ctx, acc); err != nil {
		return Avatar{}, customErrors.WrapInternal(err, "PresignAvatar")
	}
	return Avatar{UploadURL: uploadURL, Key: key, URL: acc.ProfilePicture}, nil
}

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

func notFound(err error, what, op string) error {
	if errors.Is(err, customErrors.ErrNotFound) {
		return customErrors.NewNotFound(what)
	}
	return customErrors.WrapInternal(err, op)
}
