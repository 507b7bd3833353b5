package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/dto"
	appjwt "github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/jwt"
	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	repo "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/repo"
	"github.com/go-playground/validator/v10"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

type authService struct {
	userRepo  repo.UserRepo
	tokenRepo repo.TokenRepo
	jwtUtil   jwt.JWTUtil
	hasher    PasswordHasher
	v         *validator.Validate
	now       func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

type Service interface {
	Signup(context.Context, dto.SignupDTO) (model.Account, error)
	Register(context.Context, dto.SignupDTO, model.Role) (model.Account, error)
	Login(context.Context, dto.LoginDTO) (model.Account, model.TokenPair, error)
	Refresh(context.Context, dto.RefreshDTO) (model.TokenPair, error)
	Logout(context.Context, dto.LogoutDTO) error
	Authenticate(ctx context.Context, accessToken string) (model.Identity, error)
}

func New(
	ur repo.UserRepo,
	tr repo.TokenRepo,
	jm jwt.JWTUtil,
	h PasswordHasher,
	v *validator.Validate,
) Service {
	return &authService{
		userRepo: ur, tokenRepo: tr, jwtUtil: jm, hasher: h, v: v, now: time.Now,
	}
}

func (a *authService) Signup(ctx context.Context, in dto.SignupDTO) (model.Account, error) {
	return a.Register(ctx, in, model.RoleUser)
}

// Register creates an account with an explicit role. Only the admin CLI calls
// it with anything but RoleUser.
func (a *authService) Register(ctx context.Context, in dto.SignupDTO, role model.Role) (model.Account, error) {
	if err := a.v.Struct(in); err != nil {
		return model.Account{}, customErrors.NewInvalidArgument(err.Error())
	}
	if !role.Valid() {
		return model.Account{}, customErrors.NewInvalidArgument("unknown role " + string(role))
	}

	passwordHash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return model.Account{}, customErrors.WrapInternal(err, "Signup")
	}

	now := a.now().UTC()
	acc := model.Account{
		ID:           uuid.New(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err = a.userRepo.CreateUser(ctx, acc); err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return model.Account{}, customErrors.NewAlreadyExists("username is already taken")
		}
		return model.Account{}, customErrors.WrapInternal(err, "Signup")
	}
	return acc, nil
}

func (a *authService) Login(ctx context.Context, in dto.LoginDTO) (model.Account, model.TokenPair, error) {
	if err := a.v.Struct(in); err != nil {
		return model.Account{}, model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	acc, err := a.userRepo.GetUserByUsername(ctx, in.Username)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		// burn the same hashing cost as a real comparison
		a.hasher.Verify(in.Password, a.dummy())
		return model.Account{}, model.TokenPair{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.Account{}, model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}

	if !a.hasher.Verify(in.Password, acc.PasswordHash) {
		return model.Account{}, model.TokenPair{}, customErrors.ErrInvalidCredentials
	}

	pair, err := a.issueTokens(acc.Identity())
	if err != nil {
		return model.Account{}, model.TokenPair{}, err
	}
	return acc, pair, nil
}

// Refresh mints a new access token from a refresh token. The refresh token
// itself is returned unchanged; it stays valid until logout or expiry.
func (a *authService) Refresh(ctx context.Context, in dto.RefreshDTO) (model.TokenPair, error) {
	if err := a.v.Struct(in); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	claims, err := a.jwtUtil.ValidateRefreshToken(in.RefreshToken)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	revoked, err := a.tokenRepo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}
	if revoked {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	identity := appjwt.Identity(claims)
	at, atExp, _, err := a.jwtUtil.GenerateAccessToken(identity)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateAccessToken")
	}

	pair := model.TokenPair{
		AccessToken:     at,
		RefreshToken:    in.RefreshToken,
		AccessTTL:       atExp.Sub(a.now()),
		AccountID:       identity.ID,
		RefreshTokenJTI: claims.ID,
	}
	if claims.ExpiresAt != nil {
		pair.RefreshTTL = claims.ExpiresAt.Time.Sub(a.now())
	}
	return pair, nil
}

func (a *authService) Logout(ctx context.Context, in dto.LogoutDTO) error {
	if err := a.v.Struct(in); err != nil {
		return customErrors.NewInvalidArgument("refresh token is required")
	}

	claims, err := a.jwtUtil.ValidateRefreshToken(in.RefreshToken)
	if err != nil {
		return customErrors.ErrInvalidToken
	}

	if err := a.tokenRepo.Revoke(ctx, claims.ID, expiry(claims.ExpiresAt)); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}

	if in.AccessToken == "" {
		return nil
	}
	acc, err := a.jwtUtil.ValidateAccessToken(in.AccessToken)
	if err != nil { // an already expired access token needs no revocation
		return nil
	}
	if err := a.tokenRepo.RevokeAccess(ctx, acc.ID, expiry(acc.ExpiresAt)); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}
	return nil
}

func (a *authService) Authenticate(ctx context.Context, accessToken string) (model.Identity, error) {
	if accessToken == "" {
		return model.Identity{}, customErrors.ErrInvalidToken
	}

	claims, err := a.jwtUtil.ValidateAccessToken(accessToken)
	if err != nil {
		return model.Identity{}, customErrors.ErrInvalidToken
	}

	revoked, err := a.tokenRepo.IsAccessRevoked(ctx, claims.ID)
	if err != nil {
		return model.Identity{}, customErrors.WrapInternal(err, "Authenticate")
	}
	if revoked {
		return model.Identity{}, customErrors.ErrInvalidToken
	}
	return appjwt.Identity(claims), nil
}

func (a *authService) issueTokens(id model.Identity) (model.TokenPair, error) {
	at, atExp, _, err := a.jwtUtil.GenerateAccessToken(id)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateAccessToken")
	}
	rt, rtExp, jti, err := a.jwtUtil.GenerateRefreshToken(id)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateRefreshToken")
	}

	now := a.now()
	pair := model.TokenPair{
		AccessToken:     at,
		RefreshToken:    rt,
		AccessTTL:       atExp.Sub(now),
		AccountID:       id.ID,
		RefreshTokenJTI: jti,
	}
	if !rtExp.IsZero() {
		pair.RefreshTTL = rtExp.Sub(now)
	}
	return pair, nil
}

func (a *authService) dummy() string {
	a.dummyOnce.Do(func() {
		a.dummyHash, _ = a.hasher.Hash(uuid.NewString())
	})
	return a.dummyHash
}

func expiry(d *gojwt.NumericDate) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}
