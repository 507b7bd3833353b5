package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/password"
	appsvc "github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/service"
	authErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/infra/config"
	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

/* ──────────────────────────────── stubs ──────────────────────────────── */

type userRepoStub struct{ users map[uuid.UUID]model.Account }

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: make(map[uuid.UUID]model.Account)}
}

func (u *userRepoStub) CreateUser(_ context.Context, m model.Account) (uuid.UUID, error) {
	for _, v := range u.users {
		if v.Username == m.Username {
			return uuid.Nil, authErrors.ErrAlreadyExists
		}
	}
	u.users[m.ID] = m
	return m.ID, nil
}
func (u *userRepoStub) GetUserByID(_ context.Context, id uuid.UUID) (model.Account, error) {
	v, ok := u.users[id]
	if !ok {
		return model.Account{}, authErrors.ErrNotFound
	}
	return v, nil
}
func (u *userRepoStub) GetUserByUsername(_ context.Context, username string) (model.Account, error) {
	for _, v := range u.users {
		if v.Username == username {
			return v, nil
		}
	}
	return model.Account{}, authErrors.ErrNotFound
}
func (u *userRepoStub) GetUsersByIDs(context.Context, []uuid.UUID) ([]model.Account, error) {
	return nil, nil
}
func (u *userRepoStub) SearchUsers(context.Context, string, int) ([]model.Account, error) {
	return nil, nil
}
func (u *userRepoStub) UpdateUser(context.Context, model.Account) error       { return nil }
func (u *userRepoStub) Follow(context.Context, uuid.UUID, uuid.UUID) error   { return nil }
func (u *userRepoStub) Unfollow(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type brokenUserRepo struct{ *userRepoStub }

func (brokenUserRepo) GetUserByUsername(context.Context, string) (model.Account, error) {
	return model.Account{}, errors.New("connection refused")
}

type tokenRepoStub struct {
	revoked       map[string]time.Time
	accessRevoked map[string]time.Time
}

func newTokenRepoStub() *tokenRepoStub {
	return &tokenRepoStub{revoked: map[string]time.Time{}, accessRevoked: map[string]time.Time{}}
}

func (t *tokenRepoStub) Revoke(_ context.Context, jti string, exp time.Time) error {
	t.revoked[jti] = exp
	return nil
}
func (t *tokenRepoStub) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := t.revoked[jti]
	return ok, nil
}
func (t *tokenRepoStub) RevokeAccess(_ context.Context, jti string, exp time.Time) error {
	t.accessRevoked[jti] = exp
	return nil
}
func (t *tokenRepoStub) IsAccessRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := t.accessRevoked[jti]
	return ok, nil
}

type errTokenRepoStub struct{}

func (errTokenRepoStub) Revoke(context.Context, string, time.Time) error { return errors.New("err") }
func (errTokenRepoStub) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("err")
}
func (errTokenRepoStub) RevokeAccess(context.Context, string, time.Time) error {
	return errors.New("err")
}
func (errTokenRepoStub) IsAccessRevoked(context.Context, string) (bool, error) {
	return false, errors.New("err")
}

type accessFailTokenRepo struct{ *tokenRepoStub }

func (accessFailTokenRepo) RevokeAccess(context.Context, string, time.Time) error {
	return errors.New("redis: connection refused")
}

/* ───────────────────────────── helpers ───────────────────────────── */

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

var cheap = &argon2id.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type fixture struct {
	svc    appsvc.Service
	users  *userRepoStub
	tokens *tokenRepoStub
	util   *jwt.JwtUtilImpl
	clock  *clock
	hasher *password.Hasher
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	c := &clock{t: time.Now()}
	util, err := jwt.NewJWTUtil(&config.Config{
		JWTSecret:       "test-secret-test-secret-test-sec",
		AccessTokenTTL:  2 * time.Second,
		RefreshTokenTTL: time.Hour,
		Issuer:          "test",
		Audience:        "test",
	}, jwt.WithClock(c.now))
	require.NoError(t, err)

	f := fixture{
		users:  newUserRepoStub(),
		tokens: newTokenRepoStub(),
		util:   util,
		clock:  c,
		hasher: password.NewHasher("pepper", cheap),
	}
	f.svc = appsvc.New(f.users, f.tokens, util, f.hasher, appsvc.NewValidator())
	return f
}

func (f fixture) signupAlice(t *testing.T) model.Account {
	t.Helper()
	acc, err := f.svc.Signup(context.Background(), dto.SignupDTO{
		Username: "alice", Password: "Secret123", Email: "a@x.com",
	})
	require.NoError(t, err)
	return acc
}

/* ───────────────────────────── tests ───────────────────────────── */

func TestAuthService_SignupStoresHashOnly(t *testing.T) {
	f := newFixture(t)
	acc := f.signupAlice(t)

	stored := f.users.users[acc.ID]
	require.Equal(t, "alice", stored.Username)
	require.Equal(t, model.RoleUser, stored.Role)
	require.NotEqual(t, "Secret123", stored.PasswordHash)
	require.True(t, f.hasher.Verify("Secret123", stored.PasswordHash))
}

func TestAuthService_LoginIssuesBothTokens(t *testing.T) {
	f := newFixture(t)
	acc := f.signupAlice(t)

	got, pair, err := f.svc.Login(context.Background(), dto.LoginDTO{Username: "alice", Password: "Secret123"})
	require.NoError(t, err)
	require.Equal(t, acc.ID, got.ID)
	require.Equal(t, acc.ID, pair.AccountID)

	access, err := f.util.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice", access.Username)

	refresh, err := f.util.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, "alice", refresh.Username)
	require.Equal(t, pair.RefreshTokenJTI, refresh.ID)
}

func TestAuthService_SignupInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, dto.SignupDTO{})
	require.True(t, authErrors.IsInvalidArgument(err))

	_, err = f.svc.Signup(ctx, dto.SignupDTO{Username: "bob", Password: "weak", Email: "b@x.com"})
	require.True(t, authErrors.IsInvalidArgument(err))

	_, err = f.svc.Signup(ctx, dto.SignupDTO{Username: "bob", Password: "Secret123", Email: "not-an-email"})
	require.True(t, authErrors.IsInvalidArgument(err))
}

func TestAuthService_SignupDuplicate(t *testing.T) {
	f := newFixture(t)
	f.signupAlice(t)

	_, err := f.svc.Signup(context.Background(), dto.SignupDTO{
		Username: "alice", Password: "Other1234", Email: "other@x.com",
	})
	require.True(t, authErrors.IsAlreadyExists(err))
}

func TestAuthService_RegisterRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	acc, err := f.svc.Register(ctx, dto.SignupDTO{Username: "root", Password: "Secret123", Email: "r@x.com"}, model.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, acc.Role)

	_, err = f.svc.Register(ctx, dto.SignupDTO{Username: "odd", Password: "Secret123", Email: "o@x.com"}, "owner")
	require.True(t, authErrors.IsInvalidArgument(err))
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.signupAlice(t)
	ctx := context.Background()

	_, _, errWrongPassword := f.svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "wrong"})
	_, _, errUnknownUser := f.svc.Login(ctx, dto.LoginDTO{Username: "mallory", Password: "wrong"})

	require.ErrorIs(t, errWrongPassword, authErrors.ErrInvalidCredentials)
	require.ErrorIs(t, errUnknownUser, authErrors.ErrInvalidCredentials)
	require.Equal(t, errWrongPassword.Error(), errUnknownUser.Error())
}

func TestAuthService_LoginStoreFailure(t *testing.T) {
	f := newFixture(t)
	svc := appsvc.New(brokenUserRepo{f.users}, f.tokens, f.util, f.hasher, appsvc.NewValidator())

	_, _, err := svc.Login(context.Background(), dto.LoginDTO{Username: "alice", Password: "Secret123"})
	require.True(t, authErrors.IsInternal(err))
}

func TestAuthService_AuthenticateWithinAndAfterWindow(t *testing.T) {
	f := newFixture(t)
	f.signupAlice(t)
	ctx := context.Background()

	_, pair, err := f.svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "Secret123"})
	require.NoError(t, err)

	id, err := f.svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice", id.Username)
	require.Equal(t, pair.AccountID, id.ID)

	f.clock.t = f.clock.t.Add(3 * time.Second)
	_, err = f.svc.Authenticate(ctx, pair.AccessToken)
	require.ErrorIs(t, err, authErrors.ErrInvalidToken)
}

func TestAuthService_AuthenticateRejectsGarbage(t *testing.T) {
	f := newFixture(t)
	for _, tok := range []string{"", "bad", "a.b.c"} {
		_, err := f.svc.Authenticate(context.Background(), tok)
		require.ErrorIs(t, err, authErrors.ErrInvalidToken)
	}
}

func TestAuthService_RefreshKeepsIdentity(t *testing.T) {
	f := newFixture(t)
	f.signupAlice(t)
	ctx := context.Background()

	_, pair, _ := f.svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "Secret123"})
	original, _ := f.util.ValidateAccessToken(pair.AccessToken)

	// the first access token has expired, the refresh token has not
	f.clock.t = f.clock.t.Add(10 * time.Second)

	refreshed, err := f.svc.Refresh(ctx, dto.RefreshDTO{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	require.NotEqual(t, pair.AccessToken, refreshed.AccessToken)
	require.Equal(t, pair.RefreshToken, refreshed.RefreshToken)

	claims, err := f.util.ValidateAccessToken(refreshed.AccessToken)
	require.NoError(t, err)
	require.Equal(t, jwt.Identity(original), jwt.Identity(claims))
}

func TestAuthService_RefreshInvalidToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Refresh(ctx, dto.RefreshDTO{RefreshToken: "bad"})
	require.True(t, authErrors.IsInvalidToken(err))

	_, err = f.svc.Refresh(ctx, dto.RefreshDTO{})
	require.True(t, authErrors.IsInvalidArgument(err))

	f.signupAlice(t)
	_, pair, _ := f.svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "Secret123"})
	_, err = f.svc.Refresh(ctx, dto.RefreshDTO{RefreshToken: pair.AccessToken})
	require.True(t, authErrors.IsInvalidToken(err), "access token is not a refresh token")
}

func TestAuthService_LogoutRevokes(t *testing.T) {
	f := newFixture(t)
	f.signupAlice(t)
	ctx := context.Background()

	_, pair, _ := f.svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "Secret123"})

	err := f.svc.Logout(ctx, dto.LogoutDTO{RefreshToken: pair.RefreshToken, AccessToken: pair.AccessToken})
	require.NoError(t, err)
	require.Contains(t, f.tokens.revoked, pair.RefreshTokenJTI)

	_, err = f.svc.Refresh(ctx, dto.RefreshDTO{RefreshToken: pair.RefreshToken})
	require.True(t, authErrors.IsInvalidToken(err))

	_, err = f.svc.Authenticate(ctx, pair.AccessToken)
	require.True(t, authErrors.IsInvalidToken(err))
}

func TestAuthService_LogoutRevocationTTLMatchesToken(t *testing.T) {
	f := newFixture(t)
	f.signupAlice(t)
	ctx := context.Background()

	_, pair, _ := f.svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "Secret123"})
	claims, _ := f.util.ValidateRefreshToken(pair.RefreshToken)

	require.NoError(t, f.svc.Logout(ctx, dto.LogoutDTO{RefreshToken: pair.RefreshToken}))
	require.Equal(t, claims.ExpiresAt.Time, f.tokens.revoked[claims.ID])
	require.Empty(t, f.tokens.accessRevoked)
}

func TestAuthService_LogoutInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.Logout(ctx, dto.LogoutDTO{})
	require.True(t, authErrors.IsInvalidArgument(err))

	err = f.svc.Logout(ctx, dto.LogoutDTO{RefreshToken: "bad", AccessToken: "bad"})
	require.True(t, authErrors.IsInvalidToken(err))
}

func TestAuthService_InternalErrors(t *testing.T) {
	f := newFixture(t)
	svc := appsvc.New(f.users, errTokenRepoStub{}, f.util, f.hasher, appsvc.NewValidator())
	ctx := context.Background()

	_, err := svc.Signup(ctx, dto.SignupDTO{Username: "ivan", Password: "Secret123", Email: "i@x.com"})
	require.NoError(t, err)

	_, pair, err := svc.Login(ctx, dto.LoginDTO{Username: "ivan", Password: "Secret123"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, dto.RefreshDTO{RefreshToken: pair.RefreshToken})
	require.True(t, authErrors.IsInternal(err))

	_, err = svc.Authenticate(ctx, pair.AccessToken)
	require.True(t, authErrors.IsInternal(err))

	err = svc.Logout(ctx, dto.LogoutDTO{RefreshToken: pair.RefreshToken})
	require.True(t, authErrors.IsInternal(err))
}

func TestAuthService_LogoutAccessRevokeFailure(t *testing.T) {
	f := newFixture(t)
	tokens := accessFailTokenRepo{newTokenRepoStub()}
	svc := appsvc.New(f.users, tokens, f.util, f.hasher, appsvc.NewValidator())
	ctx := context.Background()

	_, err := svc.Signup(ctx, dto.SignupDTO{Username: "ivan", Password: "Secret123", Email: "i@x.com"})
	require.NoError(t, err)
	_, pair, err := svc.Login(ctx, dto.LoginDTO{Username: "ivan", Password: "Secret123"})
	require.NoError(t, err)

	err = svc.Logout(ctx, dto.LogoutDTO{RefreshToken: pair.RefreshToken, AccessToken: pair.AccessToken})
	require.Error(t, err)
	require.True(t, authErrors.IsInternal(err))

	// without an access token only the refresh id is revoked
	require.NoError(t, svc.Logout(ctx, dto.LogoutDTO{RefreshToken: pair.RefreshToken}))
}

func TestStrongPassword(t *testing.T) {
	require.True(t, appsvc.StrongPassword("Secret123"))
	require.False(t, appsvc.StrongPassword("secret123"))
	require.False(t, appsvc.StrongPassword("SecretXYZ"))
	require.False(t, appsvc.StrongPassword("Se1"))
}
