package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/db/postgres"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/dto"
	authsvc "github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/service"
	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	authModel "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/social/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

type avatarStub struct {
	keys []string
	err  error
}

func (a *avatarStub) PresignPut(_ context.Context, key, _ string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.keys = append(a.keys, key)
	return "https://upload.example/" + key + "?sig=1", nil
}

func (a *avatarStub) ObjectURL(key string) string { return "https://cdn.example/" + key }

type fixture struct {
	users    *postgres.PostgresUserRepo
	accounts *accountService
	articles *articleService
	comments *commentService
	avatars  *avatarStub
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(postgres.Models()...))

	f := &fixture{
		users:   postgres.NewPostgresUserRepo(db),
		avatars: &avatarStub{},
		clock:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	now := func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	}
	articles := postgres.NewPostgresArticleRepo(db)
	comments := postgres.NewPostgresCommentRepo(db)
	v := authsvc.NewValidator()

	f.accounts = NewAccountService(f.users, plainHasher{}, f.avatars, v).(*accountService)
	f.accounts.now = now
	f.articles = NewArticleService(articles, comments, f.users, v).(*articleService)
	f.articles.now = now
	f.comments = NewCommentService(articles, comments, v).(*commentService)
	f.comments.now = now
	return f
}

func (f *fixture) account(t *testing.T, username string, role authModel.Role) authModel.Identity {
	t.Helper()
	acc := authModel.Account{
		ID: uuid.New(), Username: username, Email: username + "@x.com",
		PasswordHash: "h", Role: role, CreatedAt: f.clock, UpdatedAt: f.clock,
	}
	_, err := f.users.CreateUser(context.Background(), acc)
	require.NoError(t, err)
	return acc.Identity()
}

func ptr[T any](v T) *T { return &v }

func TestAccounts_UpdateOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.account(t, "alice", authModel.RoleUser)
	bob := f.account(t, "bob", authModel.RoleUser)
	admin := f.account(t, "root", authModel.RoleAdmin)

	_, err := f.accounts.Update(ctx, bob, alice.ID, dto.UpdateUserDTO{Email: ptr("bob@evil.com")})
	require.ErrorIs(t, err, customErrors.ErrForbidden)

	_, err = f.accounts.Update(ctx, admin, alice.ID, dto.UpdateUserDTO{Email: ptr("a@b.com")})
	require.ErrorIs(t, err, customErrors.ErrForbidden, "admins may only delete")

	acc, err := f.accounts.Update(ctx, alice, alice.ID, dto.UpdateUserDTO{
		Email:    ptr("alice@new.com"),
		Password: ptr("NewPassw0rd"),
	})
	require.NoError(t, err)
	require.Equal(t, "alice@new.com", acc.Email)
	require.Equal(t, "hashed:NewPassw0rd", acc.PasswordHash)

	stored, err := f.accounts.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, "hashed:NewPassw0rd", stored.PasswordHash)

	_, err = f.accounts.Update(ctx, alice, alice.ID, dto.UpdateUserDTO{Username: ptr("bob")})
	require.True(t, customErrors.IsAlreadyExists(err))

	_, err = f.accounts.Update(ctx, alice, alice.ID, dto.UpdateUserDTO{Password: ptr("weak")})
	require.True(t, customErrors.IsInvalidArgument(err))

	_, err = f.accounts.Update(ctx, alice, uuid.New(), dto.UpdateUserDTO{})
	require.True(t, customErrors.IsNotFound(err))
}

func TestAccounts_FollowRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.account(t, "alice", authModel.RoleUser)
	bob := f.account(t, "bob", authModel.RoleUser)

	require.True(t, customErrors.IsInvalidArgument(f.accounts.Follow(ctx, alice, "alice")))
	require.True(t, customErrors.IsNotFound(f.accounts.Follow(ctx, alice, "nobody")))

	require.NoError(t, f.accounts.Follow(ctx, alice, "bob"))
	require.True(t, customErrors.IsInvalidArgument(f.accounts.Follow(ctx, alice, "bob")))

	followers, err := f.accounts.Followers(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, followers, 1)
	require.Equal(t, alice.ID, followers[0].ID)

	followings, err := f.accounts.Followings(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, followings, 1)
	require.Equal(t, bob.ID, followings[0].ID)

	require.NoError(t, f.accounts.Unfollow(ctx, alice, "bob"))
	require.True(t, customErrors.IsInvalidArgument(f.accounts.Unfollow(ctx, alice, "bob")))
	require.True(t, customErrors.IsInvalidArgument(f.accounts.Unfollow(ctx, bob, "bob")))

	_, err = f.accounts.Followers(ctx, "ghost")
	require.True(t, customErrors.IsNotFound(err))
}

func TestAccounts_Search(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 12; i++ {
		f.account(t, "user"+string(rune('a'+i)), authModel.RoleUser)
	}

	res, err := f.accounts.Search(context.Background(), "USER", 0)
	require.NoError(t, err)
	require.Len(t, res, DefaultSearchLimit)

	res, err = f.accounts.Search(context.Background(), "userc", 5)
	require.NoError(t, err)
	require.Len(t, res, 1)
}

func TestAccounts_PresignAvatar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.account(t, "alice", authModel.RoleUser)
	bob := f.account(t, "bob", authModel.RoleUser)

	_, err := f.accounts.PresignAvatar(ctx, bob, alice.ID, "image/png")
	require.ErrorIs(t, err, customErrors.ErrForbidden)

	_, err = f.accounts.PresignAvatar(ctx, alice, alice.ID, "text/html")
	require.True(t, customErrors.IsInvalidArgument(err))

	av, err := f.accounts.PresignAvatar(ctx, alice, alice.ID, "image/png")
	require.NoError(t, err)
	require.Contains(t, av.Key, "avatars/"+alice.ID.String()+"/")
	require.Equal(t, "https://cdn.example/"+av.Key, av.URL)

	acc, _ := f.accounts.GetByID(ctx, alice.ID)
	require.Equal(t, av.URL, acc.ProfilePicture)

	f.avatars.err = errors.New("s3 down")
	_, err = f.accounts.PresignAvatar(ctx, alice, alice.ID, "image/png")
	require.True(t, customErrors.IsInternal(err))

	f.accounts.avatars = nil
	_, err = f.accounts.PresignAvatar(ctx, alice, alice.ID, "image/png")
	require.True(t, customErrors.IsInvalidArgument(err))
}

func TestArticles_OwnershipGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.account(t, "alice", authModel.RoleUser)
	bob := f.account(t, "bob", authModel.RoleUser)
	admin := f.account(t, "root", authModel.RoleAdmin)

	a, err := f.articles.Create(ctx, alice, dto.ArticleDTO{Title: "hello", Content: "world"})
	require.NoError(t, err)
	require.Equal(t, alice.ID, a.OwnerID)

	_, err = f.articles.Update(ctx, bob, a.ID, dto.UpdateArticleDTO{Title: ptr("pwned")})
	require.ErrorIs(t, err, customErrors.ErrForbidden)
	_, err = f.articles.Update(ctx, admin, a.ID, dto.UpdateArticleDTO{Title: ptr("pwned")})
	require.ErrorIs(t, err, customErrors.ErrForbidden)
	require.ErrorIs(t, f.articles.Delete(ctx, bob, a.ID), customErrors.ErrForbidden)

	updated, err := f.articles.Update(ctx, alice, a.ID, dto.UpdateArticleDTO{Title: ptr("hi")})
	require.NoError(t, err)
	require.Equal(t, "hi", updated.Title)
	require.Equal(t, "world", updated.Content)

	require.NoError(t, f.articles.Delete(ctx, admin, a.ID))
	_, _, err = f.articles.Get(ctx, a.ID)
	require.True(t, customErrors.IsNotFound(err))
	require.True(t, customErrors.IsNotFound(f.articles.Delete(ctx, alice, a.ID)))

	b, _ := f.articles.Create(ctx, alice, dto.ArticleDTO{Title: "t", Content: "c"})
	require.NoError(t, f.articles.Delete(ctx, alice, b.ID))

	_, err = f.articles.Create(ctx, alice, dto.ArticleDTO{Title: "", Content: "c"})
	require.True(t, customErrors.IsInvalidArgument(err))
}

func TestArticles_TimelineAndLikes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.account(t, "alice", authModel.RoleUser)
	bob := f.account(t, "bob", authModel.RoleUser)
	carol := f.account(t, "carol", authModel.RoleUser)

	own, _ := f.articles.Create(ctx, alice, dto.ArticleDTO{Title: "mine", Content: "c"})
	followed, _ := f.articles.Create(ctx, bob, dto.ArticleDTO{Title: "bob's", Content: "c"})
	_, _ = f.articles.Create(ctx, carol, dto.ArticleDTO{Title: "stranger", Content: "c"})
	require.NoError(t, f.accounts.Follow(ctx, alice, "bob"))

	tl, err := f.articles.Timeline(ctx, alice, model.Page{})
	require.NoError(t, err)
	require.EqualValues(t, 2, tl.Total)
	require.Equal(t, model.Page{Number: DefaultPage, Limit: DefaultLimit}, tl.Page)
	require.Equal(t, followed.ID, tl.Articles[0].ID, "newest first")
	require.Equal(t, own.ID, tl.Articles[1].ID)

	tl, err = f.articles.Timeline(ctx, alice, model.Page{Number: 2, Limit: 1})
	require.NoError(t, err)
	require.Len(t, tl.Articles, 1)
	require.Equal(t, own.ID, tl.Articles[0].ID)

	liked, err := f.articles.ToggleLike(ctx, carol, own.ID)
	require.NoError(t, err)
	require.True(t, liked)
	got, _, _ := f.articles.Get(ctx, own.ID)
	require.True(t, got.LikedBy(carol.ID))

	liked, err = f.articles.ToggleLike(ctx, carol, own.ID)
	require.NoError(t, err)
	require.False(t, liked)

	_, err = f.articles.ToggleLike(ctx, carol, uuid.New())
	require.True(t, customErrors.IsNotFound(err))

	list, err := f.articles.ListByUsername(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, list, 1)
	_, err = f.articles.ListByUsername(ctx, "ghost")
	require.True(t, customErrors.IsNotFound(err))
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.account(t, "alice", authModel.RoleUser)
	bob := f.account(t, "bob", authModel.RoleUser)

	a, _ := f.articles.Create(ctx, alice, dto.ArticleDTO{Title: "t", Content: "c"})

	_, err := f.comments.Add(ctx, bob, dto.CommentDTO{ArticleID: uuid.NewString(), Content: "hi"})
	require.True(t, customErrors.IsNotFound(err))

	_, err = f.comments.Add(ctx, bob, dto.CommentDTO{ArticleID: "nope", Content: "hi"})
	require.True(t, customErrors.IsInvalidArgument(err))

	c1, err := f.comments.Add(ctx, bob, dto.CommentDTO{ArticleID: a.ID.String(), Content: "first"})
	require.NoError(t, err)
	require.Equal(t, bob.ID, c1.OwnerID)
	_, err = f.comments.Add(ctx, alice, dto.CommentDTO{ArticleID: a.ID.String(), Content: "second"})
	require.NoError(t, err)

	list, err := f.comments.ListByArticle(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "first", list[0].Content)

	_, comments, err := f.articles.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)

	_, err = f.comments.ListByArticle(ctx, uuid.New())
	require.True(t, customErrors.IsNotFound(err))
}
