package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moments_api/internal/database"
	"moments_api/internal/model"
)

// openTestDB connects to TEST_DATABASE_URL, applies migrations and empties
// every table. Tests are skipped when the variable is unset.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, database.Migrate(ctx, db))
	_, err = db.ExecContext(ctx, `TRUNCATE users, refresh_tokens RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return db
}

func createUser(t *testing.T, repo UserRepository, username string) (*model.User, *model.Profile) {
	t.Helper()
	u := &model.User{Username: username, PasswordHashed: "hash"}
	p, err := repo.CreateWithProfile(context.Background(), u, "https://cdn.example.com/default.jpg")
	require.NoError(t, err)
	return u, p
}

func int64Ptr(v int64) *int64 { return &v }

func TestUserRepository_CreateWithProfile(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)

	u, p := createUser(t, users, "andy")
	assert.NotZero(t, u.ID)
	assert.Equal(t, u.ID, p.OwnerID)

	_, err := users.CreateWithProfile(ctx, &model.User{Username: "andy", PasswordHashed: "x"}, "")
	assert.ErrorIs(t, err, model.ErrUsernameExists)

	current, err := users.GetCurrent(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, current.ProfileID)
	assert.Equal(t, "https://cdn.example.com/default.jpg", current.ProfileImage)
}

func TestPostRepository_CountsAndFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	likes := NewLikeRepository(db)
	comments := NewCommentRepository(db)
	followers := NewFollowerRepository(db)

	andy, andyProfile := createUser(t, users, "andy")
	lindsay, lindsayProfile := createUser(t, users, "lindsay")

	p1 := &model.Post{OwnerID: andy.ID, Title: "sunset", ImageFilter: model.DefaultImageFilter}
	require.NoError(t, posts.Create(ctx, p1))
	p2 := &model.Post{OwnerID: lindsay.ID, Title: "beach", ImageFilter: model.DefaultImageFilter}
	require.NoError(t, posts.Create(ctx, p2))

	_, outcome, err := likes.Create(ctx, andy.ID, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Created, outcome)
	_, outcome, err = likes.Create(ctx, lindsay.ID, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Created, outcome)

	_, outcome, err = likes.Create(ctx, andy.ID, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AlreadyExists, outcome)

	for i := 0; i < 3; i++ {
		require.NoError(t, comments.Create(ctx, &model.Comment{OwnerID: lindsay.ID, PostID: p1.ID, Content: "nice"}))
	}

	row, err := posts.GetDetail(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, row.LikesCount, "likes must not be multiplied by comments")
	assert.Equal(t, 3, row.CommentsCount)
	assert.Equal(t, "andy", row.OwnerUsername)
	assert.Equal(t, andyProfile.ID, row.ProfileID)

	_, _, err = followers.Create(ctx, lindsay.ID, andy.ID)
	require.NoError(t, err)

	t.Run("followed by profile", func(t *testing.T) {
		rows, total, err := posts.List(ctx, model.PostQuery{
			ListOptions:       model.ListOptions{Page: 1, PageSize: 10},
			FollowedByProfile: int64Ptr(lindsayProfile.ID),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, rows, 1)
		assert.Equal(t, p1.ID, rows[0].ID)
	})

	t.Run("ordering by likes", func(t *testing.T) {
		rows, total, err := posts.List(ctx, model.PostQuery{
			ListOptions: model.ListOptions{Page: 1, PageSize: 10, Ordering: []model.Ordering{{Field: "likes_count", Desc: true}}},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Equal(t, []int64{p1.ID, p2.ID}, []int64{rows[0].ID, rows[1].ID})
	})

	t.Run("search", func(t *testing.T) {
		rows, total, err := posts.List(ctx, model.PostQuery{
			ListOptions: model.ListOptions{Page: 1, PageSize: 10, Search: "LINDSAY"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, p2.ID, rows[0].ID)
	})

	t.Run("page past end", func(t *testing.T) {
		_, _, err := posts.List(ctx, model.PostQuery{ListOptions: model.ListOptions{Page: 5, PageSize: 10}})
		assert.ErrorIs(t, err, model.ErrInvalidPage)
	})

	t.Run("delete cascades", func(t *testing.T) {
		require.NoError(t, posts.Delete(ctx, p1.ID))

		var remaining int
		require.NoError(t, db.GetContext(ctx, &remaining, `SELECT COUNT(*) FROM likes`))
		assert.Zero(t, remaining)
		require.NoError(t, db.GetContext(ctx, &remaining, `SELECT COUNT(*) FROM comments`))
		assert.Zero(t, remaining)

		assert.ErrorIs(t, posts.Delete(ctx, p1.ID), model.ErrPostNotFound)
	})
}

func TestProfileRepository_Counts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	profiles := NewProfileRepository(db)
	followers := NewFollowerRepository(db)
	posts := NewPostRepository(db)

	andy, andyProfile := createUser(t, users, "andy")
	lindsay, lindsayProfile := createUser(t, users, "lindsay")
	tobias, _ := createUser(t, users, "tobias")

	_, _, err := followers.Create(ctx, lindsay.ID, andy.ID)
	require.NoError(t, err)
	_, _, err = followers.Create(ctx, tobias.ID, andy.ID)
	require.NoError(t, err)
	_, _, err = followers.Create(ctx, andy.ID, lindsay.ID)
	require.NoError(t, err)
	_, outcome, err := followers.Create(ctx, andy.ID, lindsay.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AlreadyExists, outcome)

	require.NoError(t, posts.Create(ctx, &model.Post{OwnerID: andy.ID, Title: "one", ImageFilter: "normal"}))
	require.NoError(t, posts.Create(ctx, &model.Post{OwnerID: andy.ID, Title: "two", ImageFilter: "normal"}))

	row, err := profiles.GetDetail(ctx, andyProfile.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, row.PostsCount)
	assert.Equal(t, 2, row.FollowersCount)
	assert.Equal(t, 1, row.FollowingCount)

	rows, total, err := profiles.List(ctx, model.ProfileQuery{
		ListOptions:       model.ListOptions{Page: 1, PageSize: 10},
		FollowedByProfile: int64Ptr(lindsayProfile.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, andyProfile.ID, rows[0].ID)

	ids, err := followers.IDsForFollowed(ctx, andy.ID, []int64{lindsay.ID, tobias.ID})
	require.NoError(t, err)
	assert.Len(t, ids, 1)
	assert.Contains(t, ids, lindsay.ID)
}

func TestRefreshTokenRepository_RotateAndPurge(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	tokens := NewRefreshTokenRepository(db)

	u, _ := createUser(t, users, "andy")

	current := &model.RefreshToken{UserID: u.ID, TokenHash: "current", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, tokens.Create(ctx, current))
	stale := &model.RefreshToken{UserID: u.ID, TokenHash: "stale", ExpiresAt: time.Now().Add(-30 * 24 * time.Hour)}
	require.NoError(t, tokens.Create(ctx, stale))

	require.NoError(t, tokens.Revoke(ctx, stale.ID, &current.ID))
	found, err := tokens.FindByTokenHash(ctx, "stale")
	require.NoError(t, err)
	assert.True(t, found.IsRevoked())
	require.NotNil(t, found.ReplacedBy)
	assert.Equal(t, current.ID, *found.ReplacedBy)

	deleted, err := tokens.DeleteExpired(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = tokens.FindByTokenHash(ctx, "stale")
	assert.ErrorIs(t, err, model.ErrRefreshTokenNotFound)
	_, err = tokens.FindByTokenHash(ctx, "current")
	assert.NoError(t, err)
}
