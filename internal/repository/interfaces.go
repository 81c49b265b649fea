package repository

import (
	"context"
	"time"

	"moments_api/internal/model"
)

type UserRepository interface {
	// CreateWithProfile inserts the user and its profile in one transaction.
	CreateWithProfile(ctx context.Context, user *model.User, profileImage string) (*model.Profile, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
	GetCurrent(ctx context.Context, id int64) (*model.CurrentUser, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Profile, error)
	GetDetail(ctx context.Context, id int64) (*model.ProfileRow, error)
	List(ctx context.Context, q model.ProfileQuery) ([]model.ProfileRow, int, error)
	Update(ctx context.Context, profile *model.Profile) error
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	GetDetail(ctx context.Context, id int64) (*model.PostRow, error)
	List(ctx context.Context, q model.PostQuery) ([]model.PostRow, int, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetDetail(ctx context.Context, id int64) (*model.CommentRow, error)
	List(ctx context.Context, q model.CommentQuery) ([]model.CommentRow, int, error)
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id int64) error
}

type LikeRepository interface {
	// Create inserts the like unless the (owner, post) pair already exists.
	Create(ctx context.Context, ownerID, postID int64) (*model.Like, model.CreateOutcome, error)
	GetDetail(ctx context.Context, id int64) (*model.LikeRow, error)
	List(ctx context.Context, q model.LikeQuery) ([]model.LikeRow, int, error)
	Delete(ctx context.Context, id int64) error
	// IDsForPosts maps post id -> like id for the owner's likes among postIDs.
	IDsForPosts(ctx context.Context, ownerID int64, postIDs []int64) (map[int64]int64, error)
}

type FollowerRepository interface {
	// Create inserts the edge unless the (owner, followed) pair already exists.
	Create(ctx context.Context, ownerID, followedID int64) (*model.Follower, model.CreateOutcome, error)
	GetDetail(ctx context.Context, id int64) (*model.FollowerRow, error)
	List(ctx context.Context, q model.FollowerQuery) ([]model.FollowerRow, int, error)
	Delete(ctx context.Context, id int64) error
	// IDsForFollowed maps followed user id -> edge id for the owner's edges.
	IDsForFollowed(ctx context.Context, ownerID int64, followedIDs []int64) (map[int64]int64, error)
}
