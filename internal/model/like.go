package model

import (
	"errors"
	"time"
)

// Like is a directed edge from a user to a post, unique per pair.
type Like struct {
	ID        int64     `db:"id"`
	OwnerID   int64     `db:"owner_id"`
	PostID    int64     `db:"post_id"`
	CreatedAt time.Time `db:"created_at"`
}

type LikeRow struct {
	Like
	OwnerUsername string `db:"owner_username"`
}

type CreateLikeRequest struct {
	Post int64 `json:"post"`
}

type LikeQuery struct {
	ListOptions
	PostID  *int64
	OwnerID *int64
}

var (
	ErrLikeNotFound  = errors.New("like not found")
	ErrDuplicateLike = NewValidationError("detail", "possible duplicate like")
)
