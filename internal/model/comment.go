package model

import (
	"errors"
	"time"
)

// Comment represents a comment on a post.
type Comment struct {
	ID        int64     `db:"id"`
	OwnerID   int64     `db:"owner_id"`
	PostID    int64     `db:"post_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Content   string    `db:"content"`
}

// CommentRow is a comment joined with its owner's username and profile.
type CommentRow struct {
	Comment
	OwnerUsername string `db:"owner_username"`
	ProfileID     int64  `db:"profile_id"`
	ProfileImage  string `db:"profile_image"`
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Post    int64  `json:"post"`
	Content string `json:"content"`
}

// UpdateCommentRequest is the request body for updating a comment. The post
// a comment belongs to cannot change.
type UpdateCommentRequest struct {
	Content string `json:"content"`
}

type CommentQuery struct {
	ListOptions
	PostID *int64
}

var ErrCommentNotFound = errors.New("comment not found")
