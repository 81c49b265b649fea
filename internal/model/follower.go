package model

import (
	"errors"
	"time"
)

// Follower is a directed edge recording that Owner follows Followed.
type Follower struct {
	ID         int64     `db:"id"`
	OwnerID    int64     `db:"owner_id"`
	FollowedID int64     `db:"followed_id"`
	CreatedAt  time.Time `db:"created_at"`
}

type FollowerRow struct {
	Follower
	OwnerUsername    string `db:"owner_username"`
	FollowedUsername string `db:"followed_username"`
}

type CreateFollowerRequest struct {
	Followed int64 `json:"followed"`
}

type FollowerQuery struct {
	ListOptions
	OwnerID    *int64
	FollowedID *int64
}

var (
	ErrFollowerNotFound = errors.New("follower not found")
	ErrDuplicateFollow  = NewValidationError("detail", "possible duplicate follow")
)
