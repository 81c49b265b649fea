package model

import (
	"errors"
	"time"
)

// Profile is the public face of a user. Exactly one exists per user; it is
// created together with the user and never directly by a client.
type Profile struct {
	ID        int64     `db:"id"`
	OwnerID   int64     `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Name      string    `db:"name"`
	Content   string    `db:"content"`
	Image     string    `db:"image"`
	ImageKey  *string   `db:"image_key"`
}

// ProfileRow is a profile joined with its owner's username and annotated
// with live relation counts.
type ProfileRow struct {
	Profile
	OwnerUsername  string `db:"owner_username"`
	PostsCount     int    `db:"posts_count"`
	FollowersCount int    `db:"followers_count"`
	FollowingCount int    `db:"following_count"`
}

// UpdateProfileRequest holds the writable profile fields. Omitted fields keep
// their current value.
type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Content *string `json:"content"`
}

// ProfileQuery filters the profile list. FollowsProfile selects profiles whose
// owner follows the owner of that profile; FollowedByProfile selects profiles
// whose owner is followed by the owner of that profile.
type ProfileQuery struct {
	ListOptions
	FollowsProfile    *int64
	FollowedByProfile *int64
}

const MaxProfileNameLength = 255

var ErrProfileNotFound = errors.New("profile not found")
