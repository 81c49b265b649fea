package model

import (
	"errors"
	"time"
)

// Post is a user's content record, optionally carrying an image.
type Post struct {
	ID          int64     `db:"id"`
	OwnerID     int64     `db:"owner_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	Title       string    `db:"title"`
	Content     string    `db:"content"`
	Image       string    `db:"image"`
	ImageKey    *string   `db:"image_key"`
	ImageFilter string    `db:"image_filter"`
}

// PostRow is a post joined with its owner and annotated with live counts.
type PostRow struct {
	Post
	OwnerUsername string `db:"owner_username"`
	ProfileID     int64  `db:"profile_id"`
	ProfileImage  string `db:"profile_image"`
	LikesCount    int    `db:"likes_count"`
	CommentsCount int    `db:"comments_count"`
}

// PostRequest is the body of POST /posts and PUT /posts/{id}. Title is
// required; omitted optional fields keep their current value on update.
type PostRequest struct {
	Title       string  `json:"title"`
	Content     *string `json:"content"`
	ImageFilter *string `json:"image_filter"`
}

// PostQuery filters the post list by the owner's profile, by the profile of a
// user who liked the post, or by the profile of a user following the owner.
type PostQuery struct {
	ListOptions
	ProfileID         *int64
	LikedByProfile    *int64
	FollowedByProfile *int64
}

const (
	MaxPostTitleLength = 255
	DefaultImageFilter = "normal"
)

var imageFilters = map[string]struct{}{
	"_1977": {}, "brannan": {}, "earlybird": {}, "hudson": {}, "inkwell": {},
	"lofi": {}, "kelvin": {}, "normal": {}, "nashville": {}, "rise": {},
	"toaster": {}, "valencia": {}, "walden": {}, "xpro2": {},
}

// IsImageFilter reports whether name is one of the supported display filters.
func IsImageFilter(name string) bool {
	_, ok := imageFilters[name]
	return ok
}

var ErrPostNotFound = errors.New("post not found")
