// Package view renders stored rows into the JSON shapes returned to clients.
// Every projection takes the requesting viewer explicitly; fields such as
// is_owner, like_id and following_id are relative to that viewer.
package view

import (
	"time"

	"moments_api/internal/model"
)

type Post struct {
	ID            int64     `json:"id"`
	Owner         string    `json:"owner"`
	IsOwner       bool      `json:"is_owner"`
	ProfileID     int64     `json:"profile_id"`
	ProfileImage  string    `json:"profile_image"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Image         string    `json:"image"`
	ImageFilter   string    `json:"image_filter"`
	LikeID        *int64    `json:"like_id"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
}

// NewPost projects a post row. likeIDs maps post id to the viewer's like on it;
// it is ignored for anonymous viewers.
func NewPost(row model.PostRow, viewer model.Viewer, likeIDs map[int64]int64) Post {
	return Post{
		ID:            row.ID,
		Owner:         row.OwnerUsername,
		IsOwner:       viewer.Owns(row.OwnerID),
		ProfileID:     row.ProfileID,
		ProfileImage:  row.ProfileImage,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
		Title:         row.Title,
		Content:       row.Content,
		Image:         row.Image,
		ImageFilter:   row.ImageFilter,
		LikeID:        lookup(viewer, likeIDs, row.ID),
		LikesCount:    row.LikesCount,
		CommentsCount: row.CommentsCount,
	}
}

func NewPosts(rows []model.PostRow, viewer model.Viewer, likeIDs map[int64]int64) []Post {
	out := make([]Post, len(rows))
	for i, row := range rows {
		out[i] = NewPost(row, viewer, likeIDs)
	}
	return out
}

type Profile struct {
	ID             int64     `json:"id"`
	Owner          string    `json:"owner"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Name           string    `json:"name"`
	Content        string    `json:"content"`
	Image          string    `json:"image"`
	IsOwner        bool      `json:"is_owner"`
	FollowingID    *int64    `json:"following_id"`
	PostsCount     int       `json:"posts_count"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
}

// NewProfile projects a profile row. followingIDs maps a user id to the
// viewer's follower edge toward that user.
func NewProfile(row model.ProfileRow, viewer model.Viewer, followingIDs map[int64]int64) Profile {
	return Profile{
		ID:             row.ID,
		Owner:          row.OwnerUsername,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		Name:           row.Name,
		Content:        row.Content,
		Image:          row.Image,
		IsOwner:        viewer.Owns(row.OwnerID),
		FollowingID:    lookup(viewer, followingIDs, row.OwnerID),
		PostsCount:     row.PostsCount,
		FollowersCount: row.FollowersCount,
		FollowingCount: row.FollowingCount,
	}
}

func NewProfiles(rows []model.ProfileRow, viewer model.Viewer, followingIDs map[int64]int64) []Profile {
	out := make([]Profile, len(rows))
	for i, row := range rows {
		out[i] = NewProfile(row, viewer, followingIDs)
	}
	return out
}

type Comment struct {
	ID           int64     `json:"id"`
	Owner        string    `json:"owner"`
	IsOwner      bool      `json:"is_owner"`
	ProfileID    int64     `json:"profile_id"`
	ProfileImage string    `json:"profile_image"`
	Post         int64     `json:"post"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Content      string    `json:"content"`
}

func NewComment(row model.CommentRow, viewer model.Viewer) Comment {
	return Comment{
		ID:           row.ID,
		Owner:        row.OwnerUsername,
		IsOwner:      viewer.Owns(row.OwnerID),
		ProfileID:    row.ProfileID,
		ProfileImage: row.ProfileImage,
		Post:         row.PostID,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		Content:      row.Content,
	}
}

func NewComments(rows []model.CommentRow, viewer model.Viewer) []Comment {
	out := make([]Comment, len(rows))
	for i, row := range rows {
		out[i] = NewComment(row, viewer)
	}
	return out
}

type Like struct {
	ID        int64     `json:"id"`
	Owner     string    `json:"owner"`
	IsOwner   bool      `json:"is_owner"`
	Post      int64     `json:"post"`
	CreatedAt time.Time `json:"created_at"`
}

func NewLike(row model.LikeRow, viewer model.Viewer) Like {
	return Like{
		ID:        row.ID,
		Owner:     row.OwnerUsername,
		IsOwner:   viewer.Owns(row.OwnerID),
		Post:      row.PostID,
		CreatedAt: row.CreatedAt,
	}
}

func NewLikes(rows []model.LikeRow, viewer model.Viewer) []Like {
	out := make([]Like, len(rows))
	for i, row := range rows {
		out[i] = NewLike(row, viewer)
	}
	return out
}

type Follower struct {
	ID           int64     `json:"id"`
	Owner        string    `json:"owner"`
	IsOwner      bool      `json:"is_owner"`
	CreatedAt    time.Time `json:"created_at"`
	Followed     int64     `json:"followed"`
	FollowedName string    `json:"followed_name"`
}

func NewFollower(row model.FollowerRow, viewer model.Viewer) Follower {
	return Follower{
		ID:           row.ID,
		Owner:        row.OwnerUsername,
		IsOwner:      viewer.Owns(row.OwnerID),
		CreatedAt:    row.CreatedAt,
		Followed:     row.FollowedID,
		FollowedName: row.FollowedUsername,
	}
}

func NewFollowers(rows []model.FollowerRow, viewer model.Viewer) []Follower {
	out := make([]Follower, len(rows))
	for i, row := range rows {
		out[i] = NewFollower(row, viewer)
	}
	return out
}

func lookup(viewer model.Viewer, ids map[int64]int64, key int64) *int64 {
	if !viewer.Authenticated {
		return nil
	}
	id, ok := ids[key]
	if !ok {
		return nil
	}
	return &id
}
